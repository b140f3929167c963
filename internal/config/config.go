package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port     string
	LogLevel string

	// Database configuration. An empty DBDatabase with no DATABASE_URL leaves the
	// store unconfigured and the service runs degraded.
	DatabaseURL       string
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBAutoMigrate     bool
	DBRetryInterval   time.Duration

	// Identity configuration
	OwnerOpenID       string
	JWTSecret         string
	SessionCookieName string
	SessionTTL        time.Duration

	// Authorizer configuration (optional)
	AuthzURL         string
	AuthzClientID    string
	AuthzRedirectURL string

	// Admin login
	AdminPlaintextPasswords bool
	LoginRatePerMinute      int
	LoginBurst              int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DBType:                  getEnv("DB_TYPE", "mysql"),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "3306"),
		DBDatabase:              getEnv("DB_DATABASE", ""),
		DBUser:                  getEnv("DB_USER", ""),
		DBPassword:              getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:       getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBAutoMigrate:           getEnvAsBool("DB_AUTO_MIGRATE", true),
		DBRetryInterval:         getEnvAsDuration("DB_RETRY_INTERVAL", 5*time.Second),
		OwnerOpenID:             getEnv("OWNER_OPEN_ID", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		SessionCookieName:       getEnv("SESSION_COOKIE_NAME", "app_session_id"),
		SessionTTL:              getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		AuthzURL:                getEnv("AUTHZ_URL", ""),
		AuthzClientID:           getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzRedirectURL:        getEnv("AUTHZ_REDIRECT_URL", ""),
		AdminPlaintextPasswords: getEnvAsBool("ADMIN_PLAINTEXT_PASSWORDS", false),
		LoginRatePerMinute:      getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
		LoginBurst:              getEnvAsInt("LOGIN_BURST", 5),
	}

	if cfg.DatabaseURL != "" {
		dbType, err := dbTypeFromURL(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		cfg.DBType = dbType
	}

	// Authorizer is all or nothing
	if (cfg.AuthzURL == "") != (cfg.AuthzClientID == "") {
		return nil, fmt.Errorf("AUTHZ_URL and AUTHZ_CLIENT_ID must be set together")
	}
	if cfg.AuthzRedirectURL == "" {
		cfg.AuthzRedirectURL = "http://localhost:" + cfg.Port
	}
	if cfg.LoginRatePerMinute <= 0 || cfg.LoginBurst <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive")
	}

	return cfg, nil
}

// DatabaseConfigured reports whether enough is set to open a store connection
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" || c.DBDatabase != ""
}

// AuthorizerEnabled reports whether the Authorizer identity provider is configured
func (c *Config) AuthorizerEnabled() bool {
	return c.AuthzURL != "" && c.AuthzClientID != ""
}

// MySQLDSN converts a mysql:// URL into a go-sql-driver DSN.
// The ssl query parameter selects TLS the way hosted MySQL URLs express it.
func MySQLDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme != "mysql" && u.Scheme != "mariadb" {
		return "", fmt.Errorf("not a mysql url: %s", u.Scheme)
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = u.Host
	if u.Port() == "" {
		mc.Addr = u.Hostname() + ":3306"
	}
	mc.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
	}
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}

	if ssl := u.Query().Get("ssl"); ssl != "" {
		mc.TLSConfig = "true"
		if strings.Contains(ssl, `"rejectUnauthorized":false`) {
			mc.TLSConfig = "skip-verify"
		}
	}

	return mc.FormatDSN(), nil
}

func dbTypeFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "mysql", "mariadb":
		return "mysql", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "sqlserver":
		return "sqlserver", nil
	}
	return "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", u.Scheme)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
