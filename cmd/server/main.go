package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/handlers"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/metrics"
	"github.com/virendra-maker/urmaxx-clone/internal/middleware"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/session"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"

	_ "github.com/virendra-maker/urmaxx-clone/docs/api" // Swagger docs
)

// @title APK Catalog API
// @version 1.0.0
// @description Catalog of downloadable applications with an admin back office
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/virendra-maker/urmaxx-clone

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name app_session_id

func main() {
	envFile := flag.String("f", "", "Path to a .env file to load")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatal().Err(err).Str("file", *envFile).Msg("Failed to load env file")
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LogLevel)

	// Connect to database on first use. No configuration runs degraded; an unreachable
	// database degrades per call and is retried.
	dbHandle, err := database.ConnectHandle(cfg, cfg.DBAutoMigrate)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Warn().Msg("No database configured, serving in degraded mode")
	case err != nil:
		log.Fatal().Err(err).Msg("Invalid database configuration")
	default:
		if _, err := dbHandle.Get(); err != nil {
			log.Error().Err(err).Dur("retry", cfg.DBRetryInterval).
				Msg("Database unreachable at startup, retrying on demand")
		}
	}
	defer dbHandle.Close()

	store := services.NewStoreWithHandle(dbHandle, services.WithOwnerOpenID(cfg.OwnerOpenID))
	procs := procedures.New(store, procedures.WithPlaintextPasswords(cfg.AdminPlaintextPasswords))
	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	if !sessions.Enabled() {
		log.Warn().Msg("JWT_SECRET is not set, admin sessions are disabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New(metrics.Namespace)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	identity := middleware.IdentityConfig{
		Sessions:   sessions,
		CookieName: cfg.SessionCookieName,
		Users:      procs,
	}
	// The client is created on the first request carrying an Authorizer cookie
	if authz := services.NewAuthorizer(cfg); authz != nil {
		identity.Authorizer = authz
		log.Info().Str("url", cfg.AuthzURL).Msg("Authorizer sessions enabled")
	}
	api.Use(middleware.Identity(identity))

	healthHandler := &handlers.HealthHandler{Config: cfg, DB: dbHandle}
	api.Get("/health", healthHandler.Health)

	procHandler := &handlers.ProcedureHandler{
		Procs:      procs,
		Sessions:   sessions,
		CookieName: cfg.SessionCookieName,
	}
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)
	procHandler.Routes(api, loginLimiter.Handler())

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Info().Str("port", port).Bool("database", dbHandle != nil).Msg("Starting server")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	log.Info().Msg("Server stopped")
}
