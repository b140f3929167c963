// connection.go
//
// An APK catalog and admin back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of urmaxx-clone.
// urmaxx-clone is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// urmaxx-clone is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with urmaxx-clone.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotConfigured is returned by Connect when no database is configured.
// Callers treat it as the degraded mode, not a startup failure.
var ErrNotConfigured = errors.New("database not configured")

// Dialector selects the GORM dialector for the configured DB_TYPE
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	if !cfg.DatabaseConfigured() {
		return nil, ErrNotConfigured
	}

	if cfg.DatabaseURL != "" {
		switch cfg.DBType {
		case "mysql":
			dsn, err := config.MySQLDSN(cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			return mysql.Open(dsn), nil
		case "postgres":
			return postgres.Open(cfg.DatabaseURL), nil
		case "sqlserver":
			return sqlserver.Open(cfg.DatabaseURL), nil
		}
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		return sqlite.Open(cfg.DBDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return Open(dialector, cfg.DBConnectionLimit)
}

// Open opens the dialector with the service's GORM settings and pool size
func Open(dialector gorm.Dialector, connectionLimit int) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(logging.Component("gorm")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if connectionLimit > 0 {
		sqlDB.SetMaxOpenConns(connectionLimit)
		sqlDB.SetMaxIdleConns(max(connectionLimit/2, 1))
	}

	log := logging.Component("database")
	log.Info().Str("dialect", dialector.Name()).Msg("connected to database")

	return db, nil
}

// gormWriter adapts zerolog to GORM's logger.Writer
type gormWriter struct {
	event func() *zerolog.Event
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.event().Msgf(format, args...)
}

// NewLogger routes GORM's SQL log through zerolog. With the global level at debug every
// statement is logged at debug; otherwise only slow queries and errors, at warn.
func NewLogger(zl zerolog.Logger) logger.Interface {
	level, event := logger.Warn, zl.Warn
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level, event = logger.Info, zl.Debug
	}
	return logger.New(gormWriter{event: event}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
