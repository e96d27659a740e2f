// Package repo implements the persistence layer on top of GORM. Functions
// are thin: they take a context and a *gorm.DB (which may be a transaction)
// and only compose queries. Business rules live in the services package.
//
// Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound); every other
// database error is returned as-is.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Options describes how to reach the database at startup.
type Options struct {
	Driver       string // sqlite|postgres
	DSN          string // file path for sqlite, URL for postgres
	Retries      int    // total attempts, at least 1
	Backoff      time.Duration
	MaxOpenConns int
	Tracing      bool
}

// Open connects to the configured database, retrying with exponential
// backoff. It is meant to run once at startup; the returned handle is
// shared by every request.
func Open(ctx context.Context, opt Options) (*gorm.DB, error) {
	attempts := opt.Retries
	if attempts < 1 {
		attempts = 1
	}
	wait := opt.Backoff

	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := openOnce(opt)
		if err == nil {
			if opt.Tracing {
				if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
					return nil, fmt.Errorf("gorm tracing: %w", err)
				}
			}
			return db, nil
		}
		lastErr = err
		if i == attempts {
			break
		}
		log.Warn().Err(err).Str("driver", opt.Driver).Int("attempt", i).Dur("retry_in", wait).Msg("db connect failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("connect %s after %d attempts: %w", opt.Driver, attempts, lastErr)
}

func openOnce(opt Options) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch opt.Driver {
	case "postgres":
		db, err = OpenPostgres(opt.DSN)
	case "sqlite", "":
		db, err = OpenSQLite(opt.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opt.Driver)
	}
	if err != nil {
		return nil, err
	}
	if opt.MaxOpenConns > 0 {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(opt.MaxOpenConns)
		}
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)").
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// OpenPostgres opens a Postgres pool and verifies it with a ping.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Profile{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Feedback{},
		&domain.LearningProgress{},
		&domain.Idempotency{},
	)
}
