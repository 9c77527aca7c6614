package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// DB wraps a gorm handle on the SQLite file.
type DB struct {
	*gorm.DB
}

// NewConnection opens the SQLite database, creating its directory if needed.
// SQLite serializes writers, so the pool stays small and relies on the busy timeout.
func NewConnection(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if err := ensureDir(cfg.Path); err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(
			zap.NewStdLog(logger.Named("gorm")),
			gormlogger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: gormDB}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open migrates and then connects.
func Open(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if err := ensureDir(cfg.Path); err != nil {
		return nil, err
	}
	if err := RunMigrations(cfg.DSN(), logger.Named("migrations")); err != nil {
		return nil, err
	}
	return NewConnection(cfg, logger)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
