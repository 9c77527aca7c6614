package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/migrations"
)

// LatestVersion is the highest embedded migration version.
const LatestVersion uint = 3

// RunMigrations applies pending embedded migrations to the database at dsn.
// It is idempotent and safe to call on every start.
//
// Databases created before versioned migrations existed have no
// schema_migrations row. Their columns are probed once to pick a baseline
// version, the baseline is forced, and later migrations then apply normally.
//
// migrate closes the database it is given, so this opens its own handle.
func RunMigrations(dsn string, logger *zap.Logger) error {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	if _, _, err := m.Version(); errors.Is(err, migrate.ErrNilVersion) {
		baseline, err := legacyBaseline(db)
		if err != nil {
			return fmt.Errorf("failed to probe legacy schema: %w", err)
		}
		if baseline > 0 {
			logger.Info("Adopting unversioned database", zap.Uint("baseline_version", baseline))
			if err := m.Force(int(baseline)); err != nil {
				return fmt.Errorf("failed to force baseline version %d: %w", baseline, err)
			}
		}
	} else if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", newVersion))
	return nil
}

// legacyBaseline returns the migration version an unversioned database already
// satisfies, or 0 for an empty database. Only contiguous versions count.
func legacyBaseline(db *sql.DB) (uint, error) {
	exists, err := tableExists(db, "conversations")
	if err != nil || !exists {
		return 0, err
	}

	hasComment, err := columnExists(db, "conversations", "user_comment")
	if err != nil {
		return 0, err
	}
	if !hasComment {
		return 1, nil
	}

	hasScores, err := columnExists(db, "feedback", "score_accuracy")
	if err != nil {
		return 0, err
	}
	if !hasScores {
		return 2, nil
	}
	return 3, nil
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// columnExists reads PRAGMA table_info. table must be a trusted identifier.
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
