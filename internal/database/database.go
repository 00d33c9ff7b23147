// Package database opens gorm connections for the leaderboard and progress
// stores.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	memoryDSN = "file::memory:?cache=shared"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA busy_timeout = 5000;",
	"PRAGMA foreign_keys = ON;",
}

// Open connects using the named driver. For sqlite an empty dsn means a
// shared in-memory database.
func Open(ctx context.Context, driver string, dsn string) (*gorm.DB, error) {
	switch driver {
	case DriverSqlite:
		return OpenSqlite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", driver)
	}
}

// OpenSqlite opens a sqlite database at path.
func OpenSqlite(ctx context.Context, path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// sqlite allows a single writer; serialize in the pool instead of
	// surfacing SQLITE_BUSY to callers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql interface: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if path == "" {
		slog.InfoContext(ctx, "using in-memory sqlite database")
	} else {
		slog.InfoContext(ctx, "using sqlite database", "path", path)
	}
	return db, nil
}

// OpenPostgres connects to postgres and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql interface: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	slog.InfoContext(ctx, "connected to postgres database")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
