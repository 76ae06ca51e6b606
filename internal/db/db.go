package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/users333/faculty-registry/internal/config"
)

// Database bundles a connection pool with the placeholder style its driver expects
type Database struct {
	DB          *sql.DB
	Driver      string
	Placeholder squirrel.PlaceholderFormat
}

// Open connects to the SQL backend selected in cfg
func Open(cfg *config.Config, logger zerolog.Logger) (*Database, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path := cfg.Storage.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Storage.DataDir, path)
		}
		return OpenSQLite(path, logger)
	case config.BackendPostgres:
		return OpenPostgres(cfg, logger)
	default:
		return nil, fmt.Errorf("backend %q is not a SQL backend", cfg.Storage.Backend)
	}
}

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(path string, logger zerolog.Logger) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer, one reader: the same process
	sqlDB.SetMaxOpenConns(1)

	if err := ping(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	logger.Debug().Str("path", path).Msg("SQLite database opened")
	return &Database{DB: sqlDB, Driver: "sqlite", Placeholder: squirrel.Question}, nil
}

// OpenPostgres opens a PostgreSQL pool through the pgx stdlib driver
func OpenPostgres(cfg *config.Config, logger zerolog.Logger) (*Database, error) {
	sqlDB, err := sql.Open("pgx", cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	maxLifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
	}
	sqlDB.SetConnMaxLifetime(maxLifetime)

	if err := ping(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	logger.Debug().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("PostgreSQL database opened")
	return &Database{DB: sqlDB, Driver: "pgx", Placeholder: squirrel.Dollar}, nil
}

// Close closes the pool
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs fn within a transaction, rolling back on error or panic
func WithTransaction(ctx context.Context, sqlDB *sql.DB, fn TransactionFn) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback error: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func ping(sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
