package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/users333/faculty-registry/internal/db"
)

//go:embed sql/*.sql
var embedded embed.FS

// FS holds the schema files shipped with the binary
var FS, _ = fs.Sub(embedded, "sql")

// Migrator manages database migrations
type Migrator struct {
	db     *sql.DB
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(database *db.Database, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     database.DB,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(database.Placeholder),
		logger: logger,
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TEXT NOT NULL
	);`

	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := m.sb.Select("COUNT(*)").
		From("schema_migrations").
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build migration status query: %w", err)
	}

	var count int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// Applied lists recorded migration versions in order
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	query, args, err := m.sb.Select("version").From("schema_migrations").OrderBy("version").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build applied migrations query: %w", err)
	}
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Migrate applies every .sql file of migrationFS in lexical order, each at most once
func (m *Migrator) Migrate(ctx context.Context, migrationFS fs.FS) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, file := range sqlFiles {
		if err := m.migrateFile(ctx, migrationFS, file); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) migrateFile(ctx context.Context, migrationFS fs.FS, file string) error {
	// "001_init.sql" => "001"
	version := strings.Split(path.Base(file), "_")[0]

	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return err
	}
	if applied {
		m.logger.Debug().Str("file", file).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(migrationFS, file)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	err = db.WithTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("error occurred during SQL migration execution: %w", err)
		}

		insert, args, err := m.sb.Insert("schema_migrations").
			Columns("version", "applied_at").
			Values(version, time.Now().UTC().Format(time.RFC3339)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build migration record: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migration %s: %w", file, err)
	}

	m.logger.Info().Str("file", file).Msg("Migration applied")
	return nil
}
