package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appMigrations "github.com/users333/faculty-registry/internal/app/migrations"
	appRepos "github.com/users333/faculty-registry/internal/app/repositories"
	appServices "github.com/users333/faculty-registry/internal/app/services"
	"github.com/users333/faculty-registry/internal/config"
	"github.com/users333/faculty-registry/internal/db"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
	"github.com/users333/faculty-registry/internal/pkg/filestorage"
	"github.com/users333/faculty-registry/internal/pkg/logger"
	"github.com/users333/faculty-registry/internal/pkg/oplog"
)

// Overrides are command-line values that win over the config file and environment
type Overrides struct {
	DataDir string
	Backend string
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config      *config.Config
	Logger      zerolog.Logger
	FileStorage *filestorage.LocalStorage
	Store       appRepos.Store
	OpLog       oplog.Sink
	Registry    *appServices.Registry
	LoadReport  appServices.LoadReport
}

// Close releases the registry, which owns the operation log and the store.
func (d *Dependencies) Close() error {
	return d.Registry.Close()
}

// LoadConfigAndSetupLogger loads configuration, applies overrides and initializes the logger.
func LoadConfigAndSetupLogger(configPath string, overrides Overrides, logOutput io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	if overrides.DataDir != "" {
		cfg.Storage.DataDir = overrides.DataDir
	}
	if overrides.Backend != "" {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(overrides.Backend))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return nil, zerolog.Logger{}, fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
		Output: logOutput,
	})
	lgr.Debug().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured backend. SQL backends are migrated before use.
func SetupStore(ctx context.Context, cfg *config.Config, storage *filestorage.LocalStorage, lgr zerolog.Logger) (appRepos.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendText:
		return appRepos.NewTextStore(storage, cfg.Storage.FacultiesFile, cfg.Storage.StudentsFile, lgr), nil
	case config.BackendSQLite, config.BackendPostgres:
		return setupDatabase(ctx, cfg, lgr)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownBackend, cfg.Storage.Backend)
	}
}

func setupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, error) {
	lgr.Info().Str("backend", cfg.Storage.Backend).Msg("Establishing database connection...")
	database, err := db.Open(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database, lgr)
	if err := migrator.Migrate(migrateCtx, appMigrations.FS); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		_ = database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	versions, err := migrator.Applied(migrateCtx)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	lgr.Info().Strs("versions", versions).Msg("Database migrations successfully applied.")

	return appRepos.NewSQLStore(database, lgr), nil
}

// BuildDependencies wires storage, the operation log and the registry, then loads the registry.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.DataDir, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Store, err = SetupStore(ctx, cfg, deps.FileStorage, lgr)
	if err != nil {
		return nil, err
	}

	sink, err := oplog.Open(deps.FileStorage, cfg.OpLog.Path)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to open operation log")
		return nil, errors.Join(err, deps.Store.Close())
	}
	deps.OpLog = sink
	lgr.Debug().Str("path", sink.Path()).Msg("Operation log opened")

	deps.Registry = appServices.NewRegistry(deps.Store, deps.OpLog, lgr, appServices.Options{
		LegacyAppendRoster: cfg.Storage.LegacyAppendRoster,
	})

	deps.LoadReport, err = deps.Registry.Load(ctx)
	if err != nil {
		return nil, errors.Join(err, deps.Registry.Close())
	}
	for _, w := range deps.LoadReport.Warnings {
		lgr.Warn().Str("record", w.String()).Msg("Skipped stored record")
	}

	return deps, nil
}
