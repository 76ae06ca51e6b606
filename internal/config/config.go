package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendText     = "text"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "configs/config.yaml"

// Config structure represents the application configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	OpLog    OpLogConfig    `yaml:"oplog"`
	Logging  LoggingConfig  `yaml:"logging"`
	Seed     SeedConfig     `yaml:"seed"`
}

// StorageConfig selects and locates the persistence backend
type StorageConfig struct {
	Backend            string `yaml:"backend" env:"STORAGE_BACKEND"`
	DataDir            string `yaml:"data_dir" env:"STORAGE_DATA_DIR"`
	FacultiesFile      string `yaml:"faculties_file" env:"STORAGE_FACULTIES_FILE"`
	StudentsFile       string `yaml:"students_file" env:"STORAGE_STUDENTS_FILE"`
	LegacyAppendRoster bool   `yaml:"legacy_append_roster" env:"STORAGE_LEGACY_APPEND_ROSTER"`
	SQLitePath         string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH"`
}

// DatabaseConfig is only read by the postgres backend
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// OpLogConfig locates the operation log
type OpLogConfig struct {
	Path string `yaml:"path" env:"OPLOG_PATH"`
}

// LoggingConfig controls diagnostic logging on stderr
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// SeedConfig lists the faculties created by the seed command
type SeedConfig struct {
	Faculties []SeedFaculty `yaml:"faculties"`
}

// SeedFaculty is one default faculty
type SeedFaculty struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
	Domain       string `yaml:"domain"`
}

// LoadConfig loads configuration from a file and environment variables and validates it.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config, err := ReadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ReadConfig is LoadConfig without validation, for callers that still
// override fields before calling Validate.
func ReadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Storage defaults keep the legacy file names
	config.Storage.Backend = BackendText
	config.Storage.DataDir = "."
	config.Storage.FacultiesFile = "facultati.txt"
	config.Storage.StudentsFile = "studenti.txt"
	config.Storage.SQLitePath = "registry.db"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "registry"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 4
	config.Database.MaxIdleConns = 1
	config.Database.ConnMaxLifetime = "1h"

	config.OpLog.Path = "log_operatii.txt"

	// Logging defaults
	config.Logging.Level = "warn"
	config.Logging.Format = "text"
}

// loadFromEnv overrides configuration with environment variables.
// Unset variables leave the current value untouched.
func loadFromEnv(config *Config) error {
	sections := []any{&config.Storage, &config.Database, &config.OpLog, &config.Logging}
	for _, section := range sections {
		if err := env.Parse(section); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// Validate ensures that the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendText:
		if strings.TrimSpace(c.Storage.FacultiesFile) == "" || strings.TrimSpace(c.Storage.StudentsFile) == "" {
			return fmt.Errorf("faculties and students file names are required")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if strings.TrimSpace(c.OpLog.Path) == "" {
		return fmt.Errorf("operation log path is required")
	}

	for i, f := range c.Seed.Faculties {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("seed faculty %d has no name", i)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
