package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"taskscore/internal/util"
)

// Store backends selectable with TASKS_STORE.
const (
	StoreCSV      = "csv"
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	LogLevel        string        `yaml:"log_level" env:"TASKS_LOG_LEVEL" env-default:"INFO"`
	Addr            string        `yaml:"addr" env:"TASKS_ADDR" env-default:":8080"`
	Store           string        `yaml:"store" env:"TASKS_STORE" env-default:"csv"`
	DataDir         string        `yaml:"data_dir" env:"TASKS_DATA_DIR"`
	DSN             string        `yaml:"dsn" env:"TASKS_DSN"`
	StaticDir       string        `yaml:"static_dir" env:"TASKS_STATIC_DIR" env-default:"wwwroot"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"TASKS_CORS_ORIGINS" env-separator:"," env-default:"*"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TASKS_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads configuration from the yaml file at path with environment
// overrides. A missing file (or an empty path) means environment only.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.DataDir == "" {
		c.DataDir = util.ExecutableDir()
	}
	if c.Store == StoreSQLite && c.DSN == "" {
		c.DSN = filepath.Join(c.DataDir, "tasks.db")
	}
}

// Validate reports configuration that cannot start a server.
func (c Config) Validate() error {
	switch c.Store {
	case StoreCSV, StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DSN == "" {
			return errors.New("TASKS_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
