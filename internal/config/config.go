package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/feedlog/internal/constants"
)

// KeyringDatabase in the database field means "read the connection string
// from the OS keyring".
const KeyringDatabase = "keyring"

// Config holds everything feedlog needs to open its store and serve.
type Config struct {
	Database string        `yaml:"database"`
	Server   ServerConfig  `yaml:"server"`
	Logging  LoggingConfig `yaml:"logging"`
	Feeding  FeedingConfig `yaml:"feeding"`

	// path is the file the config was read from, empty for defaults only.
	path string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
}

// FeedingConfig holds the feeding rules.
type FeedingConfig struct {
	Timezone          string `yaml:"timezone"`
	DefaultAmount     int    `yaml:"defaultAmount"`
	DailyLimit        int    `yaml:"dailyLimit"`
	UnderfedThreshold int    `yaml:"underfedThreshold"`
	DayStartHour      int    `yaml:"dayStartHour"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(constants.DefaultConfigDir, "config.yaml")
}

// Load reads a .env file if present, then the YAML config, then applies
// FEEDLOG_* environment overrides. An explicit path that does not exist is an
// error; a missing default file is not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := true
	if path == "" {
		path = os.Getenv("FEEDLOG_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}
	path = ExpandPath(path)

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config file %s not found: %w", path, err)
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Database = ExpandPath(cfg.Database)
	cfg.Logging.Dir = ExpandPath(cfg.Logging.Dir)
	return &cfg, nil
}

// Default returns the built-in configuration with paths expanded.
func Default() *Config {
	cfg := defaultConfig()
	cfg.Database = ExpandPath(cfg.Database)
	cfg.Logging.Dir = ExpandPath(cfg.Logging.Dir)
	return &cfg
}

func defaultConfig() Config {
	return Config{
		Database: constants.DefaultDBPath,
		Server: ServerConfig{
			Address:         constants.DefaultServerAddress,
			GracefulTimeout: constants.DefaultGracefulTimeout,
			CORSOrigins:     []string{constants.DefaultCORSOrigin},
		},
		Logging: LoggingConfig{
			Dir: filepath.Join(constants.DefaultConfigDir, "logs"),
		},
		Feeding: FeedingConfig{
			Timezone:          constants.DefaultTimezone,
			DefaultAmount:     constants.DefaultAmount,
			DailyLimit:        constants.DefaultDailyLimit,
			UnderfedThreshold: constants.UnderfedThreshold,
			DayStartHour:      constants.DayStartHour,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEEDLOG_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("FEEDLOG_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("FEEDLOG_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("FEEDLOG_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := os.Getenv("FEEDLOG_DEBUG"); v != "" {
		cfg.Logging.Debug = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FEEDLOG_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("FEEDLOG_TIMEZONE"); v != "" {
		cfg.Feeding.Timezone = v
	}
	if v := os.Getenv("FEEDLOG_DEFAULT_AMOUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feeding.DefaultAmount = n
		}
	}
	if v := os.Getenv("FEEDLOG_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feeding.DailyLimit = n
		}
	}
	if v := os.Getenv("FEEDLOG_UNDERFED_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feeding.UnderfedThreshold = n
		}
	}
	if v := os.Getenv("FEEDLOG_DAY_START_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feeding.DayStartHour = n
		}
	}
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if c.Feeding.DayStartHour < 0 || c.Feeding.DayStartHour > 23 {
		return fmt.Errorf("feeding.dayStartHour must be between 0 and 23, got %d", c.Feeding.DayStartHour)
	}
	if c.Feeding.DefaultAmount <= 0 {
		return fmt.Errorf("feeding.defaultAmount must be positive, got %d", c.Feeding.DefaultAmount)
	}
	if c.Feeding.DailyLimit <= 0 {
		return fmt.Errorf("feeding.dailyLimit must be positive, got %d", c.Feeding.DailyLimit)
	}
	if c.Feeding.UnderfedThreshold < 0 {
		return fmt.Errorf("feeding.underfedThreshold must not be negative, got %d", c.Feeding.UnderfedThreshold)
	}
	if c.Server.GracefulTimeout <= 0 {
		return fmt.Errorf("server.gracefulTimeout must be positive, got %s", c.Server.GracefulTimeout)
	}
	return nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// UsesKeyring reports whether the database DSN lives in the OS keyring.
func (c *Config) UsesKeyring() bool {
	return strings.EqualFold(strings.TrimSpace(c.Database), KeyringDatabase)
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
