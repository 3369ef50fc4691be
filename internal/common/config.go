package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Telemetry   TelemetryConfig `toml:"telemetry"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// RateLimit is the sustained request rate per client for /api/parse;
	// RateBurst is the burst allowance.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// PipelineConfig contains configuration for pipeline behavior
type PipelineConfig struct {
	// StageTimeout bounds each stage per title; zero disables the deadline.
	// On timeout the stage returns an empty extraction and the pipeline
	// continues.
	StageTimeout time.Duration `toml:"stage_timeout"`
	// MaxTitleLength rejects pathological inputs before stage B runs.
	MaxTitleLength int `toml:"max_title_length"`
}

// TelemetryConfig contains configuration for pattern success/failure counters
type TelemetryConfig struct {
	Enabled       bool   `toml:"enabled"`
	FlushSchedule string `toml:"flush_schedule"` // Cron schedule for counter flushes in serve mode
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in titulus.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:      8080,
			Host:      "localhost",
			RateLimit: 50,
			RateBurst: 100,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/patterns",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Pipeline: PipelineConfig{
			StageTimeout:   0, // Disabled by default; stages are bounded by title length
			MaxTitleLength: 2048,
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			FlushSchedule: "0 */5 * * * *", // Every 5 minutes (cron format with seconds)
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TITULUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("TITULUS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TITULUS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// PATTERN_STORE_URI is the documented external variable locating the
	// pattern store; TITULUS_BADGER_PATH is the internal equivalent.
	if uri := os.Getenv("PATTERN_STORE_URI"); uri != "" {
		config.Storage.Badger.Path = strings.TrimPrefix(uri, "badger://")
	}
	if badgerPath := os.Getenv("TITULUS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("TITULUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("TITULUS_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("TITULUS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if timeout := os.Getenv("TITULUS_STAGE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Pipeline.StageTimeout = d
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
