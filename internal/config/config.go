package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server is the remote media server the client talks to
	Server struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"server"`

	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Playback holds the session engine settings
	Playback struct {
		// SyncInterval is the fallback position-sync interval used when the
		// server does not provide one.
		SyncInterval time.Duration `yaml:"sync_interval"`
		// PositionDebounce is the minimum position delta that triggers a
		// remote write.
		PositionDebounce float64 `yaml:"position_debounce"`
	} `yaml:"playback"`

	// Cast configuration
	Cast struct {
		DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
	} `yaml:"cast"`

	// Status is the local status/metrics HTTP server
	Status struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"status"`

	// File paths
	Paths struct {
		DeviceDB  string `yaml:"device_db"`
		StateFile string `yaml:"state_file"`
	} `yaml:"paths"`
}

// Default returns a Config populated with default values
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Playback.SyncInterval = 15 * time.Second
	cfg.Playback.PositionDebounce = 1.0
	cfg.Cast.DiscoveryTimeout = 10 * time.Second
	cfg.Status.Port = "8080"
	cfg.Status.ShutdownTimeout = 10 * time.Second
	cfg.Paths.DeviceDB = "./data/devices.db"
	cfg.Paths.StateFile = "./data/playback_state.json"
	return cfg
}

// Load loads configuration from a file (if specified) and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		absConfigFile, err := filepath.Abs(configFile)
		if err == nil {
			configFile = absConfigFile
		}

		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Playback.SyncInterval <= 0 {
		return fmt.Errorf("playback sync interval must be positive, got %s", c.Playback.SyncInterval)
	}
	if c.Playback.PositionDebounce < 0 {
		return fmt.Errorf("position debounce must not be negative, got %f", c.Playback.PositionDebounce)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if url := getEnv("LIBRARIAN_SERVER_URL", ""); url != "" {
		cfg.Server.URL = url
	}
	if token := getEnv("LIBRARIAN_SERVER_TOKEN", ""); token != "" {
		cfg.Server.Token = token
	}
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		cfg.Logging.Level = level
	}
	if format := getEnv("LOG_FORMAT", ""); format != "" {
		cfg.Logging.Format = format
	}
	if interval := getDurationFromEnv("SYNC_INTERVAL", 0); interval > 0 {
		cfg.Playback.SyncInterval = interval
	}
	if debounce := getFloat64FromEnv("POSITION_DEBOUNCE", 0); debounce > 0 {
		cfg.Playback.PositionDebounce = debounce
	}
	if timeout := getDurationFromEnv("CAST_DISCOVERY_TIMEOUT", 0); timeout > 0 {
		cfg.Cast.DiscoveryTimeout = timeout
	}
	if port := getEnv("STATUS_PORT", ""); port != "" {
		cfg.Status.Port = port
	}
	if timeout := getDurationFromEnv("SHUTDOWN_TIMEOUT", 0); timeout > 0 {
		cfg.Status.ShutdownTimeout = timeout
	}
	if dbPath := getEnv("DEVICE_DB_PATH", ""); dbPath != "" {
		cfg.Paths.DeviceDB = dbPath
	}
	if stateFile := getEnv("STATE_FILE", ""); stateFile != "" {
		cfg.Paths.StateFile = stateFile
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getDurationFromEnv(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}

func getFloat64FromEnv(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return fallback
}
