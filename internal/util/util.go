// internal/util/util.go
package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/SlavikCA/teamplay/internal/logger"
)

// Config is the server configuration. Values come from a JSON file and can be
// overridden by PORT, NATS_URL and LOG_LEVEL.
type Config struct {
	Port             int              `json:"port"`
	NatsURL          string           `json:"nats_url"` // empty disables the NATS event feed
	KeepaliveSeconds int              `json:"keepalive_seconds"`
	Log              logger.LogConfig `json:"log"`
}

func DefaultConfig() Config {
	return Config{
		Port:             7000,
		KeepaliveSeconds: 30,
		Log:              logger.DefaultLogConfig(),
	}
}

// Addr is the listen address on all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func (c Config) KeepaliveInterval() time.Duration {
	return time.Duration(c.KeepaliveSeconds) * time.Second
}

// LoadConfig loads the configuration from a JSON file, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(filePath string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filePath)
	if err != nil && !os.IsNotExist(err) {
		return DefaultConfig(), err
	}
	if err == nil {
		defer file.Close()
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
	}

	if err := applyEnv(&config); err != nil {
		return DefaultConfig(), err
	}
	if err := config.validate(); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if value := os.Getenv("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", value, err)
		}
		config.Port = port
	}
	if value := os.Getenv("NATS_URL"); value != "" {
		config.NatsURL = value
	}
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		config.Log.Level = value
	}
	return nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.KeepaliveSeconds <= 0 {
		return fmt.Errorf("keepalive_seconds must be positive, got %d", c.KeepaliveSeconds)
	}
	return nil
}
