// Package indexd wires together the ghost index daemon.
package indexd

import (
	"fmt"
	"time"
)

// Config holds the daemon configuration.
type Config struct {
	// GhostDir is the directory holding ghost trace files.
	GhostDir string `koanf:"ghost_dir"`
	// DataDir is the Badger data directory for the index.
	DataDir string `koanf:"data_dir"`
	// ScanInterval is the periodic full rescan period. Zero disables
	// periodic rescans; the watcher still applies live updates.
	ScanInterval time.Duration `koanf:"scan_interval"`

	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Address string `koanf:"address"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		ScanInterval: 5 * time.Minute,
		Metrics: MetricsConfig{
			Enabled: true,
			Address: "127.0.0.1:9820",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Verify checks the configuration for fatal mistakes.
func Verify(cfg *Config) error {
	if cfg.GhostDir == "" {
		return fmt.Errorf("ghost_dir is required")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	if cfg.ScanInterval < 0 {
		return fmt.Errorf("scan_interval must not be negative")
	}
	return nil
}
