package config

// CLIConfig is the configuration for ghosttape-cli.
type CLIConfig struct {
	// DefaultOutput is the output format used when --output is not
	// given (table, json, yaml).
	DefaultOutput string `yaml:"default_output"`

	// GhostDir is the directory scanned by commands that take an
	// optional directory argument.
	GhostDir string `yaml:"ghost_dir"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultOutput: "table",
	}
}
