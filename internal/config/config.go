package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DvcDirName is the repository-local directory holding DVC metadata:
// config, lock file and the reproduction journal.
const DvcDirName = ".dvc"

// Config represents the complete DVC configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	DataDir  string `json:"dataDir" mapstructure:"dataDir"`
	StateDir string `json:"stateDir" mapstructure:"stateDir"`
	CacheDir string `json:"cacheDir" mapstructure:"cacheDir"`

	Git     GitConfig     `json:"git" mapstructure:"git"`
	Journal JournalConfig `json:"journal" mapstructure:"journal"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// GitConfig contains version-control collaborator configuration
type GitConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// LockTimeoutSeconds bounds the wait for the repository lock.
	LockTimeoutSeconds int `json:"lockTimeoutSeconds" mapstructure:"lockTimeoutSeconds"`
}

// JournalConfig contains reproduction journal configuration
type JournalConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		DataDir:  "data",
		StateDir: "state",
		CacheDir: "cache",
		Git: GitConfig{
			Enabled:            true,
			LockTimeoutSeconds: 5,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .dvc/config.json, falling back to
// defaults when no config file exists.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("dataDir", def.DataDir)
	v.SetDefault("stateDir", def.StateDir)
	v.SetDefault("cacheDir", def.CacheDir)
	v.SetDefault("git.enabled", def.Git.Enabled)
	v.SetDefault("git.lockTimeoutSeconds", def.Git.LockTimeoutSeconds)
	v.SetDefault("journal.enabled", def.Journal.Enabled)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, DvcDirName))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .dvc/config.json
func (c *Config) Save(repoRoot string) error {
	dvcDir := filepath.Join(repoRoot, DvcDirName)
	if err := os.MkdirAll(dvcDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dvcDir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.DataDir == "" {
		return &ConfigError{Field: "dataDir", Message: "data directory must not be empty"}
	}
	if c.StateDir == "" {
		return &ConfigError{Field: "stateDir", Message: "state directory must not be empty"}
	}
	if c.CacheDir == "" {
		return &ConfigError{Field: "cacheDir", Message: "cache directory must not be empty"}
	}
	if c.Git.LockTimeoutSeconds <= 0 {
		return &ConfigError{Field: "git.lockTimeoutSeconds", Message: "lock timeout must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
