// Package config holds the msidump configuration file format and the logger
// setup derived from it.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gear6io/msidump/pkg/errors"
)

// DefaultConfigFile is looked up next to the working directory when --config
// is not given
const DefaultConfigFile = "msidump.yml"

// Config represents the tool configuration
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`    // "json" or "console"
	FilePath string `yaml:"file_path"` // optional log file
	Console  bool   `yaml:"console"`   // whether to log to stderr
}

// OutputConfig represents where extracted artifacts are written
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Console: true,
		},
		Output: OutputConfig{
			Directory: "msidump-out",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("path", filename)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("path", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return errors.New(ErrOutputDirRequired, "output directory must not be empty", nil)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
