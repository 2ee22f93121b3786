package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultHistory is the default number of trie versions kept in memory.
	DefaultHistory = 64
	// DefaultLogLevel is the log level used if nothing is configured.
	DefaultLogLevel = "info"
)

// Version is the version of the tool, set at build time.
var Version string

// Config is the top level struct representing the config for the tool.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			LogLevel: DefaultLogLevel,
			Trie: TrieConfiguration{
				History: DefaultHistory,
			},
		},
	}
}

// Load attempts to load the config from the given path. An empty path
// means the default configuration.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads config from the provided path. Unknown fields are
// treated as an error.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
