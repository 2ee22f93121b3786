package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration holds the settings of the tool itself.
type ApplicationConfiguration struct {
	LogLevel   string            `yaml:"LogLevel"`
	LogPath    string            `yaml:"LogPath"`
	Pprof      BasicService      `yaml:"Pprof"`
	Prometheus BasicService      `yaml:"Prometheus"`
	Trie       TrieConfiguration `yaml:"Trie"`
}

// TrieConfiguration holds trie engine settings.
type TrieConfiguration struct {
	// History is the number of recent trie versions available for
	// historical reads.
	History int `yaml:"History"`
}

// Validate checks ApplicationConfiguration for internal consistency.
func (a *ApplicationConfiguration) Validate() error {
	if a.Trie.History <= 0 {
		return fmt.Errorf("Trie.History must be positive, got %d", a.Trie.History)
	}
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("LogLevel: %w", err)
		}
	}
	for _, s := range []struct {
		name string
		svc  BasicService
	}{{"Pprof", a.Pprof}, {"Prometheus", a.Prometheus}} {
		if s.svc.Enabled && len(s.svc.Addresses) == 0 {
			return fmt.Errorf("%s: %w", s.name, errNoAddresses)
		}
	}
	return nil
}

var errNoAddresses = errors.New("service is enabled, but no addresses are configured")
