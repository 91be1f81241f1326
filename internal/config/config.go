package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NewlineStyle selects the line ending written for newly created files.
type NewlineStyle string

const (
	NewlineLF   NewlineStyle = "lf"
	NewlineCRLF NewlineStyle = "crlf"
)

// SourceMode selects where patch text is read from when no file is given.
type SourceMode string

const (
	// SourceAuto reads stdin when it is piped, otherwise the clipboard.
	SourceAuto SourceMode = "auto"

	SourceClipboard SourceMode = "clipboard"
	SourceStdin     SourceMode = "stdin"
)

// DefaultHistoryLimit caps the undo journal when history_limit is unset.
const DefaultHistoryLimit = 20

// Config represents the complete llmps configuration.
type Config struct {
	// DefaultNewline is the line ending for newly created files.
	// Updated files always keep their original style.
	DefaultNewline NewlineStyle `yaml:"default_newline"`

	// HistoryLimit is the number of transactions the undo journal keeps.
	// Older entries are pruned along with their blobs. Zero selects the
	// default.
	HistoryLimit int `yaml:"history_limit"`

	// Source selects the default patch text source.
	Source SourceMode `yaml:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultNewline: NewlineLF,
		HistoryLimit:   DefaultHistoryLimit,
		Source:         SourceAuto,
	}
}

// Load reads and parses the configuration file. A missing file is not an
// error: llmps runs with defaults until a config is written.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-value fields with the built-in defaults.
func (c *Config) applyDefaults() {
	if c.DefaultNewline == "" {
		c.DefaultNewline = NewlineLF
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Source == "" {
		c.Source = SourceAuto
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.DefaultNewline {
	case NewlineLF, NewlineCRLF:
		// valid
	default:
		return fmt.Errorf("invalid default_newline: %s (must be lf or crlf)", c.DefaultNewline)
	}

	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative: %d", c.HistoryLimit)
	}

	switch c.Source {
	case SourceAuto, SourceClipboard, SourceStdin:
		// valid
	default:
		return fmt.Errorf("invalid source: %s (must be auto, clipboard, or stdin)", c.Source)
	}

	return nil
}

// Newline returns the literal line ending for the configured style.
func (c *Config) Newline() string {
	if c.DefaultNewline == NewlineCRLF {
		return "\r\n"
	}
	return "\n"
}
