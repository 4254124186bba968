// Package config manages application configuration.
package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "1s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the application configuration.
type Config struct {
	Enabled       bool            `yaml:"enabled"`
	PollInterval  Duration        `yaml:"poll_interval"`
	ScreenshotDir string          `yaml:"screenshot_dir"`
	MaxFileSize   int64           `yaml:"max_file_size"`
	CleanupDays   int             `yaml:"cleanup_days"`
	LogLevel      string          `yaml:"log_level"`
	Intercept     InterceptConfig `yaml:"intercept"`
	Clipboard     ClipboardConfig `yaml:"clipboard"`
	Preview       PreviewConfig   `yaml:"preview"`
}

// InterceptConfig toggles the individual capture methods.
type InterceptConfig struct {
	Clipboard      bool `yaml:"clipboard"`
	Terminal       bool `yaml:"terminal"`
	Stdin          bool `yaml:"stdin"`
	ProcessMonitor bool `yaml:"process_monitor"`
}

// ClipboardConfig selects platform clipboard tooling.
type ClipboardConfig struct {
	// PreferredTool forces a specific clipboard command (xclip, xsel,
	// wl-paste, pbpaste); empty means probe at startup.
	PreferredTool string `yaml:"preferred_tool,omitempty"`
}

// PreviewConfig controls terminal rendering.
type PreviewConfig struct {
	Enabled   bool `yaml:"enabled"`
	MaxWidth  int  `yaml:"max_width"`
	MaxHeight int  `yaml:"max_height"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		PollInterval:  Duration(time.Second),
		ScreenshotDir: "${HOME}/.klipdot/screenshots",
		MaxFileSize:   10 << 20,
		CleanupDays:   30,
		LogLevel:      "info",
		Intercept: InterceptConfig{
			Clipboard:      true,
			Terminal:       true,
			Stdin:          true,
			ProcessMonitor: true,
		},
		Preview: PreviewConfig{
			Enabled:   true,
			MaxWidth:  800,
			MaxHeight: 600,
		},
	}
}

// ResolvedScreenshotDir expands ${VAR} references in the screenshot
// directory path. Values loaded from a config file are already
// expanded; this covers the built-in default.
func (c *Config) ResolvedScreenshotDir() string {
	return expandEnvVars(c.ScreenshotDir)
}

// Set updates a single field by its dotted key, parsing the value from
// its string form. Used by the config set command.
func (c *Config) Set(key, value string) error {
	switch key {
	case "enabled":
		return parseBool(value, &c.Enabled)
	case "poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		c.PollInterval = Duration(d)
	case "screenshot_dir":
		c.ScreenshotDir = value
	case "max_file_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", value, err)
		}
		c.MaxFileSize = n
	case "cleanup_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid day count %q: %w", value, err)
		}
		c.CleanupDays = n
	case "log_level":
		c.LogLevel = value
	case "intercept.clipboard":
		return parseBool(value, &c.Intercept.Clipboard)
	case "intercept.terminal":
		return parseBool(value, &c.Intercept.Terminal)
	case "intercept.stdin":
		return parseBool(value, &c.Intercept.Stdin)
	case "intercept.process_monitor":
		return parseBool(value, &c.Intercept.ProcessMonitor)
	case "clipboard.preferred_tool":
		c.Clipboard.PreferredTool = value
	case "preview.enabled":
		return parseBool(value, &c.Preview.Enabled)
	case "preview.max_width":
		return parseInt(value, &c.Preview.MaxWidth)
	case "preview.max_height":
		return parseInt(value, &c.Preview.MaxHeight)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func parseBool(value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean %q: %w", value, err)
	}
	*dst = b
	return nil
}

func parseInt(value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", value, err)
	}
	*dst = n
	return nil
}
