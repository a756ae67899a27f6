// Package config handles configuration file loading and parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

const appName = "toasty"

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "3s", "500ms", "1m", or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML and environment parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '3s', '500ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the configuration for toastyd.
// Loaded from $XDG_CONFIG_HOME/toasty/toastyd.toml, then overridden by TOASTY_* variables.
type Config struct {
	Display  DisplayConfig  `toml:"display"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Dedup    DedupConfig    `toml:"dedup"`
	Behavior BehaviorConfig `toml:"behavior"`
	Audio    AudioConfig    `toml:"audio"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DisplayConfig contains stacking and rendering settings.
type DisplayConfig struct {
	Offset     int `toml:"offset" env:"TOASTY_DISPLAY_OFFSET"`           // Base offset of the first toast in pixels
	Gap        int `toml:"gap" env:"TOASTY_DISPLAY_GAP"`                 // Gap between stacked toasts in pixels
	Width      int `toml:"width" env:"TOASTY_DISPLAY_WIDTH"`             // Toast width in terminal columns
	CellHeight int `toml:"cell_height" env:"TOASTY_DISPLAY_CELL_HEIGHT"` // Pixels per terminal row
	MaxVisible int `toml:"max_visible" env:"TOASTY_DISPLAY_MAX_VISIBLE"` // 0 = no render cap
}

// TimeoutConfig contains auto-close settings.
type TimeoutConfig struct {
	Default Duration `toml:"default" env:"TOASTY_TIMEOUT"` // e.g. "3s"; "0" disables auto-close
}

// DedupConfig contains typed-notification deduplication settings.
type DedupConfig struct {
	Enabled    bool             `toml:"enabled" env:"TOASTY_DEDUP_ENABLED"`
	Window     Duration         `toml:"window" env:"TOASTY_DEDUP_WINDOW"`
	Categories []CategoryConfig `toml:"categories"` // Checked in order
}

// CategoryConfig maps a message keyword to an action category.
type CategoryConfig struct {
	Keyword  string `toml:"keyword"`
	Category string `toml:"category"`
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	PauseOnHover  bool `toml:"pause_on_hover" env:"TOASTY_PAUSE_ON_HOVER"`
	HistoryLength int  `toml:"history_length" env:"TOASTY_HISTORY_LENGTH"` // Max events kept in memory
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled" env:"TOASTY_AUDIO_ENABLED"`
	Volume  int         `toml:"volume" env:"TOASTY_AUDIO_VOLUME"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-type sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Info    string `toml:"info"`
	Error   string `toml:"error"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name string `toml:"name" env:"TOASTY_THEME"` // Theme name without .yaml extension
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Offset:     20,
			Gap:        16,
			Width:      48,
			CellHeight: 16,
			MaxVisible: 0,
		},
		Timeouts: TimeoutConfig{
			Default: Duration(3 * time.Second),
		},
		Dedup: DedupConfig{
			Enabled: true,
			Window:  Duration(time.Second),
			Categories: []CategoryConfig{
				{Keyword: "publish", Category: "publish"},
				{Keyword: "clause has been published", Category: "publish"},
				{Keyword: "reject", Category: "reject"},
				{Keyword: "resolution", Category: "resolution"},
			},
		},
		Behavior: BehaviorConfig{
			PauseOnHover:  true,
			HistoryLength: 200,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
	}
}

// ConfigDir returns the toasty configuration directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigPath returns the path to the daemon config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "toastyd.toml")
}

// ThemesDir returns the directory searched for user themes.
func ThemesDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// HistoryPath returns the path to the event history JSONL file, creating
// its parent directory.
func HistoryPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, "history.jsonl"))
}

// Load loads the configuration from path, or ConfigPath if path is empty.
// A missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, or ConfigPath if path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Display.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", c.Display.Offset)
	}
	if c.Display.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %d", c.Display.Gap)
	}
	if c.Display.Width < 10 || c.Display.Width > 200 {
		return fmt.Errorf("width must be between 10 and 200, got %d", c.Display.Width)
	}
	if c.Display.CellHeight < 1 {
		return fmt.Errorf("cell_height must be positive, got %d", c.Display.CellHeight)
	}
	if c.Display.MaxVisible < 0 {
		return fmt.Errorf("max_visible must not be negative, got %d", c.Display.MaxVisible)
	}
	if c.Timeouts.Default < 0 {
		return fmt.Errorf("default timeout must not be negative, got %s", c.Timeouts.Default.Duration())
	}
	if c.Dedup.Window <= 0 {
		return fmt.Errorf("dedup window must be positive, got %s", c.Dedup.Window.Duration())
	}
	for i, cat := range c.Dedup.Categories {
		if strings.TrimSpace(cat.Keyword) == "" || cat.Category == "" {
			return fmt.Errorf("dedup category %d needs both keyword and category", i)
		}
	}
	if c.Behavior.HistoryLength < 0 {
		return fmt.Errorf("history_length must not be negative, got %d", c.Behavior.HistoryLength)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	return nil
}

// SoundForType returns the sound file path for a notification type, with ~ expanded.
func (c *Config) SoundForType(notificationType string) string {
	var path string
	switch notificationType {
	case "success":
		path = c.Audio.Sounds.Success
	case "warning":
		path = c.Audio.Sounds.Warning
	case "error":
		path = c.Audio.Sounds.Error
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
