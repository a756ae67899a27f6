package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.Display.Offset)
	assert.Equal(t, 16, cfg.Display.Gap)
	assert.Equal(t, 48, cfg.Display.Width)
	assert.Equal(t, 16, cfg.Display.CellHeight)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Default.Duration())
	assert.True(t, cfg.Dedup.Enabled)
	assert.Equal(t, time.Second, cfg.Dedup.Window.Duration())
	assert.Len(t, cfg.Dedup.Categories, 4)
	assert.True(t, cfg.Behavior.PauseOnHover)
	assert.Equal(t, 200, cfg.Behavior.HistoryLength)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, "default", cfg.Theme.Name)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/toastyd.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toastyd.toml")

	content := `
[display]
offset = 40
gap = 8
width = 60

[timeouts]
default = "5s"

[dedup]
enabled = false
window = "1500"

[[dedup.categories]]
keyword = "upload"
category = "upload"

[behavior]
pause_on_hover = false
history_length = 50

[audio]
enabled = true
volume = 40

[audio.sounds]
error = "/usr/share/sounds/error.oga"

[theme]
name = "nord"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Display.Offset)
	assert.Equal(t, 8, cfg.Display.Gap)
	assert.Equal(t, 60, cfg.Display.Width)
	assert.Equal(t, 16, cfg.Display.CellHeight)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Default.Duration())
	assert.False(t, cfg.Dedup.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Dedup.Window.Duration())
	assert.Equal(t, []CategoryConfig{{Keyword: "upload", Category: "upload"}}, cfg.Dedup.Categories)
	assert.False(t, cfg.Behavior.PauseOnHover)
	assert.Equal(t, 50, cfg.Behavior.HistoryLength)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/error.oga", cfg.SoundForType("error"))
	assert.Equal(t, "nord", cfg.Theme.Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toastyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\ndefault = \"5s\"\n"), 0644))

	t.Setenv("TOASTY_TIMEOUT", "750ms")
	t.Setenv("TOASTY_DISPLAY_GAP", "4")
	t.Setenv("TOASTY_PAUSE_ON_HOVER", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.Default.Duration())
	assert.Equal(t, 4, cfg.Display.Gap)
	assert.False(t, cfg.Behavior.PauseOnHover)
	assert.Equal(t, 20, cfg.Display.Offset)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toastyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display\noffset = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toastyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[audio]\nvolume = 150\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3s", 3 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{"2500", 2500 * time.Millisecond, false},
		{"0", 0, false},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative offset", func(c *Config) { c.Display.Offset = -1 }},
		{"negative gap", func(c *Config) { c.Display.Gap = -1 }},
		{"narrow width", func(c *Config) { c.Display.Width = 5 }},
		{"zero cell height", func(c *Config) { c.Display.CellHeight = 0 }},
		{"negative timeout", func(c *Config) { c.Timeouts.Default = Duration(-time.Second) }},
		{"zero window", func(c *Config) { c.Dedup.Window = 0 }},
		{"empty keyword", func(c *Config) { c.Dedup.Categories = []CategoryConfig{{Keyword: " ", Category: "x"}} }},
		{"negative history", func(c *Config) { c.Behavior.HistoryLength = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "toastyd.toml")

	cfg := DefaultConfig()
	cfg.Display.Gap = 12
	cfg.Timeouts.Default = Duration(10 * time.Second)
	cfg.Theme.Name = "nord"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSoundForType(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Audio.Sounds = SoundConfig{
		Success: "~/sounds/ok.wav",
		Info:    "/tmp/info.wav",
	}

	assert.Equal(t, filepath.Join(home, "sounds/ok.wav"), cfg.SoundForType("success"))
	assert.Equal(t, "/tmp/info.wav", cfg.SoundForType("info"))
	assert.Equal(t, "/tmp/info.wav", cfg.SoundForType("unknown"))
	assert.Equal(t, "", cfg.SoundForType("warning"))
}
