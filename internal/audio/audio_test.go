package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/notify"
)

func TestDecibels(t *testing.T) {
	assert.Equal(t, float64(silentDecibels), Decibels(0))
	assert.Equal(t, float64(silentDecibels), Decibels(-1))
	assert.InDelta(t, 0, Decibels(1), 1e-9)
	assert.InDelta(t, -6.02, Decibels(0.5), 0.01)
	assert.InDelta(t, -20, Decibels(0.1), 1e-9)
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(nil)
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(0.4)
	assert.Equal(t, 0.4, p.Volume())

	p.SetVolume(3)
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestPlayer_Errors(t *testing.T) {
	p := NewPlayer(nil)
	assert.NoError(t, p.Play(""))
	assert.NoError(t, p.Preload(""))

	err := p.Preload(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorContains(t, err, "failed to open sound file")

	path := filepath.Join(t.TempDir(), "sound.flac")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	assert.ErrorContains(t, p.Preload(path), "unsupported audio format")
}

func TestManager_SoundTable(t *testing.T) {
	dir := t.TempDir()
	success := filepath.Join(dir, "success.wav")
	require.NoError(t, os.WriteFile(success, []byte("RIFF"), 0600))

	cfg := config.DefaultConfig()
	cfg.Audio.Volume = 50
	cfg.Audio.Sounds.Success = success
	cfg.Audio.Sounds.Error = filepath.Join(dir, "missing.wav")

	m := NewManager(cfg, nil)

	path, ok := m.Sound(notify.TypeSuccess)
	assert.True(t, ok)
	assert.Equal(t, success, path)

	_, ok = m.Sound(notify.TypeError)
	assert.False(t, ok, "missing files are skipped")

	assert.False(t, m.Enabled())
	assert.Equal(t, 0.5, m.player.Volume())

	// Disabled audio never touches the speaker
	assert.NoError(t, m.PlayForType(notify.TypeSuccess))

	cfg.Audio.Enabled = true
	cfg.Audio.Sounds.Success = ""
	m.UpdateConfig(cfg)
	assert.True(t, m.Enabled())
	_, ok = m.Sound(notify.TypeSuccess)
	assert.False(t, ok)
	assert.NoError(t, m.PlayForType(notify.TypeSuccess))
}
