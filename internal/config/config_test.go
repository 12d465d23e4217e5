package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/stretchr/testify/require"
)

func writeLua(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.lua")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, pcmstream.Format{SampleRate: 44100, NumChannels: 2}, c.Format())
	require.Equal(t, 10*time.Second, c.Duration)
}

func TestLoadLua(t *testing.T) {
	c := Default()
	path := writeLua(t, `
wave = "scale"
freq = 220
duration = 2.5
channels = 1
mute = true
volume = -1
loop = 3
local base = 100
mod_depth = base * 2
`)
	require.NoError(t, c.LoadLua(path))
	require.Equal(t, WaveScale, c.Wave)
	require.Equal(t, 220.0, c.Freq)
	require.Equal(t, 2500*time.Millisecond, c.Duration)
	require.Equal(t, 1, c.Channels)
	require.True(t, c.Mute)
	require.Equal(t, 200.0, c.ModDepth)
	require.Equal(t, -1.0, c.Volume)
	require.Equal(t, 3, c.Loop)

	// untouched
	require.Equal(t, 44100, c.SampleRate)
	require.Equal(t, 8000.0, c.Amplitude)
}

func TestLoadLuaTypeErrors(t *testing.T) {
	for _, src := range []string{
		`freq = "loud"`,
		`wave = 3`,
		`channels = 1.5`,
		`mute = 1`,
	} {
		c := Default()
		require.Error(t, c.LoadLua(writeLua(t, src)), src)
	}
}

func TestLoadLuaSyntaxError(t *testing.T) {
	c := Default()
	require.Error(t, c.LoadLua(writeLua(t, `wave = `)))
	require.Error(t, c.LoadLua(filepath.Join(t.TempDir(), "missing.lua")))
}

func TestFlagsOverride(t *testing.T) {
	c := Default()
	require.NoError(t, c.LoadLua(writeLua(t, `freq = 220`)))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-wave", "fm", "-policy", "synced", "-concurrent"}))

	require.Equal(t, WaveFM, c.Wave)
	require.Equal(t, 220.0, c.Freq)
	require.True(t, c.Concurrent)
	p, err := c.PacerPolicy()
	require.NoError(t, err)
	require.Equal(t, pcmstream.TimeSynced, p)
}

func TestValidate(t *testing.T) {
	for name, mod := range map[string]func(*Config){
		"rate":     func(c *Config) { c.SampleRate = 0 },
		"channels": func(c *Config) { c.Channels = 0 },
		"duration": func(c *Config) { c.Duration = -time.Second },
		"wave":     func(c *Config) { c.Wave = "square" },
		"output":   func(c *Config) { c.Output = "" },
		"queue":    func(c *Config) { c.QueueDepth = 0 },
		"policy":   func(c *Config) { c.Policy = "eager" },
		"loop":     func(c *Config) { c.Loop = 0 },
		"forever":  func(c *Config) { c.Loop = -1 },
		"lead-in":  func(c *Config) { c.LeadIn = 500 * time.Millisecond },
	} {
		c := Default()
		mod(&c)
		require.Error(t, c.Validate(), name)
	}

	c := Default()
	c.LeadIn = 2 * time.Second
	require.NoError(t, c.Validate())

	c = Default()
	c.Wave = "square"
	c.Input = "song.mp3"
	require.NoError(t, c.Validate(), "wave is ignored for file input")
}
