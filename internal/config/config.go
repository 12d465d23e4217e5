// Package config holds the settings of a pcmstream run.
//
// Settings are layered: Default, then an optional Lua session file (LoadLua), then
// command-line flags (RegisterFlags). Later layers override earlier ones.
package config

import (
	"flag"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Wave names accepted by Config.Wave.
const (
	WaveNoise = "noise"
	WaveSaw   = "saw"
	WaveFM    = "fm"
	WaveScale = "scale"
)

// Config is the complete description of a run.
type Config struct {
	SampleRate int
	Channels   int
	Duration   time.Duration

	// Wave selects the generator. Ignored when Input is set.
	Wave      string
	Input     string
	Freq      float64
	ModFreq   float64
	ModDepth  float64
	Amplitude float64
	Seed      int64 // zero seeds noise from the clock
	LeadIn    time.Duration

	// Volume is a gain exponent of base 2, so -1 halves the amplitude.
	Volume float64
	Mono   bool
	// Loop plays file input this many times, negative forever.
	Loop   int

	Output     string
	Mute       bool
	Policy     string
	Concurrent bool
	QueueDepth int
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		SampleRate: 44100,
		Channels:   2,
		Duration:   10 * time.Second,
		Wave:       WaveSaw,
		Freq:       440,
		ModFreq:    1,
		ModDepth:   100,
		Amplitude:  8000,
		Output:     "output.wav",
		Policy:     pcmstream.Chunked.String(),
		QueueDepth: pcmstream.DefaultQueueDepth,
		Loop:       1,
	}
}

// Format returns the stream format described by c.
func (c Config) Format() pcmstream.Format {
	return pcmstream.Format{
		SampleRate:  pcmstream.SampleRate(c.SampleRate),
		NumChannels: c.Channels,
	}
}

// PacerPolicy parses c.Policy.
func (c Config) PacerPolicy() (pcmstream.Policy, error) {
	switch strings.ToLower(c.Policy) {
	case "", pcmstream.Chunked.String():
		return pcmstream.Chunked, nil
	case pcmstream.TimeSynced.String(), "timesynced", "time-synced":
		return pcmstream.TimeSynced, nil
	}
	return 0, errors.Errorf("unknown pacing policy %q", c.Policy)
}

// Validate checks that c describes a run that can be started.
func (c Config) Validate() (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "config")
		}
	}()

	if err := c.Format().Validate(); err != nil {
		return err
	}
	if c.Duration < 0 {
		return errors.Errorf("negative duration %v", c.Duration)
	}
	if c.LeadIn < 0 {
		return errors.Errorf("negative lead-in %v", c.LeadIn)
	}
	if c.LeadIn%time.Second != 0 {
		return errors.Errorf("lead-in %v is not a whole number of seconds", c.LeadIn)
	}
	if c.Input == "" {
		switch c.Wave {
		case WaveNoise, WaveSaw, WaveFM, WaveScale:
		default:
			return errors.Errorf("unknown wave %q", c.Wave)
		}
	}
	for name, v := range map[string]float64{
		"freq":      c.Freq,
		"mod-freq":  c.ModFreq,
		"mod-depth": c.ModDepth,
		"amplitude": c.Amplitude,
		"volume":    c.Volume,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("%s is not a finite number", name)
		}
	}
	if c.Amplitude < 0 {
		return errors.Errorf("negative amplitude %v", c.Amplitude)
	}
	if c.Loop == 0 {
		return errors.New("loop count of zero")
	}
	if c.Loop < 0 && c.Input == "" {
		return errors.New("only file input can loop forever")
	}
	if c.Output == "" {
		return errors.New("no output file")
	}
	if c.QueueDepth < 1 {
		return errors.Errorf("queue depth must be at least 1, got %d", c.QueueDepth)
	}
	if _, err := c.PacerPolicy(); err != nil {
		return err
	}
	return nil
}

// LoadLua runs the Lua file at path and copies every known global it sets into c. Durations
// are given in seconds:
//
//	wave = "scale"
//	freq = 220
//	duration = 30
func (c *Config) LoadLua(path string) error {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return errors.Wrapf(err, "config: load %s", path)
	}
	return c.fromLua(L)
}

func (c *Config) fromLua(L *lua.LState) error {
	for _, f := range []struct {
		name string
		set  func(lua.LValue) error
	}{
		{"sample_rate", intField(&c.SampleRate)},
		{"channels", intField(&c.Channels)},
		{"duration", secondsField(&c.Duration)},
		{"wave", stringField(&c.Wave)},
		{"input", stringField(&c.Input)},
		{"freq", numberField(&c.Freq)},
		{"mod_freq", numberField(&c.ModFreq)},
		{"mod_depth", numberField(&c.ModDepth)},
		{"amplitude", numberField(&c.Amplitude)},
		{"seed", func(v lua.LValue) error {
			n, err := number(v)
			c.Seed = int64(n)
			return err
		}},
		{"lead_in", secondsField(&c.LeadIn)},
		{"volume", numberField(&c.Volume)},
		{"mono", boolField(&c.Mono)},
		{"loop", intField(&c.Loop)},
		{"output", stringField(&c.Output)},
		{"mute", boolField(&c.Mute)},
		{"policy", stringField(&c.Policy)},
		{"concurrent", boolField(&c.Concurrent)},
		{"queue_depth", intField(&c.QueueDepth)},
	} {
		v := L.GetGlobal(f.name)
		if v == lua.LNil {
			continue
		}
		if err := f.set(v); err != nil {
			return errors.Wrapf(err, "config: %s", f.name)
		}
	}
	return nil
}

func number(v lua.LValue) (float64, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, errors.Errorf("expected a number, got %s", v.Type())
	}
	return float64(n), nil
}

func numberField(dst *float64) func(lua.LValue) error {
	return func(v lua.LValue) error {
		n, err := number(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func intField(dst *int) func(lua.LValue) error {
	return func(v lua.LValue) error {
		n, err := number(v)
		if err != nil {
			return err
		}
		if n != math.Trunc(n) {
			return errors.Errorf("expected an integer, got %v", n)
		}
		*dst = int(n)
		return nil
	}
}

func secondsField(dst *time.Duration) func(lua.LValue) error {
	return func(v lua.LValue) error {
		n, err := number(v)
		if err != nil {
			return err
		}
		*dst = time.Duration(n * float64(time.Second))
		return nil
	}
}

func stringField(dst *string) func(lua.LValue) error {
	return func(v lua.LValue) error {
		if v.Type() != lua.LTString {
			return errors.Errorf("expected a string, got %s", v.Type())
		}
		*dst = lua.LVAsString(v)
		return nil
	}
}

func boolField(dst *bool) func(lua.LValue) error {
	return func(v lua.LValue) error {
		if v.Type() != lua.LTBool {
			return errors.Errorf("expected a boolean, got %s", v.Type())
		}
		*dst = lua.LVAsBool(v)
		return nil
	}
}

// RegisterFlags defines a flag for every field of c on fs, with the current values of c as
// defaults. Parsing fs then writes straight into c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.Channels, "channels", c.Channels, "number of interleaved channels")
	fs.DurationVar(&c.Duration, "duration", c.Duration, "length of generated audio, whole seconds count")
	fs.StringVar(&c.Wave, "wave", c.Wave, fmt.Sprintf("generator: %s, %s, %s or %s", WaveNoise, WaveSaw, WaveFM, WaveScale))
	fs.StringVar(&c.Input, "input", c.Input, "play a .pcm, .raw, .wav, .flac, .ogg or .mp3 file instead of a generator")
	fs.Float64Var(&c.Freq, "freq", c.Freq, "base or root frequency in Hz")
	fs.Float64Var(&c.ModFreq, "mod-freq", c.ModFreq, "modulation frequency")
	fs.Float64Var(&c.ModDepth, "mod-depth", c.ModDepth, "modulation depth in Hz")
	fs.Float64Var(&c.Amplitude, "amplitude", c.Amplitude, "peak sample value of the saw generators")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "noise seed, 0 for a random one")
	fs.DurationVar(&c.LeadIn, "lead-in", c.LeadIn, "silence before the stream, in whole seconds")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "gain exponent of base 2, -1 halves the amplitude")
	fs.BoolVar(&c.Mono, "mono", c.Mono, "downmix every frame to the average of its channels")
	fs.IntVar(&c.Loop, "loop", c.Loop, "play file input this many times, -1 forever")
	fs.StringVar(&c.Output, "o", c.Output, "recording file, .wav or raw .pcm/.raw")
	fs.BoolVar(&c.Mute, "mute", c.Mute, "record without opening an audio device")
	fs.StringVar(&c.Policy, "policy", c.Policy, "pacing policy: chunked or synced")
	fs.BoolVar(&c.Concurrent, "concurrent", c.Concurrent, "submit to playback from a separate goroutine")
	fs.IntVar(&c.QueueDepth, "queue", c.QueueDepth, "chunks queued for playback in concurrent mode")
}
