package generators

import (
	"math"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

type sawGenerator struct {
	bounded
	ph        phase
	dt        float64
	amplitude float64
}

// Saw creates a Source producing a sawtooth wave with the given frequency: the phase ramps from
// 0 toward 1 and resets, and each sample is round(phase × amplitude) clamped to 16 bits.
//
// The sample rate must be at least two times greater than freq, otherwise Saw returns an error.
func Saw(f pcmstream.Format, d time.Duration, freq, amplitude float64) (pcmstream.Source, error) {
	b, err := newBounded(f, d)
	if err != nil {
		return nil, errors.Wrap(err, "saw generator")
	}
	if err := checkFrequency(f.SampleRate, freq); err != nil {
		return nil, errors.Wrap(err, "saw generator")
	}
	return &sawGenerator{
		bounded:   b,
		dt:        freq / float64(f.SampleRate),
		amplitude: amplitude,
	}, nil
}

func (g *sawGenerator) Next() (int16, bool) {
	if !g.budget.Take() {
		return 0, false
	}
	s := g.ph.sample(g.amplitude)
	g.ph.advance(g.dt)
	return s, true
}

type fmSawGenerator struct {
	bounded
	ph        phase
	base      float64
	depth     float64
	mod       sineModulator
	amplitude float64
}

// FMSaw creates a sawtooth Source whose frequency is modulated by a slow sine:
//
//	frequency = base + sin(modFreq × n / sampleRate) × modDepth
//
// where n counts the samples emitted including the current one. With modDepth 0 the output is
// identical to Saw with the same base frequency.
//
// The sample rate must be at least two times greater than base + |modDepth|.
func FMSaw(f pcmstream.Format, d time.Duration, base, modFreq, modDepth, amplitude float64) (pcmstream.Source, error) {
	b, err := newBounded(f, d)
	if err != nil {
		return nil, errors.Wrap(err, "fm saw generator")
	}
	if err := checkFrequency(f.SampleRate, base+math.Abs(modDepth)); err != nil {
		return nil, errors.Wrap(err, "fm saw generator")
	}
	return &fmSawGenerator{
		bounded:   b,
		base:      base,
		depth:     modDepth,
		mod:       newSineModulator(int(f.SampleRate), modFreq),
		amplitude: amplitude,
	}, nil
}

func (g *fmSawGenerator) Next() (int16, bool) {
	if !g.budget.Take() {
		return 0, false
	}
	freq := g.base + g.mod.at(g.budget.Emitted())*g.depth
	s := g.ph.sample(g.amplitude)
	g.ph.advance(freq / float64(g.f.SampleRate))
	return s, true
}
