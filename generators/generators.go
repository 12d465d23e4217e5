// Package generators implements duration-bounded procedural sample sources: noise and a family
// of phase-accumulator sawtooth oscillators.
package generators

import (
	"math"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// bounded carries what every generator shares: its format, its nominal duration and the
// sample budget derived from them at construction.
type bounded struct {
	f      pcmstream.Format
	d      time.Duration
	budget pcmstream.Budget
}

func newBounded(f pcmstream.Format, d time.Duration) (bounded, error) {
	if err := f.Validate(); err != nil {
		return bounded{}, err
	}
	if d < 0 {
		return bounded{}, errors.Errorf("negative duration: %v", d)
	}
	return bounded{f: f, d: d, budget: pcmstream.NewBudget(f, d)}, nil
}

func (b *bounded) Format() pcmstream.Format {
	return b.f
}

func (b *bounded) Duration() (time.Duration, bool) {
	return b.d, true
}

// checkFrequency rejects frequencies the phase accumulator cannot represent: the sample rate
// must be at least two times greater than freq.
func checkFrequency(sr pcmstream.SampleRate, freq float64) error {
	if freq < 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return errors.Errorf("invalid frequency: %v", freq)
	}
	if freq/float64(sr) >= 1.0/2.0 {
		return errors.Errorf("samplerate %d must be at least 2 times greater than frequency %v", sr, freq)
	}
	return nil
}

// phase is a phase accumulator kept in [0, 1).
type phase struct {
	t float64
}

// sample scales the current phase by amplitude and rounds it into the 16-bit range. Values out
// of range are clamped, never wrapped.
func (p *phase) sample(amplitude float64) int16 {
	return quantize(p.t * amplitude)
}

func (p *phase) advance(dt float64) {
	p.t += dt
	if p.t >= 1.0 {
		p.t -= 1.0
	}
	if p.t < 0 {
		p.t += 1.0
	}
}

func quantize(x float64) int16 {
	x = math.Round(x)
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}
