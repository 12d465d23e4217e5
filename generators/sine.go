package generators

import (
	"math"
)

// sineModulator is the low-frequency sine driving the modulated oscillators. It is indexed by
// the raw sample count: the argument is freq × n / sampleRate radians, with no 2π factor.
type sineModulator struct {
	freq float64
	sr   float64
}

func newSineModulator(sr int, freq float64) sineModulator {
	return sineModulator{freq: freq, sr: float64(sr)}
}

// at returns the modulation value in [-1, 1] after n samples.
func (m sineModulator) at(n int) float64 {
	return math.Sin(m.freq * float64(n) / m.sr)
}
