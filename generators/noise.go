package generators

import (
	"math/rand"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

type noiseGenerator struct {
	bounded
	rng *rand.Rand
}

// Noise creates a Source of white noise: every sample is drawn uniformly from the full signed
// 16-bit range, independently of the previous ones. If rng is nil, a generator seeded from the
// current time is used.
func Noise(f pcmstream.Format, d time.Duration, rng *rand.Rand) (pcmstream.Source, error) {
	b, err := newBounded(f, d)
	if err != nil {
		return nil, errors.Wrap(err, "noise generator")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &noiseGenerator{bounded: b, rng: rng}, nil
}

// NoiseSeed is like Noise with a generator seeded with seed, for reproducible noise.
func NoiseSeed(f pcmstream.Format, d time.Duration, seed int64) (pcmstream.Source, error) {
	return Noise(f, d, rand.New(rand.NewSource(seed)))
}

func (g *noiseGenerator) Next() (int16, bool) {
	if !g.budget.Take() {
		return 0, false
	}
	return int16(g.rng.Intn(1<<16) - 1<<15), true
}
