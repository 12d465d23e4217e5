package generators

import (
	"math"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// ScaleRatios are the steps of the scale, relative to its root.
var ScaleRatios = [...]float64{1, 1.125, 1.25, 1.5, 1.75, 2.0, 2.25, 2.5}

// ScaleTable returns the frequencies of the scale rooted at root, in ascending order.
func ScaleTable(root float64) []float64 {
	table := make([]float64, len(ScaleRatios))
	for i, r := range ScaleRatios {
		table[i] = root * r
	}
	return table
}

// Snap returns the entry of table closest to freq. On a tie the first closest entry in table
// order wins. Snap returns freq if table is empty.
func Snap(table []float64, freq float64) float64 {
	if len(table) == 0 {
		return freq
	}
	best := table[0]
	bestDiff := math.Abs(best - freq)
	for _, f := range table[1:] {
		if diff := math.Abs(f - freq); diff < bestDiff {
			best, bestDiff = f, diff
		}
	}
	return best
}

type scaleSawGenerator struct {
	bounded
	ph        phase
	scale     []float64
	cursor    int
	depth     float64
	mod       sineModulator
	amplitude float64

	// freq is the last frequency the phase was advanced by.
	freq float64
}

// ScaleSaw creates a sawtooth Source which walks through the scale rooted at root one note per
// sample. For every sample it moves to the next note (wrapping around), adds the same sine
// modulation as FMSaw, and snaps the result back onto the scale before advancing the phase. The
// order of these steps shapes the pitch contour and must not change.
//
// The sample rate must be at least two times greater than the highest note of the scale.
func ScaleSaw(f pcmstream.Format, d time.Duration, root, modFreq, modDepth, amplitude float64) (pcmstream.Source, error) {
	b, err := newBounded(f, d)
	if err != nil {
		return nil, errors.Wrap(err, "scale saw generator")
	}
	scale := ScaleTable(root)
	if err := checkFrequency(f.SampleRate, scale[len(scale)-1]); err != nil {
		return nil, errors.Wrap(err, "scale saw generator")
	}
	return &scaleSawGenerator{
		bounded:   b,
		scale:     scale,
		depth:     modDepth,
		mod:       newSineModulator(int(f.SampleRate), modFreq),
		amplitude: amplitude,
	}, nil
}

func (g *scaleSawGenerator) nextNote() float64 {
	g.cursor = (g.cursor + 1) % len(g.scale)
	return g.scale[g.cursor]
}

func (g *scaleSawGenerator) Next() (int16, bool) {
	if !g.budget.Take() {
		return 0, false
	}
	note := g.nextNote()
	modulated := note + g.mod.at(g.budget.Emitted())*g.depth
	g.freq = Snap(g.scale, modulated)

	s := g.ph.sample(g.amplitude)
	g.ph.advance(g.freq / float64(g.f.SampleRate))
	return s, true
}
