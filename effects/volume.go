package effects

import (
	"math"
	"time"

	"github.com/faiface/pcmstream"
)

// Volume scales the samples of the wrapped Source by Base^Volume. Results outside the int16
// range are clamped.
//
// A Base of 2 and a Volume of -1 halves the amplitude. Silent mutes the stream without
// stopping it.
type Volume struct {
	Source pcmstream.Source
	Base   float64
	Volume float64
	Silent bool
}

func (v *Volume) Format() pcmstream.Format {
	return v.Source.Format()
}

func (v *Volume) Duration() (time.Duration, bool) {
	return v.Source.Duration()
}

func (v *Volume) Next() (int16, bool) {
	s, ok := v.Source.Next()
	if !ok {
		return 0, false
	}
	if v.Silent {
		return 0, true
	}
	x := math.Round(float64(s) * math.Pow(v.Base, v.Volume))
	switch {
	case x > math.MaxInt16:
		return math.MaxInt16, true
	case x < math.MinInt16:
		return math.MinInt16, true
	}
	return int16(x), true
}
