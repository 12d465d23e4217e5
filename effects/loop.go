package effects

import (
	"time"

	"github.com/faiface/pcmstream"
)

// Loop plays the samples of b count times. If count is negative, b is looped infinitely.
// Loop reads b's samples directly and leaves b's own position alone.
func Loop(count int, b *pcmstream.Buffer) pcmstream.Source {
	return &loop{
		f:       b.Format(),
		data:    b.Samples(),
		remains: count,
	}
}

type loop struct {
	f       pcmstream.Format
	data    []int16
	pos     int
	remains int
}

func (l *loop) Format() pcmstream.Format {
	return l.f
}

func (l *loop) Duration() (time.Duration, bool) {
	if l.remains < 0 {
		return 0, false
	}
	return l.f.D(len(l.data) * l.remains), true
}

func (l *loop) Next() (int16, bool) {
	if l.remains == 0 || len(l.data) == 0 {
		return 0, false
	}
	s := l.data[l.pos]
	l.pos++
	if l.pos == len(l.data) {
		l.pos = 0
		if l.remains > 0 {
			l.remains--
		}
	}
	return s, true
}
