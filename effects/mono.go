package effects

import (
	"time"

	"github.com/faiface/pcmstream"
)

// Mono downmixes every frame of s to the average of its channels and repeats it on all of
// them. The format is unchanged.
//
// A trailing partial frame is mixed from the samples that are there.
func Mono(s pcmstream.Source) pcmstream.Source {
	return &mono{s: s, frame: make([]int16, 0, s.Format().NumChannels)}
}

type mono struct {
	s     pcmstream.Source
	frame []int16
	pos   int
}

func (m *mono) Format() pcmstream.Format {
	return m.s.Format()
}

func (m *mono) Duration() (time.Duration, bool) {
	return m.s.Duration()
}

func (m *mono) Next() (int16, bool) {
	if m.pos >= len(m.frame) {
		m.fill()
		if len(m.frame) == 0 {
			return 0, false
		}
	}
	s := m.frame[m.pos]
	m.pos++
	return s, true
}

func (m *mono) fill() {
	m.frame, m.pos = m.frame[:0], 0
	sum := 0
	for len(m.frame) < cap(m.frame) {
		s, ok := m.s.Next()
		if !ok {
			break
		}
		m.frame = append(m.frame, s)
		sum += int(s)
	}
	if len(m.frame) == 0 {
		return
	}
	mix := int16(sum / len(m.frame))
	for i := range m.frame {
		m.frame[i] = mix
	}
}
