package pcmstream

import "time"

// Silence returns a Source of format f which streams d of silence. Like every bounded Source,
// only whole seconds of d count.
func Silence(f Format, d time.Duration) Source {
	return &silence{f: f, b: NewBudget(f, d)}
}

type silence struct {
	f Format
	b Budget
}

func (s *silence) Format() Format                  { return s.f }
func (s *silence) Duration() (time.Duration, bool) { return s.f.D(s.b.Total()), true }

func (s *silence) Next() (int16, bool) {
	if !s.b.Take() {
		return 0, false
	}
	return 0, true
}

// Callback returns a Source which does not stream any samples, but instead calls fn the first
// time its Next method is called. Put it at the end of a Seq to learn when generation ended.
func Callback(f Format, fn func()) Source {
	return &SourceFunc{F: f, Func: func() (int16, bool) {
		if fn != nil {
			fn()
			fn = nil
		}
		return 0, false
	}}
}
