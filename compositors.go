package pcmstream

import (
	"fmt"
	"time"
)

// Take returns a Source which streams at most n samples from s.
func Take(n int, s Source) Source {
	return &take{
		s:          s,
		currSample: 0,
		numSamples: n,
	}
}

type take struct {
	s          Source
	currSample int
	numSamples int
}

func (t *take) Format() Format {
	return t.s.Format()
}

func (t *take) Duration() (time.Duration, bool) {
	d, ok := t.s.Duration()
	limit := t.s.Format().D(t.numSamples)
	if !ok || d > limit {
		return limit, true
	}
	return d, true
}

func (t *take) Next() (int16, bool) {
	if t.currSample >= t.numSamples {
		return 0, false
	}
	s, ok := t.s.Next()
	if !ok {
		t.currSample = t.numSamples
		return 0, false
	}
	t.currSample++
	return s, true
}

// Seq takes one or more Sources and returns a Source which streams them one by one without
// pauses.
//
// All Sources must share the same format, Seq panics otherwise.
func Seq(s ...Source) Source {
	if len(s) == 0 {
		panic(fmt.Errorf("seq: no sources"))
	}
	f := s[0].Format()
	for _, src := range s[1:] {
		if src.Format() != f {
			panic(fmt.Errorf("seq: format mismatch: %+v != %+v", src.Format(), f))
		}
	}
	return &seq{f: f, s: s}
}

type seq struct {
	f Format
	s []Source
	i int
}

func (q *seq) Format() Format {
	return q.f
}

func (q *seq) Duration() (d time.Duration, ok bool) {
	for _, src := range q.s {
		sd, sok := src.Duration()
		if !sok {
			return 0, false
		}
		d += sd
	}
	return d, true
}

func (q *seq) Next() (int16, bool) {
	for q.i < len(q.s) {
		if s, ok := q.s[q.i].Next(); ok {
			return s, true
		}
		q.i++
	}
	return 0, false
}

// Collect drains s and returns all of the samples it streamed.
func Collect(s Source) []int16 {
	var result []int16
	for {
		sample, ok := s.Next()
		if !ok {
			return result
		}
		result = append(result, sample)
	}
}
