// Package pcmstream generates signed 16-bit PCM sample streams and delivers them, paced
// against wall-clock time, to a playback sink and a storage sink at once.
package pcmstream

import "time"

// SampleRate is the number of samples per second (per channel).
type SampleRate int

// D returns the duration of n frames.
func (sr SampleRate) D(n int) time.Duration {
	return time.Second * time.Duration(n) / time.Duration(sr)
}

// N returns the number of frames that last for d duration.
func (sr SampleRate) N(d time.Duration) int {
	return int(d * time.Duration(sr) / time.Second)
}

// Source is the interface shared by everything that produces samples.
//
// A Source has two states. While active, Next returns the next interleaved sample and true.
// Once exhausted, Next returns false and keeps returning false on every subsequent call. There
// is no way back to the active state: a Source is used up once and then discarded.
//
// The returned ok is the only termination signal. Callers must not infer exhaustion from
// Duration or any other metadata.
type Source interface {
	// Format returns the format of the samples. It is constant for the lifetime of the Source.
	Format() Format

	// Duration returns the total duration of the stream. The second return value is false if
	// the Source is unbounded.
	Duration() (time.Duration, bool)

	// Next produces the next sample.
	Next() (sample int16, ok bool)
}

// SourceFunc is a Source created from a function producing samples. Its format is f and it
// reports no duration.
type SourceFunc struct {
	F    Format
	Func func() (int16, bool)

	done bool
}

// Format returns sf.F.
func (sf *SourceFunc) Format() Format { return sf.F }

// Duration reports an unbounded stream.
func (sf *SourceFunc) Duration() (time.Duration, bool) { return 0, false }

// Next calls sf.Func until it reports false, then stays exhausted.
func (sf *SourceFunc) Next() (int16, bool) {
	if sf.done {
		return 0, false
	}
	s, ok := sf.Func()
	if !ok {
		sf.done = true
		return 0, false
	}
	return s, true
}
