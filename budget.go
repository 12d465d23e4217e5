package pcmstream

import "time"

// Total returns the number of interleaved samples in d of audio of format f:
// sample rate × channels × whole seconds of d. Fractional seconds are truncated toward zero,
// so 1.9s yields the same total as 1s.
func Total(f Format, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return f.SamplesPerSecond() * int(d/time.Second)
}

// Budget counts the samples a bounded Source has emitted against its fixed total.
//
// The total is computed once, at construction, and never recomputed.
type Budget struct {
	total   int
	emitted int
}

// NewBudget returns a Budget of Total(f, d) samples.
func NewBudget(f Format, d time.Duration) Budget {
	return Budget{total: Total(f, d)}
}

// Take reports whether another sample may be produced and, if so, counts it. Once Emitted
// equals Total, Take returns false forever.
func (b *Budget) Take() bool {
	if b.emitted >= b.total {
		return false
	}
	b.emitted++
	return true
}

// Emitted returns the number of samples counted so far.
func (b *Budget) Emitted() int { return b.emitted }

// Total returns the total number of samples.
func (b *Budget) Total() int { return b.total }

// Exhausted reports whether the Budget is used up.
func (b *Budget) Exhausted() bool { return b.emitted >= b.total }
