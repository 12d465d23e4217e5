package pcmstream

import (
	"context"
	"time"
)

// Policy selects how a Pacer releases chunks.
type Policy int

const (
	// Chunked hands each chunk out as soon as it is full and relies on the consumer to block.
	Chunked Policy = iota

	// TimeSynced additionally holds the producer back whenever it is ahead of wall-clock time,
	// for playback sinks that do not block their caller.
	TimeSynced
)

func (p Policy) String() string {
	switch p {
	case Chunked:
		return "chunked"
	case TimeSynced:
		return "synced"
	}
	return "unknown"
}

// Clock is the time source of a Pacer.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DefaultChunkFrames returns the number of frames in roughly 100ms of audio of format f.
func DefaultChunkFrames(f Format) int {
	n := int(f.SampleRate) / 10
	if n < 1 {
		n = 1
	}
	return n
}

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// WithPolicy sets the release policy. The default is Chunked.
func WithPolicy(policy Policy) PacerOption {
	return func(p *Pacer) { p.policy = policy }
}

// WithChunkFrames sets the number of frames per chunk. The default is DefaultChunkFrames.
func WithChunkFrames(n int) PacerOption {
	return func(p *Pacer) {
		if n > 0 {
			p.size = n * p.f.NumChannels
		}
	}
}

// WithClock replaces the SystemClock, mostly for tests.
func WithClock(c Clock) PacerOption {
	return func(p *Pacer) { p.clock = c }
}

// Pacer pulls samples from a Source, groups them into fixed-size chunks and releases them no
// faster than the configured Policy allows. The generator can therefore never run further
// ahead of playback than the chunks in flight.
//
// A Pacer is not safe for concurrent use.
type Pacer struct {
	src    Source
	f      Format
	size   int
	policy Policy
	clock  Clock

	start   time.Time
	started bool
	emitted int
	done    bool

	// held is a sample pulled before a failed wait, handed out first by the next call.
	held    int16
	holding bool
}

// NewPacer creates a Pacer reading from src.
func NewPacer(src Source, opts ...PacerOption) *Pacer {
	f := src.Format()
	p := &Pacer{
		src:    src,
		f:      f,
		size:   DefaultChunkFrames(f) * f.NumChannels,
		policy: Chunked,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format returns the format of the chunks.
func (p *Pacer) Format() Format { return p.f }

// ChunkLen returns the number of samples in a full chunk.
func (p *Pacer) ChunkLen() int { return p.size }

// Policy returns the release policy.
func (p *Pacer) Policy() Policy { return p.policy }

// Emitted returns the number of samples handed out so far.
func (p *Pacer) Emitted() int { return p.emitted }

// Next returns the next chunk. Every chunk is full except possibly the last one, which holds
// whatever was left when the Source got exhausted. After that, Next returns false.
//
// Under TimeSynced, Next first sleeps for as long as the samples emitted so far are ahead of
// the time elapsed since the first chunk. A cancelled ctx interrupts the sleep and its error is
// returned. No sample is lost to a failed sleep: a later call picks up where this one stopped.
func (p *Pacer) Next(ctx context.Context) (c Chunk, ok bool, err error) {
	if p.done {
		return Chunk{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Chunk{}, false, err
	}

	first, ok := p.held, true
	if p.holding {
		p.holding = false
	} else if first, ok = p.src.Next(); !ok {
		p.done = true
		return Chunk{}, false, nil
	}

	if p.policy == TimeSynced {
		if !p.started {
			p.start = p.clock.Now()
			p.started = true
		} else if err := p.wait(ctx); err != nil {
			p.held, p.holding = first, true
			return Chunk{}, false, err
		}
	}

	samples := make([]int16, 1, p.size)
	samples[0] = first
	for len(samples) < p.size {
		s, ok := p.src.Next()
		if !ok {
			p.done = true
			break
		}
		samples = append(samples, s)
	}
	p.emitted += len(samples)
	return Chunk{Format: p.f, Samples: samples}, true, nil
}

func (p *Pacer) wait(ctx context.Context) error {
	expected := p.f.D(p.emitted)
	elapsed := p.clock.Now().Sub(p.start)
	if ahead := expected - elapsed; ahead > 0 {
		return p.clock.Sleep(ctx, ahead)
	}
	return nil
}
