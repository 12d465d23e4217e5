// Package speaker implements a PlaybackSink rendering chunks through physical speakers.
//
// The default backend is oto. Build with the malgo or portaudio tag to use miniaudio or
// PortAudio instead.
package speaker

import (
	"context"
	"log"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// queueBuffers is how many device buffers Submit may queue before it blocks.
const queueBuffers = 4

// backend is the device side of a Player: it takes samples out of the queue on its own
// schedule.
type backend interface {
	// buffered returns the number of bytes the device has taken but not yet played.
	buffered() int
	close() error
}

type options struct {
	logger *log.Logger
}

// Option configures Open.
type Option func(*options)

// WithLogger makes the backend report its diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Player plays submitted chunks on the default output device.
type Player struct {
	format pcmstream.Format
	q      *queue
	b      backend
}

// Open acquires the default output device for format.
//
// The bufferFrames argument specifies the number of frames of the device's buffer. Bigger
// bufferFrames means lower CPU usage and more reliable playback. Lower bufferFrames means
// better responsiveness and less delay. At most queueBuffers device buffers of audio are held
// ahead of the device.
func Open(format pcmstream.Format, bufferFrames int, opts ...Option) (*Player, error) {
	if err := format.Validate(); err != nil {
		return nil, errors.Wrap(err, "speaker")
	}
	if bufferFrames <= 0 {
		return nil, errors.Errorf("speaker: invalid buffer size: %d", bufferFrames)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	q := newQueue(bufferFrames * format.Width() * queueBuffers)
	b, err := openBackend(format, bufferFrames, q, o.logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}
	return &Player{format: format, q: q, b: b}, nil
}

// Format returns the format the device was opened with.
func (p *Player) Format() pcmstream.Format {
	return p.format
}

// Submit queues c for playback and returns without waiting for it to be heard. While the
// queue is full, Submit blocks until the device has taken enough of it, so a producer
// submitting in a loop is held to the playback rate. Close unblocks a waiting Submit. The
// chunk format must match the device format.
func (p *Player) Submit(c pcmstream.Chunk) error {
	if c.Format != p.format {
		return errors.Errorf("speaker: chunk format %+v does not match device format %+v", c.Format, p.format)
	}
	buf := make([]byte, c.Len()*pcmstream.Precision)
	c.Encode(buf)
	return p.q.push(buf)
}

// Queued returns the duration of audio submitted but not yet taken by the device.
func (p *Player) Queued() time.Duration {
	return p.format.D(p.q.len() / pcmstream.Precision)
}

// Underruns returns how many times the device asked for more audio than was queued after
// playback started.
func (p *Player) Underruns() int {
	n, _ := p.q.stats()
	return n
}

// Played returns the number of samples the device has taken.
func (p *Player) Played() int {
	_, consumed := p.q.stats()
	return int(consumed / pcmstream.Precision)
}

// Drain blocks until everything submitted so far has been played, or ctx is done.
func (p *Player) Drain(ctx context.Context) error {
	if err := p.q.drain(ctx); err != nil {
		return errors.Wrap(err, "speaker")
	}
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for p.b.buffered() > 0 {
		select {
		case <-tick.C:
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "speaker")
		}
	}
	return nil
}

// Close stops playback and releases the device. Later calls to Submit fail.
func (p *Player) Close() error {
	p.q.fail(errClosed)
	if err := p.b.close(); err != nil {
		return errors.Wrap(err, "speaker")
	}
	return nil
}
