package speaker

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var errClosed = errors.New("speaker: player closed")

// queue is the FIFO of encoded samples between Submit and the device. Submit appends to it;
// the backend takes from it on its own schedule.
//
// A queue holding limit bytes or more blocks push until the device catches up, so a producer
// can never run more than limit bytes ahead of playback. A limit of 0 disables the bound.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	limit   int
	err     error
	started bool

	// draining stops underrun counting until the next push.
	draining  bool
	underruns int
	consumed  int64
}

func newQueue(limit int) *queue {
	q := &queue{limit: limit}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(p []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.err == nil && q.limit > 0 && len(q.buf) > 0 && len(q.buf)+len(p) > q.limit {
		q.cond.Wait()
	}
	if q.err != nil {
		return q.err
	}
	q.draining = false
	q.buf = append(q.buf, p...)
	q.started = true
	q.cond.Broadcast()
	return nil
}

// read fills p with queued bytes and pads the rest with silence. It never blocks, since the
// device must always get something. It returns the number of queued bytes taken.
func (q *queue) read(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	q.consumed += int64(n)
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	if n < len(p) && q.started && !q.draining && q.err == nil {
		q.underruns++
	}
	if len(q.buf) == 0 {
		q.buf = nil
	}
	if n > 0 {
		q.cond.Broadcast()
	}
	return n
}

// fail makes every pending and later push return err. The first error wins.
func (q *queue) fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err == nil {
		q.err = err
	}
	q.cond.Broadcast()
}

// drain waits until every queued byte has been taken by the device.
func (q *queue) drain(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		case <-stop:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.draining = true
	for len(q.buf) > 0 {
		if q.err != nil {
			return q.err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		q.cond.Wait()
	}
	return q.err
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

func (q *queue) stats() (underruns int, consumed int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.underruns, q.consumed
}
