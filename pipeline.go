package pcmstream

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultQueueDepth is the number of chunks RunConcurrent lets wait for playback before the
// producer blocks.
const DefaultQueueDepth = 4

// Stats summarizes a finished run.
type Stats struct {
	Chunks    int // chunks produced by the pacer
	Generated int // samples produced by the pacer
	Stored    int // samples written to storage
	Submitted int // samples submitted to playback
}

// Pipeline connects a Pacer to a FanOut.
type Pipeline struct {
	Pacer *Pacer
	Out   *FanOut

	// QueueDepth bounds the chunk queue of RunConcurrent. Zero means DefaultQueueDepth.
	QueueDepth int
}

// Run drives the whole stream on the calling goroutine: each chunk is generated, stored and
// submitted before the next one is generated. Storage is finalized when the source is
// exhausted or the run fails.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var st Stats
	err := p.produce(ctx, &st, p.Out.submit)
	return p.finish(st, err)
}

// RunConcurrent generates and stores chunks on the calling goroutine and submits them to
// playback from a second goroutine, through a queue of QueueDepth chunks. A full queue blocks
// the producer. When the source is exhausted the queue is closed, the consumer submits
// everything still queued, and RunConcurrent waits for it before finalizing storage.
//
// A playback failure cancels the producer. A storage or generation failure stops the
// producer, and the chunks already stored are still submitted.
func (p *Pipeline) RunConcurrent(ctx context.Context) (Stats, error) {
	depth := p.QueueDepth
	if depth <= 0 {
		depth = DefaultQueueDepth
	}

	var (
		st    Stats
		queue = make(chan Chunk, depth)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for c := range queue {
			if err := p.Out.submit(c); err != nil {
				return err
			}
		}
		return nil
	})

	perr := p.produce(gctx, &st, func(c Chunk) error {
		select {
		case queue <- c:
			return nil
		case <-gctx.Done():
			return stageError(StageGeneration, gctx.Err())
		}
	})
	close(queue)
	cerr := g.Wait()

	if cerr != nil {
		return p.finish(st, cerr)
	}
	return p.finish(st, perr)
}

func (p *Pipeline) produce(ctx context.Context, st *Stats, handoff func(Chunk) error) error {
	for {
		c, ok, err := p.Pacer.Next(ctx)
		if err != nil {
			return stageError(StageGeneration, err)
		}
		if !ok {
			return nil
		}
		st.Chunks++
		st.Generated += c.Len()

		if err := p.Out.store(c); err != nil {
			return err
		}
		if err := handoff(c); err != nil {
			return err
		}
	}
}

func (p *Pipeline) finish(st Stats, err error) (Stats, error) {
	ferr := p.Out.Finalize()
	if err == nil {
		err = ferr
	}
	st.Stored = p.Out.Stored()
	st.Submitted = p.Out.Submitted()
	return st, err
}
