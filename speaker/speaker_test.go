package speaker

import (
	"context"
	"testing"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	closed bool
}

func (b *fakeBackend) buffered() int { return 0 }
func (b *fakeBackend) close() error { b.closed = true; return nil }

var stereo = pcmstream.Format{SampleRate: 1000, NumChannels: 2}

func newTestPlayer() (*Player, *fakeBackend) {
	return newLimitedTestPlayer(0)
}

func newLimitedTestPlayer(limit int) (*Player, *fakeBackend) {
	b := &fakeBackend{}
	return &Player{format: stereo, q: newQueue(limit), b: b}, b
}

type nopStorage struct{}

func (nopStorage) WriteSample(int16) error { return nil }
func (nopStorage) Finalize() error         { return nil }

func TestSubmitQueuesEncodedSamples(t *testing.T) {
	p, _ := newTestPlayer()
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{1, -1}}))
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{256, 0}}))
	require.Equal(t, 2*time.Millisecond, p.Queued())

	buf := make([]byte, 12)
	n := p.q.read(buf)
	require.Equal(t, 8, n)
	require.Equal(t, []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x01, 0x00, 0x00, 0, 0, 0, 0}, buf)
	require.Equal(t, 4, p.Played())
	require.Equal(t, 1, p.Underruns())
}

func TestSubmitRejectsOtherFormat(t *testing.T) {
	p, _ := newTestPlayer()
	mono := pcmstream.Format{SampleRate: 1000, NumChannels: 1}
	require.Error(t, p.Submit(pcmstream.Chunk{Format: mono, Samples: []int16{1}}))
}

func TestReadBeforeSubmitIsSilence(t *testing.T) {
	p, _ := newTestPlayer()
	buf := []byte{1, 2, 3, 4}
	require.Equal(t, 0, p.q.read(buf))
	require.Equal(t, []byte{0, 0, 0, 0}, buf)
	require.Equal(t, 0, p.Underruns())
}

func TestDrainWaitsForDevice(t *testing.T) {
	p, _ := newTestPlayer()
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: make([]int16, 1000)}))

	done := make(chan error, 1)
	go func() { done <- p.Drain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("drain returned before the device read anything")
	case <-time.After(20 * time.Millisecond):
	}

	buf := make([]byte, 500)
	for i := 0; i < 4; i++ {
		p.q.read(buf)
	}
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("drain did not return after the queue emptied")
	}
}

func TestDrainCancelled(t *testing.T) {
	p, _ := newTestPlayer()
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: make([]int16, 10)}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.Drain(ctx)
	require.Equal(t, context.DeadlineExceeded, errors.Cause(err))
}

func TestDeviceFailureFailsSubmit(t *testing.T) {
	p, _ := newTestPlayer()
	p.q.fail(errors.New("device lost"))
	require.EqualError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{1, 1}}), "device lost")
}

func TestClose(t *testing.T) {
	p, b := newTestPlayer()
	require.NoError(t, p.Close())
	require.True(t, b.closed)
	require.Equal(t, errClosed, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{1, 1}}))
}

func TestSubmitBlocksWhileQueueFull(t *testing.T) {
	p, _ := newLimitedTestPlayer(8)
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{1, 2, 3, 4}}))

	done := make(chan error, 1)
	go func() { done <- p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{5, 6}}) }()
	select {
	case <-done:
		t.Fatal("submit returned while the queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	buf := make([]byte, 4)
	p.q.read(buf)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("submit did not return after the device read")
	}
	require.Equal(t, 8, p.q.len())
}

func TestCloseUnblocksSubmit(t *testing.T) {
	p, _ := newLimitedTestPlayer(4)
	require.NoError(t, p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{1, 2}}))

	done := make(chan error, 1)
	go func() { done <- p.Submit(pcmstream.Chunk{Format: stereo, Samples: []int16{3, 4}}) }()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, p.Close())
	select {
	case err := <-done:
		require.Equal(t, errClosed, err)
	case <-time.After(time.Second):
		t.Fatal("close did not unblock submit")
	}
}

func TestPipelineHeldBackByStalledDevice(t *testing.T) {
	// 100ms chunks of 400 bytes, at most four of them ahead of the device
	const limit = 4 * 400
	p, _ := newLimitedTestPlayer(limit)
	pipe := &pcmstream.Pipeline{
		Pacer: pcmstream.NewPacer(pcmstream.Silence(stereo, 60*time.Second)),
		Out:   pcmstream.NewFanOut(nopStorage{}, p),
	}

	type result struct {
		st  pcmstream.Stats
		err error
	}
	done := make(chan result, 1)
	go func() {
		st, err := pipe.RunConcurrent(context.Background())
		done <- result{st, err}
	}()

	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, p.q.len(), limit)
	require.LessOrEqual(t, p.Queued(), 400*time.Millisecond)

	require.NoError(t, p.Close())
	select {
	case r := <-done:
		require.Error(t, r.err)
		require.Equal(t, pcmstream.StagePlayback, r.err.(*pcmstream.StageError).Stage)
		require.Less(t, r.st.Generated, 60*2000)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after the player was closed")
	}
}
