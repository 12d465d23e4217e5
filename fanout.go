package pcmstream

import (
	"github.com/pkg/errors"
)

// PlaybackSink renders chunks on an audio device. Submit hands the chunk over and may return
// before the audio has been heard. A Submit error is final for the stream.
type PlaybackSink interface {
	Submit(c Chunk) error
}

// StorageSink persists a stream sample by sample. WriteSample is called once per sample in
// emission order and Finalize exactly once after the last sample. Calling WriteSample after
// Finalize is a programmer error.
type StorageSink interface {
	WriteSample(s int16) error
	Finalize() error
}

// Discard is a PlaybackSink which drops every chunk, for runs without an audio device.
var Discard PlaybackSink = discard{}

type discard struct{}

func (discard) Submit(Chunk) error { return nil }

// FanOut delivers every chunk to both a StorageSink and a PlaybackSink, in the same order.
//
// The storage write is synchronous and always happens before the chunk is submitted for
// playback, so the stored stream contains every sample that was ever handed to playback.
type FanOut struct {
	Storage  StorageSink
	Playback PlaybackSink

	stored    int
	submitted int
	finalized bool
}

// NewFanOut returns a FanOut writing to storage and submitting to playback.
func NewFanOut(storage StorageSink, playback PlaybackSink) *FanOut {
	return &FanOut{Storage: storage, Playback: playback}
}

// Deliver writes c to storage, then submits it to playback. Errors are *StageError.
func (f *FanOut) Deliver(c Chunk) error {
	if err := f.store(c); err != nil {
		return err
	}
	return f.submit(c)
}

// DeliverSample delivers a single sample as a one-sample chunk.
func (f *FanOut) DeliverSample(format Format, s int16) error {
	return f.Deliver(Chunk{Format: format, Samples: []int16{s}})
}

// Stored returns the number of samples written to storage.
func (f *FanOut) Stored() int { return f.stored }

// Submitted returns the number of samples submitted to playback.
func (f *FanOut) Submitted() int { return f.submitted }

// Finalize finalizes the storage sink. Only the first call reaches the sink.
func (f *FanOut) Finalize() error {
	if f.finalized {
		return nil
	}
	f.finalized = true
	if err := f.Storage.Finalize(); err != nil {
		return stageError(StageStorage, errors.Wrap(err, "finalize"))
	}
	return nil
}

func (f *FanOut) store(c Chunk) error {
	for _, s := range c.Samples {
		if err := f.Storage.WriteSample(s); err != nil {
			return stageError(StageStorage, errors.Wrapf(err, "write sample %d", f.stored))
		}
		f.stored++
	}
	return nil
}

func (f *FanOut) submit(c Chunk) error {
	if err := f.Playback.Submit(c); err != nil {
		return stageError(StagePlayback, errors.Wrapf(err, "submit chunk at sample %d", f.submitted))
	}
	f.submitted += c.Len()
	return nil
}
