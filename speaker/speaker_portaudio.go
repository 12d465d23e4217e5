//go:build portaudio && !malgo
// +build portaudio,!malgo

package speaker

import (
	"log"
	"sync"

	"github.com/faiface/pcmstream"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// portaudioBackend pushes samples with blocking writes from its own goroutine. Write returns
// once the device accepted the buffer, which paces the pump.
type portaudioBackend struct {
	stream *portaudio.Stream
	format pcmstream.Format
	out    []int16
	q      *queue
	logger *log.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

func openBackend(format pcmstream.Format, bufferFrames int, q *queue, logger *log.Logger) (backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize")
	}
	out := make([]int16, bufferFrames*format.NumChannels)
	stream, err := portaudio.OpenDefaultStream(0, format.NumChannels, float64(format.SampleRate), bufferFrames, out)
	if err != nil {
		portaudio.Terminate()
		return nil, errors.Wrap(err, "open stream")
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, errors.Wrap(err, "start stream")
	}
	b := &portaudioBackend{
		stream: stream,
		format: format,
		out:    out,
		q:      q,
		logger: logger,
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.pump()
	return b, nil
}

func (b *portaudioBackend) pump() {
	defer b.wg.Done()
	tmp := make([]byte, len(b.out)*pcmstream.Precision)
	for {
		select {
		case <-b.done:
			return
		default:
		}
		b.q.read(tmp)
		for i := range b.out {
			b.out[i], _ = b.format.DecodeSample(tmp[i*pcmstream.Precision:])
		}
		if err := b.stream.Write(); err != nil {
			if b.logger != nil {
				b.logger.Printf("portaudio: %v", err)
			}
			b.q.fail(errors.Wrap(err, "speaker: portaudio write"))
			return
		}
	}
}

// buffered is always zero: a returned Write means the device holds the samples.
func (b *portaudioBackend) buffered() int {
	return 0
}

func (b *portaudioBackend) close() error {
	close(b.done)
	b.wg.Wait()
	err := b.stream.Stop()
	if cerr := b.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
