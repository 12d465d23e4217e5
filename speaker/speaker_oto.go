//go:build !malgo && !portaudio
// +build !malgo,!portaudio

package speaker

import (
	"log"

	"github.com/ebitengine/oto/v3"
	"github.com/faiface/pcmstream"
)

type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
}

// openBackend creates the oto context and starts a player pulling from q. oto allows a single
// context per process, so only one Player may be open at a time.
func openBackend(format pcmstream.Format, bufferFrames int, q *queue, logger *log.Logger) (backend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(format.SampleRate),
		ChannelCount: format.NumChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   format.SampleRate.D(bufferFrames),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	player := ctx.NewPlayer(&sampleReader{q: q})
	player.Play()
	if logger != nil {
		logger.Printf("oto: playing %d Hz, %d channels", format.SampleRate, format.NumChannels)
	}
	return &otoBackend{ctx: ctx, player: player}, nil
}

func (b *otoBackend) buffered() int {
	return b.player.BufferedSize()
}

func (b *otoBackend) close() error {
	return b.player.Close()
}

// sampleReader is the io.Reader oto pulls encoded samples from.
type sampleReader struct {
	q *queue
}

// Read never blocks and never ends: when nothing is queued, the device gets silence.
func (s *sampleReader) Read(buf []byte) (n int, err error) {
	s.q.read(buf)
	return len(buf), nil
}
