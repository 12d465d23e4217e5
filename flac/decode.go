// Package flac decodes FLAC files into sample buffers.
package flac

import (
	"io"

	"github.com/faiface/pcmstream"
	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

// Decode reads the whole FLAC stream from r and returns a Buffer holding its samples, scaled
// to 16 bits and interleaved.
func Decode(r io.Reader) (b *pcmstream.Buffer, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "flac")
		}
	}()
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}

	format := pcmstream.Format{
		SampleRate:  pcmstream.SampleRate(stream.Info.SampleRate),
		NumChannels: int(stream.Info.NChannels),
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	bps := int(stream.Info.BitsPerSample)

	samples := make([]int16, 0, int(stream.Info.NSamples)*format.NumChannels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(frame.Subframes) < format.NumChannels {
			return nil, errors.Errorf("frame has %d subframes, expected %d", len(frame.Subframes), format.NumChannels)
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for c := 0; c < format.NumChannels; c++ {
				samples = append(samples, to16(frame.Subframes[c].Samples[i], bps))
			}
		}
	}
	return pcmstream.NewBuffer(format, samples), nil
}

func to16(x int32, bps int) int16 {
	switch {
	case bps > 16:
		return int16(x >> uint(bps-16))
	case bps < 16:
		return int16(x << uint(16-bps))
	}
	return int16(x)
}
