// Package vorbis decodes ogg/vorbis files into sample buffers.
package vorbis

import (
	"io"
	"math"

	"github.com/faiface/pcmstream"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"
)

// Decode reads the whole ogg/vorbis stream from r and returns a Buffer holding its samples,
// converted to 16 bits.
func Decode(r io.Reader) (b *pcmstream.Buffer, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "ogg/vorbis")
		}
	}()
	d, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	format := pcmstream.Format{
		SampleRate:  pcmstream.SampleRate(d.SampleRate()),
		NumChannels: d.Channels(),
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	var (
		samples []int16
		tmp     = make([]float32, 4096*format.NumChannels)
	)
	for {
		n, err := d.Read(tmp)
		for _, x := range tmp[:n] {
			samples = append(samples, floatTo16(x))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return pcmstream.NewBuffer(format, samples), nil
}

func floatTo16(x float32) int16 {
	v := math.Round(float64(x) * math.MaxInt16)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
