// Package mp3 decodes MP3 files into sample buffers.
package mp3

import (
	"io"
	"io/ioutil"

	"github.com/faiface/pcmstream"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// The decoder always produces signed 16-bit little-endian stereo.
const gomp3NumChannels = 2

// Decode reads the whole MP3 stream from r and returns a Buffer holding its samples.
func Decode(r io.Reader) (b *pcmstream.Buffer, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "mp3")
		}
	}()
	d, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	format := pcmstream.Format{
		SampleRate:  pcmstream.SampleRate(d.SampleRate()),
		NumChannels: gomp3NumChannels,
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	p, err := ioutil.ReadAll(d)
	if err != nil {
		return nil, err
	}
	return pcmstream.DecodeBuffer(format, p), nil
}
