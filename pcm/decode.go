// Package pcm implements reading and writing of headerless little-endian signed 16-bit PCM.
package pcm

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// Decode reads all of r and returns a Buffer of format f streaming it. Every consecutive pair
// of bytes becomes one little-endian sample; a trailing odd byte is dropped.
func Decode(r io.Reader, f pcmstream.Format) (*pcmstream.Buffer, error) {
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "pcm")
	}
	p, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "pcm")
	}
	return pcmstream.DecodeBuffer(f, p), nil
}

// Open reads the whole file at path and decodes it as format f. Nothing is decoded after Open
// returns: streaming the returned Buffer only indexes forward.
func Open(path string, f pcmstream.Format) (*pcmstream.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "pcm")
	}
	defer file.Close()
	return Decode(file, f)
}
