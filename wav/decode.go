// Package wav implements a WAVE storage sink and decoding of WAVE files into sample buffers.
package wav

import (
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

const headerSize = 44

type header struct {
	RiffMark      [4]byte
	FileSize      int32
	WaveMark      [4]byte
	FmtMark       [4]byte
	FormatSize    int32
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
	DataMark      [4]byte
	DataSize      int32
}

// Decode reads audio data in WAVE format from r and returns a Buffer holding all of it. 8-bit
// samples are widened to 16 bits.
//
// A data size of -1, left by a writer that was never finalized, means the data runs to the end
// of r.
func Decode(r io.Reader) (b *pcmstream.Buffer, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "wav")
		}
	}()

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.RiffMark[:]) != "RIFF" {
		return nil, errors.New("missing RIFF at the beginning")
	}
	if string(h.WaveMark[:]) != "WAVE" {
		return nil, errors.New("unsupported file type")
	}
	if string(h.FmtMark[:]) != "fmt " {
		return nil, errors.New("missing format chunk marker")
	}
	if string(h.DataMark[:]) != "data" {
		return nil, errors.New("missing data chunk marker")
	}
	if h.FormatType != 1 {
		return nil, errors.New("unsupported format type")
	}
	if h.NumChans <= 0 {
		return nil, errors.New("invalid number of channels (less than 1)")
	}
	if h.BitsPerSample != 8 && h.BitsPerSample != 16 {
		return nil, errors.New("unsupported number of bits per sample, 8 or 16 are supported")
	}
	format := pcmstream.Format{
		SampleRate:  pcmstream.SampleRate(h.SampleRate),
		NumChannels: int(h.NumChans),
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	data := r
	if h.DataSize >= 0 {
		data = io.LimitReader(r, int64(h.DataSize))
	}
	p, err := ioutil.ReadAll(data)
	if err != nil {
		return nil, err
	}

	if h.BitsPerSample == 8 {
		samples := make([]int16, len(p))
		for i, x := range p {
			samples[i] = int16(int(x)-128) << 8
		}
		return pcmstream.NewBuffer(format, samples), nil
	}
	return pcmstream.DecodeBuffer(format, p), nil
}
