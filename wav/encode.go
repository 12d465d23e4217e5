package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// Writer is a StorageSink writing 16-bit PCM in WAVE format.
//
// The header is written up front with placeholder sizes and rewritten by Finalize, which is
// why the output must be an io.WriteSeeker.
type Writer struct {
	w         io.WriteSeeker
	bw        *bufio.Writer
	closer    io.Closer
	h         header
	tmp       [pcmstream.Precision]byte
	written   int
	finalized bool
}

// NewWriter writes the WAVE header for format to w and returns a Writer appending samples to
// it. Finalize does not close w.
func NewWriter(w io.WriteSeeker, format pcmstream.Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, errors.Wrap(err, "wav")
	}

	h := header{
		RiffMark:      [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      -1, // finalization
		WaveMark:      [4]byte{'W', 'A', 'V', 'E'},
		FmtMark:       [4]byte{'f', 'm', 't', ' '},
		FormatSize:    16,
		FormatType:    1,
		NumChans:      int16(format.NumChannels),
		SampleRate:    int32(format.SampleRate),
		ByteRate:      int32(int(format.SampleRate) * format.Width()),
		BytesPerFrame: int16(format.Width()),
		BitsPerSample: pcmstream.Precision * 8,
		DataMark:      [4]byte{'d', 'a', 't', 'a'},
		DataSize:      -1, // finalization
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "wav")
	}
	return &Writer{w: w, bw: bufio.NewWriter(w), h: h}, nil
}

// Create creates the file at path and returns a Writer writing to it. Finalize closes the file.
func Create(path string, format pcmstream.Format) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "wav")
	}
	w, err := NewWriter(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// WriteSample appends s to the data chunk. It panics if called after Finalize.
func (w *Writer) WriteSample(s int16) error {
	if w.finalized {
		panic(fmt.Errorf("wav: write sample after finalize"))
	}
	pcmstream.Format{}.EncodeSample(w.tmp[:], s)
	if _, err := w.bw.Write(w.tmp[:]); err != nil {
		return errors.Wrap(err, "wav")
	}
	w.written++
	return nil
}

// Written returns the number of samples written.
func (w *Writer) Written() int {
	return w.written
}

// Finalize flushes the samples, fills in the sizes in the header and, if the Writer was created
// by Create, closes the file. It must be called exactly once.
func (w *Writer) Finalize() (err error) {
	if w.finalized {
		panic(fmt.Errorf("wav: finalize called twice"))
	}
	w.finalized = true
	defer func() {
		if w.closer != nil {
			if cerr := w.closer.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			err = errors.Wrap(err, "wav")
		}
	}()

	if err := w.bw.Flush(); err != nil {
		return err
	}

	// finalize header
	dataSize := w.written * pcmstream.Precision
	w.h.FileSize = int32(headerSize - 8 + dataSize)
	w.h.DataSize = int32(dataSize)
	if _, err := w.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.w, binary.LittleEndian, &w.h); err != nil {
		return err
	}
	if _, err := w.w.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}

// Encode writes all audio streamed from s to w in WAVE format.
func Encode(w io.WriteSeeker, s pcmstream.Source) error {
	ww, err := NewWriter(w, s.Format())
	if err != nil {
		return err
	}
	for {
		sample, ok := s.Next()
		if !ok {
			return ww.Finalize()
		}
		if err := ww.WriteSample(sample); err != nil {
			return err
		}
	}
}
