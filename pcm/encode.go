package pcm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/faiface/pcmstream"
	"github.com/pkg/errors"
)

// Writer is a StorageSink writing raw PCM.
type Writer struct {
	f         pcmstream.Format
	bw        *bufio.Writer
	closer    io.Closer
	tmp       [pcmstream.Precision]byte
	written   int
	finalized bool
}

// NewWriter returns a Writer writing samples of format f to w. Finalize flushes but does not
// close w.
func NewWriter(w io.Writer, f pcmstream.Format) (*Writer, error) {
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "pcm")
	}
	return &Writer{f: f, bw: bufio.NewWriter(w)}, nil
}

// Create creates the file at path and returns a Writer writing to it. Finalize closes the file.
func Create(path string, f pcmstream.Format) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "pcm")
	}
	w, err := NewWriter(file, f)
	if err != nil {
		file.Close()
		return nil, err
	}
	w.closer = file
	return w, nil
}

// WriteSample appends s to the output. It panics if called after Finalize.
func (w *Writer) WriteSample(s int16) error {
	if w.finalized {
		panic(fmt.Errorf("pcm: write sample after finalize"))
	}
	w.f.EncodeSample(w.tmp[:], s)
	if _, err := w.bw.Write(w.tmp[:]); err != nil {
		return errors.Wrap(err, "pcm")
	}
	w.written++
	return nil
}

// Written returns the number of samples written.
func (w *Writer) Written() int {
	return w.written
}

// Finalize flushes buffered samples and closes the file if the Writer was created by Create.
func (w *Writer) Finalize() error {
	if w.finalized {
		panic(fmt.Errorf("pcm: finalize called twice"))
	}
	w.finalized = true
	err := w.bw.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "pcm")
}

// Encode writes all samples streamed from s to w in raw PCM format.
func Encode(w io.Writer, s pcmstream.Source) error {
	pw, err := NewWriter(w, s.Format())
	if err != nil {
		return err
	}
	for {
		sample, ok := s.Next()
		if !ok {
			return pw.Finalize()
		}
		if err := pw.WriteSample(sample); err != nil {
			return err
		}
	}
}
