package pcmstream

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Precision is the number of bytes used to encode a single sample. Every stream in this
// package is signed 16-bit.
const Precision = 2

// Format is the format of a Source, a Chunk or a sink.
type Format struct {
	// SampleRate is the number of samples per second.
	SampleRate SampleRate

	// NumChannels is the number of channels. The value of 1 is mono, the value of 2 is stereo.
	// The samples should always be interleaved.
	NumChannels int
}

// Validate reports whether f describes a usable stream.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return errors.Errorf("format: invalid sample rate: %d", f.SampleRate)
	}
	if f.NumChannels <= 0 {
		return errors.Errorf("format: invalid number of channels: %d", f.NumChannels)
	}
	return nil
}

// Width returns the number of bytes per one frame (all channels).
//
// This is equal to f.NumChannels * Precision.
func (f Format) Width() int {
	return f.NumChannels * Precision
}

// SamplesPerSecond returns the number of interleaved samples in one second of audio.
func (f Format) SamplesPerSecond() int {
	return int(f.SampleRate) * f.NumChannels
}

// D returns the duration of n interleaved samples.
func (f Format) D(n int) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(f.SamplesPerSecond())
}

// EncodeSample encodes a single sample in Precision bytes to p in little-endian order.
func (f Format) EncodeSample(p []byte, s int16) (n int) {
	p[0] = byte(s)
	p[1] = byte(uint16(s) >> 8)
	return Precision
}

// DecodeSample decodes a single little-endian sample from p.
func (f Format) DecodeSample(p []byte) (s int16, n int) {
	return int16(uint16(p[0]) | uint16(p[1])<<8), Precision
}

// Buffer is a Source backed by samples held in memory. Sources decoded from files are
// Buffers: the whole input is decoded up front and Next only indexes forward.
type Buffer struct {
	f    Format
	data []int16
	pos  int
}

// NewBuffer creates a Buffer of format f streaming data. The Buffer takes ownership of data.
func NewBuffer(f Format, data []int16) *Buffer {
	if err := f.Validate(); err != nil {
		panic(fmt.Errorf("buffer: %v", err))
	}
	return &Buffer{f: f, data: data}
}

// DecodeBuffer reinterprets every consecutive pair of bytes of p as a little-endian sample. A
// trailing odd byte is dropped.
func DecodeBuffer(f Format, p []byte) *Buffer {
	data := make([]int16, len(p)/Precision)
	for i := range data {
		data[i], _ = f.DecodeSample(p[i*Precision:])
	}
	return NewBuffer(f, data)
}

// Format returns the format of the Buffer.
func (b *Buffer) Format() Format {
	return b.f
}

// Duration returns len(samples) / (sample rate × channels).
func (b *Buffer) Duration() (time.Duration, bool) {
	return b.f.D(len(b.data)), true
}

// Next returns the sample at the cursor and moves the cursor forward.
func (b *Buffer) Next() (int16, bool) {
	if b.pos >= len(b.data) {
		return 0, false
	}
	s := b.data[b.pos]
	b.pos++
	return s, true
}

// Len returns the number of samples in the Buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Position returns the number of samples already streamed.
func (b *Buffer) Position() int {
	return b.pos
}

// Samples returns the underlying samples. The slice must not be modified.
func (b *Buffer) Samples() []int16 {
	return b.data
}
