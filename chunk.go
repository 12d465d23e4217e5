package pcmstream

import "time"

// Chunk is an ordered batch of interleaved samples tagged with their format. A Chunk is handed
// from stage to stage by value: whoever receives it owns it, and the sender must not touch
// Samples afterwards.
type Chunk struct {
	Format  Format
	Samples []int16
}

// Len returns the number of samples in the Chunk.
func (c Chunk) Len() int {
	return len(c.Samples)
}

// Duration returns the playing time of the Chunk.
func (c Chunk) Duration() time.Duration {
	return c.Format.D(len(c.Samples))
}

// Encode writes the Chunk's samples to p in little-endian order and returns the number of
// bytes written. p must be at least 2*c.Len() bytes long.
func (c Chunk) Encode(p []byte) (n int) {
	for _, s := range c.Samples {
		n += c.Format.EncodeSample(p[n:], s)
	}
	return n
}
