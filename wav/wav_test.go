package wav_test

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/faiface/pcmstream/generators"
	"github.com/faiface/pcmstream/wav"
)

func TestWriterHeader(t *testing.T) {
	format := pcmstream.Format{SampleRate: 44100, NumChannels: 2}
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := wav.Create(path, format)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if err := w.WriteSample(int16(i)); err != nil {
			t.Fatal(err)
		}
	}
	if w.Written() != 1000 {
		t.Errorf("expected 1000 written, got %d", w.Written())
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	p, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 44+2000 {
		t.Fatalf("expected %d bytes, got %d", 44+2000, len(p))
	}
	le := binary.LittleEndian
	checks := []struct {
		name      string
		got, want uint32
	}{
		{"riff size", le.Uint32(p[4:]), 36 + 2000},
		{"channels", uint32(le.Uint16(p[22:])), 2},
		{"sample rate", le.Uint32(p[24:]), 44100},
		{"byte rate", le.Uint32(p[28:]), 44100 * 4},
		{"block align", uint32(le.Uint16(p[32:])), 4},
		{"bits per sample", uint32(le.Uint16(p[34:])), 16},
		{"data size", le.Uint32(p[40:]), 2000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	format := pcmstream.Format{SampleRate: 8000, NumChannels: 2}
	src, err := generators.NoiseSeed(format, 2*time.Second, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := pcmstream.Collect(src)

	f, err := ioutil.TempFile(t.TempDir(), "*.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.Encode(f, pcmstream.NewBuffer(format, want)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	b, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b.Format() != format {
		t.Errorf("expected format %+v, got %+v", format, b.Format())
	}
	if !reflect.DeepEqual(want, b.Samples()) {
		t.Error("decoded samples differ from the encoded ones")
	}
	if d, _ := b.Duration(); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := wav.Decode(bytes.NewReader(make([]byte, 44))); err == nil {
		t.Error("expected error for a header without RIFF")
	}
	if _, err := wav.Decode(bytes.NewReader([]byte("RIFF"))); err == nil {
		t.Error("expected error for a short header")
	}
}

func TestWriteAfterFinalizePanics(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := wav.NewWriter(f, pcmstream.Format{SampleRate: 100, NumChannels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	w.WriteSample(0)
}
