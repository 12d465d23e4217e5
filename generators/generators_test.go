package generators_test

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/faiface/pcmstream/generators"
)

var testFormat = pcmstream.Format{SampleRate: 1000, NumChannels: 2}

func allGenerators(t *testing.T, f pcmstream.Format, d time.Duration) map[string]pcmstream.Source {
	t.Helper()
	noise, err := generators.NoiseSeed(f, d, 1)
	if err != nil {
		t.Fatal(err)
	}
	saw, err := generators.Saw(f, d, 50, 8000)
	if err != nil {
		t.Fatal(err)
	}
	fm, err := generators.FMSaw(f, d, 50, 3, 20, 8000)
	if err != nil {
		t.Fatal(err)
	}
	scale, err := generators.ScaleSaw(f, d, 40, 3, 20, 8000)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]pcmstream.Source{
		"noise": noise,
		"saw":   saw,
		"fm":    fm,
		"scale": scale,
	}
}

func TestGeneratorsExhaust(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 3 * time.Second, 2500 * time.Millisecond} {
		want := pcmstream.Total(testFormat, d)
		for name, s := range allGenerators(t, testFormat, d) {
			for i := 0; i < want; i++ {
				if _, ok := s.Next(); !ok {
					t.Fatalf("%s (%v): exhausted after %d samples, expected %d", name, d, i, want)
				}
			}
			for i := 0; i < 5; i++ {
				if _, ok := s.Next(); ok {
					t.Fatalf("%s (%v): produced a sample after exhaustion", name, d)
				}
			}
		}
	}
}

func TestTotalTruncatesFractionalSeconds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{999 * time.Millisecond, 0},
		{time.Second, 2000},
		{1900 * time.Millisecond, 2000},
		{5 * time.Second, 10000},
	}
	for _, c := range cases {
		if got := pcmstream.Total(testFormat, c.d); got != c.want {
			t.Errorf("Total(%v): expected %d, got %d", c.d, c.want, got)
		}
	}
}

func TestGeneratorsReportDuration(t *testing.T) {
	for name, s := range allGenerators(t, testFormat, 2*time.Second) {
		d, ok := s.Duration()
		if !ok || d != 2*time.Second {
			t.Errorf("%s: expected duration 2s, got %v (%v)", name, d, ok)
		}
		if s.Format() != testFormat {
			t.Errorf("%s: expected format %+v, got %+v", name, testFormat, s.Format())
		}
	}
}

func TestSawPeriodic(t *testing.T) {
	f := pcmstream.Format{SampleRate: 44100, NumChannels: 1}
	// powers of two keep 1/n exact, so the accumulated phase does not drift
	for _, n := range []int{4, 8, 64, 128} {
		s, err := generators.Saw(f, time.Second, float64(f.SampleRate)/float64(n), 30000)
		if err != nil {
			t.Fatal(err)
		}
		data := pcmstream.Collect(s)
		// skip one period to warm up
		for i := n; i+n < len(data); i++ {
			if data[i] != data[i+n] {
				t.Fatalf("period %d: sample %d (%d) != sample %d (%d)", n, i, data[i], i+n, data[i+n])
			}
		}
	}
}

func TestSawRamp(t *testing.T) {
	f := pcmstream.Format{SampleRate: 100, NumChannels: 1}
	s, err := generators.Saw(f, time.Second, 25, 1000)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{0, 250, 500, 750, 0, 250, 500, 750}
	got := pcmstream.Collect(pcmstream.Take(len(want), s))
	if !reflect.DeepEqual(want, got) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSawClamps(t *testing.T) {
	f := pcmstream.Format{SampleRate: 100, NumChannels: 1}
	s, err := generators.Saw(f, time.Second, 40, 100000)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range pcmstream.Collect(s) {
		if v < 0 {
			t.Fatalf("clamped saw wrapped around to %d", v)
		}
	}
}

func TestFMSawWithoutDepthIsSaw(t *testing.T) {
	f := pcmstream.Format{SampleRate: 44100, NumChannels: 2}
	for _, base := range []float64{55, 261.63, 440, 1234.5} {
		saw, err := generators.Saw(f, 2*time.Second, base, 12000)
		if err != nil {
			t.Fatal(err)
		}
		fm, err := generators.FMSaw(f, 2*time.Second, base, 7, 0, 12000)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(pcmstream.Collect(saw), pcmstream.Collect(fm)) {
			t.Errorf("base %v: fm saw with zero depth differs from saw", base)
		}
	}
}

func TestFMSawModulates(t *testing.T) {
	f := pcmstream.Format{SampleRate: 44100, NumChannels: 1}
	saw, _ := generators.Saw(f, time.Second, 440, 12000)
	fm, err := generators.FMSaw(f, time.Second, 440, 5, 200, 12000)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(pcmstream.Collect(saw), pcmstream.Collect(fm)) {
		t.Error("fm saw with depth 200 is identical to saw")
	}
}

func TestNoiseSeeded(t *testing.T) {
	a, _ := generators.NoiseSeed(testFormat, time.Second, 42)
	b, _ := generators.Noise(testFormat, time.Second, rand.New(rand.NewSource(42)))
	da, db := pcmstream.Collect(a), pcmstream.Collect(b)
	if !reflect.DeepEqual(da, db) {
		t.Error("noise with the same seed differs")
	}

	var lo, hi bool
	for _, v := range da {
		lo = lo || v < -16384
		hi = hi || v > 16384
	}
	if !lo || !hi {
		t.Error("noise does not cover the 16-bit range")
	}
}

func TestInvalidParameters(t *testing.T) {
	f := pcmstream.Format{SampleRate: 1000, NumChannels: 1}
	if _, err := generators.Saw(f, time.Second, 500, 1); err == nil {
		t.Error("saw at nyquist: expected error")
	}
	if _, err := generators.Saw(f, time.Second, -1, 1); err == nil {
		t.Error("saw with negative frequency: expected error")
	}
	if _, err := generators.FMSaw(f, time.Second, 400, 1, 150, 1); err == nil {
		t.Error("fm saw over nyquist: expected error")
	}
	if _, err := generators.ScaleSaw(f, time.Second, 200, 1, 1, 1); err == nil {
		t.Error("scale above nyquist: expected error")
	}
	if _, err := generators.Noise(pcmstream.Format{SampleRate: 1000}, time.Second, nil); err == nil {
		t.Error("noise without channels: expected error")
	}
	if _, err := generators.Noise(f, -time.Second, nil); err == nil {
		t.Error("noise with negative duration: expected error")
	}
}

func TestSnap(t *testing.T) {
	table := generators.ScaleTable(100)
	cases := []struct {
		freq, want float64
	}{
		{0, 100},
		{100, 100},
		{120, 125},
		{116, 112.5},
		{1000, 250},
		// halfway between 100 and 112.5: the first entry wins
		{106.25, 100},
	}
	for _, c := range cases {
		if got := generators.Snap(table, c.freq); got != c.want {
			t.Errorf("Snap(%v): expected %v, got %v", c.freq, c.want, got)
		}
	}
	if got := generators.Snap(nil, 3); got != 3 {
		t.Errorf("Snap on empty table: expected 3, got %v", got)
	}
}
