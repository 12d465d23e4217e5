// Command pcmstream generates or decodes a PCM stream, plays it and records it at the same time.
//
//	pcmstream -wave scale -freq 220 -duration 30s -o scale.wav
//	pcmstream -config session.lua -mute
//	pcmstream -input song.mp3 -o song.wav -concurrent
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/pcmstream"
	"github.com/faiface/pcmstream/effects"
	"github.com/faiface/pcmstream/flac"
	"github.com/faiface/pcmstream/generators"
	"github.com/faiface/pcmstream/internal/config"
	"github.com/faiface/pcmstream/mp3"
	"github.com/faiface/pcmstream/pcm"
	"github.com/faiface/pcmstream/speaker"
	"github.com/faiface/pcmstream/vorbis"
	"github.com/faiface/pcmstream/wav"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pcmstream: ")

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if se, ok := err.(*pcmstream.StageError); ok {
			log.Fatalf("%s failed: %v", se.Stage, se.Err)
		}
		log.Fatal(err)
	}
}

// loadConfig applies the session file named by -config, then the remaining flags.
func loadConfig(args []string) (config.Config, error) {
	cfg := config.Default()

	pre := flag.NewFlagSet("pcmstream", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	session := pre.String("config", "", "")
	if err := pre.Parse(configArgs(args)); err != nil {
		return cfg, errors.Wrap(err, "config flag")
	}
	if *session != "" {
		if err := cfg.LoadLua(*session); err != nil {
			return cfg, err
		}
	}

	fs := flag.NewFlagSet("pcmstream", flag.ExitOnError)
	fs.String("config", *session, "Lua session file applied before the other flags")
	cfg.RegisterFlags(fs)
	fs.Parse(args)

	return cfg, cfg.Validate()
}

// configArgs picks the -config flag out of args so it can be parsed first.
func configArgs(args []string) []string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		switch {
		case name == "config" && i+1 < len(args):
			return []string{"-config", args[i+1]}
		case strings.HasPrefix(name, "config="):
			return []string{a}
		}
	}
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	src, err := openSource(cfg)
	if err != nil {
		return &pcmstream.StageError{Stage: pcmstream.StageGeneration, Err: err}
	}
	format := src.Format()

	storage, err := createStorage(cfg.Output, format)
	if err != nil {
		return &pcmstream.StageError{Stage: pcmstream.StageStorage, Err: err}
	}

	var (
		playback pcmstream.PlaybackSink = pcmstream.Discard
		player   *speaker.Player
	)
	if !cfg.Mute {
		player, err = speaker.Open(format, pcmstream.DefaultChunkFrames(format), speaker.WithLogger(log.Default()))
		if err != nil {
			if ferr := storage.Finalize(); ferr != nil {
				log.Printf("finalize %s: %v", cfg.Output, ferr)
			}
			return &pcmstream.StageError{Stage: pcmstream.StagePlayback, Err: err}
		}
		defer player.Close()
		playback = player
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		playback = newProgress(os.Stderr, src, playback)
		defer fmt.Fprintln(os.Stderr)
	}

	policy, _ := cfg.PacerPolicy()
	generated := pcmstream.Callback(format, func() {
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			log.Printf("generation finished")
		}
	})
	p := &pcmstream.Pipeline{
		Pacer:      pcmstream.NewPacer(pcmstream.Seq(src, generated), pcmstream.WithPolicy(policy)),
		Out:        pcmstream.NewFanOut(storage, playback),
		QueueDepth: cfg.QueueDepth,
	}

	log.Printf("streaming %s to %s (%d Hz, %d channels, %s pacing)",
		describe(cfg), cfg.Output, format.SampleRate, format.NumChannels, p.Pacer.Policy())

	var st pcmstream.Stats
	if cfg.Concurrent {
		st, err = p.RunConcurrent(ctx)
	} else {
		st, err = p.Run(ctx)
	}
	if err != nil {
		return err
	}

	if player != nil {
		if err := player.Drain(ctx); err != nil {
			return &pcmstream.StageError{Stage: pcmstream.StagePlayback, Err: err}
		}
		if n := player.Underruns(); n > 0 {
			log.Printf("%d playback underruns", n)
		}
	}
	log.Printf("done: %d chunks, %v recorded", st.Chunks, format.D(storage.Written()))
	return nil
}

func describe(cfg config.Config) string {
	if cfg.Input != "" {
		return cfg.Input
	}
	return cfg.Wave
}

func openSource(cfg config.Config) (pcmstream.Source, error) {
	var (
		src pcmstream.Source
		err error
	)
	if cfg.Input != "" {
		var b *pcmstream.Buffer
		b, err = decodeFile(cfg.Input, cfg.Format())
		if err == nil {
			src = b
			if cfg.Loop != 1 {
				src = effects.Loop(cfg.Loop, b)
			}
		}
	} else {
		src, err = generate(cfg)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Mono {
		src = effects.Mono(src)
	}
	if cfg.Volume != 0 {
		src = &effects.Volume{Source: src, Base: 2, Volume: cfg.Volume}
	}
	if cfg.LeadIn > 0 {
		src = pcmstream.Seq(pcmstream.Silence(src.Format(), cfg.LeadIn), src)
	}
	return src, nil
}

func generate(cfg config.Config) (pcmstream.Source, error) {
	f, d := cfg.Format(), cfg.Duration
	switch cfg.Wave {
	case config.WaveNoise:
		if cfg.Seed != 0 {
			return generators.NoiseSeed(f, d, cfg.Seed)
		}
		return generators.Noise(f, d, nil)
	case config.WaveSaw:
		return generators.Saw(f, d, cfg.Freq, cfg.Amplitude)
	case config.WaveFM:
		return generators.FMSaw(f, d, cfg.Freq, cfg.ModFreq, cfg.ModDepth, cfg.Amplitude)
	case config.WaveScale:
		return generators.ScaleSaw(f, d, cfg.Freq, cfg.ModFreq, cfg.ModDepth, cfg.Amplitude)
	}
	return nil, errors.Errorf("unknown wave %q", cfg.Wave)
}

// decodeFile picks a decoder by extension. Raw files carry no header, so they take the
// configured format.
func decodeFile(path string, raw pcmstream.Format) (*pcmstream.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pcm" || ext == ".raw" {
		return pcm.Open(path, raw)
	}

	var decode func(io.Reader) (*pcmstream.Buffer, error)
	switch ext {
	case ".wav":
		decode = wav.Decode
	case ".flac":
		decode = flac.Decode
	case ".ogg":
		decode = vorbis.Decode
	case ".mp3":
		decode = mp3.Decode
	default:
		return nil, errors.Errorf("%s: unsupported file type", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return b, nil
}

// recorder is a StorageSink that counts what it wrote.
type recorder interface {
	pcmstream.StorageSink
	Written() int
}

func createStorage(path string, format pcmstream.Format) (recorder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcm", ".raw":
		return pcm.Create(path, format)
	}
	return wav.Create(path, format)
}

// progress prints the submitted position on a single terminal line. The speaker queue keeps
// it within a few device buffers of what has been heard.
type progress struct {
	w     io.Writer
	next  pcmstream.PlaybackSink
	total string
	done  int
}

func newProgress(w io.Writer, src pcmstream.Source, next pcmstream.PlaybackSink) *progress {
	total := "?"
	if d, ok := src.Duration(); ok {
		total = d.String()
	}
	return &progress{w: w, next: next, total: total}
}

func (p *progress) Submit(c pcmstream.Chunk) error {
	if err := p.next.Submit(c); err != nil {
		return err
	}
	p.done += c.Len()
	fmt.Fprintf(p.w, "\r%v / %s ", c.Format.D(p.done).Round(time.Second/10), p.total)
	return nil
}
