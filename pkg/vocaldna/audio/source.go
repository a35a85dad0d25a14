// Package audio turns recordings into fixed-duration mono frames and renders
// spectrograms. Non-WAV input is converted with ffmpeg first.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// DefaultFrameDuration is the analysis window used when none is configured.
const DefaultFrameDuration = 100 * time.Millisecond

// FrameSource yields frames in capture order. Next returns io.EOF after the last
// frame. Errors wrapping models.ErrMalformedFrame are skippable.
type FrameSource interface {
	Next(ctx context.Context) (models.AudioFrame, error)
}

func frameLength(sampleRate int, d time.Duration) int {
	if d <= 0 {
		d = DefaultFrameDuration
	}
	n := int(float64(sampleRate) * d.Seconds())
	if n < 1 {
		n = 1
	}
	return n
}

// SliceSource frames an in-memory signal.
type SliceSource struct {
	samples    []float64
	sampleRate int
	frameLen   int
	pos        int
	index      int
}

func NewSliceSource(samples []float64, sampleRate int, frameDuration time.Duration) *SliceSource {
	return &SliceSource{
		samples:    samples,
		sampleRate: sampleRate,
		frameLen:   frameLength(sampleRate, frameDuration),
	}
}

func (s *SliceSource) Next(ctx context.Context) (models.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return models.AudioFrame{}, err
	}
	if s.pos >= len(s.samples) {
		return models.AudioFrame{}, io.EOF
	}
	end := s.pos + s.frameLen
	if end > len(s.samples) {
		end = len(s.samples)
	}
	f := models.AudioFrame{
		Index:      s.index,
		Offset:     float64(s.pos) / float64(s.sampleRate),
		SampleRate: s.sampleRate,
		Samples:    s.samples[s.pos:end],
	}
	s.pos = end
	s.index++
	return f, nil
}

// WAVSource streams frames from a PCM WAV file, downmixing to mono.
type WAVSource struct {
	file       *os.File
	dec        *wav.Decoder
	buf        *goaudio.IntBuffer
	sampleRate int
	channels   int
	scale      float64
	read       int
	index      int
}

func OpenWAV(path string, frameDuration time.Duration) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: seek to PCM: %w", path, err)
	}
	if dec.SampleRate == 0 || dec.NumChans == 0 || dec.BitDepth == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: incomplete WAV header", path)
	}

	sr := int(dec.SampleRate)
	chans := int(dec.NumChans)
	n := frameLength(sr, frameDuration)
	return &WAVSource{
		file: f,
		dec:  dec,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: chans, SampleRate: sr},
			Data:           make([]int, n*chans),
			SourceBitDepth: int(dec.BitDepth),
		},
		sampleRate: sr,
		channels:   chans,
		scale:      float64(int(1) << (uint(dec.BitDepth) - 1)),
	}, nil
}

func (w *WAVSource) SampleRate() int { return w.sampleRate }

func (w *WAVSource) Next(ctx context.Context) (models.AudioFrame, error) {
	if err := ctx.Err(); err != nil {
		return models.AudioFrame{}, err
	}
	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return models.AudioFrame{}, fmt.Errorf("decode pcm: %w", err)
	}
	frames := n / w.channels
	if frames == 0 {
		return models.AudioFrame{}, io.EOF
	}

	samples := make([]float64, frames)
	for i := range samples {
		sum := 0
		for c := 0; c < w.channels; c++ {
			sum += w.buf.Data[i*w.channels+c]
		}
		samples[i] = float64(sum) / float64(w.channels) / w.scale
	}

	f := models.AudioFrame{
		Index:      w.index,
		Offset:     float64(w.read) / float64(w.sampleRate),
		SampleRate: w.sampleRate,
		Samples:    samples,
	}
	w.read += frames
	w.index++
	return f, nil
}

func (w *WAVSource) Close() error { return w.file.Close() }

// ReadWAV decodes a whole WAV file to mono samples in [-1, 1].
func ReadWAV(path string) ([]float64, int, error) {
	src, err := OpenWAV(path, time.Second)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	var out []float64
	ctx := context.Background()
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f.Samples...)
	}
	return out, src.SampleRate(), nil
}

// WriteWAV stores mono samples as 16-bit PCM.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}
