package audio

import (
	"errors"
	"image"
	"image/draw"

	"github.com/eligwz/spectrogram"
)

type SpectrogramConfig struct {
	Width  int
	Height int
	Log    bool
}

func DefaultSpectrogramConfig() SpectrogramConfig {
	return SpectrogramConfig{Width: 2048, Height: 512}
}

// RenderSpectrogram draws a Hamming-windowed FFT magnitude spectrogram of
// samples on black and saves it as PNG.
func RenderSpectrogram(samples []float64, sampleRate int, outputPath string, cfg SpectrogramConfig) error {
	if len(samples) == 0 || sampleRate <= 0 {
		return errors.New("spectrogram: no audio")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultSpectrogramConfig()
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, cfg.Width, cfg.Height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(cfg.Height),
		false, // Hamming window
		false, // FFT, not DFT
		true,  // magnitude
		cfg.Log,
	)

	return spectrogram.SavePng(img, outputPath)
}
