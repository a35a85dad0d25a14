// Package dsp holds the spectral and time-domain feature extractors shared by
// the classifiers, the health assessor and the local engines.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func FFTReal(frame []float64) []complex128 {
	return fft.FFTReal(frame)
}

// MagnitudeSpectrum keeps the non-negative frequency half of a real FFT (n/2+1 bins).
func MagnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum)/2 + 1
	if half > len(spectrum) {
		half = len(spectrum)
	}
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// Spectrum is the magnitude spectrum of one frame together with its bin spacing.
type Spectrum struct {
	Mag   []float64
	BinHz float64
}

func NewSpectrum(samples []float64, sampleRate int) Spectrum {
	if len(samples) == 0 || sampleRate <= 0 {
		return Spectrum{}
	}
	return Spectrum{
		Mag:   MagnitudeSpectrum(FFTReal(samples)),
		BinHz: float64(sampleRate) / float64(len(samples)),
	}
}

func (s Spectrum) Freq(bin int) float64 { return float64(bin) * s.BinHz }

func (s Spectrum) Total() float64 {
	sum := 0.0
	for _, m := range s.Mag {
		sum += m
	}
	return sum
}

// BandSum adds magnitudes of bins with lo <= f <= hi.
func (s Spectrum) BandSum(lo, hi float64) float64 {
	sum := 0.0
	for i, m := range s.Mag {
		if f := s.Freq(i); f >= lo && f <= hi {
			sum += m
		}
	}
	return sum
}

// SplitSum returns the magnitude below and strictly above cutoff Hz.
// A bin exactly at cutoff counts for neither side.
func (s Spectrum) SplitSum(cutoff float64) (low, high float64) {
	for i, m := range s.Mag {
		switch f := s.Freq(i); {
		case f < cutoff:
			low += m
		case f > cutoff:
			high += m
		}
	}
	return low, high
}

// Centroid is the magnitude-weighted mean frequency. ok is false for silence.
func (s Spectrum) Centroid() (float64, bool) {
	var num, den float64
	for i, m := range s.Mag {
		num += s.Freq(i) * m
		den += m
	}
	if den <= 0 {
		return 0, false
	}
	return num / den, true
}

// PeakIn returns the frequency and magnitude of the strongest bin in [lo, hi].
func (s Spectrum) PeakIn(lo, hi float64) (float64, float64) {
	bestF, bestM := 0.0, -1.0
	for i, m := range s.Mag {
		f := s.Freq(i)
		if f < lo || f > hi {
			continue
		}
		if m > bestM {
			bestF, bestM = f, m
		}
	}
	if bestM < 0 {
		return 0, 0
	}
	return bestF, bestM
}

// Smooth returns a moving average of the magnitudes over 2*radius+1 bins.
func (s Spectrum) Smooth(radius int) Spectrum {
	if radius <= 0 {
		return s
	}
	out := make([]float64, len(s.Mag))
	for i := range s.Mag {
		lo, hi := i-radius, i+radius
		if lo < 0 {
			lo = 0
		}
		if hi >= len(s.Mag) {
			hi = len(s.Mag) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += s.Mag[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return Spectrum{Mag: out, BinHz: s.BinHz}
}

// SpectralFlux compares the spectra of the two halves of a frame:
// mean((B-A)^2) / mean(A^2), capped at 1. Silence in the first half gives 0.
func SpectralFlux(samples []float64) float64 {
	mid := len(samples) / 2
	if mid < 2 {
		return 0
	}
	a := MagnitudeSpectrum(FFTReal(samples[:mid]))
	b := MagnitudeSpectrum(FFTReal(samples[mid:]))
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var diff, base float64
	for i := 0; i < n; i++ {
		d := b[i] - a[i]
		diff += d * d
		base += a[i] * a[i]
	}
	if base <= 0 {
		return 0
	}
	return math.Min(diff/base, 1)
}
