package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Autocorrelation returns r[k] = sum x[i]*x[i+k] for k in [0, len(x)),
// computed through a zero-padded FFT.
func Autocorrelation(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	m := 1
	for m < 2*n {
		m <<= 1
	}
	padded := make([]float64, m)
	copy(padded, x)

	spec := fft.FFTReal(padded)
	for i, c := range spec {
		spec[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	r := fft.IFFT(spec)

	ac := make([]float64, n)
	for k := 0; k < n; k++ {
		ac[k] = real(r[k])
	}
	return ac
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std is the population standard deviation.
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func MeanSquare(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x * x
	}
	return sum / float64(len(xs))
}

func Abs(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Abs(x)
	}
	return out
}

// LinearSlope fits y = a*x + b over x = 0..n-1 by least squares and returns a.
func LinearSlope(ys []float64) float64 {
	n := float64(len(ys))
	if len(ys) < 2 {
		return 0
	}
	var sx, sy, sxx, sxy float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}

// EnergyDecay splits samples into segments, fits a line through their mean
// energies and returns max(0, -slope/first) capped at 1. ok is false when the
// frame is too short to split.
func EnergyDecay(samples []float64, segments int) (float64, bool) {
	if segments < 2 {
		return 0, false
	}
	segLen := len(samples) / segments
	if segLen == 0 {
		return 0, false
	}
	energies := make([]float64, segments)
	for i := range energies {
		energies[i] = MeanSquare(samples[i*segLen : (i+1)*segLen])
	}
	if energies[0] <= 0 {
		return 0, true
	}
	decay := math.Max(0, -LinearSlope(energies)/energies[0])
	return math.Min(decay, 1), true
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
