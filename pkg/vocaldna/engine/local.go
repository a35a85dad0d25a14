package engine

import (
	"context"
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// AutocorrPitchEngine estimates the fundamental from the time-domain
// autocorrelation. It needs no service and is used as a fallback.
type AutocorrPitchEngine struct {
	MinHz float64
	MaxHz float64
}

func NewAutocorrPitchEngine() *AutocorrPitchEngine {
	return &AutocorrPitchEngine{MinHz: 80, MaxHz: 800}
}

func (e *AutocorrPitchEngine) ID() models.EngineID { return models.EngineAutocorr }

func (e *AutocorrPitchEngine) Estimate(ctx context.Context, samples []float64, sampleRate int) Result[models.PitchEstimate] {
	if err := ctx.Err(); err != nil {
		return Unavailable[models.PitchEstimate](err)
	}
	n := len(samples)
	if n == 0 || sampleRate <= 0 {
		return Absent[models.PitchEstimate]()
	}

	r := dsp.Autocorrelation(samples)
	if r[0] <= 0 {
		return Absent[models.PitchEstimate]()
	}

	lo := int(float64(sampleRate) / e.MaxHz)
	hi := int(float64(sampleRate) / e.MinHz)
	if lo < 1 {
		lo = 1
	}
	if hi > n-2 {
		hi = n - 2
	}
	if lo >= hi {
		return Absent[models.PitchEstimate]()
	}

	// unbiased, normalised so a periodic signal peaks near 1
	norm := make([]float64, hi+2)
	for k := lo - 1; k <= hi+1; k++ {
		if k < 0 {
			continue
		}
		norm[k] = r[k] * float64(n) / (float64(n-k) * r[0])
	}

	best := 0.0
	for k := lo; k <= hi; k++ {
		best = math.Max(best, norm[k])
	}
	if best <= 0 {
		return Absent[models.PitchEstimate]()
	}

	// first local maximum close to the global one avoids octave errors
	lag := -1
	for k := lo; k <= hi; k++ {
		if norm[k] >= 0.9*best && norm[k] >= norm[k-1] && norm[k] >= norm[k+1] {
			lag = k
			break
		}
	}
	if lag < 0 {
		return Absent[models.PitchEstimate]()
	}

	// parabolic interpolation around the peak
	period := float64(lag)
	a, b, c := norm[lag-1], norm[lag], norm[lag+1]
	if d := a - 2*b + c; d != 0 {
		period += 0.5 * (a - c) / d
	}

	return Available(models.PitchEstimate{
		Frequency:  float64(sampleRate) / period,
		Confidence: dsp.Clamp(norm[lag], 0, 1),
		Source:     models.EngineAutocorr,
	})
}

type formantBand struct {
	lo, hi   float64
	fallback float64
}

// SpectralFormantEngine picks F1-F4 as the strongest peaks of the smoothed
// magnitude spectrum inside their usual bands, each above the previous one.
type SpectralFormantEngine struct {
	bands  [4]formantBand
	smooth int
}

func NewSpectralFormantEngine() *SpectralFormantEngine {
	neutral := models.NeutralFormants()
	return &SpectralFormantEngine{
		bands: [4]formantBand{
			{200, 1000, neutral.F1},
			{800, 2500, neutral.F2},
			{2000, 3500, neutral.F3},
			{3000, 4500, neutral.F4},
		},
		smooth: 2,
	}
}

func (e *SpectralFormantEngine) ID() models.EngineID { return models.EngineSpectral }

func (e *SpectralFormantEngine) Analyze(ctx context.Context, samples []float64, sampleRate int) Result[models.FormantProfile] {
	if err := ctx.Err(); err != nil {
		return Unavailable[models.FormantProfile](err)
	}
	if len(samples) < 4 || sampleRate <= 0 {
		return Absent[models.FormantProfile]()
	}

	win := dsp.Hamming(len(samples))
	windowed := make([]float64, len(samples))
	for i, s := range samples {
		windowed[i] = s * win[i]
	}
	spec := dsp.NewSpectrum(windowed, sampleRate).Smooth(e.smooth)
	if spec.Total() <= 0 {
		return Absent[models.FormantProfile]()
	}

	var freqs [4]float64
	bw := make([]float64, 4)
	prev := 0.0
	for i, band := range e.bands {
		lo := math.Max(band.lo, prev+100)
		f, mag := spec.PeakIn(lo, band.hi)
		if mag <= 0 {
			f = band.fallback
			bw[i] = models.NeutralFormants().Bandwidth[i]
		} else {
			bw[i] = halfPowerWidth(spec, f, mag)
		}
		freqs[i] = f
		prev = f
	}

	sf := 0.0
	if ref := spec.BandSum(0, 4000); ref > 0 {
		sf = spec.BandSum(2800, 3200) / ref
	}

	return Available(models.FormantProfile{
		F1:             freqs[0],
		F2:             freqs[1],
		F3:             freqs[2],
		F4:             freqs[3],
		SingersFormant: sf,
		Bandwidth:      bw,
	})
}

// halfPowerWidth walks outwards from a peak until the magnitude drops below
// 1/sqrt(2) of it and returns the width in Hz.
func halfPowerWidth(spec dsp.Spectrum, peakHz, peakMag float64) float64 {
	if spec.BinHz <= 0 {
		return 0
	}
	center := int(math.Round(peakHz / spec.BinHz))
	limit := peakMag / math.Sqrt2
	left, right := center, center
	for left > 0 && spec.Mag[left-1] >= limit {
		left--
	}
	for right < len(spec.Mag)-1 && spec.Mag[right+1] >= limit {
		right++
	}
	return float64(right-left+1) * spec.BinHz
}
