// Package health derives the per-frame vocal health, articulation, breath
// support, resonance and expression indicators. All outputs are heuristic
// training feedback, not diagnosis.
package health

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// HNR estimates the harmonic-to-noise ratio in dB from the strongest
// non-zero-lag autocorrelation peak, clamped to [0, th.HNRMax].
func HNR(samples []float64, th thresholds.Health) float64 {
	if len(samples) < 2 {
		return th.HNRDefault
	}
	ac := dsp.Autocorrelation(samples)
	if ac[0] <= 0 {
		return th.HNRDefault
	}

	peak := math.Inf(-1)
	for _, v := range ac[1:] {
		peak = math.Max(peak, v)
	}
	l := peak / ac[0]

	var db float64
	switch {
	case l <= 0:
		db = 0
	case l >= 1:
		db = th.HNRCeiling
	default:
		db = 10 * math.Log10(l/(1-l))
	}
	return dsp.Clamp(db, 0, th.HNRMax)
}

// step returns the index of the first cutoff v is strictly above, or
// len(cuts) when it is above none.
func step(v float64, cuts []float64) int {
	for i, c := range cuts {
		if v > c {
			return i
		}
	}
	return len(cuts)
}

// Assess computes strain, efficiency, tension areas and risk for one frame.
func Assess(samples []float64, confidence float64, f models.FormantProfile, th thresholds.Health) models.VocalHealth {
	hnr := HNR(samples, th)
	strain := math.Max(0, 1-hnr/th.StrainHNR)
	efficiency := confidence * math.Min(dsp.MeanSquare(samples)*10, 1)

	areas := []string{}
	if f.F1 < th.LarynxF1 {
		areas = append(areas, "larynx_high")
	}
	if f.F2 > th.TongueF2High || f.F2 < th.TongueF2Low {
		areas = append(areas, "tongue_tension")
	}
	if math.Abs(f.F2-f.F1) < th.JawSpread {
		areas = append(areas, "jaw_tension")
	}

	risk := models.RiskHigh
	switch {
	case strain < th.LowStrain && len(areas) == 0:
		risk = models.RiskLow
	case strain < th.ModerateStrain && len(areas) <= 2:
		risk = models.RiskModerate
	}

	return models.VocalHealth{
		HNR:            hnr,
		StrainLevel:    strain,
		Efficiency:     efficiency,
		Sustainability: math.Min(efficiency*2, 1),
		TensionAreas:   areas,
		RiskLevel:      risk,
	}
}
