package health

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// FormantClarity rewards well-separated formants and a strong singer's formant.
func FormantClarity(f models.FormantProfile) float64 {
	separation := math.Min((math.Abs(f.F2-f.F1)+math.Abs(f.F3-f.F2))/3000, 1)
	ring := math.Min(f.SingersFormant*2, 1)
	return (separation + ring) / 2
}

// SpectralClarity is twice the share of magnitude above th.HighFreqHz, capped
// at 1. Silence gives 0.5.
func SpectralClarity(spec dsp.Spectrum, th thresholds.Health) float64 {
	low, high := spec.SplitSum(th.HighFreqHz)
	if low+high <= 0 {
		return 0.5
	}
	return math.Min(high/(low+high)*2, 1)
}

func Articulation(spec dsp.Spectrum, f models.FormantProfile, th thresholds.Health) models.ArticulationAnalysis {
	formant := FormantClarity(f)
	spectral := SpectralClarity(spec, th)
	overall := (formant + spectral) / 2

	levels := []models.ArticulationLevel{
		models.ArticulationExcellent,
		models.ArticulationGood,
		models.ArticulationFair,
		models.ArticulationPoor,
	}
	level := models.ArticulationUnclear
	if i := step(overall, th.ArticulationLevels); i < len(levels) {
		level = levels[i]
	}

	return models.ArticulationAnalysis{
		FormantClarity:  formant,
		SpectralClarity: spectral,
		Overall:         overall,
		Level:           level,
	}
}
