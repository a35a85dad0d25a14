package health

import (
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// BreathSupport averages amplitude stability, pitch confidence and
// sustainability (one minus the energy decay across the frame).
func BreathSupport(samples []float64, confidence float64, th thresholds.Health) models.BreathSupport {
	abs := dsp.Abs(samples)
	stability := 0.0
	if mean := dsp.Mean(abs); mean > 0 {
		stability = 1 - dsp.Std(abs)/mean
	}

	decay, ok := dsp.EnergyDecay(samples, th.EnergySegments)
	if !ok {
		decay = th.EnergyDecayDefault
	}

	score := (stability + confidence + (1 - decay)) / 3

	levels := []models.SupportLevel{
		models.SupportExcellent,
		models.SupportGood,
		models.SupportAdequate,
		models.SupportWeak,
	}
	level := models.SupportPoor
	if i := step(score, th.SupportLevels); i < len(levels) {
		level = levels[i]
	}

	return models.BreathSupport{
		AmplitudeStability: stability,
		EnergyDecay:        decay,
		Score:              score,
		Level:              level,
	}
}
