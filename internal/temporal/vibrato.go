// Package temporal holds the detectors that need ordered frame history:
// vibrato, breath gaps, dynamics trends and passaggio transitions.
package temporal

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// DetectVibrato analyses the last th.Window voiced points of history.
func DetectVibrato(history []models.PitchPoint, th thresholds.Vibrato) models.VibratoAnalysis {
	points := make([]models.PitchPoint, 0, th.Window)
	for _, p := range history {
		if p.Frequency > 0 {
			points = append(points, p)
		}
	}
	if len(points) > th.Window {
		points = points[len(points)-th.Window:]
	}

	insufficient := models.VibratoAnalysis{Status: models.StatusInsufficientData, Type: models.VibratoNone}
	if len(points) < th.MinPoints {
		return insufficient
	}
	elapsed := points[len(points)-1].Time - points[0].Time
	if elapsed <= 0 {
		return insufficient
	}

	freqs := make([]float64, len(points))
	for i, p := range points {
		freqs[i] = p.Frequency
	}
	diffs := make([]float64, len(freqs)-1)
	for i := range diffs {
		diffs[i] = freqs[i+1] - freqs[i]
	}

	crossings := 0
	for i := 1; i < len(diffs); i++ {
		if math.Signbit(diffs[i]) != math.Signbit(diffs[i-1]) {
			crossings++
		}
	}
	rate := float64(crossings) / (2 * elapsed)

	mean := dsp.Mean(freqs)
	depth := 1200 * math.Log2((mean+dsp.Std(freqs))/mean)

	consistency := 0.0
	if meanAbs := dsp.Mean(dsp.Abs(diffs)); meanAbs > 0 {
		consistency = dsp.Clamp(1-dsp.Std(diffs)/meanAbs, 0, 1)
	}

	kind := classifyVibrato(rate, depth, crossings, th)
	return models.VibratoAnalysis{
		Detected:    kind == models.VibratoNatural,
		Status:      models.StatusOK,
		Rate:        rate,
		Depth:       depth,
		Consistency: consistency,
		Type:        kind,
	}
}

func classifyVibrato(rate, depth float64, crossings int, th thresholds.Vibrato) models.VibratoType {
	switch {
	case crossings == 0:
		return models.VibratoStraight
	case th.NaturalRate.Contains(rate) && th.NaturalDepth.Contains(depth):
		return models.VibratoNatural
	case rate > th.TremoloAbove:
		return models.VibratoTremolo
	case rate < th.WobbleBelow:
		return models.VibratoWobble
	default:
		return models.VibratoIrregular
	}
}
