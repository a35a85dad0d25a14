// Package scoring turns session-level analyses into the weighted 0-100
// performance score, its grade, recommendations and a difficulty level.
package scoring

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Component maxima.
const (
	MaxPitch     = 25
	MaxVariety   = 20
	MaxVibrato   = 15
	MaxDynamics  = 15
	MaxBreath    = 15
	MaxPassaggio = 10
)

// Inputs are the session signals the scorer consumes.
type Inputs struct {
	ConfidenceAvg      float64
	DistinctTechniques int
	Vibrato            models.VibratoSummary
	DynamicVariety     int
	BreathSupportScore float64
	SmoothTransitions  int
	Transitions        int
	LowestFrequency    float64
	HighestFrequency   float64
}

func Score(in Inputs, th thresholds.Scoring) models.PerformanceScore {
	p := models.PerformanceScore{
		PitchAccuracy:     dsp.Clamp(in.ConfidenceAvg*th.PitchScale, 0, MaxPitch),
		TechniqueVariety:  dsp.Clamp(float64(in.DistinctTechniques)*th.PerTechnique, 0, MaxVariety),
		VibratoQuality:    dsp.Clamp(vibratoQuality(in.Vibrato, th), 0, MaxVibrato),
		DynamicsControl:   dsp.Clamp(float64(in.DynamicVariety)*th.PerDynamicLevel, 0, MaxDynamics),
		BreathSupport:     dsp.Clamp((in.BreathSupportScore-th.BreathFloor)*th.BreathScale, 0, MaxBreath),
		PassaggioHandling: dsp.Clamp(float64(in.SmoothTransitions)*th.PerSmoothTransition, 0, MaxPassaggio),
	}

	total := p.PitchAccuracy + p.TechniqueVariety + p.VibratoQuality +
		p.DynamicsControl + p.BreathSupport + p.PassaggioHandling
	p.Total = math.Round(dsp.Clamp(total, 0, 100)*10) / 10
	p.Grade = Grade(p.Total, th)
	p.Recommendations = Recommendations(p, th.Minimums)
	return p
}

func vibratoQuality(v models.VibratoSummary, th thresholds.Scoring) float64 {
	if !v.Detected {
		return th.VibratoAbsent
	}
	rate := math.Max(0, 10-math.Abs(v.AverageRate-th.IdealVibratoRate)*2)
	depth := math.Max(0, 5-math.Abs(v.AverageDepth-th.IdealVibratoDepth)*0.1)
	return rate + depth + v.Consistency*5
}

// Grade buckets a 0-100 score. Higher scores never get lower grades.
func Grade(score float64, th thresholds.Scoring) models.Grade {
	switch {
	case score >= th.GradeS:
		return models.GradeS
	case score >= th.GradeA:
		return models.GradeA
	case score >= th.GradeB:
		return models.GradeB
	case score >= th.GradeC:
		return models.GradeC
	default:
		return models.GradeD
	}
}

// GradeDescription is a short English label for a grade.
func GradeDescription(g models.Grade) string {
	switch g {
	case models.GradeS:
		return "outstanding performance"
	case models.GradeA:
		return "excellent performance"
	case models.GradeB:
		return "good performance"
	case models.GradeC:
		return "average performance"
	default:
		return "needs improvement"
	}
}

// Recommendations checks each component against its minimum in a fixed order.
func Recommendations(p models.PerformanceScore, mins thresholds.Minimums) []string {
	var recs []string
	if p.PitchAccuracy < mins.Pitch {
		recs = append(recs, "Improve pitch accuracy: practise scales against a tuner")
	}
	if p.TechniqueVariety < mins.Variety {
		recs = append(recs, "Broaden technique: work through chest, mixed and head voice")
	}
	if p.VibratoQuality < mins.Vibrato {
		recs = append(recs, "Develop vibrato: aim for 5-6 Hz at about 50 cents depth")
	}
	if p.DynamicsControl < mins.Dynamics {
		recs = append(recs, "Work on dynamics: practise crescendo and diminuendo")
	}
	if p.BreathSupport < mins.Breath {
		recs = append(recs, "Strengthen breath support: diaphragmatic breathing and breath control drills")
	}
	if p.PassaggioHandling < mins.Passaggio {
		recs = append(recs, "Practise the passaggio: connect registers smoothly through the middle range")
	}
	if len(recs) == 0 {
		recs = append(recs, "Great performance! Keep this level and try more demanding repertoire.")
	}
	return recs
}

// DifficultyLevel rates the sung material from 1 (easy) to 5 (hard).
func DifficultyLevel(in Inputs, th thresholds.Difficulty) int {
	rangeFactor := 1.0
	if in.LowestFrequency > 0 && in.HighestFrequency > 0 {
		octaves := math.Log2(in.HighestFrequency / in.LowestFrequency)
		rangeFactor = math.Min(octaves, th.RangeCap)
	}
	technique := math.Min(float64(in.DistinctTechniques)*th.PerTechnique, th.TechniqueCap)
	vibrato := th.VibratoAbsent
	if in.Vibrato.Detected {
		vibrato = th.VibratoPresent
	}
	dynamics := math.Min(float64(in.DynamicVariety)*th.PerDynamicLevel, th.DynamicsCap)
	passaggio := math.Min(float64(in.Transitions)*th.PerTransition, th.PassaggioCap)

	level := int(rangeFactor + technique + vibrato + dynamics + passaggio)
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}
