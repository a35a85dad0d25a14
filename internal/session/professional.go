package session

import (
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
)

const (
	maxInsights      = 4
	topPriorities    = 3
	topExercises     = 5
	genericInsight   = "Keep practising regularly to uncover further points to improve"
	mixedInsight     = "Mixed voice dominates: a balanced, well-blended technique"
	vibratoInsight   = "Natural vibrato detected: expressive, free singing"
	healthyInsight   = "Vocal health looks good: keep the current approach"
	fatigueInsight   = "Signs of vocal fatigue: rest and revisit basic technique"
	dictionInsight   = "Very clear articulation: excellent diction"
	passaggioInsight = "Smooth passaggio: good register blending"
)

// professional condenses the most recent labels and assessments. It is nil
// until at least one voiced frame was assessed.
func (c *Controller) professional() *models.ProfessionalSummary {
	labels, assessments := c.recent, c.assessments
	if len(labels) == 0 || len(assessments) == 0 {
		return nil
	}

	p := &models.ProfessionalSummary{
		Frames:               len(labels),
		RegisterDistribution: map[models.Register]int{},
		VowelUsage:           map[models.Vowel]int{},
	}

	confs := make([]float64, len(labels))
	registers := make([]models.Register, len(labels))
	strains := make([]float64, len(labels))
	effs := make([]float64, len(labels))
	risks := make([]models.RiskLevel, len(labels))
	p.TimeRange = [2]float64{labels[0].Frame.Time, labels[0].Frame.Time}
	for i, l := range labels {
		confs[i] = l.Confidence
		registers[i] = l.Frame.Register
		strains[i] = l.Health.StrainLevel
		effs[i] = l.Health.Efficiency
		risks[i] = l.Health.RiskLevel
		p.RegisterDistribution[l.Frame.Register]++
		p.VowelUsage[l.Frame.Vowel]++
		if l.Frame.Time < p.TimeRange[0] {
			p.TimeRange[0] = l.Frame.Time
		}
		if l.Frame.Time > p.TimeRange[1] {
			p.TimeRange[1] = l.Frame.Time
		}
	}
	p.MeanConfidence = dsp.Mean(confs)
	p.DominantRegister, _ = mode(registers)

	overall := make([]float64, len(assessments))
	pitch := make([]float64, len(assessments))
	breath := make([]float64, len(assessments))
	artic := make([]float64, len(assessments))
	var priorities, exercises []string
	for i, a := range assessments {
		overall[i] = a.Overall.Score
		pitch[i] = a.Fundamentals.PitchAccuracy.Score
		breath[i] = a.Technical.BreathManagement.Score
		artic[i] = a.Technical.ArticulationPrecision.Score
		priorities = append(priorities, a.Priorities...)
		exercises = append(exercises, a.Exercises...)
	}
	p.Pedagogy = models.PedagogicalAverages{
		Overall:      dsp.Mean(overall),
		Pitch:        dsp.Mean(pitch),
		Breath:       dsp.Mean(breath),
		Articulation: dsp.Mean(artic),
		GradeTrend:   gradeTrend(overall),
	}

	avgStrain := dsp.Mean(strains)
	risk, _ := mode(risks)
	p.Health = models.HealthStatus{
		AverageStrain:     avgStrain,
		AverageEfficiency: dsp.Mean(effs),
		RiskLevel:         risk,
		Trend:             healthTrend(avgStrain),
	}

	prio, counts := ranked(priorities)
	ex, _ := ranked(exercises)
	p.Plan = models.DevelopmentPlan{
		Priorities: firstN(prio, topPriorities),
		Exercises:  firstN(ex, topExercises),
		FocusLevel: "moderate",
	}
	if len(counts) > 0 && counts[0] > 2 {
		p.Plan.FocusLevel = "high"
	}

	p.Insights = insights(labels)
	latest := assessments[len(assessments)-1]
	p.Latest = &latest
	return p
}

func gradeTrend(scores []float64) string {
	if len(scores) <= 2 {
		return "stable"
	}
	switch slope := dsp.LinearSlope(scores); {
	case slope > 2:
		return "improving"
	case slope < -2:
		return "declining"
	}
	return "stable"
}

func healthTrend(strain float64) string {
	switch {
	case strain < 0.3:
		return "improving"
	case strain > 0.7:
		return "needs_attention"
	}
	return "stable"
}

func insights(labels []models.ComprehensiveLabel) []string {
	var out []string
	n := float64(len(labels))

	var mixed, lowRisk, excellent int
	var natural, highRisk, smooth bool
	for _, l := range labels {
		if l.Frame.Register == models.RegisterMixed {
			mixed++
		}
		if l.Vibrato.Detected && l.Vibrato.Type == models.VibratoNatural {
			natural = true
		}
		switch l.Health.RiskLevel {
		case models.RiskLow:
			lowRisk++
		case models.RiskHigh:
			highRisk = true
		}
		if l.Articulation.Level == models.ArticulationExcellent {
			excellent++
		}
		if l.Passaggio != nil && l.Passaggio.Smoothness > 0.7 {
			smooth = true
		}
	}

	if float64(mixed) > 0.6*n {
		out = append(out, mixedInsight)
	}
	if natural {
		out = append(out, vibratoInsight)
	}
	if float64(lowRisk) > 0.8*n {
		out = append(out, healthyInsight)
	} else if highRisk {
		out = append(out, fatigueInsight)
	}
	if float64(excellent) > 0.7*n {
		out = append(out, dictionInsight)
	}
	if smooth {
		out = append(out, passaggioInsight)
	}
	if len(out) < 2 {
		out = append(out, genericInsight)
	}
	return firstN(out, maxInsights)
}

func firstN[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
