//go:build !js && !wasm
// +build !js,!wasm

package vocaldna

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// ErrNoData is returned by the reports when no label matches.
var ErrNoData = errors.New("no data available")

const (
	DefaultHealthLimit    = 20
	DefaultTechniqueLimit = 50
	DefaultProgressLimit  = 100
	recentHealthPoints    = 10
	recentScores          = 10
	trendWindow           = 5
	insufficientData      = "insufficient_data"
)

type HealthPoint struct {
	Timestamp        time.Time        `json:"timestamp"`
	StrainLevel      float64          `json:"strain_level"`
	BreathEfficiency float64          `json:"breath_efficiency"`
	RiskLevel        models.RiskLevel `json:"risk_level"`
}

type HealthReport struct {
	TotalSessions    int                      `json:"total_sessions"`
	AverageStrain    float64                  `json:"average_strain"`
	StrainTrend      string                   `json:"strain_trend"`
	PrimaryRiskLevel models.RiskLevel         `json:"primary_risk_level"`
	RiskDistribution map[models.RiskLevel]int `json:"risk_distribution"`
	RecentData       []HealthPoint            `json:"recent_data"`
	Recommendations  []string                 `json:"recommendations"`
}

type TechniqueReport struct {
	TotalAnalyzed         int                     `json:"total_analyzed"`
	TechniqueVariety      int                     `json:"technique_variety"`
	RegisterVariety       int                     `json:"register_variety"`
	VowelVariety          int                     `json:"vowel_variety"`
	TechniqueDistribution map[models.Register]int `json:"technique_distribution"`
	DominantTechnique     models.Register         `json:"dominant_technique"`
	Insights              []string                `json:"technique_insights"`
}

type SkillsDevelopment struct {
	Pitch  float64 `json:"pitch"`
	Breath float64 `json:"breath"`
}

type LearningProgress struct {
	TotalSessions   int               `json:"total_sessions"`
	CurrentAverage  float64           `json:"current_average"`
	OverallTrend    string            `json:"overall_trend"`
	ImprovementRate float64           `json:"improvement_rate"`
	OverallScores   []float64         `json:"overall_scores"`
	PitchTrend      string            `json:"pitch_accuracy_trend"`
	Skills          SkillsDevelopment `json:"skills_development"`
	Milestones      []string          `json:"milestones"`
}

// professionalHistory returns the labels that carry a professional summary,
// oldest first.
func professionalHistory(labels []models.Label) []models.Label {
	var out []models.Label
	for _, l := range labels {
		if l.Summary != nil && l.Summary.Professional != nil {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Label) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// HealthReport condenses the vocal health status of the last limit labels.
func (s *vocalService) HealthReport(limit int) (*HealthReport, error) {
	if limit <= 0 {
		limit = DefaultHealthLimit
	}
	labels, err := s.storage.GetRecentLabels(limit)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("health report: %w", ErrNoData)
	}
	return buildHealthReport(professionalHistory(labels), s.th.Health), nil
}

func buildHealthReport(history []models.Label, th thresholds.Health) *HealthReport {
	r := &HealthReport{RiskDistribution: map[models.RiskLevel]int{}}
	if len(history) == 0 {
		r.StrainTrend = insufficientData
		r.PrimaryRiskLevel = models.RiskLevel("unknown")
		r.Recommendations = []string{"No vocal health data yet: run a full analysis to start monitoring"}
		return r
	}

	strains := make([]float64, len(history))
	risks := make([]models.RiskLevel, len(history))
	for i, l := range history {
		h := l.Summary.Professional.Health
		strains[i] = h.AverageStrain
		risks[i] = h.RiskLevel
		r.RiskDistribution[h.RiskLevel]++
		r.RecentData = append(r.RecentData, HealthPoint{
			Timestamp:        l.CreatedAt,
			StrainLevel:      h.AverageStrain,
			BreathEfficiency: h.AverageEfficiency,
			RiskLevel:        h.RiskLevel,
		})
	}
	if len(r.RecentData) > recentHealthPoints {
		r.RecentData = r.RecentData[len(r.RecentData)-recentHealthPoints:]
	}

	r.TotalSessions = len(history)
	r.AverageStrain = round(dsp.Mean(strains), 3)
	r.StrainTrend = "stable"
	if len(strains) > 3 && strains[len(strains)-1] < strains[0] {
		r.StrainTrend = "improving"
	}
	r.PrimaryRiskLevel = mostCommon(risks)
	r.Recommendations = healthRecommendations(r.AverageStrain, risks, th)
	return r
}

func healthRecommendations(avgStrain float64, risks []models.RiskLevel, th thresholds.Health) []string {
	var out []string
	switch {
	case avgStrain > th.ReportHighStrain:
		out = append(out,
			"Vocal fatigue is high: rest and keep well hydrated",
			"Revisit basic technique and consider working with a voice teacher")
	case avgStrain > th.ReportModerateStrain:
		out = append(out, "Moderate vocal load: keep a regular warm-up and cool-down")
	default:
		out = append(out, "Healthy vocal use: keep the current habits")
	}

	high := 0
	for _, r := range risks {
		if r == models.RiskHigh {
			high++
		}
	}
	if float64(high) > th.ReportHighRiskShare*float64(len(risks)) {
		out = append(out, "High-risk sessions are frequent: reduce practice intensity")
	}
	return out
}

// TechniqueReport summarises register and vowel use across labels, either of
// one artist or the last limit labels.
func (s *vocalService) TechniqueReport(artist string, limit int) (*TechniqueReport, error) {
	if limit <= 0 {
		limit = DefaultTechniqueLimit
	}
	var labels []models.Label
	var err error
	if artist != "" {
		labels, err = s.storage.GetLabelsByArtist(artist)
	} else {
		labels, err = s.storage.GetRecentLabels(limit)
	}
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("technique report: %w", ErrNoData)
	}
	r := buildTechniqueReport(professionalHistory(labels))
	r.TotalAnalyzed = len(labels)
	return r, nil
}

func buildTechniqueReport(history []models.Label) *TechniqueReport {
	r := &TechniqueReport{
		TechniqueDistribution: map[models.Register]int{},
		DominantTechnique:     models.RegisterUnknown,
	}

	registers := map[models.Register]bool{}
	vowels := map[models.Vowel]bool{}
	var dominant []models.Register
	for _, l := range history {
		p := l.Summary.Professional
		for reg := range p.RegisterDistribution {
			registers[reg] = true
		}
		for v := range p.VowelUsage {
			vowels[v] = true
		}
		dominant = append(dominant, p.DominantRegister)
		r.TechniqueDistribution[p.DominantRegister]++
	}

	r.TechniqueVariety = len(r.TechniqueDistribution)
	r.RegisterVariety = len(registers)
	r.VowelVariety = len(vowels)
	if len(dominant) > 0 {
		r.DominantTechnique = mostCommon(dominant)
	}

	switch {
	case r.RegisterVariety >= 4:
		r.Insights = append(r.Insights, "Uses a wide range of registers with assurance")
	case r.RegisterVariety >= 2:
		r.Insights = append(r.Insights, "Uses a reasonable variety of registers")
	default:
		r.Insights = append(r.Insights, "Try exploring more registers")
	}
	if n := r.TechniqueDistribution[models.RegisterMixed]; n > 0 && float64(n) > 0.5*float64(len(dominant)) {
		r.Insights = append(r.Insights, "Mixed voice dominates: a balanced, well-blended approach")
	}
	return r
}

// LearningProgress tracks the pedagogical scores of the last limit labels.
func (s *vocalService) LearningProgress(limit int) (*LearningProgress, error) {
	if limit <= 0 {
		limit = DefaultProgressLimit
	}
	labels, err := s.storage.GetRecentLabels(limit)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("learning progress: %w", ErrNoData)
	}
	return buildProgress(professionalHistory(labels)), nil
}

func buildProgress(history []models.Label) *LearningProgress {
	p := &LearningProgress{TotalSessions: len(history)}
	if len(history) < 2 {
		p.OverallTrend = insufficientData
		p.PitchTrend = insufficientData
		return p
	}

	overall := make([]float64, len(history))
	pitch := make([]float64, len(history))
	breath := make([]float64, len(history))
	for i, l := range history {
		ped := l.Summary.Professional.Pedagogy
		overall[i] = ped.Overall
		pitch[i] = ped.Pitch
		breath[i] = ped.Breath
	}

	p.CurrentAverage = round(dsp.Mean(lastN(overall, trendWindow)), 1)
	p.OverallTrend = scoreTrend(overall)
	p.PitchTrend = scoreTrend(pitch)
	p.ImprovementRate = improvementRate(overall)
	p.OverallScores = lastN(overall, recentScores)
	if len(history) >= trendWindow {
		p.Skills.Pitch = round(dsp.Mean(lastN(pitch, trendWindow)), 1)
		p.Skills.Breath = round(dsp.Mean(lastN(breath, trendWindow)), 1)
	}
	p.Milestones = milestones(overall)
	return p
}

func scoreTrend(scores []float64) string {
	if len(scores) < 3 {
		return insufficientData
	}
	switch slope := dsp.LinearSlope(scores); {
	case slope > 1:
		return "improving"
	case slope < -1:
		return "declining"
	}
	return "stable"
}

// improvementRate compares the mean of the last three scores with the first
// three, in percent.
func improvementRate(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	first, recent := scores[0], scores[len(scores)-1]
	if len(scores) >= 3 {
		first = dsp.Mean(scores[:3])
		recent = dsp.Mean(scores[len(scores)-3:])
	}
	if first <= 0 {
		return 0
	}
	return round((recent-first)/first*100, 1)
}

func milestones(scores []float64) []string {
	var out []string
	if best := slices.Max(scores); best > 80 {
		out = append(out, fmt.Sprintf("Best score of %.1f reached", best))
	}
	if len(scores) >= trendWindow && dsp.Std(lastN(scores, trendWindow)) < 5 {
		out = append(out, "Consistent performance maintained")
	}
	return out
}

func mostCommon[T comparable](xs []T) T {
	var best T
	counts := make(map[T]int, len(xs))
	n := 0
	for _, x := range xs {
		counts[x]++
	}
	for _, x := range xs {
		if counts[x] > n {
			best, n = x, counts[x]
		}
	}
	return best
}

func lastN(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
