package vocaldna

import (
	"errors"
	"testing"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func professionalLabel(i int, p models.ProfessionalSummary) models.Label {
	l := models.NewLabel(models.LabelMetadata{Title: "take", Artist: "Singer"}, &models.SessionSummary{Professional: &p})
	l.CreatedAt = epoch.Add(time.Duration(i) * time.Hour)
	return l
}

func healthLabel(i int, strain float64, risk models.RiskLevel) models.Label {
	return professionalLabel(i, models.ProfessionalSummary{
		Health: models.HealthStatus{AverageStrain: strain, AverageEfficiency: 0.5, RiskLevel: risk},
	})
}

// TestBuildHealthReport tests averages, trend and recommendations
func TestBuildHealthReport(t *testing.T) {
	history := []models.Label{
		healthLabel(0, 0.8, models.RiskHigh),
		healthLabel(1, 0.6, models.RiskHigh),
		healthLabel(2, 0.9, models.RiskModerate),
		healthLabel(3, 0.5, models.RiskLow),
	}

	r := buildHealthReport(history, thresholds.Default().Health)
	if r.TotalSessions != 4 || r.AverageStrain != 0.7 {
		t.Errorf("Expected 4 sessions averaging 0.7, got %d %v", r.TotalSessions, r.AverageStrain)
	}
	if r.StrainTrend != "improving" {
		t.Errorf("Expected improving strain trend, got %s", r.StrainTrend)
	}
	if r.PrimaryRiskLevel != models.RiskHigh || r.RiskDistribution[models.RiskHigh] != 2 {
		t.Errorf("Unexpected risk summary %s %v", r.PrimaryRiskLevel, r.RiskDistribution)
	}
	if len(r.Recommendations) != 2 {
		t.Errorf("Expected moderate-load and high-risk recommendations, got %v", r.Recommendations)
	}

	tuned := thresholds.Default().Health
	tuned.ReportModerateStrain = 0.75
	tuned.ReportHighStrain = 0.8
	tuned.ReportHighRiskShare = 0.5
	r = buildHealthReport(history, tuned)
	if len(r.Recommendations) != 1 || r.Recommendations[0] != "Healthy vocal use: keep the current habits" {
		t.Errorf("Expected only the healthy-use recommendation with raised cutoffs, got %v", r.Recommendations)
	}
}

// TestBuildHealthReportEmpty tests the report without professional data
func TestBuildHealthReportEmpty(t *testing.T) {
	r := buildHealthReport(nil, thresholds.Default().Health)
	if r.TotalSessions != 0 || r.StrainTrend != insufficientData || len(r.Recommendations) != 1 {
		t.Errorf("Unexpected empty report %+v", r)
	}
}

// TestBuildTechniqueReport tests register variety and dominance
func TestBuildTechniqueReport(t *testing.T) {
	mk := func(i int, dominant models.Register, regs ...models.Register) models.Label {
		dist := map[models.Register]int{}
		for _, r := range regs {
			dist[r]++
		}
		return professionalLabel(i, models.ProfessionalSummary{
			DominantRegister:     dominant,
			RegisterDistribution: dist,
			VowelUsage:           map[models.Vowel]int{models.VowelOpenFront: 1},
		})
	}

	r := buildTechniqueReport([]models.Label{
		mk(0, models.RegisterMixed, models.RegisterMixed, models.RegisterChest),
		mk(1, models.RegisterMixed, models.RegisterMixed),
		mk(2, models.RegisterChest, models.RegisterChest, models.RegisterHead),
	})

	if r.DominantTechnique != models.RegisterMixed || r.TechniqueVariety != 2 {
		t.Errorf("Expected mixed dominance over 2 registers, got %s/%d", r.DominantTechnique, r.TechniqueVariety)
	}
	if r.RegisterVariety != 3 || r.VowelVariety != 1 {
		t.Errorf("Unexpected variety %d/%d", r.RegisterVariety, r.VowelVariety)
	}
	if len(r.Insights) != 2 {
		t.Errorf("Expected variety and mixed-voice insights, got %v", r.Insights)
	}
}

// TestBuildProgress tests trend, improvement rate and milestones
func TestBuildProgress(t *testing.T) {
	var history []models.Label
	for i, score := range []float64{60, 70, 80, 85, 90} {
		history = append(history, professionalLabel(i, models.ProfessionalSummary{
			Pedagogy: models.PedagogicalAverages{Overall: score, Pitch: 50, Breath: 40},
		}))
	}

	p := buildProgress(history)
	if p.TotalSessions != 5 || p.CurrentAverage != 77 {
		t.Errorf("Expected 5 sessions averaging 77, got %d %v", p.TotalSessions, p.CurrentAverage)
	}
	if p.OverallTrend != "improving" || p.PitchTrend != "stable" {
		t.Errorf("Unexpected trends %s/%s", p.OverallTrend, p.PitchTrend)
	}
	if p.ImprovementRate != 21.4 {
		t.Errorf("Expected improvement rate 21.4, got %v", p.ImprovementRate)
	}
	if p.Skills.Pitch != 50 || p.Skills.Breath != 40 {
		t.Errorf("Unexpected skills %+v", p.Skills)
	}
	if len(p.Milestones) != 1 || p.Milestones[0] != "Best score of 90.0 reached" {
		t.Errorf("Unexpected milestones %v", p.Milestones)
	}
}

// TestBuildProgressInsufficient tests the single-session case
func TestBuildProgressInsufficient(t *testing.T) {
	p := buildProgress([]models.Label{professionalLabel(0, models.ProfessionalSummary{})})
	if p.OverallTrend != insufficientData || p.TotalSessions != 1 {
		t.Errorf("Expected insufficient data, got %+v", p)
	}
}

// TestReportsFromStorage tests the reports end to end through the label store
func TestReportsFromStorage(t *testing.T) {
	svc, stor := setupService(t)

	if _, err := svc.HealthReport(0); !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData on an empty store, got %v", err)
	}

	// inserted in reverse; the reports order by creation time
	for i := 2; i >= 0; i-- {
		l := healthLabel(i, 0.2, models.RiskLow)
		l.Summary.Professional.Pedagogy.Overall = float64(60 + 10*i)
		l.Summary.Professional.DominantRegister = models.RegisterMixed
		if _, err := stor.SaveLabel(&l); err != nil {
			t.Fatalf("SaveLabel: %v", err)
		}
	}
	plain := models.NewLabel(models.LabelMetadata{Artist: "Other"}, nil)
	if _, err := stor.SaveLabel(&plain); err != nil {
		t.Fatalf("SaveLabel: %v", err)
	}

	h, err := svc.HealthReport(0)
	if err != nil {
		t.Fatalf("HealthReport: %v", err)
	}
	if h.TotalSessions != 3 || h.PrimaryRiskLevel != models.RiskLow {
		t.Errorf("Unexpected health report %+v", h)
	}

	tr, err := svc.TechniqueReport("Singer", 0)
	if err != nil {
		t.Fatalf("TechniqueReport: %v", err)
	}
	if tr.TotalAnalyzed != 3 || tr.DominantTechnique != models.RegisterMixed {
		t.Errorf("Unexpected technique report %+v", tr)
	}

	p, err := svc.LearningProgress(0)
	if err != nil {
		t.Fatalf("LearningProgress: %v", err)
	}
	if p.OverallTrend != "improving" || len(p.OverallScores) != 3 || p.OverallScores[0] != 60 {
		t.Errorf("Unexpected progress %+v", p)
	}
}
