package pedagogy

import (
	"math"
	"reflect"
	"testing"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

var th = thresholds.Default()

func strongLabel() models.ComprehensiveLabel {
	return models.ComprehensiveLabel{
		Frame: models.FusedFrame{
			Time:       1.5,
			Voiced:     true,
			Frequency:  220,
			Confidence: 0.95,
			Note:       models.Note{Name: "A3", Cents: 5},
			Register:   models.RegisterChest,
			Vowel:      models.VowelOpenFront,
			Formants:   models.FormantProfile{F1: 700, F2: 1200, SingersFormant: 0.5},
		},
		Resonance:     models.ResonanceAnalysis{Chest: 0.3, Oral: 0.4, Head: 0.3, Placement: 0.8},
		Vibrato:       models.VibratoAnalysis{Detected: true, Rate: 5.5, Consistency: 0.6},
		Expression:    models.ExpressionAnalysis{Dynamics: models.DynamicMF, Phrasing: 0.7},
		Articulation:  models.ArticulationAnalysis{Level: models.ArticulationExcellent},
		BreathSupport: models.BreathSupport{Level: models.SupportExcellent},
		Health:        models.VocalHealth{StrainLevel: 0.2, Efficiency: 0.8, Sustainability: 0.9, RiskLevel: models.RiskLow},
		Confidence:    0.95,
	}
}

func weakLabel() models.ComprehensiveLabel {
	return models.ComprehensiveLabel{
		Frame: models.FusedFrame{
			Voiced:     true,
			Frequency:  600,
			Confidence: 0.5,
			Note:       models.Note{Cents: 60},
			Register:   models.RegisterHead,
			Vowel:      models.VowelMixed,
			Formants:   models.NeutralFormants(),
		},
		Resonance:     models.ResonanceAnalysis{Placement: 0.3},
		Articulation:  models.ArticulationAnalysis{Level: models.ArticulationUnclear},
		BreathSupport: models.BreathSupport{Level: models.SupportPoor},
		Health:        models.VocalHealth{StrainLevel: 0.9, Efficiency: 0.1, Sustainability: 0.2, RiskLevel: models.RiskHigh},
		Confidence:    0.5,
	}
}

// TestAssessStrongFrame tests a well-sung frame end to end
func TestAssessStrongFrame(t *testing.T) {
	a := Assess(strongLabel(), th)

	if a.Timestamp != 1.5 {
		t.Errorf("Expected timestamp 1.5, got %v", a.Timestamp)
	}
	if a.Fundamentals.PitchAccuracy.Score != 100 || a.Fundamentals.PitchAccuracy.Level != "excellent" {
		t.Errorf("Unexpected pitch accuracy %+v", a.Fundamentals.PitchAccuracy)
	}
	if got := a.Fundamentals.IntonationStability; got.Score != 84.5 || got.Level != "good" {
		t.Errorf("Unexpected intonation %+v", got)
	}
	if got := a.Fundamentals.RegisterConsistency; got.Score != 100 || got.Level != "appropriate" {
		t.Errorf("Unexpected register consistency %+v", got)
	}
	if a.Technical.BreathManagement.Score != 100 {
		t.Errorf("Breath management should cap at 100, got %v", a.Technical.BreathManagement.Score)
	}
	if a.Technical.ResonanceEfficiency.Score != 51 {
		t.Errorf("Expected resonance 51, got %v", a.Technical.ResonanceEfficiency.Score)
	}
	if a.Technical.ArticulationPrecision.Score != 100 {
		t.Errorf("Expected articulation 100, got %v", a.Technical.ArticulationPrecision.Score)
	}
	if got := a.Technical.VocalAgility; got.Score != 67 || got.Level != "good" {
		t.Errorf("Unexpected agility %+v", got)
	}
	if a.Artistic.DynamicControl.Score != 85 || a.Artistic.EmotionalConnectivity.Score != 50 {
		t.Errorf("Unexpected artistic scores %+v", a.Artistic)
	}
	if len(a.Priorities) != 0 || len(a.Exercises) != 0 {
		t.Errorf("Expected nothing to practise, got %v / %v", a.Priorities, a.Exercises)
	}
	if a.Overall.Score != 90.5 || a.Overall.Grade != models.GradeS || a.Overall.FineGrade != "A+" {
		t.Errorf("Unexpected overall %+v", a.Overall)
	}
}

// TestAssessWeakFrame tests priority ordering and exercise capping
func TestAssessWeakFrame(t *testing.T) {
	a := Assess(weakLabel(), th)

	want := []string{PriorityHealth, PriorityBreath, PriorityPitch, PriorityArticul, PriorityResonance}
	if !reflect.DeepEqual(a.Priorities, want) {
		t.Errorf("Expected priorities %v, got %v", want, a.Priorities)
	}
	if len(a.Exercises) != th.Pedagogy.MaxExercises {
		t.Fatalf("Expected %d exercises, got %d", th.Pedagogy.MaxExercises, len(a.Exercises))
	}
	if a.Exercises[0] != exerciseGroups[PriorityBreath][0] || a.Exercises[3] != exerciseGroups[PriorityPitch][0] {
		t.Errorf("Exercise groups out of order: %v", a.Exercises)
	}
	if a.Fundamentals.PitchAccuracy.Level != "needs_improvement" || a.Fundamentals.PitchAccuracy.Score != 58 {
		t.Errorf("Unexpected pitch accuracy %+v", a.Fundamentals.PitchAccuracy)
	}
	if math.Abs(a.Health.FatigueResistance-0.13) > 1e-9 {
		t.Errorf("Expected fatigue resistance 0.13, got %v", a.Health.FatigueResistance)
	}
	if a.Overall.Grade != models.GradeD || a.Overall.FineGrade != "D" {
		t.Errorf("Unexpected overall %+v", a.Overall)
	}
	if a.Technical.VocalAgility.Level != "limited" {
		t.Errorf("Expected limited agility without vibrato, got %s", a.Technical.VocalAgility.Level)
	}
}

// TestVibratoExercise tests the vibrato suggestion outside chest voice
func TestVibratoExercise(t *testing.T) {
	l := strongLabel()
	l.Vibrato = models.VibratoAnalysis{}
	if ex := Exercises(l, th.Pedagogy); len(ex) != 0 {
		t.Errorf("Chest voice should not get a vibrato exercise, got %v", ex)
	}

	l.Frame.Register = models.RegisterHead
	ex := Exercises(l, th.Pedagogy)
	if len(ex) != 1 || ex[0] != vibratoExercise {
		t.Errorf("Expected only the vibrato exercise, got %v", ex)
	}
}

// TestPitchAccuracyBands tests each cents band
func TestPitchAccuracyBands(t *testing.T) {
	tests := []struct {
		cents float64
		score float64
		level string
	}{
		{0, 100, "excellent"},
		{-15, 86, "good"},
		{40, 64, "fair"},
		{100, 50, "needs_improvement"},
		{300, 30, "needs_improvement"},
	}

	for _, tt := range tests {
		got := pitchAccuracy(tt.cents, th.Pedagogy)
		if got.Score != tt.score || got.Level != tt.level {
			t.Errorf("pitchAccuracy(%v) = %+v, want %v/%s", tt.cents, got, tt.score, tt.level)
		}
	}
}

// TestPitchAccuracyTuned tests that the cents bands come from the table
func TestPitchAccuracyTuned(t *testing.T) {
	ped := th.Pedagogy
	ped.PitchFloor = 40
	ped.PitchBands = []thresholds.PitchBand{{Level: "excellent", Below: 5, Base: 90, Slope: 2}}

	if got := pitchAccuracy(3, ped); got.Score != 94 || got.Level != "excellent" {
		t.Errorf("Expected 94/excellent, got %+v", got)
	}
	if got := pitchAccuracy(20, ped); got.Score != 87 || got.Level != "needs_improvement" {
		t.Errorf("Expected 87/needs_improvement past the last band, got %+v", got)
	}
	if got := pitchAccuracy(500, ped); got.Score != 40 {
		t.Errorf("Expected the tuned floor 40, got %+v", got)
	}
}

// TestFineGrade tests the fine grade boundaries
func TestFineGrade(t *testing.T) {
	tests := map[float64]string{
		95:   "A+",
		90:   "A+",
		89.9: "A",
		77:   "B+",
		50:   "C-",
		49.9: "D",
	}
	for score, want := range tests {
		if got, _ := FineGrade(score, th.Pedagogy.FineGrades); got != want {
			t.Errorf("FineGrade(%v) = %s, want %s", score, got, want)
		}
	}
}

// TestPriorityCap tests that priorities respect the configured maximum
func TestPriorityCap(t *testing.T) {
	ped := th.Pedagogy
	ped.MaxPriorities = 2
	if p := Priorities(weakLabel(), ped); len(p) != 2 || p[0] != PriorityHealth {
		t.Errorf("Expected two priorities led by health, got %v", p)
	}
}
