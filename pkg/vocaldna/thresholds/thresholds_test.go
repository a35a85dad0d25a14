package thresholds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// TestDefaultValid tests that the built-in table passes validation
func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default thresholds invalid: %v", err)
	}
}

// TestLoadYAML tests that a file overrides only the keys it names
func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	data := []byte(`
fusion:
  min_confidence: 0.55
vibrato:
  window: 40
passaggio:
  voice_type: tenor
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	th, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if th.Fusion.MinConfidence != 0.55 {
		t.Errorf("Expected min_confidence 0.55, got %f", th.Fusion.MinConfidence)
	}
	if th.Fusion.DisagreementHz != 20 {
		t.Errorf("Expected untouched disagreement 20, got %f", th.Fusion.DisagreementHz)
	}
	if th.Vibrato.Window != 40 {
		t.Errorf("Expected vibrato window 40, got %d", th.Vibrato.Window)
	}
	if th.Passaggio.VoiceType != models.VoiceTenor {
		t.Errorf("Expected voice type tenor, got %q", th.Passaggio.VoiceType)
	}
	if len(th.Vowel.Targets) != 9 {
		t.Errorf("Expected default vowel table kept, got %d entries", len(th.Vowel.Targets))
	}
}

// TestLoadYAMLTuningSections tests the pedagogy, health and scoring sections
func TestLoadYAMLTuningSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	data := []byte(`
health:
  nasal_band: {min: 400, max: 1600}
  support_levels: [0.9, 0.7, 0.5, 0.3]
scoring:
  minimums:
    pitch: 22
  difficulty:
    range_cap: 2
pedagogy:
  pitch_floor: 35
  support_scores:
    excellent: 99
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	th, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if th.Health.NasalBand != (Range{400, 1600}) {
		t.Errorf("Expected nasal band 400-1600, got %+v", th.Health.NasalBand)
	}
	if th.Health.SupportLevels[0] != 0.9 || len(th.Health.ArticulationLevels) != 4 {
		t.Errorf("Unexpected level cutoffs %v / %v", th.Health.SupportLevels, th.Health.ArticulationLevels)
	}
	if th.Scoring.Minimums.Pitch != 22 || th.Scoring.Minimums.Variety != 15 {
		t.Errorf("Expected pitch minimum 22 with variety kept, got %+v", th.Scoring.Minimums)
	}
	if th.Scoring.Difficulty.RangeCap != 2 || th.Scoring.Difficulty.TechniqueCap != 2 {
		t.Errorf("Unexpected difficulty %+v", th.Scoring.Difficulty)
	}
	if th.Pedagogy.PitchFloor != 35 || len(th.Pedagogy.PitchBands) != 3 {
		t.Errorf("Expected pitch floor 35 with bands kept, got %v/%d", th.Pedagogy.PitchFloor, len(th.Pedagogy.PitchBands))
	}
	if th.Pedagogy.SupportScores[models.SupportExcellent] != 99 {
		t.Errorf("Expected excellent support score 99, got %v", th.Pedagogy.SupportScores)
	}
	if len(th.Register.Ideal) != 4 || th.Register.MatchDefault != 70 {
		t.Errorf("Expected default register windows kept, got %d/%v", len(th.Register.Ideal), th.Register.MatchDefault)
	}
}

// TestLoadMissingFile tests the not-found error path
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

// TestEnvOverrides tests VOCAL_* environment variables
func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOCAL_VIBRATO_WINDOW", "32")
	t.Setenv("VOCAL_BREATH_FRACTION", "0.2")
	t.Setenv("VOCAL_VOICE_TYPE", " Soprano ")
	t.Setenv("VOCAL_ENGINE_TIMEOUT_MS", "not-a-number")
	t.Setenv("VOCAL_SCORING_MIN_BREATH", "12")
	t.Setenv("VOCAL_HEALTH_LEGATO_FLUX", "0.1")
	t.Setenv("VOCAL_PEDAGOGY_DEFAULT_SCORE", "55")

	th, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if th.Vibrato.Window != 32 {
		t.Errorf("Expected window 32, got %d", th.Vibrato.Window)
	}
	if th.Breath.Fraction != 0.2 {
		t.Errorf("Expected fraction 0.2, got %f", th.Breath.Fraction)
	}
	if th.Passaggio.VoiceType != models.VoiceSoprano {
		t.Errorf("Expected soprano, got %q", th.Passaggio.VoiceType)
	}
	if th.Engine.TimeoutMS != 3000 {
		t.Errorf("Expected unparsable override ignored, got %d", th.Engine.TimeoutMS)
	}
	if th.Scoring.Minimums.Breath != 12 || th.Health.LegatoFlux != 0.1 || th.Pedagogy.DefaultScore != 55 {
		t.Errorf("Expected tuning overrides applied, got %v/%v/%v",
			th.Scoring.Minimums.Breath, th.Health.LegatoFlux, th.Pedagogy.DefaultScore)
	}
}

// TestValidateRejects tests invalid tables
func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"small vibrato window", func(th *Thresholds) { th.Vibrato.Window = 8 }},
		{"unknown voice type", func(th *Thresholds) { th.Passaggio.VoiceType = "countertenor" }},
		{"inverted range", func(th *Thresholds) { th.Technique.Patterns[0].F1 = Range{900, 600} }},
		{"unordered dynamics", func(th *Thresholds) { th.Dynamics.Bands[1].Above = 0.9 }},
		{"grade order", func(th *Thresholds) { th.Scoring.GradeA = 95 }},
		{"empty vowels", func(th *Thresholds) { th.Vowel.Targets = nil }},
		{"register edges", func(th *Thresholds) { th.Register.ChestBelow = 50 }},
		{"inverted register window", func(th *Thresholds) { th.Register.Ideal[0].F2 = Range{1400, 1000} }},
		{"register match order", func(th *Thresholds) { th.Register.MatchOutside = 60 }},
		{"support cutoffs", func(th *Thresholds) { th.Health.SupportLevels = []float64{0.8, 0.9, 0.4, 0.2} }},
		{"articulation cutoff count", func(th *Thresholds) { th.Health.ArticulationLevels = []float64{0.8, 0.6} }},
		{"nasal band", func(th *Thresholds) { th.Health.NasalBand = Range{1500, 500} }},
		{"flux order", func(th *Thresholds) { th.Health.LegatoFlux = 0.6 }},
		{"negative minimum", func(th *Thresholds) { th.Scoring.Minimums.Vibrato = -1 }},
		{"difficulty cap", func(th *Thresholds) { th.Scoring.Difficulty.RangeCap = 0 }},
		{"pitch bands order", func(th *Thresholds) { th.Pedagogy.PitchBands[1].Below = 5 }},
		{"weights sum", func(th *Thresholds) { th.Pedagogy.Weights.Pitch = 0.5 }},
		{"fine grades order", func(th *Thresholds) { th.Pedagogy.FineGrades[2].Min = 95 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Default()
			tt.mutate(&th)
			if err := th.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

// TestRangeContains tests inclusive bounds
func TestRangeContains(t *testing.T) {
	r := Range{Min: 1, Max: 2}
	for _, v := range []float64{1, 1.5, 2} {
		if !r.Contains(v) {
			t.Errorf("Expected %f in range", v)
		}
	}
	if r.Contains(2.0001) || r.Contains(0.9999) {
		t.Error("Expected out-of-range values rejected")
	}
}
