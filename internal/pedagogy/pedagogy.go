// Package pedagogy turns one comprehensive frame label into a teacher-style
// assessment: graded fundamentals, technique, artistry and health, plus
// practice priorities and exercises.
package pedagogy

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/classify"
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/internal/scoring"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Priority names, in the order they are considered.
const (
	PriorityPitch     = "pitch_accuracy"
	PriorityBreath    = "breath_support"
	PriorityArticul   = "articulation"
	PriorityResonance = "resonance_placement"
	PriorityHealth    = "vocal_health"
)

var breathFeedback = map[models.SupportLevel]string{
	models.SupportExcellent: "Keep the current technique; try longer phrases",
	models.SupportGood:      "Keep support more consistent; practise diaphragmatic breathing",
	models.SupportAdequate:  "Add support-strengthening work: lip trills and breath control",
	models.SupportWeak:      "Rebuild the basics; strengthen the core with yoga or pilates",
	models.SupportPoor:      "Get breath coaching; do basic breathing exercises daily",
}

var pitchFeedback = map[string]string{
	"excellent":         "Very accurate intonation",
	"good":              "Intonation is slightly off; listen closely to the reference pitch",
	"fair":              "Noticeably out of tune; practise slowly against a piano",
	"needs_improvement": "Pitch needs work; start with ear training",
}

var exerciseGroups = map[string][]string{
	PriorityBreath: {
		"Diaphragmatic breathing, 10 minutes a day",
		"Lip trills through a scale, 5 minutes",
		"Sustained hiss, 15 seconds x5",
	},
	PriorityPitch: {
		"Scales against a piano",
		"Slow chromatic scales",
		"Ear training intervals",
	},
	PriorityResonance: {
		"Humming on different vowels",
		"\"ng\" resonance exercise",
		"Forward placement exercise",
	},
	PriorityArticul: {
		"Pure vowel drills",
		"Consonant clarity drills",
		"Diction practice reading poetry aloud",
	},
}

const vibratoExercise = "Natural vibrato development"

// Assess grades one frame. The assessment is deterministic in the label.
func Assess(label models.ComprehensiveLabel, th thresholds.Thresholds) models.PedagogicalAssessment {
	h := label.Health
	p := th.Pedagogy
	fatigue := (1-h.StrainLevel)*0.4 + h.Efficiency*0.3 + h.Sustainability*0.3

	a := models.PedagogicalAssessment{
		Timestamp: label.Frame.Time,
		Fundamentals: models.Fundamentals{
			PitchAccuracy:       pitchAccuracy(label.Frame.Note.Cents, p),
			IntonationStability: intonation(label, p),
			RegisterConsistency: registerConsistency(label.Frame, th),
		},
		Technical: models.Technical{
			BreathManagement:      breathManagement(label, p),
			ResonanceEfficiency:   resonance(label),
			ArticulationPrecision: articulation(label, p),
			VocalAgility:          agility(label.Vibrato),
		},
		Artistic: artistic(label, p),
		Health: models.HealthAssessment{
			Sustainability:    h.Sustainability,
			StrainLevel:       h.StrainLevel,
			FatigueResistance: fatigue,
			RiskLevel:         h.RiskLevel,
		},
	}
	a.Priorities = Priorities(label, th.Pedagogy)
	a.Exercises = Exercises(label, th.Pedagogy)
	a.Overall = Overall(label, th)
	return a
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func pitchAccuracy(cents float64, th thresholds.Pedagogy) models.ScoreItem {
	c := math.Abs(cents)
	item := models.ScoreItem{Level: "needs_improvement"}
	matched := false
	for _, b := range th.PitchBands {
		if c < b.Below {
			item.Score, item.Level = b.Base+(b.Below-c)*b.Slope, b.Level
			matched = true
			break
		}
	}
	if !matched && len(th.PitchBands) > 0 {
		last := th.PitchBands[len(th.PitchBands)-1]
		item.Score = math.Max(th.PitchFloor, last.Base-(c-last.Below)*th.PitchFalloff)
	}
	item.Feedback = pitchFeedback[item.Level]
	item.Score = round1(dsp.Clamp(item.Score, 0, 100))
	return item
}

func intonation(label models.ComprehensiveLabel, th thresholds.Pedagogy) models.ScoreItem {
	vc := th.DefaultConsistency
	if label.Vibrato.Detected {
		vc = label.Vibrato.Consistency
	}
	score := (label.Frame.Confidence*0.7 + vc*0.3) * 100
	level := "unstable"
	for i, l := range []string{"excellent", "good", "fair"} {
		if i < len(th.IntonationLevels) && score > th.IntonationLevels[i] {
			level = l
			break
		}
	}
	return models.ScoreItem{Score: round1(score), Level: level}
}

func registerConsistency(f models.FusedFrame, th thresholds.Thresholds) models.ScoreItem {
	score := classify.RegisterFormantMatch(f.Register, f.Formants, th.Register)
	if score > th.Pedagogy.RegisterAppropriate {
		return models.ScoreItem{Score: score, Level: "appropriate"}
	}
	return models.ScoreItem{Score: score, Level: "needs_adjustment",
		Feedback: "Formants do not match the register; adjust vowel shape"}
}

func breathManagement(label models.ComprehensiveLabel, th thresholds.Pedagogy) models.ScoreItem {
	base := levelScore(th.SupportScores, label.BreathSupport.Level, th.DefaultScore)
	score := base + (1-label.Health.StrainLevel)*10 + label.Health.Efficiency*5
	return models.ScoreItem{
		Score:    round1(math.Min(100, score)),
		Level:    string(label.BreathSupport.Level),
		Feedback: breathFeedback[label.BreathSupport.Level],
	}
}

func resonance(label models.ComprehensiveLabel) models.ScoreItem {
	r := label.Resonance
	score := r.Chest*100*0.25 + r.Oral*100*0.35 + r.Head*100*0.25 + r.Placement*100*0.15 +
		math.Min(label.Frame.Formants.SingersFormant*20, 20)
	score = math.Min(100, score)
	level := "developing"
	if score > 70 {
		level = "efficient"
	}
	return models.ScoreItem{Score: round1(score), Level: level}
}

func articulation(label models.ComprehensiveLabel, th thresholds.Pedagogy) models.ScoreItem {
	base := levelScore(th.ArticulationScores, label.Articulation.Level, th.DefaultScore)
	if label.Frame.Vowel != models.VowelMixed {
		base += 5
	}
	return models.ScoreItem{Score: math.Min(100, base), Level: string(label.Articulation.Level)}
}

func agility(v models.VibratoAnalysis) models.ScoreItem {
	if !v.Detected {
		return models.ScoreItem{Score: 50, Level: "limited"}
	}
	score := math.Min(v.Rate*10+v.Consistency*20, 80)
	level := "moderate"
	if score > 60 {
		level = "good"
	}
	return models.ScoreItem{Score: round1(score), Level: level}
}

func artistic(label models.ComprehensiveLabel, th thresholds.Pedagogy) models.Artistic {
	dyn := levelScore(th.DynamicScores, label.Expression.Dynamics, th.DefaultScore)
	dynLevel := "fair"
	if dyn > 70 {
		dynLevel = "good"
	}

	emotion := 10.0
	if label.Vibrato.Detected {
		emotion = 20
	}
	emotion += 15
	switch label.Articulation.Level {
	case models.ArticulationExcellent, models.ArticulationGood:
		emotion += 15
	default:
		emotion += 10
	}

	return models.Artistic{
		DynamicControl:        models.ScoreItem{Score: dyn, Level: dynLevel},
		PhraseShaping:         models.ScoreItem{Score: round1(label.Expression.Phrasing * 100), Level: "developing"},
		StylisticAuthenticity: models.ScoreItem{Score: 75, Level: "moderate"},
		EmotionalConnectivity: models.ScoreItem{Score: emotion, Level: "developing"},
	}
}

// Priorities lists what to practise first, most urgent at the front.
func Priorities(label models.ComprehensiveLabel, th thresholds.Pedagogy) []string {
	var p []string
	if label.Confidence < th.ConfidenceTarget {
		p = append(p, PriorityPitch)
	}
	if weakSupport(label.BreathSupport.Level) {
		p = append([]string{PriorityBreath}, p...)
	}
	if poorArticulation(label.Articulation.Level) {
		p = append(p, PriorityArticul)
	}
	if label.Resonance.Placement < th.PlacementTarget {
		p = append(p, PriorityResonance)
	}
	if label.Health.RiskLevel == models.RiskHigh {
		p = append([]string{PriorityHealth}, p...)
	}
	if th.MaxPriorities > 0 && len(p) > th.MaxPriorities {
		p = p[:th.MaxPriorities]
	}
	return p
}

// Exercises suggests concrete drills for the same conditions as Priorities.
// Duplicates are dropped, first occurrence wins.
func Exercises(label models.ComprehensiveLabel, th thresholds.Pedagogy) []string {
	var groups []string
	if weakSupport(label.BreathSupport.Level) {
		groups = append(groups, PriorityBreath)
	}
	if label.Confidence < th.ConfidenceTarget {
		groups = append(groups, PriorityPitch)
	}
	if label.Resonance.Placement < th.PlacementTarget {
		groups = append(groups, PriorityResonance)
	}
	if poorArticulation(label.Articulation.Level) {
		groups = append(groups, PriorityArticul)
	}

	var out []string
	seen := make(map[string]bool)
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for _, g := range groups {
		for _, e := range exerciseGroups[g] {
			add(e)
		}
	}
	if !label.Vibrato.Detected && label.Frame.Register != models.RegisterChest {
		add(vibratoExercise)
	}
	if th.MaxExercises > 0 && len(out) > th.MaxExercises {
		out = out[:th.MaxExercises]
	}
	return out
}

func weakSupport(l models.SupportLevel) bool {
	return l == models.SupportWeak || l == models.SupportPoor
}

func poorArticulation(l models.ArticulationLevel) bool {
	return l == models.ArticulationPoor || l == models.ArticulationUnclear
}

// levelScore looks a level up in a score table, falling back to def.
func levelScore[L comparable](table map[L]float64, level L, def float64) float64 {
	if v, ok := table[level]; ok {
		return v
	}
	return def
}

// Overall is the weighted frame grade.
func Overall(label models.ComprehensiveLabel, th thresholds.Thresholds) models.OverallAssessment {
	p := th.Pedagogy
	w := p.Weights
	breath := levelScore(p.SupportScores, label.BreathSupport.Level, p.DefaultScore)
	artic := levelScore(p.ArticulationScores, label.Articulation.Level, p.DefaultScore)
	score := label.Confidence*100*w.Pitch +
		breath*w.Breath +
		artic*w.Articulation +
		label.Resonance.Placement*100*w.Placement +
		(1-label.Health.StrainLevel)*100*w.Health

	fine, desc := FineGrade(score, p.FineGrades)
	return models.OverallAssessment{
		Score:       round1(score),
		Grade:       scoring.Grade(score, th.Scoring),
		FineGrade:   fine,
		Description: desc,
	}
}

// FineGrade maps a score onto the A+ ... D scale. Scores below every step get
// the lowest one.
func FineGrade(score float64, grades []thresholds.FineGrade) (string, string) {
	if len(grades) == 0 {
		return "", ""
	}
	for _, g := range grades {
		if score >= g.Min {
			return g.Grade, g.Description
		}
	}
	last := grades[len(grades)-1]
	return last.Grade, last.Description
}
