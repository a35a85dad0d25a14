package models

// VibratoAnalysis is the result of one vibrato detection over the recent pitch history.
type VibratoAnalysis struct {
	Detected    bool        `json:"detected"`
	Status      string      `json:"status"`
	Rate        float64     `json:"rate"`  // Hz
	Depth       float64     `json:"depth"` // cents
	Consistency float64     `json:"consistency"`
	Type        VibratoType `json:"type"`
}

// BreathEvent marks the start of a run of near-silent frames.
type BreathEvent struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
}

type DynamicsState struct {
	Level     DynamicLevel `json:"level"`
	Trend     DynamicTrend `json:"trend"`
	Amplitude float64      `json:"amplitude"`
	Variation float64      `json:"variation"`
}

// PassaggioAnalysis is only produced while the frequency sits in a passaggio band.
type PassaggioAnalysis struct {
	VoiceType     VoiceType      `json:"voice_type"`
	Smoothness    float64        `json:"smoothness"`
	RegisterBlend float64        `json:"register_blend"`
	TensionLevel  float64        `json:"tension_level"`
	Type          TransitionType `json:"type"`
}

type VocalHealth struct {
	HNR            float64   `json:"hnr"`
	StrainLevel    float64   `json:"strain_level"`
	Efficiency     float64   `json:"efficiency"`
	Sustainability float64   `json:"sustainability"`
	TensionAreas   []string  `json:"tension_areas"`
	RiskLevel      RiskLevel `json:"risk_level"`
}

type ArticulationAnalysis struct {
	FormantClarity  float64           `json:"formant_clarity"`
	SpectralClarity float64           `json:"spectral_clarity"`
	Overall         float64           `json:"overall"`
	Level           ArticulationLevel `json:"level"`
}

type BreathSupport struct {
	AmplitudeStability float64      `json:"amplitude_stability"`
	EnergyDecay        float64      `json:"energy_decay"`
	Score              float64      `json:"score"`
	Level              SupportLevel `json:"level"`
}

type ResonanceAnalysis struct {
	Chest     float64 `json:"chest"`
	Oral      float64 `json:"oral"`
	Head      float64 `json:"head"`
	Nasal     float64 `json:"nasal"`
	Placement float64 `json:"placement"`
	Forward   bool    `json:"forward"`
}

type ExpressionAnalysis struct {
	Dynamics         DynamicLevel      `json:"dynamics"`
	Style            ArticulationStyle `json:"style"`
	SpectralFlux     float64           `json:"spectral_flux"`
	Phrasing         float64           `json:"phrasing"`
	Musicality       float64           `json:"musicality"`
	TempoConsistency float64           `json:"tempo_consistency"`
}

// ComprehensiveLabel is everything known about one frame after all detectors ran.
type ComprehensiveLabel struct {
	Frame          FusedFrame           `json:"frame"`
	Resonance      ResonanceAnalysis    `json:"resonance"`
	Vibrato        VibratoAnalysis      `json:"vibrato"`
	Dynamics       DynamicsState        `json:"dynamics"`
	Passaggio      *PassaggioAnalysis   `json:"passaggio,omitempty"`
	Expression     ExpressionAnalysis   `json:"expression"`
	Articulation   ArticulationAnalysis `json:"articulation"`
	BreathSupport  BreathSupport        `json:"breath_support"`
	Health         VocalHealth          `json:"health"`
	Confidence     float64              `json:"confidence"`
	AnalysisSource string               `json:"analysis_source"`
}

// ScoreItem is one graded dimension of a pedagogical assessment (0-100).
type ScoreItem struct {
	Score    float64 `json:"score"`
	Level    string  `json:"level"`
	Feedback string  `json:"feedback,omitempty"`
}

type Fundamentals struct {
	PitchAccuracy       ScoreItem `json:"pitch_accuracy"`
	IntonationStability ScoreItem `json:"intonation_stability"`
	RegisterConsistency ScoreItem `json:"register_consistency"`
}

type Technical struct {
	BreathManagement      ScoreItem `json:"breath_management"`
	ResonanceEfficiency   ScoreItem `json:"resonance_efficiency"`
	ArticulationPrecision ScoreItem `json:"articulation_precision"`
	VocalAgility          ScoreItem `json:"vocal_agility"`
}

type Artistic struct {
	DynamicControl        ScoreItem `json:"dynamic_control"`
	PhraseShaping         ScoreItem `json:"phrase_shaping"`
	StylisticAuthenticity ScoreItem `json:"stylistic_authenticity"`
	EmotionalConnectivity ScoreItem `json:"emotional_connectivity"`
}

type HealthAssessment struct {
	Sustainability    float64   `json:"sustainability"`
	StrainLevel       float64   `json:"strain_level"`
	FatigueResistance float64   `json:"fatigue_resistance"`
	RiskLevel         RiskLevel `json:"risk_level"`
}

type OverallAssessment struct {
	Score       float64 `json:"score"`
	Grade       Grade   `json:"grade"`
	FineGrade   string  `json:"fine_grade"`
	Description string  `json:"description"`
}

type PedagogicalAssessment struct {
	Timestamp    float64           `json:"timestamp"`
	Fundamentals Fundamentals      `json:"fundamentals"`
	Technical    Technical         `json:"technical"`
	Artistic     Artistic          `json:"artistic"`
	Health       HealthAssessment  `json:"health"`
	Priorities   []string          `json:"priorities"`
	Exercises    []string          `json:"exercises"`
	Overall      OverallAssessment `json:"overall"`
}

// PerformanceScore is the weighted session score. Components never exceed their maxima.
type PerformanceScore struct {
	PitchAccuracy     float64  `json:"pitch_accuracy"`
	TechniqueVariety  float64  `json:"technique_variety"`
	VibratoQuality    float64  `json:"vibrato_quality"`
	DynamicsControl   float64  `json:"dynamics_control"`
	BreathSupport     float64  `json:"breath_support"`
	PassaggioHandling float64  `json:"passaggio_handling"`
	Total             float64  `json:"total_score"`
	Grade             Grade    `json:"grade"`
	Recommendations   []string `json:"recommendations"`
}

// ScoreComponent is a named component with its maximum, for display.
type ScoreComponent struct {
	Name  string
	Value float64
	Max   float64
}

func (p PerformanceScore) Components() []ScoreComponent {
	return []ScoreComponent{
		{"pitch_accuracy", p.PitchAccuracy, 25},
		{"technique_variety", p.TechniqueVariety, 20},
		{"vibrato_quality", p.VibratoQuality, 15},
		{"dynamics_control", p.DynamicsControl, 15},
		{"breath_support", p.BreathSupport, 15},
		{"passaggio_handling", p.PassaggioHandling, 10},
	}
}
