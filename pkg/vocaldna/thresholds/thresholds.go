// Package thresholds holds every tunable constant of the analysis pipeline in one table.
//
// Load follows defaults -> YAML file -> VOCAL_* environment overrides -> validation.
// Rule tables are ordered slices; classifiers break ties by table order.
package thresholds

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

type Thresholds struct {
	Fusion    Fusion    `yaml:"fusion"`
	Register  Register  `yaml:"register"`
	Vowel     Vowel     `yaml:"vowel"`
	Technique Technique `yaml:"technique"`
	Timbre    Timbre    `yaml:"timbre"`
	Vibrato   Vibrato   `yaml:"vibrato"`
	Breath    Breath    `yaml:"breath"`
	Dynamics  Dynamics  `yaml:"dynamics"`
	Passaggio Passaggio `yaml:"passaggio"`
	Health    Health    `yaml:"health"`
	Scoring   Scoring   `yaml:"scoring"`
	Pedagogy  Pedagogy  `yaml:"pedagogy"`
	Engine    Engine    `yaml:"engine"`
}

type Fusion struct {
	MinConfidence  float64 `yaml:"min_confidence"`
	DisagreementHz float64 `yaml:"disagreement_hz"`
}

// Register holds the frequency band edges (Hz) and formant gates of the register rules.
type Register struct {
	FryBelow         float64 `yaml:"fry_below"`
	ChestBelow       float64 `yaml:"chest_below"`
	LowMixBelow      float64 `yaml:"low_mix_below"`
	MidBelow         float64 `yaml:"mid_below"`
	HighBelow        float64 `yaml:"high_below"`
	WhistleFrom      float64 `yaml:"whistle_from"`
	LowChestF1       float64 `yaml:"low_chest_f1"`
	LowChestSF       float64 `yaml:"low_chest_sf"`
	MidMixF1         float64 `yaml:"mid_mix_f1"`
	MidMixF2         float64 `yaml:"mid_mix_f2"`
	MidHeadF1        float64 `yaml:"mid_head_f1"`
	MidHeadF2        float64 `yaml:"mid_head_f2"`
	HighHeadCentroid float64 `yaml:"high_head_centroid"`

	// Ideal lists the F1/F2 windows a well-produced register sits in. A
	// formant inside its window scores MatchInside, outside MatchOutside;
	// registers without a window score MatchDefault.
	Ideal        []RegisterWindow `yaml:"ideal"`
	MatchInside  float64          `yaml:"match_inside"`
	MatchOutside float64          `yaml:"match_outside"`
	MatchDefault float64          `yaml:"match_default"`
}

type RegisterWindow struct {
	Register models.Register `yaml:"register"`
	F1       Range           `yaml:"f1"`
	F2       Range           `yaml:"f2"`
}

type VowelTarget struct {
	Vowel models.Vowel `yaml:"vowel"`
	F1    float64      `yaml:"f1"`
	F2    float64      `yaml:"f2"`
}

type Vowel struct {
	Targets     []VowelTarget `yaml:"targets"`
	MaxDistance float64       `yaml:"max_distance"`
}

type TechniquePattern struct {
	Technique models.Technique `yaml:"technique"`
	F1        Range            `yaml:"f1"`
	F2        Range            `yaml:"f2"`
	SF        Range            `yaml:"singers_formant"`
}

type Technique struct {
	Patterns []TechniquePattern `yaml:"patterns"`
	WeightF1 float64            `yaml:"weight_f1"`
	WeightF2 float64            `yaml:"weight_f2"`
	WeightSF float64            `yaml:"weight_sf"`
}

type TimbrePattern struct {
	Timbre   models.Timbre `yaml:"timbre"`
	Centroid Range         `yaml:"centroid"`
	Ratio    Range         `yaml:"f2_f1_ratio"`
}

type Timbre struct {
	Patterns     []TimbrePattern `yaml:"patterns"`
	DefaultRatio float64         `yaml:"default_ratio"`
}

type Vibrato struct {
	Window       int     `yaml:"window"`
	MinPoints    int     `yaml:"min_points"`
	NaturalRate  Range   `yaml:"natural_rate"`
	NaturalDepth Range   `yaml:"natural_depth"`
	TremoloAbove float64 `yaml:"tremolo_above"`
	WobbleBelow  float64 `yaml:"wobble_below"`
}

type Breath struct {
	Fraction     float64 `yaml:"fraction"`
	Run          int     `yaml:"run"`
	History      int     `yaml:"history"`
	RegularAbove int     `yaml:"regular_above"`
}

// DynamicBand maps amplitudes strictly above Above to Level.
type DynamicBand struct {
	Level models.DynamicLevel `yaml:"level"`
	Above float64             `yaml:"above"`
}

type Dynamics struct {
	Bands       []DynamicBand       `yaml:"bands"`
	Floor       models.DynamicLevel `yaml:"floor"`
	TrendWindow int                 `yaml:"trend_window"`
	TrendSlope  float64             `yaml:"trend_slope"`
}

type PassaggioBand struct {
	VoiceType models.VoiceType `yaml:"voice_type"`
	Range     Range            `yaml:"range"`
}

type Passaggio struct {
	VoiceType       models.VoiceType `yaml:"voice_type"`
	Bands           []PassaggioBand  `yaml:"bands"`
	IdealRatio      float64          `yaml:"ideal_ratio"`
	RatioPenalty    float64          `yaml:"ratio_penalty"`
	DefaultBlend    float64          `yaml:"default_blend"`
	TensionLevel    float64          `yaml:"tension_level"`
	SmoothAbove     float64          `yaml:"smooth_above"`
	AcceptableAbove float64          `yaml:"acceptable_above"`
}

type Health struct {
	HNRDefault     float64 `yaml:"hnr_default"`
	HNRCeiling     float64 `yaml:"hnr_ceiling"`
	HNRMax         float64 `yaml:"hnr_max"`
	StrainHNR      float64 `yaml:"strain_hnr"`
	LarynxF1       float64 `yaml:"larynx_f1"`
	TongueF2High   float64 `yaml:"tongue_f2_high"`
	TongueF2Low    float64 `yaml:"tongue_f2_low"`
	JawSpread      float64 `yaml:"jaw_spread"`
	LowStrain      float64 `yaml:"low_strain"`
	ModerateStrain float64 `yaml:"moderate_strain"`
	HighFreqHz     float64 `yaml:"high_freq_hz"`
	EnergySegments int     `yaml:"energy_segments"`

	EnergyDecayDefault float64 `yaml:"energy_decay_default"`
	// SupportLevels and ArticulationLevels are the four score cutoffs of the
	// five-step level scales, best first. A score must be strictly above a
	// cutoff to reach that level.
	SupportLevels      []float64 `yaml:"support_levels"`
	ArticulationLevels []float64 `yaml:"articulation_levels"`

	NasalBand        Range   `yaml:"nasal_band"`
	NasalDefault     float64 `yaml:"nasal_default"`
	ChestF1          float64 `yaml:"chest_f1"`
	OralF2           float64 `yaml:"oral_f2"`
	HeadF3           float64 `yaml:"head_f3"`
	PlacementSF      float64 `yaml:"placement_sf"`
	PlacementDefault float64 `yaml:"placement_default"`
	ForwardRatio     float64 `yaml:"forward_ratio"`

	StaccatoFlux     float64 `yaml:"staccato_flux"`
	LegatoFlux       float64 `yaml:"legato_flux"`
	Phrasing         float64 `yaml:"phrasing"`
	Musicality       float64 `yaml:"musicality"`
	TempoConsistency float64 `yaml:"tempo_consistency"`

	// Health report cutoffs on the average strain and the share of high-risk sessions.
	ReportHighStrain     float64 `yaml:"report_high_strain"`
	ReportModerateStrain float64 `yaml:"report_moderate_strain"`
	ReportHighRiskShare  float64 `yaml:"report_high_risk_share"`
}

type Scoring struct {
	IdealVibratoRate  float64 `yaml:"ideal_vibrato_rate"`
	IdealVibratoDepth float64 `yaml:"ideal_vibrato_depth"`
	BreathBase        float64 `yaml:"breath_base"`
	BreathPerEvent    float64 `yaml:"breath_per_event"`
	BreathFloor       float64 `yaml:"breath_floor"`
	GradeS            float64 `yaml:"grade_s"`
	GradeA            float64 `yaml:"grade_a"`
	GradeB            float64 `yaml:"grade_b"`
	GradeC            float64 `yaml:"grade_c"`

	// Per-unit multipliers of the performance components.
	PitchScale          float64 `yaml:"pitch_scale"`
	PerTechnique        float64 `yaml:"per_technique"`
	PerDynamicLevel     float64 `yaml:"per_dynamic_level"`
	PerSmoothTransition float64 `yaml:"per_smooth_transition"`
	BreathScale         float64 `yaml:"breath_scale"`
	VibratoAbsent       float64 `yaml:"vibrato_absent"`

	Minimums   Minimums   `yaml:"minimums"`
	Difficulty Difficulty `yaml:"difficulty"`
}

// Minimums are the component scores below which a recommendation is given.
type Minimums struct {
	Pitch     float64 `yaml:"pitch"`
	Variety   float64 `yaml:"variety"`
	Vibrato   float64 `yaml:"vibrato"`
	Dynamics  float64 `yaml:"dynamics"`
	Breath    float64 `yaml:"breath"`
	Passaggio float64 `yaml:"passaggio"`
}

type Difficulty struct {
	RangeCap        float64 `yaml:"range_cap"`
	PerTechnique    float64 `yaml:"per_technique"`
	TechniqueCap    float64 `yaml:"technique_cap"`
	VibratoAbsent   float64 `yaml:"vibrato_absent"`
	VibratoPresent  float64 `yaml:"vibrato_present"`
	PerDynamicLevel float64 `yaml:"per_dynamic_level"`
	DynamicsCap     float64 `yaml:"dynamics_cap"`
	PerTransition   float64 `yaml:"per_transition"`
	PassaggioCap    float64 `yaml:"passaggio_cap"`
}

type Pedagogy struct {
	ConfidenceTarget float64 `yaml:"confidence_target"`
	PlacementTarget  float64 `yaml:"placement_target"`
	MaxPriorities    int     `yaml:"max_priorities"`
	MaxExercises     int     `yaml:"max_exercises"`
	SummaryWindow    int     `yaml:"summary_window"`

	// PitchBands score the absolute cents deviation: the first band whose
	// Below exceeds it gives Base + (Below-cents)*Slope. Past the last band
	// the score falls by PitchFalloff per cent down to PitchFloor.
	PitchBands   []PitchBand `yaml:"pitch_bands"`
	PitchFalloff float64     `yaml:"pitch_falloff"`
	PitchFloor   float64     `yaml:"pitch_floor"`

	IntonationLevels    []float64 `yaml:"intonation_levels"`
	DefaultConsistency  float64   `yaml:"default_consistency"`
	RegisterAppropriate float64   `yaml:"register_appropriate"`

	SupportScores      map[models.SupportLevel]float64      `yaml:"support_scores"`
	ArticulationScores map[models.ArticulationLevel]float64 `yaml:"articulation_scores"`
	DynamicScores      map[models.DynamicLevel]float64      `yaml:"dynamic_scores"`
	DefaultScore       float64                              `yaml:"default_score"`

	Weights    FrameWeights `yaml:"weights"`
	FineGrades []FineGrade  `yaml:"fine_grades"`
}

type PitchBand struct {
	Level string  `yaml:"level"`
	Below float64 `yaml:"below"`
	Base  float64 `yaml:"base"`
	Slope float64 `yaml:"slope"`
}

// FrameWeights weight the overall frame grade; they sum to 1.
type FrameWeights struct {
	Pitch        float64 `yaml:"pitch"`
	Breath       float64 `yaml:"breath"`
	Articulation float64 `yaml:"articulation"`
	Placement    float64 `yaml:"placement"`
	Health       float64 `yaml:"health"`
}

// FineGrade is one step of the A+ ... D scale, highest Min first.
type FineGrade struct {
	Min         float64 `yaml:"min"`
	Grade       string  `yaml:"grade"`
	Description string  `yaml:"description"`
}

type Engine struct {
	MinConfidence float64 `yaml:"min_confidence"`
	TimeoutMS     int     `yaml:"timeout_ms"`
}

func Default() Thresholds {
	return Thresholds{
		Fusion: Fusion{MinConfidence: 0.5, DisagreementHz: 20},
		Register: Register{
			FryBelow:         80,
			ChestBelow:       200,
			LowMixBelow:      350,
			MidBelow:         700,
			HighBelow:        1400,
			WhistleFrom:      2000,
			LowChestF1:       600,
			LowChestSF:       0.3,
			MidMixF1:         500,
			MidMixF2:         1800,
			MidHeadF1:        400,
			MidHeadF2:        2000,
			HighHeadCentroid: 2000,
			Ideal: []RegisterWindow{
				{models.RegisterChest, Range{600, 800}, Range{1000, 1400}},
				{models.RegisterMixed, Range{400, 600}, Range{1400, 1800}},
				{models.RegisterHead, Range{300, 500}, Range{1800, 2500}},
				{models.RegisterFalsetto, Range{300, 450}, Range{1500, 2200}},
			},
			MatchInside:  50,
			MatchOutside: 25,
			MatchDefault: 70,
		},
		Vowel: Vowel{
			Targets: []VowelTarget{
				{models.VowelOpenBack, 850, 1220},
				{models.VowelOpenFront, 750, 1700},
				{models.VowelOpenMidE, 610, 1900},
				{models.VowelCloseMidE, 390, 2300},
				{models.VowelCloseI, 310, 2790},
				{models.VowelOpenMidO, 500, 1000},
				{models.VowelCloseMidO, 360, 750},
				{models.VowelCloseU, 320, 800},
				{models.VowelSchwa, 500, 1500},
			},
			MaxDistance: 400,
		},
		Technique: Technique{
			Patterns: []TechniquePattern{
				{models.TechniqueChest, Range{600, 900}, Range{1000, 1500}, Range{0, 0.3}},
				{models.TechniqueMix, Range{400, 600}, Range{1500, 2000}, Range{0.3, 0.6}},
				{models.TechniqueHead, Range{250, 400}, Range{2000, 2800}, Range{0.5, 0.8}},
				{models.TechniqueBelt, Range{700, 1000}, Range{1500, 2200}, Range{0.7, 1.0}},
				{models.TechniqueFalsetto, Range{200, 350}, Range{2200, 3000}, Range{0, 0.2}},
			},
			WeightF1: 0.4,
			WeightF2: 0.3,
			WeightSF: 0.3,
		},
		Timbre: Timbre{
			Patterns: []TimbrePattern{
				{models.TimbreDark, Range{500, 1500}, Range{1.5, 2.5}},
				{models.TimbreWarm, Range{1500, 2500}, Range{2.5, 3.5}},
				{models.TimbreBright, Range{2500, 4000}, Range{3.5, 5.0}},
				{models.TimbreMetallic, Range{3500, 5000}, Range{4.5, 6.0}},
			},
			DefaultRatio: 2.5,
		},
		Vibrato: Vibrato{
			Window:       24,
			MinPoints:    5,
			NaturalRate:  Range{4, 7},
			NaturalDepth: Range{20, 100},
			TremoloAbove: 7,
			WobbleBelow:  3,
		},
		Breath: Breath{Fraction: 0.1, Run: 5, History: 100, RegularAbove: 2},
		Dynamics: Dynamics{
			Bands: []DynamicBand{
				{models.DynamicFF, 0.7},
				{models.DynamicF, 0.5},
				{models.DynamicMF, 0.3},
				{models.DynamicMP, 0.1},
				{models.DynamicP, 0.05},
			},
			Floor:       models.DynamicPP,
			TrendWindow: 5,
			TrendSlope:  0.05,
		},
		Passaggio: Passaggio{
			Bands: []PassaggioBand{
				{models.VoiceSoprano, Range{350, 450}},
				{models.VoiceMezzo, Range{330, 430}},
				{models.VoiceAlto, Range{310, 410}},
				{models.VoiceTenor, Range{280, 350}},
				{models.VoiceBaritone, Range{250, 320}},
				{models.VoiceBass, Range{200, 280}},
			},
			IdealRatio:      0.3,
			RatioPenalty:    5,
			DefaultBlend:    0.3,
			TensionLevel:    0.5,
			SmoothAbove:     0.7,
			AcceptableAbove: 0.4,
		},
		Health: Health{
			HNRDefault:     10,
			HNRCeiling:     20,
			HNRMax:         25,
			StrainHNR:      15,
			LarynxF1:       300,
			TongueF2High:   2500,
			TongueF2Low:    1000,
			JawSpread:      800,
			LowStrain:      0.3,
			ModerateStrain: 0.6,
			HighFreqHz:     1000,
			EnergySegments: 5,

			EnergyDecayDefault: 0.3,
			SupportLevels:      []float64{0.8, 0.6, 0.4, 0.2},
			ArticulationLevels: []float64{0.8, 0.6, 0.4, 0.2},

			NasalBand:        Range{500, 1500},
			NasalDefault:     0.3,
			ChestF1:          800,
			OralF2:           2000,
			HeadF3:           3000,
			PlacementSF:      0.5,
			PlacementDefault: 0.5,
			ForwardRatio:     2.5,

			StaccatoFlux:     0.5,
			LegatoFlux:       0.2,
			Phrasing:         0.75,
			Musicality:       0.8,
			TempoConsistency: 0.85,

			ReportHighStrain:     0.7,
			ReportModerateStrain: 0.4,
			ReportHighRiskShare:  0.3,
		},
		Scoring: Scoring{
			IdealVibratoRate:  5.5,
			IdealVibratoDepth: 50,
			BreathBase:        85,
			BreathPerEvent:    2,
			BreathFloor:       70,
			GradeS:            90,
			GradeA:            80,
			GradeB:            70,
			GradeC:            60,

			PitchScale:          25,
			PerTechnique:        5,
			PerDynamicLevel:     5,
			PerSmoothTransition: 5,
			BreathScale:         0.5,
			VibratoAbsent:       5,

			Minimums: Minimums{Pitch: 20, Variety: 15, Vibrato: 10, Dynamics: 10, Breath: 10, Passaggio: 5},
			Difficulty: Difficulty{
				RangeCap:        3,
				PerTechnique:    0.8,
				TechniqueCap:    2,
				VibratoAbsent:   0.5,
				VibratoPresent:  1.5,
				PerDynamicLevel: 0.7,
				DynamicsCap:     1.5,
				PerTransition:   0.8,
				PassaggioCap:    1,
			},
		},
		Pedagogy: Pedagogy{
			ConfidenceTarget: 0.8,
			PlacementTarget:  0.6,
			MaxPriorities:    5,
			MaxExercises:     8,
			SummaryWindow:    5,

			PitchBands: []PitchBand{
				{"excellent", 10, 95, 1},
				{"good", 25, 80, 0.6},
				{"fair", 50, 60, 0.4},
			},
			PitchFalloff: 0.2,
			PitchFloor:   30,

			IntonationLevels:    []float64{85, 70, 55},
			DefaultConsistency:  0.8,
			RegisterAppropriate: 70,

			SupportScores: map[models.SupportLevel]float64{
				models.SupportExcellent: 95,
				models.SupportGood:      80,
				models.SupportAdequate:  65,
				models.SupportWeak:      45,
				models.SupportPoor:      25,
			},
			ArticulationScores: map[models.ArticulationLevel]float64{
				models.ArticulationExcellent: 95,
				models.ArticulationGood:      80,
				models.ArticulationFair:      65,
				models.ArticulationPoor:      40,
				models.ArticulationUnclear:   20,
			},
			DynamicScores: map[models.DynamicLevel]float64{
				models.DynamicPP: 30,
				models.DynamicP:  50,
				models.DynamicMP: 70,
				models.DynamicMF: 85,
				models.DynamicF:  80,
				models.DynamicFF: 70,
			},
			DefaultScore: 50,

			Weights: FrameWeights{Pitch: 0.25, Breath: 0.25, Articulation: 0.20, Placement: 0.15, Health: 0.15},
			FineGrades: []FineGrade{
				{90, "A+", "Outstanding, professional level"},
				{85, "A", "Excellent"},
				{80, "A-", "Very good"},
				{75, "B+", "Good"},
				{70, "B", "Above average"},
				{65, "B-", "Average"},
				{60, "C+", "Below average"},
				{55, "C", "Fair"},
				{50, "C-", "Poor"},
				{0, "D", "Needs significant improvement"},
			},
		},
		Engine: Engine{MinConfidence: 0.6, TimeoutMS: 3000},
	}
}

// Load reads a YAML thresholds file on top of Default. An empty path skips the file.
func Load(path string) (Thresholds, error) {
	th := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return th, fmt.Errorf("thresholds file not found: %w", err)
			}
			return th, fmt.Errorf("failed to read thresholds file: %w", err)
		}
		if err := yaml.Unmarshal(data, &th); err != nil {
			return th, fmt.Errorf("failed to parse thresholds file: %w", err)
		}
	}

	applyEnvOverrides(&th)
	if err := th.Validate(); err != nil {
		return th, err
	}
	return th, nil
}

func applyEnvOverrides(th *Thresholds) {
	overrideFloat(&th.Fusion.MinConfidence, "VOCAL_FUSION_MIN_CONFIDENCE")
	overrideFloat(&th.Fusion.DisagreementHz, "VOCAL_FUSION_DISAGREEMENT_HZ")
	overrideFloat(&th.Vowel.MaxDistance, "VOCAL_VOWEL_MAX_DISTANCE")
	overrideInt(&th.Vibrato.Window, "VOCAL_VIBRATO_WINDOW")
	overrideInt(&th.Vibrato.MinPoints, "VOCAL_VIBRATO_MIN_POINTS")
	overrideFloat(&th.Breath.Fraction, "VOCAL_BREATH_FRACTION")
	overrideInt(&th.Breath.Run, "VOCAL_BREATH_RUN")
	overrideInt(&th.Dynamics.TrendWindow, "VOCAL_DYNAMICS_TREND_WINDOW")
	overrideFloat(&th.Dynamics.TrendSlope, "VOCAL_DYNAMICS_TREND_SLOPE")
	overrideVoiceType(&th.Passaggio.VoiceType, "VOCAL_VOICE_TYPE")
	overrideFloat(&th.Register.MatchDefault, "VOCAL_REGISTER_MATCH_DEFAULT")
	overrideFloat(&th.Health.NasalBand.Min, "VOCAL_HEALTH_NASAL_LOW_HZ")
	overrideFloat(&th.Health.NasalBand.Max, "VOCAL_HEALTH_NASAL_HIGH_HZ")
	overrideFloat(&th.Health.StaccatoFlux, "VOCAL_HEALTH_STACCATO_FLUX")
	overrideFloat(&th.Health.LegatoFlux, "VOCAL_HEALTH_LEGATO_FLUX")
	overrideFloat(&th.Scoring.Minimums.Pitch, "VOCAL_SCORING_MIN_PITCH")
	overrideFloat(&th.Scoring.Minimums.Variety, "VOCAL_SCORING_MIN_VARIETY")
	overrideFloat(&th.Scoring.Minimums.Vibrato, "VOCAL_SCORING_MIN_VIBRATO")
	overrideFloat(&th.Scoring.Minimums.Dynamics, "VOCAL_SCORING_MIN_DYNAMICS")
	overrideFloat(&th.Scoring.Minimums.Breath, "VOCAL_SCORING_MIN_BREATH")
	overrideFloat(&th.Scoring.Minimums.Passaggio, "VOCAL_SCORING_MIN_PASSAGGIO")
	overrideInt(&th.Pedagogy.SummaryWindow, "VOCAL_SUMMARY_WINDOW")
	overrideFloat(&th.Pedagogy.PitchFloor, "VOCAL_PEDAGOGY_PITCH_FLOOR")
	overrideFloat(&th.Pedagogy.DefaultScore, "VOCAL_PEDAGOGY_DEFAULT_SCORE")
	overrideFloat(&th.Engine.MinConfidence, "VOCAL_ENGINE_MIN_CONFIDENCE")
	overrideInt(&th.Engine.TimeoutMS, "VOCAL_ENGINE_TIMEOUT_MS")
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			*target = parsed
		}
	}
}

func overrideVoiceType(target *models.VoiceType, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		*target = models.VoiceType(strings.ToLower(strings.TrimSpace(value)))
	}
}

// Validate rejects tables that would make the classifiers ill-defined.
func (th Thresholds) Validate() error {
	if th.Fusion.MinConfidence < 0 || th.Fusion.MinConfidence >= 1 {
		return errors.New("fusion.min_confidence must be in [0, 1)")
	}
	if th.Fusion.DisagreementHz <= 0 {
		return errors.New("fusion.disagreement_hz must be positive")
	}
	r := th.Register
	if !(r.FryBelow < r.ChestBelow && r.ChestBelow < r.LowMixBelow && r.LowMixBelow < r.MidBelow &&
		r.MidBelow < r.HighBelow && r.HighBelow <= r.WhistleFrom) {
		return errors.New("register band edges must be strictly increasing")
	}
	for _, w := range r.Ideal {
		if err := checkRanges(string(w.Register), w.F1, w.F2); err != nil {
			return fmt.Errorf("register.ideal: %w", err)
		}
	}
	if r.MatchOutside < 0 || r.MatchOutside > r.MatchInside || r.MatchInside*2 > 100 {
		return errors.New("register match scores must satisfy 0 <= match_outside <= match_inside <= 50")
	}
	if r.MatchDefault < 0 || r.MatchDefault > 100 {
		return errors.New("register.match_default must be in [0, 100]")
	}
	if len(th.Vowel.Targets) == 0 {
		return errors.New("vowel.targets must not be empty")
	}
	if th.Vowel.MaxDistance <= 0 {
		return errors.New("vowel.max_distance must be positive")
	}
	if len(th.Technique.Patterns) == 0 {
		return errors.New("technique.patterns must not be empty")
	}
	for _, p := range th.Technique.Patterns {
		if err := checkRanges(string(p.Technique), p.F1, p.F2, p.SF); err != nil {
			return fmt.Errorf("technique: %w", err)
		}
	}
	if len(th.Timbre.Patterns) == 0 {
		return errors.New("timbre.patterns must not be empty")
	}
	for _, p := range th.Timbre.Patterns {
		if err := checkRanges(string(p.Timbre), p.Centroid, p.Ratio); err != nil {
			return fmt.Errorf("timbre: %w", err)
		}
	}
	if th.Vibrato.Window < 10 {
		return errors.New("vibrato.window must be at least 10")
	}
	if th.Vibrato.MinPoints < 3 || th.Vibrato.MinPoints > th.Vibrato.Window {
		return errors.New("vibrato.min_points must be in [3, window]")
	}
	if th.Breath.Fraction <= 0 || th.Breath.Fraction >= 1 {
		return errors.New("breath.fraction must be in (0, 1)")
	}
	if th.Breath.Run < 1 || th.Breath.History < th.Breath.Run {
		return errors.New("breath.run must be positive and not exceed breath.history")
	}
	if len(th.Dynamics.Bands) == 0 {
		return errors.New("dynamics.bands must not be empty")
	}
	for i := 1; i < len(th.Dynamics.Bands); i++ {
		if th.Dynamics.Bands[i].Above >= th.Dynamics.Bands[i-1].Above {
			return errors.New("dynamics.bands must be ordered loudest first")
		}
	}
	if th.Dynamics.TrendWindow < 2 {
		return errors.New("dynamics.trend_window must be at least 2")
	}
	if th.Passaggio.VoiceType != models.VoiceUnspecified && !th.HasVoiceType(th.Passaggio.VoiceType) {
		return fmt.Errorf("passaggio.voice_type %q has no band", th.Passaggio.VoiceType)
	}
	if err := th.Health.validate(); err != nil {
		return err
	}
	s := th.Scoring
	if !(s.GradeS > s.GradeA && s.GradeA > s.GradeB && s.GradeB > s.GradeC && s.GradeC > 0) {
		return errors.New("scoring grade thresholds must be strictly decreasing and positive")
	}
	if s.PitchScale <= 0 || s.PerTechnique <= 0 || s.PerDynamicLevel <= 0 ||
		s.PerSmoothTransition <= 0 || s.BreathScale <= 0 || s.VibratoAbsent < 0 {
		return errors.New("scoring multipliers must be positive")
	}
	m := s.Minimums
	for _, v := range []float64{m.Pitch, m.Variety, m.Vibrato, m.Dynamics, m.Breath, m.Passaggio} {
		if v < 0 {
			return errors.New("scoring.minimums must not be negative")
		}
	}
	d := s.Difficulty
	if d.RangeCap <= 0 || d.TechniqueCap <= 0 || d.DynamicsCap <= 0 || d.PassaggioCap <= 0 {
		return errors.New("scoring.difficulty caps must be positive")
	}
	if err := th.Pedagogy.validate(); err != nil {
		return err
	}
	if th.Engine.TimeoutMS <= 0 {
		return errors.New("engine.timeout_ms must be positive")
	}
	return nil
}

func (h Health) validate() error {
	if err := checkCuts("health.support_levels", h.SupportLevels, 4); err != nil {
		return err
	}
	if err := checkCuts("health.articulation_levels", h.ArticulationLevels, 4); err != nil {
		return err
	}
	if h.NasalBand.Min >= h.NasalBand.Max || h.NasalBand.Min < 0 {
		return errors.New("health.nasal_band must be a non-empty band of positive frequencies")
	}
	if h.ChestF1 <= 0 || h.OralF2 <= 0 || h.HeadF3 <= 0 || h.PlacementSF <= 0 || h.ForwardRatio <= 0 {
		return errors.New("health resonance references must be positive")
	}
	if h.LegatoFlux >= h.StaccatoFlux {
		return errors.New("health.legato_flux must be below health.staccato_flux")
	}
	if h.ReportModerateStrain >= h.ReportHighStrain {
		return errors.New("health.report_moderate_strain must be below health.report_high_strain")
	}
	return nil
}

func (p Pedagogy) validate() error {
	if p.SummaryWindow < 1 {
		return errors.New("pedagogy.summary_window must be positive")
	}
	if len(p.PitchBands) == 0 {
		return errors.New("pedagogy.pitch_bands must not be empty")
	}
	for i := 1; i < len(p.PitchBands); i++ {
		if p.PitchBands[i].Below <= p.PitchBands[i-1].Below {
			return errors.New("pedagogy.pitch_bands must be ordered by increasing deviation")
		}
	}
	if p.PitchFalloff < 0 || p.PitchFloor < 0 {
		return errors.New("pedagogy pitch falloff and floor must not be negative")
	}
	if err := checkCuts("pedagogy.intonation_levels", p.IntonationLevels, 3); err != nil {
		return err
	}
	w := p.Weights
	if sum := w.Pitch + w.Breath + w.Articulation + w.Placement + w.Health; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("pedagogy.weights must sum to 1, got %.3f", sum)
	}
	if len(p.FineGrades) == 0 {
		return errors.New("pedagogy.fine_grades must not be empty")
	}
	for i := 1; i < len(p.FineGrades); i++ {
		if p.FineGrades[i].Min >= p.FineGrades[i-1].Min {
			return errors.New("pedagogy.fine_grades must be ordered highest first")
		}
	}
	return nil
}

// checkCuts requires exactly n strictly decreasing cutoffs.
func checkCuts(name string, cuts []float64, n int) error {
	if len(cuts) != n {
		return fmt.Errorf("%s must have %d cutoffs, got %d", name, n, len(cuts))
	}
	for i := 1; i < len(cuts); i++ {
		if cuts[i] >= cuts[i-1] {
			return fmt.Errorf("%s must be strictly decreasing", name)
		}
	}
	return nil
}

// HasVoiceType reports whether a passaggio band exists for vt.
func (th Thresholds) HasVoiceType(vt models.VoiceType) bool {
	for _, b := range th.Passaggio.Bands {
		if b.VoiceType == vt {
			return true
		}
	}
	return false
}

func checkRanges(name string, ranges ...Range) error {
	for _, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("%s: range min %.2f exceeds max %.2f", name, r.Min, r.Max)
		}
	}
	return nil
}
