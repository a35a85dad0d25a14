package models

// Register is the vocal register a frame was sung in.
type Register string

const (
	RegisterUnknown  Register = "unknown"
	RegisterVocalFry Register = "vocal_fry"
	RegisterChest    Register = "chest"
	RegisterMixed    Register = "mixed"
	RegisterHead     Register = "head"
	RegisterFalsetto Register = "falsetto"
	RegisterWhistle  Register = "whistle"
)

// Vowel is an IPA vowel symbol, or VowelMixed when no target is close enough.
type Vowel string

const (
	VowelOpenBack  Vowel = "ɑ"
	VowelOpenFront Vowel = "a"
	VowelOpenMidE  Vowel = "ɛ"
	VowelCloseMidE Vowel = "e"
	VowelCloseI    Vowel = "i"
	VowelOpenMidO  Vowel = "ɔ"
	VowelCloseMidO Vowel = "o"
	VowelCloseU    Vowel = "u"
	VowelSchwa     Vowel = "ə"
	VowelMixed     Vowel = "mixed"
)

type Technique string

const (
	TechniqueChest    Technique = "chest"
	TechniqueMix      Technique = "mix"
	TechniqueHead     Technique = "head"
	TechniqueBelt     Technique = "belt"
	TechniqueFalsetto Technique = "falsetto"
)

type Timbre string

const (
	TimbreDark     Timbre = "dark"
	TimbreWarm     Timbre = "warm"
	TimbreBright   Timbre = "bright"
	TimbreMetallic Timbre = "metallic"
)

type VoiceType string

const (
	VoiceUnspecified VoiceType = ""
	VoiceSoprano     VoiceType = "soprano"
	VoiceMezzo       VoiceType = "mezzo"
	VoiceAlto        VoiceType = "alto"
	VoiceTenor       VoiceType = "tenor"
	VoiceBaritone    VoiceType = "baritone"
	VoiceBass        VoiceType = "bass"
)

type VibratoType string

const (
	VibratoNatural   VibratoType = "natural"
	VibratoTremolo   VibratoType = "tremolo"
	VibratoWobble    VibratoType = "wobble"
	VibratoIrregular VibratoType = "irregular"
	VibratoStraight  VibratoType = "straight_tone"
	VibratoNone      VibratoType = "none"
)

const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)

type DynamicLevel string

const (
	DynamicPP DynamicLevel = "pp"
	DynamicP  DynamicLevel = "p"
	DynamicMP DynamicLevel = "mp"
	DynamicMF DynamicLevel = "mf"
	DynamicF  DynamicLevel = "f"
	DynamicFF DynamicLevel = "ff"
)

type DynamicTrend string

const (
	TrendCrescendo  DynamicTrend = "crescendo"
	TrendDiminuendo DynamicTrend = "diminuendo"
	TrendStable     DynamicTrend = "stable"
)

type TransitionType string

const (
	TransitionSmooth     TransitionType = "smooth"
	TransitionAcceptable TransitionType = "acceptable"
	TransitionAbrupt     TransitionType = "abrupt"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// ArticulationLevel grades clarity of diction.
type ArticulationLevel string

const (
	ArticulationExcellent ArticulationLevel = "excellent"
	ArticulationGood      ArticulationLevel = "good"
	ArticulationFair      ArticulationLevel = "fair"
	ArticulationPoor      ArticulationLevel = "poor"
	ArticulationUnclear   ArticulationLevel = "unclear"
)

type SupportLevel string

const (
	SupportExcellent SupportLevel = "excellent"
	SupportGood      SupportLevel = "good"
	SupportAdequate  SupportLevel = "adequate"
	SupportWeak      SupportLevel = "weak"
	SupportPoor      SupportLevel = "poor"
)

// ArticulationStyle describes note connection, from spectral flux.
type ArticulationStyle string

const (
	StyleLegato   ArticulationStyle = "legato"
	StyleNormal   ArticulationStyle = "normal"
	StyleStaccato ArticulationStyle = "staccato"
)

type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)
