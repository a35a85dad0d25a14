package temporal

import (
	"math"
	"testing"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

var th = thresholds.Default()

// vibratoHistory samples a pitch contour oscillating around base by cents at rate Hz.
func vibratoHistory(fps float64, n int, rate, cents, base float64) []models.PitchPoint {
	pts := make([]models.PitchPoint, n)
	for i := range pts {
		t := float64(i) / fps
		pts[i] = models.PitchPoint{
			Time:      t,
			Frequency: base * math.Pow(2, cents/1200*math.Sin(2*math.Pi*rate*t)),
		}
	}
	return pts
}

func wideWindow() thresholds.Vibrato {
	v := th.Vibrato
	v.Window = 64
	return v
}

// TestDetectVibratoNatural tests a 5.5 Hz, 50 cent vibrato over 1.26 s
func TestDetectVibratoNatural(t *testing.T) {
	v := DetectVibrato(vibratoHistory(50, 64, 5.5, 50, 440), wideWindow())

	if !v.Detected || v.Type != models.VibratoNatural {
		t.Fatalf("Expected natural vibrato, got %+v", v)
	}
	if v.Rate < 5.0 || v.Rate > 6.0 {
		t.Errorf("Expected rate near 5.5 Hz, got %f", v.Rate)
	}
	if v.Depth < 30 || v.Depth > 40 {
		t.Errorf("Expected depth near 35 cents (RMS of 50 cent swing), got %f", v.Depth)
	}
	if v.Consistency < 0 || v.Consistency > 1 {
		t.Errorf("Consistency %f out of [0,1]", v.Consistency)
	}
}

// TestDetectVibratoTypes tests tremolo, wobble, irregular and straight tone
func TestDetectVibratoTypes(t *testing.T) {
	flat := make([]models.PitchPoint, 30)
	for i := range flat {
		flat[i] = models.PitchPoint{Time: float64(i) * 0.02, Frequency: 330}
	}

	tests := []struct {
		name    string
		history []models.PitchPoint
		want    models.VibratoType
	}{
		{"tremolo", vibratoHistory(50, 64, 9, 50, 440), models.VibratoTremolo},
		{"wobble", vibratoHistory(50, 64, 2, 50, 440), models.VibratoWobble},
		{"too shallow", vibratoHistory(50, 64, 5.5, 5, 440), models.VibratoIrregular},
		{"straight", flat, models.VibratoStraight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DetectVibrato(tt.history, wideWindow())
			if v.Type != tt.want {
				t.Errorf("Expected %s, got %s (rate %.2f depth %.2f)", tt.want, v.Type, v.Rate, v.Depth)
			}
			if v.Detected {
				t.Error("Only natural vibrato counts as detected")
			}
		})
	}
}

// TestDetectVibratoWindow tests that only the most recent points are used
func TestDetectVibratoWindow(t *testing.T) {
	old := vibratoHistory(50, 136, 2, 50, 440)
	recent := vibratoHistory(50, 64, 5.5, 50, 440)
	for i := range recent {
		recent[i].Time += old[len(old)-1].Time + 0.02
	}

	v := DetectVibrato(append(old, recent...), wideWindow())
	if v.Type != models.VibratoNatural {
		t.Errorf("Expected the recent natural vibrato to win, got %s", v.Type)
	}
}

// TestDetectVibratoInsufficient tests short and unvoiced histories
func TestDetectVibratoInsufficient(t *testing.T) {
	short := vibratoHistory(50, 4, 5.5, 50, 440)
	unvoiced := []models.PitchPoint{{Time: 0, Frequency: 0}, {Time: 0.02, Frequency: 0}, {Time: 0.04, Frequency: 0}, {Time: 0.06, Frequency: 0}, {Time: 0.08, Frequency: 0}, {Time: 0.1, Frequency: 0}}

	for _, h := range [][]models.PitchPoint{nil, short, unvoiced} {
		v := DetectVibrato(h, th.Vibrato)
		if v.Status != models.StatusInsufficientData || v.Detected {
			t.Errorf("Expected insufficient_data, got %+v", v)
		}
	}
}

// TestBreathDetector tests the run-start placement and one record per run
func TestBreathDetector(t *testing.T) {
	amps := []float64{0.5, 0.4, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.6, 0.001, 0.001, 0.001, 0.001, 0.001}
	d := NewBreathDetector(th.Breath)

	var events []models.BreathEvent
	for i, a := range amps {
		if ev, ok := d.Observe(i, float64(i)*0.05, a); ok {
			events = append(events, ev)
		}
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 breaths, got %d: %+v", len(events), events)
	}
	if events[0].Index != 2 {
		t.Errorf("Expected first breath at index 2, got %d", events[0].Index)
	}
	if math.Abs(events[0].Time-0.1) > 1e-9 {
		t.Errorf("Expected first breath at 0.1s, got %f", events[0].Time)
	}
	if events[1].Index != 11 {
		t.Errorf("Expected second breath at index 11, got %d", events[1].Index)
	}
}

// TestBreathDetectorLoud tests that a loud steady signal has no breaths
func TestBreathDetectorLoud(t *testing.T) {
	d := NewBreathDetector(th.Breath)
	for i := 0; i < 50; i++ {
		if _, ok := d.Observe(i, float64(i), 0.4); ok {
			t.Fatalf("Unexpected breath at %d", i)
		}
	}
	if math.Abs(d.Mean()-0.4) > 1e-9 {
		t.Errorf("Expected running mean 0.4, got %f", d.Mean())
	}
}

// TestSummarizeBreath tests pattern and support score
func TestSummarizeBreath(t *testing.T) {
	events := []models.BreathEvent{{Index: 2, Time: 0.1}, {Index: 11, Time: 0.55}, {Index: 30, Time: 1.5}}
	s := SummarizeBreath(events, th.Breath, th.Scoring)
	if s.Count != 3 || s.Pattern != "regular" || s.SupportScore != 91 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.Positions[1] != 0.55 {
		t.Errorf("Expected positions in seconds, got %v", s.Positions)
	}

	s = SummarizeBreath(nil, th.Breath, th.Scoring)
	if s.Pattern != "infrequent" || s.SupportScore != 85 {
		t.Errorf("Unexpected empty summary %+v", s)
	}
	many := make([]models.BreathEvent, 20)
	if s := SummarizeBreath(many, th.Breath, th.Scoring); s.SupportScore != 100 {
		t.Errorf("Expected support score capped at 100, got %f", s.SupportScore)
	}
}

// TestLevel tests the six dynamic bands
func TestLevel(t *testing.T) {
	tests := []struct {
		amp  float64
		want models.DynamicLevel
	}{
		{0.8, models.DynamicFF},
		{0.7, models.DynamicF},
		{0.6, models.DynamicF},
		{0.4, models.DynamicMF},
		{0.2, models.DynamicMP},
		{0.07, models.DynamicP},
		{0.05, models.DynamicPP},
		{0, models.DynamicPP},
	}
	for _, tt := range tests {
		if got := Level(tt.amp, th.Dynamics); got != tt.want {
			t.Errorf("Level(%f) = %s, want %s", tt.amp, got, tt.want)
		}
	}
}

// TestDynamicsTrend tests crescendo and diminuendo over the trailing window
func TestDynamicsTrend(t *testing.T) {
	d := NewDynamicsTracker(th.Dynamics)
	var last models.DynamicsState
	for i, a := range []float64{0.1, 0.2, 0.3, 0.4, 0.5} {
		last = d.Observe(a)
		if i < 4 && last.Trend != models.TrendStable {
			t.Errorf("Expected stable before the window fills, got %s at %d", last.Trend, i)
		}
	}
	if last.Trend != models.TrendCrescendo {
		t.Errorf("Expected crescendo, got %s", last.Trend)
	}

	d = NewDynamicsTracker(th.Dynamics)
	for _, a := range []float64{0.9, 0.7, 0.5, 0.3, 0.1} {
		last = d.Observe(a)
	}
	if last.Trend != models.TrendDiminuendo {
		t.Errorf("Expected diminuendo, got %s", last.Trend)
	}

	d = NewDynamicsTracker(th.Dynamics)
	for _, a := range []float64{0.3, 0.31, 0.29, 0.3, 0.32} {
		last = d.Observe(a)
	}
	if last.Trend != models.TrendStable {
		t.Errorf("Expected stable, got %s", last.Trend)
	}
}

// TestSummarizeDynamics tests dominant level tie-breaking and variety
func TestSummarizeDynamics(t *testing.T) {
	states := []models.DynamicsState{
		{Level: models.DynamicP, Trend: models.TrendStable, Amplitude: 0.1},
		{Level: models.DynamicF, Trend: models.TrendCrescendo, Amplitude: 0.6},
		{Level: models.DynamicF, Trend: models.TrendStable, Amplitude: 0.6},
		{Level: models.DynamicP, Trend: models.TrendDiminuendo, Amplitude: 0.1},
	}
	s := SummarizeDynamics(states)

	if s.DominantLevel != models.DynamicP {
		t.Errorf("Expected tie to go to first-seen p, got %s", s.DominantLevel)
	}
	if s.DynamicVariety != 3 {
		t.Errorf("Expected 3 distinct changes, got %d", s.DynamicVariety)
	}
	if math.Abs(s.AverageAmplitude-0.35) > 1e-9 {
		t.Errorf("Expected average amplitude 0.35, got %f", s.AverageAmplitude)
	}
	if s.LevelDistribution[models.DynamicF] != 2 {
		t.Errorf("Unexpected distribution %v", s.LevelDistribution)
	}
}

func passaggioFormants(f1, f2, sf float64) models.FormantProfile {
	p := models.NeutralFormants()
	p.F1, p.F2, p.SingersFormant = f1, f2, sf
	return p
}

// TestDetectPassaggio tests band matching and transition quality
func TestDetectPassaggio(t *testing.T) {
	tests := []struct {
		name     string
		freq     float64
		f        models.FormantProfile
		voice    models.VoiceType
		wantNil  bool
		wantType models.TransitionType
		wantVT   models.VoiceType
	}{
		{"ideal ratio", 400, passaggioFormants(300, 1000, 0), "", false, models.TransitionSmooth, models.VoiceSoprano},
		{"neutral", 400, models.NeutralFormants(), "", false, models.TransitionSmooth, models.VoiceSoprano},
		{"acceptable", 300, passaggioFormants(400, 1000, 0.2), "", false, models.TransitionAcceptable, models.VoiceTenor},
		{"abrupt", 300, passaggioFormants(600, 1000, 0), models.VoiceTenor, false, models.TransitionAbrupt, models.VoiceTenor},
		{"declared bass out of band", 400, models.NeutralFormants(), models.VoiceBass, true, "", ""},
		{"below every band", 100, models.NeutralFormants(), "", true, "", ""},
		{"unvoiced", 0, models.NeutralFormants(), "", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DetectPassaggio(tt.freq, tt.f, tt.voice, th.Passaggio)
			if tt.wantNil {
				if a != nil {
					t.Errorf("Expected nil, got %+v", a)
				}
				return
			}
			if a == nil {
				t.Fatal("Expected passaggio analysis")
			}
			if a.Type != tt.wantType || a.VoiceType != tt.wantVT {
				t.Errorf("Got type %s voice %s, want %s %s (smoothness %.3f)", a.Type, a.VoiceType, tt.wantType, tt.wantVT, a.Smoothness)
			}
			if a.TensionLevel != 0.5 {
				t.Errorf("Expected tension 0.5, got %f", a.TensionLevel)
			}
		})
	}

	if a := DetectPassaggio(400, passaggioFormants(300, 1000, 0.2), "", th.Passaggio); a.RegisterBlend != 0.4 {
		t.Errorf("Expected blend 0.4, got %f", a.RegisterBlend)
	}
	if a := DetectPassaggio(400, passaggioFormants(300, 1000, 0), "", th.Passaggio); a.RegisterBlend != 0.3 {
		t.Errorf("Expected default blend 0.3, got %f", a.RegisterBlend)
	}
}

// TestPassaggioTracker tests that transitions count band entries only
func TestPassaggioTracker(t *testing.T) {
	smooth := &models.PassaggioAnalysis{Type: models.TransitionSmooth}
	abrupt := &models.PassaggioAnalysis{Type: models.TransitionAbrupt}

	var p PassaggioTracker
	p.Observe(0.0, 150, nil)
	p.Observe(0.1, 400, smooth)
	p.Observe(0.2, 410, smooth)
	p.Observe(0.3, 150, nil)
	p.Observe(0.4, 300, abrupt)

	s := p.Summary()
	if s.Transitions != 2 || s.SmoothTransitions != 1 {
		t.Errorf("Expected 2 transitions / 1 smooth, got %+v", s)
	}
	if len(s.Events) != 2 || s.Events[0].Time != 0.1 {
		t.Errorf("Unexpected events %+v", s.Events)
	}
}
