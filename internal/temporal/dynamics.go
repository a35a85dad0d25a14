package temporal

import (
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Level maps an amplitude to a dynamic marking using the ordered bands.
func Level(amplitude float64, th thresholds.Dynamics) models.DynamicLevel {
	for _, b := range th.Bands {
		if amplitude > b.Above {
			return b.Level
		}
	}
	return th.Floor
}

// DynamicsTracker keeps the trailing amplitude window for trend detection.
type DynamicsTracker struct {
	th     thresholds.Dynamics
	window []float64
}

func NewDynamicsTracker(th thresholds.Dynamics) *DynamicsTracker {
	return &DynamicsTracker{th: th}
}

func (d *DynamicsTracker) Observe(amplitude float64) models.DynamicsState {
	d.window = append(d.window, amplitude)
	if len(d.window) > d.th.TrendWindow {
		d.window = d.window[len(d.window)-d.th.TrendWindow:]
	}

	trend := models.TrendStable
	if len(d.window) >= d.th.TrendWindow {
		slope := (d.window[len(d.window)-1] - d.window[0]) / float64(len(d.window))
		switch {
		case slope > d.th.TrendSlope:
			trend = models.TrendCrescendo
		case slope < -d.th.TrendSlope:
			trend = models.TrendDiminuendo
		}
	}

	return models.DynamicsState{
		Level:     Level(amplitude, d.th),
		Trend:     trend,
		Amplitude: amplitude,
		Variation: dsp.Std(d.window),
	}
}

// SummarizeDynamics aggregates per-frame dynamics states. The dominant level is
// the most frequent one; ties go to the level seen first.
func SummarizeDynamics(states []models.DynamicsState) models.DynamicsSummary {
	s := models.DynamicsSummary{LevelDistribution: map[models.DynamicLevel]int{}}
	if len(states) == 0 {
		return s
	}

	var order []models.DynamicLevel
	seenTrend := map[models.DynamicTrend]bool{}
	amps := make([]float64, len(states))
	for i, st := range states {
		if _, ok := s.LevelDistribution[st.Level]; !ok {
			order = append(order, st.Level)
		}
		s.LevelDistribution[st.Level]++
		if !seenTrend[st.Trend] {
			seenTrend[st.Trend] = true
			s.DynamicChanges = append(s.DynamicChanges, st.Trend)
		}
		amps[i] = st.Amplitude
	}

	best := 0
	for _, lvl := range order {
		if n := s.LevelDistribution[lvl]; n > best {
			best = n
			s.DominantLevel = lvl
		}
	}
	s.DynamicVariety = len(s.DynamicChanges)
	s.AverageAmplitude = dsp.Mean(amps)
	return s
}
