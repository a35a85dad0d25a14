package temporal

import (
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

type amplitudeSample struct {
	index int
	time  float64
	amp   float64
}

// BreathDetector finds breath gaps: runs of th.Run consecutive amplitudes below
// th.Fraction of the running session mean. One gap is recorded per run.
type BreathDetector struct {
	th       thresholds.Breath
	recent   []amplitudeSample
	sum      float64
	count    int
	recorded bool
}

func NewBreathDetector(th thresholds.Breath) *BreathDetector {
	return &BreathDetector{th: th}
}

// Observe feeds the amplitude of frame index at time t. It reports a breath the
// first time a full run is below threshold; the event carries the index and
// time of the first sample of the run.
func (d *BreathDetector) Observe(index int, t, amplitude float64) (models.BreathEvent, bool) {
	d.recent = append(d.recent, amplitudeSample{index: index, time: t, amp: amplitude})
	if len(d.recent) > d.th.History {
		d.recent = d.recent[len(d.recent)-d.th.History:]
	}
	d.sum += amplitude
	d.count++

	threshold := d.th.Fraction * d.sum / float64(d.count)
	if amplitude >= threshold {
		d.recorded = false
		return models.BreathEvent{}, false
	}
	if d.recorded || len(d.recent) < d.th.Run {
		return models.BreathEvent{}, false
	}

	run := d.recent[len(d.recent)-d.th.Run:]
	for _, s := range run {
		if s.amp >= threshold {
			return models.BreathEvent{}, false
		}
	}
	d.recorded = true
	return models.BreathEvent{Index: run[0].index, Time: run[0].time}, true
}

// Mean is the running session mean amplitude.
func (d *BreathDetector) Mean() float64 {
	if d.count == 0 {
		return 0
	}
	return d.sum / float64(d.count)
}

// SummarizeBreath builds the session breath analysis from recorded events.
func SummarizeBreath(events []models.BreathEvent, th thresholds.Breath, sc thresholds.Scoring) models.BreathSummary {
	positions := make([]float64, len(events))
	for i, e := range events {
		positions[i] = e.Time
	}
	pattern := "infrequent"
	if len(events) > th.RegularAbove {
		pattern = "regular"
	}
	score := sc.BreathBase + sc.BreathPerEvent*float64(len(events))
	if score > 100 {
		score = 100
	}
	return models.BreathSummary{
		Count:        len(events),
		Positions:    positions,
		Pattern:      pattern,
		SupportScore: score,
	}
}
