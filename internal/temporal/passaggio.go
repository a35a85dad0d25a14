package temporal

import (
	"math"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// DetectPassaggio returns nil unless freq lies in a passaggio band. With a
// declared voice type only that band is checked; otherwise the first matching
// band names the assumed voice type.
func DetectPassaggio(freq float64, f models.FormantProfile, voice models.VoiceType, th thresholds.Passaggio) *models.PassaggioAnalysis {
	if freq <= 0 {
		return nil
	}

	matched := models.VoiceUnspecified
	for _, b := range th.Bands {
		if voice != models.VoiceUnspecified && b.VoiceType != voice {
			continue
		}
		if b.Range.Contains(freq) {
			matched = b.VoiceType
			break
		}
	}
	if matched == models.VoiceUnspecified {
		return nil
	}

	smoothness := 0.0
	if f.F2 > 0 {
		smoothness = math.Max(0, 1-math.Abs(f.F1/f.F2-th.IdealRatio)*th.RatioPenalty)
	}
	blend := th.DefaultBlend
	if f.SingersFormant > 0 {
		blend = math.Min(f.SingersFormant*2, 1)
	}

	kind := models.TransitionAbrupt
	switch {
	case smoothness > th.SmoothAbove:
		kind = models.TransitionSmooth
	case smoothness > th.AcceptableAbove:
		kind = models.TransitionAcceptable
	}

	return &models.PassaggioAnalysis{
		VoiceType:     matched,
		Smoothness:    smoothness,
		RegisterBlend: blend,
		TensionLevel:  th.TensionLevel,
		Type:          kind,
	}
}

// PassaggioTracker counts band entries. A frame inside a band following a
// frame outside every band is one transition.
type PassaggioTracker struct {
	inside  bool
	summary models.PassaggioSummary
}

func (p *PassaggioTracker) Observe(t, freq float64, a *models.PassaggioAnalysis) {
	if a == nil {
		p.inside = false
		return
	}
	if p.inside {
		return
	}
	p.inside = true
	p.summary.Transitions++
	if a.Type == models.TransitionSmooth {
		p.summary.SmoothTransitions++
	}
	p.summary.Events = append(p.summary.Events, models.PassaggioEvent{Time: t, Frequency: freq, Type: a.Type})
}

func (p *PassaggioTracker) Summary() models.PassaggioSummary {
	out := p.summary
	out.Events = append([]models.PassaggioEvent(nil), p.summary.Events...)
	return out
}
