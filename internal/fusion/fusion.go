// Package fusion combines the pitch estimates of several engines into one
// per-frame frequency and names the resulting note.
package fusion

import (
	"math"
	"strings"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Result is the fused pitch of one frame. Voiced is false when no estimate passed.
type Result struct {
	Voiced         bool
	Frequency      float64
	Confidence     float64
	LowReliability bool
	Source         string
	Used           int
}

// Fuse applies the confidence-weighted fusion rule. Estimates pass when their
// frequency is positive and their confidence exceeds th.MinConfidence.
// Estimates are taken in the order given; that order is reflected in Source.
func Fuse(estimates []models.PitchEstimate, th thresholds.Fusion) Result {
	passing := make([]models.PitchEstimate, 0, len(estimates))
	for _, e := range estimates {
		if e.Frequency > 0 && e.Confidence > th.MinConfidence {
			e.Confidence = math.Min(e.Confidence, 1)
			passing = append(passing, e)
		}
	}

	switch len(passing) {
	case 0:
		return Result{}
	case 1:
		e := passing[0]
		return Result{
			Voiced:     true,
			Frequency:  e.Frequency,
			Confidence: e.Confidence,
			Source:     string(e.Source),
			Used:       1,
		}
	}

	var weighted, weights float64
	lo, hi := math.Inf(1), math.Inf(-1)
	sources := make([]string, 0, len(passing))
	for _, e := range passing {
		weighted += e.Frequency * e.Confidence
		weights += e.Confidence
		lo = math.Min(lo, e.Frequency)
		hi = math.Max(hi, e.Frequency)
		sources = append(sources, string(e.Source))
	}

	return Result{
		Voiced:         true,
		Frequency:      weighted / weights,
		Confidence:     weights / float64(len(passing)),
		LowReliability: hi-lo > th.DisagreementHz,
		Source:         strings.Join(sources, "+"),
		Used:           len(passing),
	}
}
