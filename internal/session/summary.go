package session

import (
	"math"
	"slices"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/internal/fusion"
	"github.com/himanishpuri/VocalDNA/internal/scoring"
	"github.com/himanishpuri/VocalDNA/internal/temporal"
	"github.com/himanishpuri/VocalDNA/pkg/models"
)

const unknownPitch = "Unknown"

// Summary aggregates everything seen so far. It may be called at any time,
// including after an abort.
func (c *Controller) Summary() *models.SessionSummary {
	s := &models.SessionSummary{
		SessionID:       c.id,
		StartedAt:       c.startedAt,
		Duration:        c.duration,
		FramesProcessed: len(c.frames),
		FramesSkipped:   c.skipped,
		AveragePitch:    unknownPitch,
		PitchRange:      unknownPitch,
		Frames:          append([]models.FusedFrame(nil), c.frames...),
		EngineStats:     make(map[models.EngineID]models.EngineCounters, len(c.engineStats)),
		Partial:         c.partial,
		Warnings:        append([]string(nil), c.warnings...),
	}
	for id, st := range c.engineStats {
		s.EngineStats[id] = *st
	}

	var voiced []models.FusedFrame
	for _, f := range c.frames {
		if f.Voiced {
			voiced = append(voiced, f)
		}
	}
	s.DetectedNotes = len(voiced)

	lo, hi := math.Inf(1), math.Inf(-1)
	freqs := make([]float64, len(voiced))
	confs := make([]float64, len(voiced))
	techniques := make([]models.Technique, len(voiced))
	registers := make([]models.Register, len(voiced))
	for i, f := range voiced {
		freqs[i] = f.Frequency
		confs[i] = f.Confidence
		techniques[i] = f.Technique
		registers[i] = f.Register
		lo = math.Min(lo, f.Frequency)
		hi = math.Max(hi, f.Frequency)
		s.NoteSequence = append(s.NoteSequence, models.NotePoint{
			Time:       f.Time,
			Note:       f.Note.Name,
			Frequency:  f.Frequency,
			Confidence: f.Confidence,
		})
	}

	if len(voiced) > 0 {
		s.AverageFrequency = dsp.Mean(freqs)
		s.AveragePitch = fusion.NoteName(s.AverageFrequency).Name
		s.PitchRange = fusion.NoteName(lo).Name + " - " + fusion.NoteName(hi).Name
		s.ConfidenceAvg = dsp.Mean(confs)
		s.MainTechnique, _ = mode(techniques)
		s.DominantRegister, _ = mode(registers)
	} else {
		lo, hi = 0, 0
		s.DominantRegister = models.RegisterUnknown
	}

	s.Vibrato = summarizeVibrato(c.vibratos)
	s.Dynamics = temporal.SummarizeDynamics(c.dynStates)
	s.Breath = temporal.SummarizeBreath(c.breaths, c.th.Breath, c.th.Scoring)
	s.Passaggio = c.passaggio.Summary()
	s.Technique = summarizeTechnique(techniques)

	in := scoring.Inputs{
		ConfidenceAvg:      s.ConfidenceAvg,
		DistinctTechniques: s.Technique.VarietyScore,
		Vibrato:            s.Vibrato,
		DynamicVariety:     s.Dynamics.DynamicVariety,
		BreathSupportScore: s.Breath.SupportScore,
		SmoothTransitions:  s.Passaggio.SmoothTransitions,
		Transitions:        s.Passaggio.Transitions,
		LowestFrequency:    lo,
		HighestFrequency:   hi,
	}
	s.Performance = scoring.Score(in, c.th.Scoring)
	s.DifficultyLevel = scoring.DifficultyLevel(in, c.th.Scoring.Difficulty)
	s.Professional = c.professional()
	return s
}

// summarizeVibrato averages the analyses that had enough history. Rate and
// depth only average positive values.
func summarizeVibrato(vs []models.VibratoAnalysis) models.VibratoSummary {
	var out models.VibratoSummary
	if len(vs) == 0 {
		return out
	}
	var rates, depths, cons []float64
	for _, v := range vs {
		if v.Detected {
			out.Detected = true
			out.Detections++
		}
		if v.Rate > 0 {
			rates = append(rates, v.Rate)
		}
		if v.Depth > 0 {
			depths = append(depths, v.Depth)
		}
		cons = append(cons, v.Consistency)
	}
	out.AverageRate = dsp.Mean(rates)
	out.AverageDepth = dsp.Mean(depths)
	out.Consistency = dsp.Mean(cons)
	return out
}

func summarizeTechnique(ts []models.Technique) models.TechniqueSummary {
	out := models.TechniqueSummary{Distribution: map[models.Technique]int{}}
	for _, t := range ts {
		out.Distribution[t]++
	}
	out.VarietyScore = len(out.Distribution)
	if _, n := mode(ts); len(ts) > 0 {
		out.Stability = float64(n) / float64(len(ts))
	}
	return out
}

// mode returns the most frequent value and its count. Ties go to the value
// that appeared first.
func mode[T comparable](xs []T) (T, int) {
	var best T
	counts := make(map[T]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	n := 0
	for _, x := range xs {
		if counts[x] > n {
			best, n = x, counts[x]
		}
	}
	return best, n
}

// ranked orders distinct values by descending count, first occurrence breaking ties.
func ranked[T comparable](xs []T) ([]T, []int) {
	counts := make(map[T]int, len(xs))
	var order []T
	for _, x := range xs {
		if _, ok := counts[x]; !ok {
			order = append(order, x)
		}
		counts[x]++
	}
	slices.SortStableFunc(order, func(a, b T) int { return counts[b] - counts[a] })
	ns := make([]int, len(order))
	for i, x := range order {
		ns[i] = counts[x]
	}
	return order, ns
}
