// Package classify maps a fused frequency, a formant profile and the spectral
// centroid of a frame to register, vowel, technique and timbre labels.
// Every function here is pure: equal inputs always give equal labels.
package classify

import (
	"math"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Register applies the frequency-banded register rules.
func Register(freq float64, f models.FormantProfile, centroid float64, th thresholds.Register) models.Register {
	switch {
	case freq <= 0:
		return models.RegisterUnknown
	case freq < th.FryBelow:
		return models.RegisterVocalFry
	case freq < th.ChestBelow:
		return models.RegisterChest
	case freq < th.LowMixBelow:
		if f.F1 > th.LowChestF1 && f.SingersFormant > th.LowChestSF {
			return models.RegisterChest
		}
		return models.RegisterMixed
	case freq < th.MidBelow:
		if f.F1 > th.MidMixF1 && f.F2 < th.MidMixF2 {
			return models.RegisterMixed
		}
		if f.F1 < th.MidHeadF1 && f.F2 > th.MidHeadF2 {
			return models.RegisterHead
		}
		return models.RegisterMixed
	case freq < th.HighBelow:
		if centroid > th.HighHeadCentroid {
			return models.RegisterHead
		}
		return models.RegisterFalsetto
	case freq >= th.WhistleFrom:
		return models.RegisterWhistle
	default:
		// between the falsetto ceiling and the whistle floor
		return models.RegisterHead
	}
}

// Vowel returns the nearest target in (F1, F2) space, or VowelMixed when even
// the nearest is farther than th.MaxDistance. Ties keep the earlier target.
func Vowel(f models.FormantProfile, th thresholds.Vowel) models.Vowel {
	best := models.VowelSchwa
	bestDist := math.Inf(1)
	for _, target := range th.Targets {
		d := math.Hypot(f.F1-target.F1, f.F2-target.F2)
		if d < bestDist {
			bestDist = d
			best = target.Vowel
		}
	}
	if bestDist > th.MaxDistance {
		return models.VowelMixed
	}
	return best
}

// TechniqueMatch carries the winning technique and the scores of every pattern
// in table order.
type TechniqueMatch struct {
	Technique models.Technique
	Score     float64
	Scores    []float64
}

// Technique scores each pattern as wF1*[F1 in range] + wF2*[F2 in range] +
// wSF*[SF in range]. The highest score wins; ties keep table order, so a
// profile matching nothing still returns the first pattern with score 0.
func Technique(f models.FormantProfile, th thresholds.Technique) TechniqueMatch {
	m := TechniqueMatch{Score: -1, Scores: make([]float64, len(th.Patterns))}
	for i, p := range th.Patterns {
		score := 0.0
		if p.F1.Contains(f.F1) {
			score += th.WeightF1
		}
		if p.F2.Contains(f.F2) {
			score += th.WeightF2
		}
		if p.SF.Contains(f.SingersFormant) {
			score += th.WeightSF
		}
		m.Scores[i] = score
		if score > m.Score {
			m.Score = score
			m.Technique = p.Technique
		}
	}
	if m.Score < 0 {
		m.Score = 0
	}
	return m
}

type TimbreMatch struct {
	Timbre models.Timbre
	Score  float64
}

// Timbre scores 0.5*[centroid in range] + 0.5*[F2/F1 in range] per pattern.
func Timbre(centroid float64, f models.FormantProfile, th thresholds.Timbre) TimbreMatch {
	ratio := th.DefaultRatio
	if f.F1 > 0 {
		ratio = f.F2 / f.F1
	}

	m := TimbreMatch{Score: -1}
	for _, p := range th.Patterns {
		score := 0.0
		if p.Centroid.Contains(centroid) {
			score += 0.5
		}
		if p.Ratio.Contains(ratio) {
			score += 0.5
		}
		if score > m.Score {
			m.Score = score
			m.Timbre = p.Timbre
		}
	}
	if m.Score < 0 {
		m.Score = 0
	}
	return m
}
