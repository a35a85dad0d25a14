package classify

import (
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// RegisterFormantMatch scores (0-100) how well the formants fit the register
// using the th.Ideal windows.
func RegisterFormantMatch(r models.Register, f models.FormantProfile, th thresholds.Register) float64 {
	for _, w := range th.Ideal {
		if w.Register != r {
			continue
		}
		score := 0.0
		for _, in := range []bool{w.F1.Contains(f.F1), w.F2.Contains(f.F2)} {
			if in {
				score += th.MatchInside
			} else {
				score += th.MatchOutside
			}
		}
		return score
	}
	return th.MatchDefault
}
