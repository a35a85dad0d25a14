package health

import (
	"math"

	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

func Resonance(spec dsp.Spectrum, f models.FormantProfile, th thresholds.Health) models.ResonanceAnalysis {
	nasal := th.NasalDefault
	if total := spec.Total(); total > 0 {
		nasal = math.Min(spec.BandSum(th.NasalBand.Min, th.NasalBand.Max)/total*2, 1)
	}
	placement := th.PlacementDefault
	if f.SingersFormant > 0 {
		placement = math.Min(f.SingersFormant/th.PlacementSF, 1)
	}
	return models.ResonanceAnalysis{
		Chest:     math.Min(f.F1/th.ChestF1, 1),
		Oral:      math.Min(f.F2/th.OralF2, 1),
		Head:      math.Min((f.F3+f.SingersFormant)/th.HeadF3, 1),
		Nasal:     nasal,
		Placement: placement,
		Forward:   f.F1 > 0 && f.F2/f.F1 > th.ForwardRatio,
	}
}
