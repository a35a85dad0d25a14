package health

import (
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/internal/temporal"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Expression marks dynamics from the frame RMS and the articulation style from
// spectral flux between the two halves of the frame. Phrasing, musicality and
// tempo consistency are fixed table values until phrase segmentation exists.
func Expression(samples []float64, rms float64, th thresholds.Health, dyn thresholds.Dynamics) models.ExpressionAnalysis {
	flux := dsp.SpectralFlux(samples)
	style := models.StyleNormal
	switch {
	case flux > th.StaccatoFlux:
		style = models.StyleStaccato
	case flux < th.LegatoFlux:
		style = models.StyleLegato
	}
	return models.ExpressionAnalysis{
		Dynamics:         temporal.Level(rms, dyn),
		Style:            style,
		SpectralFlux:     flux,
		Phrasing:         th.Phrasing,
		Musicality:       th.Musicality,
		TempoConsistency: th.TempoConsistency,
	}
}
