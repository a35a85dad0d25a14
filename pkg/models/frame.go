package models

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedFrame marks a frame that cannot be analysed. The session skips it.
	ErrMalformedFrame = errors.New("malformed audio frame")
	// ErrInsufficientHistory is reported when a temporal detector has too few points.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// EngineID names a pitch or formant estimator.
type EngineID string

const (
	EngineCREPE    EngineID = "crepe"
	EngineSPICE    EngineID = "spice"
	EngineAutocorr EngineID = "autocorr"
	EngineFormant  EngineID = "formant"
	EngineSpectral EngineID = "spectral"
)

// AudioFrame is one fixed-duration window of mono samples in [-1, 1].
type AudioFrame struct {
	Index      int       `json:"index"`
	Offset     float64   `json:"offset"` // seconds from session start
	SampleRate int       `json:"sample_rate"`
	Samples    []float64 `json:"-"`
}

func (f AudioFrame) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("frame %d: sample rate %d: %w", f.Index, f.SampleRate, ErrMalformedFrame)
	}
	if len(f.Samples) == 0 {
		return fmt.Errorf("frame %d: no samples: %w", f.Index, ErrMalformedFrame)
	}
	for i, s := range f.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("frame %d: sample %d not finite: %w", f.Index, i, ErrMalformedFrame)
		}
	}
	return nil
}

// Duration in seconds.
func (f AudioFrame) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(f.SampleRate)
}

// Peak returns the maximum absolute sample value.
func (f AudioFrame) Peak() float64 {
	peak := 0.0
	for _, s := range f.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

func (f AudioFrame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range f.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(f.Samples)))
}

// PitchEstimate is one engine's opinion about the fundamental of a frame.
// Frequency <= 0 means the engine heard nothing pitched.
type PitchEstimate struct {
	Frequency  float64  `json:"frequency"`
	Confidence float64  `json:"confidence"`
	Source     EngineID `json:"source"`
}

type FormantProfile struct {
	F1             float64   `json:"f1"`
	F2             float64   `json:"f2"`
	F3             float64   `json:"f3"`
	F4             float64   `json:"f4"`
	SingersFormant float64   `json:"singers_formant"`
	Bandwidth      []float64 `json:"bandwidth,omitempty"`
}

// NeutralFormants is the schwa-like profile used when no formant data is available.
func NeutralFormants() FormantProfile {
	return FormantProfile{
		F1:        500,
		F2:        1500,
		F3:        2500,
		F4:        3500,
		Bandwidth: []float64{50, 100, 150, 200},
	}
}

// Note is a pitch expressed in twelve-tone equal temperament (A4 = 440 Hz).
type Note struct {
	Name   string  `json:"name"` // e.g. "A4"
	Pitch  string  `json:"pitch"`
	Octave int     `json:"octave"`
	Cents  float64 `json:"cents"`
}

// FusedFrame is the per-frame result of fusion and classification.
// It is appended to the session history once and never modified.
type FusedFrame struct {
	Index             int            `json:"index"`
	Time              float64        `json:"time"`
	Voiced            bool           `json:"voiced"`
	Frequency         float64        `json:"frequency"`
	Confidence        float64        `json:"confidence"`
	LowReliability    bool           `json:"low_reliability,omitempty"`
	Source            string         `json:"source,omitempty"`
	Note              Note           `json:"note"`
	Register          Register       `json:"register"`
	Vowel             Vowel          `json:"vowel"`
	Technique         Technique      `json:"technique"`
	TechniqueScore    float64        `json:"technique_score"`
	Timbre            Timbre         `json:"timbre"`
	Formants          FormantProfile `json:"formants"`
	FormantsAvailable bool           `json:"formants_available"`
	Amplitude         float64        `json:"amplitude"`
	RMS               float64        `json:"rms"`
	SpectralCentroid  float64        `json:"spectral_centroid"`
}

// PitchPoint is one voiced entry of the pitch history used by vibrato detection.
type PitchPoint struct {
	Time      float64 `json:"time"`
	Frequency float64 `json:"frequency"`
}

// NotePoint is one entry of a session's note sequence.
type NotePoint struct {
	Time       float64 `json:"time"`
	Note       string  `json:"note"`
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}
