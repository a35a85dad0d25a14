package fusion

import (
	"math"
	"strconv"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName maps a frequency to the nearest equal-tempered note (A4 = 440 Hz).
// Cents is the signed deviation from that note in [-50, 50].
func NoteName(freq float64) models.Note {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return models.Note{}
	}
	semitones := 12 * math.Log2(freq/440)
	n := int(math.Round(semitones))
	cents := (semitones - float64(n)) * 100

	// distance from C0-relative index; floor semantics for negative values
	fromC := n + 9
	idx := ((fromC % 12) + 12) % 12
	octave := 4 + floorDiv(fromC, 12)

	pitch := pitchClasses[idx]
	return models.Note{
		Name:   pitch + strconv.Itoa(octave),
		Pitch:  pitch,
		Octave: octave,
		Cents:  cents,
	}
}

// Semitones returns the signed distance in semitones from a to b.
func Semitones(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 12 * math.Log2(b/a)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
