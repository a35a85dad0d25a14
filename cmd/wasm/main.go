//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/VocalDNA/internal/classify"
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/internal/fusion"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorProcessing
	ErrorNoPitch
)

var th = thresholds.Default()

// noteName converts a frequency to its equal-tempered note.
// Returns: {error: number, data: {name, pitch, octave, cents} | string}
func noteName(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: frequency")
	}
	freq := args[0].Float()
	if freq <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid frequency: %v", freq))
	}
	return makeResponse(noteObject(fusion.NoteName(freq)))
}

// classifyFrame labels a frame from a known pitch and formant profile.
// Arguments: frequency, {f1, f2, f3, f4, singersFormant}, spectralCentroid.
func classifyFrame(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: frequency, formants, centroid")
	}
	if args[0].Type() != js.TypeNumber || args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "frequency and centroid must be numbers")
	}
	if args[1].Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "formants must be an object")
	}

	f := models.FormantProfile{
		F1:             numberField(args[1], "f1"),
		F2:             numberField(args[1], "f2"),
		F3:             numberField(args[1], "f3"),
		F4:             numberField(args[1], "f4"),
		SingersFormant: numberField(args[1], "singersFormant"),
	}
	return makeResponse(labelObject(args[0].Float(), f, args[2].Float()))
}

// analyzeFrame runs the in-process pitch and formant engines over raw samples
// and classifies the result.
// Arguments: audioArray, sampleRate, channels.
func analyzeFrame(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: audioArray, sampleRate, channels")
	}
	if args[0].Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray must be an Array or Float64Array")
	}
	if args[1].Type() != js.TypeNumber || args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate and channels must be numbers")
	}

	sampleRate := args[1].Int()
	channels := args[2].Int()
	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	length := args[0].Length()
	if length == 0 {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray is empty")
	}
	samples := make([]float64, length)
	for i := 0; i < length; i++ {
		v := args[0].Index(i)
		if v.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("audioArray element %d is not a number", i))
		}
		samples[i] = v.Float()
	}
	if channels == 2 {
		samples = stereoToMono(samples)
	}

	ctx := context.Background()
	pitch := engine.NewAutocorrPitchEngine().Estimate(ctx, samples, sampleRate)
	if !pitch.OK() {
		return makeErrorResponse(ErrorNoPitch, "No pitch found (audio may be silent or unvoiced)")
	}

	fused := fusion.Fuse([]models.PitchEstimate{pitch.Value}, th.Fusion)
	if !fused.Voiced {
		return makeErrorResponse(ErrorNoPitch, "Pitch confidence below threshold")
	}

	formants := models.NeutralFormants()
	if res := engine.NewSpectralFormantEngine().Analyze(ctx, samples, sampleRate); res.OK() {
		formants = res.Value
	}
	centroid, _ := dsp.NewSpectrum(samples, sampleRate).Centroid()

	out := labelObject(fused.Frequency, formants, centroid)
	out.Set("confidence", fused.Confidence)
	return makeResponse(out)
}

func labelObject(freq float64, f models.FormantProfile, centroid float64) js.Value {
	tech := classify.Technique(f, th.Technique)
	timbre := classify.Timbre(centroid, f, th.Timbre)

	obj := js.Global().Get("Object").New()
	obj.Set("frequency", freq)
	if freq > 0 {
		obj.Set("note", noteObject(fusion.NoteName(freq)))
	}
	obj.Set("register", string(classify.Register(freq, f, centroid, th.Register)))
	obj.Set("vowel", string(classify.Vowel(f, th.Vowel)))
	obj.Set("technique", string(tech.Technique))
	obj.Set("techniqueScore", tech.Score)
	obj.Set("timbre", string(timbre.Timbre))
	obj.Set("f1", f.F1)
	obj.Set("f2", f.F2)
	obj.Set("centroid", centroid)
	return obj
}

func noteObject(n models.Note) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("name", n.Name)
	obj.Set("pitch", n.Pitch)
	obj.Set("octave", n.Octave)
	obj.Set("cents", n.Cents)
	return obj
}

func numberField(obj js.Value, key string) float64 {
	v := obj.Get(key)
	if v.Type() != js.TypeNumber {
		return 0
	}
	return v.Float()
}

func stereoToMono(stereo []float64) []float64 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}
	mono := make([]float64, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[i*2] + stereo[i*2+1]) / 2.0
	}
	return mono
}

func makeResponse(data js.Value) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, msg string) {
		if !console.IsUndefined() {
			console.Call(method, msg)
		}
	}
	logf("log", "🔧 VocalDNA WASM module initializing...")

	done := make(chan struct{})

	js.Global().Set("noteName", js.FuncOf(noteName))
	js.Global().Set("classifyFrame", js.FuncOf(classifyFrame))
	js.Global().Set("analyzeFrame", js.FuncOf(analyzeFrame))
	logf("log", "📝 noteName, classifyFrame and analyzeFrame registered")

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else {
		logf("error", "❌ window object is undefined!")
	}

	logf("log", "✅ VocalDNA WASM module loaded and ready")
	<-done
}
