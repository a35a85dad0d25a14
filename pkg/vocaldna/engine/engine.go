// Package engine defines the pitch and formant estimators the session fans out to,
// together with HTTP clients for remote model services, local DSP fallbacks and
// deterministic stubs.
package engine

import (
	"context"
	"errors"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// ErrEngineUnavailable is returned when an engine could not be reached or
// did not answer in time. Callers treat it as "no estimate".
var ErrEngineUnavailable = errors.New("engine unavailable")

// Result carries one engine call outcome. A zero Result with a nil Err and
// present=false is Absent: the engine ran but had nothing usable to say.
type Result[T any] struct {
	Value   T
	Err     error
	present bool
}

func Available[T any](v T) Result[T] { return Result[T]{Value: v, present: true} }

func Unavailable[T any](err error) Result[T] {
	if err == nil {
		err = ErrEngineUnavailable
	}
	if !errors.Is(err, ErrEngineUnavailable) {
		err = errors.Join(ErrEngineUnavailable, err)
	}
	return Result[T]{Err: err}
}

func Absent[T any]() Result[T] { return Result[T]{} }

// OK reports whether the engine produced a usable value.
func (r Result[T]) OK() bool { return r.present && r.Err == nil }

func (r Result[T]) IsUnavailable() bool { return errors.Is(r.Err, ErrEngineUnavailable) }

type PitchEngine interface {
	ID() models.EngineID
	Estimate(ctx context.Context, samples []float64, sampleRate int) Result[models.PitchEstimate]
}

type FormantEngine interface {
	ID() models.EngineID
	Analyze(ctx context.Context, samples []float64, sampleRate int) Result[models.FormantProfile]
}

// HealthChecker is implemented by engines backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Status is the reachability of one engine, as reported by CheckAll.
type Status struct {
	ID        models.EngineID `json:"id"`
	Kind      string          `json:"kind"`
	Remote    bool            `json:"remote"`
	Available bool            `json:"available"`
	Error     string          `json:"error,omitempty"`
}

// CheckAll probes every engine. Local engines are always available.
func CheckAll(ctx context.Context, pitch []PitchEngine, formant FormantEngine) []Status {
	var out []Status
	probe := func(id models.EngineID, kind string, e any) {
		st := Status{ID: id, Kind: kind, Available: true}
		if hc, ok := e.(HealthChecker); ok {
			st.Remote = true
			if err := hc.Health(ctx); err != nil {
				st.Available = false
				st.Error = err.Error()
			}
		}
		out = append(out, st)
	}
	for _, p := range pitch {
		probe(p.ID(), "pitch", p)
	}
	if formant != nil {
		probe(formant.ID(), "formant", formant)
	}
	return out
}
