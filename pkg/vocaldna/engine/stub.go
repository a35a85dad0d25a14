package engine

import (
	"context"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// StaticPitchEngine always returns the same estimate. A zero Frequency makes
// it report Absent.
type StaticPitchEngine struct {
	Engine models.EngineID
	Value  models.PitchEstimate
}

func (s StaticPitchEngine) ID() models.EngineID { return s.Engine }

func (s StaticPitchEngine) Estimate(ctx context.Context, _ []float64, _ int) Result[models.PitchEstimate] {
	if s.Value.Frequency <= 0 {
		return Absent[models.PitchEstimate]()
	}
	v := s.Value
	v.Source = s.Engine
	return Available(v)
}

// PitchFunc adapts a function to PitchEngine.
type PitchFunc struct {
	Engine models.EngineID
	Fn     func(samples []float64, sampleRate int) Result[models.PitchEstimate]
}

func (p PitchFunc) ID() models.EngineID { return p.Engine }

func (p PitchFunc) Estimate(ctx context.Context, samples []float64, sampleRate int) Result[models.PitchEstimate] {
	return p.Fn(samples, sampleRate)
}

type StaticFormantEngine struct {
	Value models.FormantProfile
}

func (s StaticFormantEngine) ID() models.EngineID { return models.EngineFormant }

func (s StaticFormantEngine) Analyze(ctx context.Context, _ []float64, _ int) Result[models.FormantProfile] {
	return Available(s.Value)
}

// FailingEngine is unavailable for both pitch and formants. With a Delay it
// blocks until the delay passes or the context ends, which exercises timeouts.
type FailingEngine struct {
	Engine models.EngineID
	Delay  time.Duration
}

func (f FailingEngine) ID() models.EngineID { return f.Engine }

func (f FailingEngine) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ErrEngineUnavailable
	}
	t := time.NewTimer(f.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return ErrEngineUnavailable
	}
}

func (f FailingEngine) Estimate(ctx context.Context, _ []float64, _ int) Result[models.PitchEstimate] {
	return Unavailable[models.PitchEstimate](f.wait(ctx))
}

func (f FailingEngine) Analyze(ctx context.Context, _ []float64, _ int) Result[models.FormantProfile] {
	return Unavailable[models.FormantProfile](f.wait(ctx))
}
