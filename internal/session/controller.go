// Package session drives one analysis session: it pulls frames from a source,
// fans each frame out to the pitch and formant engines, runs the classifiers
// and temporal detectors in order and accumulates everything the summary needs.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/VocalDNA/internal/classify"
	"github.com/himanishpuri/VocalDNA/internal/dsp"
	"github.com/himanishpuri/VocalDNA/internal/fusion"
	"github.com/himanishpuri/VocalDNA/internal/health"
	"github.com/himanishpuri/VocalDNA/internal/pedagogy"
	"github.com/himanishpuri/VocalDNA/internal/temporal"
	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/utils"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/events"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

const DefaultEngineTimeout = 3 * time.Second

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Config struct {
	PitchEngines  []engine.PitchEngine
	FormantEngine engine.FormantEngine
	Thresholds    thresholds.Thresholds
	EngineTimeout time.Duration
	VoiceType     models.VoiceType
	Logger        Logger
	Events        *events.Bus
}

// Controller holds the state of one session. It is not safe for concurrent use;
// frames must be fed in capture order.
type Controller struct {
	cfg Config
	th  thresholds.Thresholds
	log Logger

	id        string
	startedAt time.Time

	breath    *temporal.BreathDetector
	dynamics  *temporal.DynamicsTracker
	passaggio temporal.PassaggioTracker
	history   []models.PitchPoint

	frames      []models.FusedFrame
	vibratos    []models.VibratoAnalysis
	dynStates   []models.DynamicsState
	breaths     []models.BreathEvent
	recent      []models.ComprehensiveLabel
	assessments []models.PedagogicalAssessment

	engineStats map[models.EngineID]*models.EngineCounters
	warned      map[models.EngineID]bool
	skipped     int
	duration    float64
	partial     bool
	warnings    []string
}

func NewController(cfg Config) *Controller {
	if cfg.EngineTimeout <= 0 {
		cfg.EngineTimeout = DefaultEngineTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Thresholds.Vibrato.Window == 0 {
		cfg.Thresholds = thresholds.Default()
	}
	if cfg.VoiceType == models.VoiceUnspecified {
		cfg.VoiceType = cfg.Thresholds.Passaggio.VoiceType
	}
	c := &Controller{cfg: cfg, th: cfg.Thresholds, log: cfg.Logger}
	c.Reset()
	return c
}

// Reset discards everything accumulated and starts a new session id.
func (c *Controller) Reset() {
	c.id = utils.NewID()
	c.startedAt = time.Now()
	c.breath = temporal.NewBreathDetector(c.th.Breath)
	c.dynamics = temporal.NewDynamicsTracker(c.th.Dynamics)
	c.passaggio = temporal.PassaggioTracker{}
	c.history = nil
	c.frames = nil
	c.vibratos = nil
	c.dynStates = nil
	c.breaths = nil
	c.recent = nil
	c.assessments = nil
	c.engineStats = make(map[models.EngineID]*models.EngineCounters)
	c.warned = make(map[models.EngineID]bool)
	c.skipped = 0
	c.duration = 0
	c.partial = false
	c.warnings = nil
}

func (c *Controller) ID() string { return c.id }

// Run analyses frames until the source is exhausted, duration of audio has been
// analysed (0 means no limit) or ctx ends. Cancellation is not an error: the
// partial summary is returned with Partial set.
func (c *Controller) Run(ctx context.Context, src audio.FrameSource, duration time.Duration) (*models.SessionSummary, error) {
	c.log.Infof("Session %s started", c.id)

	for {
		if ctx.Err() != nil {
			c.abort(ctx.Err())
			break
		}
		if duration > 0 && c.duration >= duration.Seconds() {
			break
		}

		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, models.ErrMalformedFrame) {
				c.skip(err)
				continue
			}
			if ctx.Err() != nil {
				c.abort(ctx.Err())
				break
			}
			c.partial = true
			return c.Summary(), fmt.Errorf("read frame: %w", err)
		}

		if _, err := c.ProcessFrame(ctx, frame); err != nil {
			if errors.Is(err, models.ErrMalformedFrame) {
				continue
			}
			if ctx.Err() != nil {
				c.abort(ctx.Err())
				break
			}
			c.partial = true
			return c.Summary(), fmt.Errorf("process frame %d: %w", frame.Index, err)
		}
	}

	summary := c.Summary()
	c.log.Infof("Session %s finished: %d frames, %d voiced, %d skipped",
		c.id, summary.FramesProcessed, summary.DetectedNotes, summary.FramesSkipped)
	c.cfg.Events.PublishSessionFinished(summary)
	return summary, nil
}

func (c *Controller) abort(err error) {
	c.partial = true
	c.log.Warnf("Session %s aborted after %d frames: %v", c.id, len(c.frames), err)
}

func (c *Controller) skip(err error) {
	c.skipped++
	c.log.Warnf("Skipping frame: %v", err)
}

type fanOut struct {
	pitch      []engine.Result[models.PitchEstimate]
	formant    engine.Result[models.FormantProfile]
	hasFormant bool
}

// estimate runs every engine concurrently under the engine timeout. Engines
// never return errors to the group; failures travel inside their Result.
func (c *Controller) estimate(ctx context.Context, frame models.AudioFrame) fanOut {
	ectx, cancel := context.WithTimeout(ctx, c.cfg.EngineTimeout)
	defer cancel()

	out := fanOut{pitch: make([]engine.Result[models.PitchEstimate], len(c.cfg.PitchEngines))}
	g, gctx := errgroup.WithContext(ectx)
	for i, e := range c.cfg.PitchEngines {
		i, e := i, e
		g.Go(func() error {
			out.pitch[i] = e.Estimate(gctx, frame.Samples, frame.SampleRate)
			return nil
		})
	}
	if fe := c.cfg.FormantEngine; fe != nil {
		out.hasFormant = true
		g.Go(func() error {
			out.formant = fe.Analyze(gctx, frame.Samples, frame.SampleRate)
			return nil
		})
	}
	g.Wait()
	return out
}

func (c *Controller) count(id models.EngineID, unavailable, absent bool, err error) {
	st, ok := c.engineStats[id]
	if !ok {
		st = &models.EngineCounters{}
		c.engineStats[id] = st
	}
	st.Calls++
	switch {
	case unavailable:
		st.Unavailable++
		if !c.warned[id] {
			c.warned[id] = true
			c.log.Warnf("Engine %s unavailable: %v", id, err)
			c.warnings = append(c.warnings, fmt.Sprintf("engine %s unavailable", id))
		}
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		c.cfg.Events.PublishEngineUnavailable(id, reason)
	case absent:
		st.Absent++
	}
}

// ProcessFrame analyses one frame and appends it to the session. A frame that
// fails validation is counted as skipped and its error wraps ErrMalformedFrame.
func (c *Controller) ProcessFrame(ctx context.Context, frame models.AudioFrame) (*models.ComprehensiveLabel, error) {
	if err := frame.Validate(); err != nil {
		c.skip(err)
		return nil, err
	}

	fo := c.estimate(ctx, frame)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	estimates := make([]models.PitchEstimate, 0, len(fo.pitch))
	for i, res := range fo.pitch {
		c.count(c.cfg.PitchEngines[i].ID(), res.IsUnavailable(), !res.OK(), res.Err)
		if res.OK() {
			estimates = append(estimates, res.Value)
		}
	}

	formants := models.NeutralFormants()
	formantsOK := false
	if fo.hasFormant {
		res := fo.formant
		c.count(c.cfg.FormantEngine.ID(), res.IsUnavailable(), !res.OK(), res.Err)
		if res.OK() {
			formants, formantsOK = res.Value, true
		}
	}

	fused := fusion.Fuse(estimates, c.th.Fusion)
	label := c.analyse(frame, fused, formants, formantsOK)

	if label.Frame.Voiced {
		a := pedagogy.Assess(label, c.th)
		c.assessments = keepLast(append(c.assessments, a), c.th.Pedagogy.SummaryWindow)
	}
	c.recent = keepLast(append(c.recent, label), c.th.Pedagogy.SummaryWindow)
	c.frames = append(c.frames, label.Frame)
	c.duration += frame.Duration()

	c.log.Debugf("Frame %d @%.2fs: %.1f Hz (%s) %s", frame.Index, frame.Offset,
		label.Frame.Frequency, label.Frame.Note.Name, label.Frame.Register)
	c.cfg.Events.PublishFrame(label)
	return &label, nil
}

func (c *Controller) analyse(frame models.AudioFrame, fused fusion.Result, formants models.FormantProfile, formantsOK bool) models.ComprehensiveLabel {
	th := c.th
	spec := dsp.NewSpectrum(frame.Samples, frame.SampleRate)
	centroid, _ := spec.Centroid()
	amplitude := frame.Peak()
	rms := frame.RMS()

	ff := models.FusedFrame{
		Index:             frame.Index,
		Time:              frame.Offset,
		Voiced:            fused.Voiced,
		Frequency:         fused.Frequency,
		Confidence:        fused.Confidence,
		LowReliability:    fused.LowReliability,
		Source:            fused.Source,
		Formants:          formants,
		FormantsAvailable: formantsOK,
		Amplitude:         amplitude,
		RMS:               rms,
		SpectralCentroid:  centroid,
	}
	if fused.Voiced {
		ff.Note = fusion.NoteName(fused.Frequency)
	}
	ff.Register = classify.Register(ff.Frequency, formants, centroid, th.Register)
	ff.Vowel = classify.Vowel(formants, th.Vowel)
	tech := classify.Technique(formants, th.Technique)
	ff.Technique, ff.TechniqueScore = tech.Technique, tech.Score
	ff.Timbre = classify.Timbre(centroid, formants, th.Timbre).Timbre

	// temporal detectors, in order
	if ev, ok := c.breath.Observe(frame.Index, frame.Offset, amplitude); ok {
		c.breaths = append(c.breaths, ev)
		c.cfg.Events.PublishBreath(ev)
	}
	dyn := c.dynamics.Observe(amplitude)
	c.dynStates = append(c.dynStates, dyn)

	vib := models.VibratoAnalysis{Status: models.StatusInsufficientData, Type: models.VibratoNone}
	var pa *models.PassaggioAnalysis
	if ff.Voiced {
		c.history = keepLast(append(c.history, models.PitchPoint{Time: ff.Time, Frequency: ff.Frequency}), th.Vibrato.Window)
		vib = temporal.DetectVibrato(c.history, th.Vibrato)
		if vib.Status == models.StatusOK {
			c.vibratos = append(c.vibratos, vib)
		}
		pa = temporal.DetectPassaggio(ff.Frequency, formants, c.cfg.VoiceType, th.Passaggio)
	}
	c.passaggio.Observe(ff.Time, ff.Frequency, pa)

	source := fused.Source
	if source == "" {
		source = "none"
	}
	return models.ComprehensiveLabel{
		Frame:          ff,
		Resonance:      health.Resonance(spec, formants, th.Health),
		Vibrato:        vib,
		Dynamics:       dyn,
		Passaggio:      pa,
		Expression:     health.Expression(frame.Samples, rms, th.Health, th.Dynamics),
		Articulation:   health.Articulation(spec, formants, th.Health),
		BreathSupport:  health.BreathSupport(frame.Samples, fused.Confidence, th.Health),
		Health:         health.Assess(frame.Samples, fused.Confidence, formants, th.Health),
		Confidence:     fused.Confidence,
		AnalysisSource: source,
	}
}

func keepLast[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}
