//go:build !js && !wasm
// +build !js,!wasm

package vocaldna

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/himanishpuri/VocalDNA/internal/session"
	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/thresholds"
)

// ErrPersistence marks a label that was analysed but could not be stored.
var ErrPersistence = errors.New("label not persisted")

// AnalysisResult is what AnalyzeAndLabel returns. Label is nil when the
// summary could not be persisted; the reason is then in Warnings.
type AnalysisResult struct {
	Summary  *models.SessionSummary `json:"summary"`
	Label    *models.Label          `json:"label,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

// vocalService is the default implementation of the Service interface.
type vocalService struct {
	storage Storage
	log     Logger
	config  *Config
	th      thresholds.Thresholds
	pitch   []engine.PitchEngine
	formant engine.FormantEngine
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().WithPrefix("[vocaldna]")
	}

	th := thresholds.Default()
	if cfg.Thresholds != nil {
		th = *cfg.Thresholds
		if err := th.Validate(); err != nil {
			return nil, fmt.Errorf("invalid thresholds: %w", err)
		}
	}
	if cfg.EngineTimeout <= 0 {
		cfg.EngineTimeout = time.Duration(th.Engine.TimeoutMS) * time.Millisecond
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	pitch, formant := buildEngines(cfg, th)
	if len(pitch) == 0 {
		cfg.Logger.Warnf("No pitch engine configured: every frame will be unvoiced")
	}

	return &vocalService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		th:      th,
		pitch:   pitch,
		formant: formant,
	}, nil
}

// buildEngines resolves the engine set. Explicit engines win; otherwise remote
// services are used for every configured URL and the local engines fill in
// when requested or when nothing else is available.
func buildEngines(cfg *Config, th thresholds.Thresholds) ([]engine.PitchEngine, engine.FormantEngine) {
	client := engine.NewClient(cfg.EngineTimeout)

	pitch := cfg.PitchEngines
	if pitch == nil {
		if cfg.EngineURLs.CREPE != "" {
			pitch = append(pitch, engine.NewHTTPPitchEngine(models.EngineCREPE, cfg.EngineURLs.CREPE, th.Engine.MinConfidence, client))
		}
		if cfg.EngineURLs.SPICE != "" {
			pitch = append(pitch, engine.NewHTTPPitchEngine(models.EngineSPICE, cfg.EngineURLs.SPICE, th.Engine.MinConfidence, client))
		}
		if cfg.LocalEngines || len(pitch) == 0 {
			pitch = append(pitch, engine.NewAutocorrPitchEngine())
		}
	}

	formant := cfg.FormantEngine
	if formant == nil {
		switch {
		case cfg.EngineURLs.Formant != "":
			formant = engine.NewHTTPFormantEngine(cfg.EngineURLs.Formant, client)
		case cfg.LocalEngines || cfg.PitchEngines == nil:
			formant = engine.NewSpectralFormantEngine()
		}
	}
	return pitch, formant
}

func (s *vocalService) newController() *session.Controller {
	return session.NewController(session.Config{
		PitchEngines:  s.pitch,
		FormantEngine: s.formant,
		Thresholds:    s.th,
		EngineTimeout: s.config.EngineTimeout,
		VoiceType:     s.config.VoiceType,
		Logger:        s.log,
		Events:        s.config.Events,
	})
}

// AnalyzeSession runs one session over src. Each call gets its own
// controller, so sessions may run concurrently.
func (s *vocalService) AnalyzeSession(ctx context.Context, src FrameSource, duration time.Duration) (*models.SessionSummary, error) {
	return s.newController().Run(ctx, src, duration)
}

// AnalyzeFile analyses an audio file. Non-WAV input is converted with ffmpeg first.
func (s *vocalService) AnalyzeFile(ctx context.Context, path string, duration time.Duration) (*models.SessionSummary, error) {
	s.log.Infof("Analysing audio: %s", path)

	src, cleanup, err := audio.Open(ctx, path, s.config.TempDir, s.config.SampleRate, s.config.FrameDuration)
	if err != nil {
		return nil, fmt.Errorf("audio open failed: %w", err)
	}
	defer cleanup()

	return s.AnalyzeSession(ctx, src, duration)
}

func (s *vocalService) AnalyzeSamples(ctx context.Context, samples []float64, sampleRate int, duration time.Duration) (*models.SessionSummary, error) {
	return s.AnalyzeSession(ctx, audio.NewSliceSource(samples, sampleRate, s.config.FrameDuration), duration)
}

// AnalyzeAndLabel analyses path and stores the summary as a label. Failing to
// store is not an error: the summary is still returned with a warning.
func (s *vocalService) AnalyzeAndLabel(ctx context.Context, path string, meta models.LabelMetadata, duration time.Duration) (*AnalysisResult, error) {
	summary, err := s.AnalyzeFile(ctx, path, duration)
	if err != nil {
		return nil, err
	}

	if md, err := audio.Probe(ctx, path); err != nil {
		s.log.Debugf("No tags for %s: %v", path, err)
	} else {
		md.Fill(&meta)
	}
	meta.DurationAnalyzed = summary.Duration

	res := &AnalysisResult{Summary: summary, Warnings: append([]string(nil), summary.Warnings...)}
	label := models.NewLabel(meta, summary)
	id, err := s.storage.SaveLabel(&label)
	if err != nil {
		werr := fmt.Errorf("%w: %v", ErrPersistence, err)
		s.log.Warnf("%v", werr)
		res.Warnings = append(res.Warnings, werr.Error())
		return res, nil
	}

	s.log.Infof("Stored label %s (%s, grade %s)", id, label.AveragePitch, label.Grade)
	res.Label = &label
	return res, nil
}

func (s *vocalService) GetLabel(id string) (*models.Label, error) {
	return s.storage.GetLabel(id)
}

func (s *vocalService) RecentLabels(limit int) ([]models.Label, error) {
	return s.storage.GetRecentLabels(limit)
}

func (s *vocalService) LabelsByArtist(artist string) ([]models.Label, error) {
	return s.storage.GetLabelsByArtist(artist)
}

func (s *vocalService) DeleteLabel(id string) error {
	return s.storage.DeleteLabel(id)
}

func (s *vocalService) ExportLabels(w io.Writer) (int, error) {
	return s.storage.ExportJSON(w)
}

func (s *vocalService) RecordPractice(ls *models.LearningSession) (uint, error) {
	return s.storage.SaveLearningSession(ls)
}

func (s *vocalService) PracticeStats(labelID string) (models.LearningStats, error) {
	return s.storage.GetLearningStats(labelID)
}

// EngineHealth probes every configured engine.
func (s *vocalService) EngineHealth(ctx context.Context) []engine.Status {
	return engine.CheckAll(ctx, s.pitch, s.formant)
}

// Close releases all resources held by the service.
func (s *vocalService) Close() error {
	return s.storage.Close()
}
