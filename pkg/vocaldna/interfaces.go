package vocaldna

import (
	"context"
	"io"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
)

// FrameSource yields audio frames in capture order and io.EOF at the end.
type FrameSource = audio.FrameSource

type Service interface {
	AnalyzeSession(ctx context.Context, src FrameSource, duration time.Duration) (*models.SessionSummary, error)
	AnalyzeFile(ctx context.Context, path string, duration time.Duration) (*models.SessionSummary, error)
	AnalyzeSamples(ctx context.Context, samples []float64, sampleRate int, duration time.Duration) (*models.SessionSummary, error)
	AnalyzeAndLabel(ctx context.Context, path string, meta models.LabelMetadata, duration time.Duration) (*AnalysisResult, error)
	GetLabel(id string) (*models.Label, error)
	RecentLabels(limit int) ([]models.Label, error)
	LabelsByArtist(artist string) ([]models.Label, error)
	DeleteLabel(id string) error
	ExportLabels(w io.Writer) (int, error)
	RecordPractice(session *models.LearningSession) (uint, error)
	PracticeStats(labelID string) (models.LearningStats, error)
	HealthReport(limit int) (*HealthReport, error)
	TechniqueReport(artist string, limit int) (*TechniqueReport, error)
	LearningProgress(limit int) (*LearningProgress, error)
	EngineHealth(ctx context.Context) []engine.Status
	Close() error
}

type Storage interface {
	SaveLabel(label *models.Label) (string, error)
	GetLabel(id string) (*models.Label, error)
	GetRecentLabels(limit int) ([]models.Label, error)
	GetLabelsByArtist(artist string) ([]models.Label, error)
	DeleteLabel(id string) error
	CountLabels() (int64, error)
	SaveLearningSession(session *models.LearningSession) (uint, error)
	GetLearningSessions(labelID string) ([]models.LearningSession, error)
	GetLearningStats(labelID string) (models.LearningStats, error)
	ExportJSON(w io.Writer) (int, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
