//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/utils"
)

const (
	DefaultDBFile      = "vocaldna.sqlite3"
	DefaultRecentLimit = 10
	ExportLimit        = 1000
	defaultUserID      = "default"
)

var (
	ErrNilClient = errors.New("db client is nil")
	ErrNotFound  = errors.New("label not found")
)

// DBClient is the label store. SQLite allows one writer at a time, so writes
// are serialised on mu; reads go straight to the pool.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
	mu sync.Mutex
}

// LabelRecord is one analysed recording. The full session summary is kept as
// a JSON payload next to the columns used for lookup and listing.
type LabelRecord struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	SourceURL        string `gorm:"index:idx_source_url"`
	YouTubeID        string `gorm:"index:idx_youtube_id"`
	Title            string
	Artist           string `gorm:"index:idx_artist"`
	SongName         string
	Category         string
	Genre            string
	Language         string
	Notes            string
	UserRating       int
	DurationAnalyzed float64
	DetectedNotes    int
	AveragePitch     string
	AverageFrequency float64
	PitchRange       string
	MainTechnique    string
	DominantRegister string
	ConfidenceAvg    float64
	TotalScore       float64
	Grade            string
	DifficultyLevel  int
	Performance      datatypes.JSONType[models.PerformanceScore]
	Summary          datatypes.JSON
	CreatedAt        time.Time `gorm:"index:idx_created_at"`
}

type LearningSessionRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	LabelID          string `gorm:"type:varchar(36);index:idx_label"`
	UserID           string `gorm:"index:idx_user"`
	SessionDate      time.Time
	PracticeDuration float64
	AccuracyScore    float64
	PitchMatchScore  float64
	TimingScore      float64
	ExpressionScore  float64
	Notes            string
}

// Export is the document written by ExportJSON.
type Export struct {
	ExportDate  time.Time      `json:"export_date"`
	TotalLabels int            `json:"total_labels"`
	Labels      []models.Label `json:"labels"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("VOCAL_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&LabelRecord{}, &LearningSessionRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ok() error {
	if c == nil || c.DB == nil {
		return ErrNilClient
	}
	return nil
}

// SaveLabel persists label and returns its id. A missing id or creation time
// is filled in.
func (c *DBClient) SaveLabel(label *models.Label) (string, error) {
	if err := c.ok(); err != nil {
		return "", err
	}
	if label.ID == "" {
		label.ID = utils.NewID()
	}
	if label.CreatedAt.IsZero() {
		label.CreatedAt = time.Now()
	}

	rec, err := toRecord(label)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating label: %w", err)
	}
	return rec.ID, nil
}

func (c *DBClient) GetLabel(id string) (*models.Label, error) {
	if err := c.ok(); err != nil {
		return nil, err
	}
	var rec LabelRecord
	if err := c.DB.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("label %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying label: %w", err)
	}
	return fromRecord(rec)
}

// GetRecentLabels returns up to limit labels, newest first.
func (c *DBClient) GetRecentLabels(limit int) ([]models.Label, error) {
	if err := c.ok(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var rows []LabelRecord
	if err := c.DB.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying recent labels: %w", err)
	}
	return fromRecords(rows)
}

// GetLabelsByArtist matches artist as a substring.
func (c *DBClient) GetLabelsByArtist(artist string) ([]models.Label, error) {
	if err := c.ok(); err != nil {
		return nil, err
	}
	var rows []LabelRecord
	if err := c.DB.Where("artist LIKE ?", "%"+artist+"%").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying labels by artist: %w", err)
	}
	return fromRecords(rows)
}

// DeleteLabel removes a label together with its learning sessions.
func (c *DBClient) DeleteLabel(id string) error {
	if err := c.ok(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", id).Delete(&LearningSessionRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&LabelRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("label %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (c *DBClient) CountLabels() (int64, error) {
	if err := c.ok(); err != nil {
		return 0, err
	}
	var n int64
	if err := c.DB.Model(&LabelRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting labels: %w", err)
	}
	return n, nil
}

// SaveLearningSession records a practice run against an existing label.
func (c *DBClient) SaveLearningSession(s *models.LearningSession) (uint, error) {
	if err := c.ok(); err != nil {
		return 0, err
	}
	var n int64
	if err := c.DB.Model(&LabelRecord{}).Where("id = ?", s.LabelID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("checking label: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("label %s: %w", s.LabelID, ErrNotFound)
	}
	if s.UserID == "" {
		s.UserID = defaultUserID
	}
	if s.SessionDate.IsZero() {
		s.SessionDate = time.Now()
	}

	rec := LearningSessionRecord{
		LabelID:          s.LabelID,
		UserID:           s.UserID,
		SessionDate:      s.SessionDate,
		PracticeDuration: s.PracticeDuration,
		AccuracyScore:    s.AccuracyScore,
		PitchMatchScore:  s.PitchMatchScore,
		TimingScore:      s.TimingScore,
		ExpressionScore:  s.ExpressionScore,
		Notes:            s.Notes,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.DB.Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("creating learning session: %w", err)
	}
	s.ID = rec.ID
	return rec.ID, nil
}

// GetLearningSessions lists the practice runs of a label, oldest first. An
// empty labelID lists every session.
func (c *DBClient) GetLearningSessions(labelID string) ([]models.LearningSession, error) {
	if err := c.ok(); err != nil {
		return nil, err
	}
	q := c.DB.Order("session_date ASC").Order("id ASC")
	if labelID != "" {
		q = q.Where("label_id = ?", labelID)
	}
	var rows []LearningSessionRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying learning sessions: %w", err)
	}
	out := make([]models.LearningSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.LearningSession{
			ID:               r.ID,
			LabelID:          r.LabelID,
			UserID:           r.UserID,
			SessionDate:      r.SessionDate,
			PracticeDuration: r.PracticeDuration,
			AccuracyScore:    r.AccuracyScore,
			PitchMatchScore:  r.PitchMatchScore,
			TimingScore:      r.TimingScore,
			ExpressionScore:  r.ExpressionScore,
			Notes:            r.Notes,
		})
	}
	return out, nil
}

// GetLearningStats aggregates the practice runs of a label. A label without
// sessions yields zero values.
func (c *DBClient) GetLearningStats(labelID string) (models.LearningStats, error) {
	var stats models.LearningStats
	if err := c.ok(); err != nil {
		return stats, err
	}
	err := c.DB.Model(&LearningSessionRecord{}).
		Select(`COUNT(*) AS total_sessions,
			COALESCE(AVG(practice_duration), 0) AS avg_duration,
			COALESCE(AVG(accuracy_score), 0) AS avg_accuracy,
			COALESCE(AVG(pitch_match_score), 0) AS avg_pitch_match,
			COALESCE(MAX(accuracy_score), 0) AS best_accuracy`).
		Where("label_id = ?", labelID).
		Scan(&stats).Error
	if err != nil {
		return stats, fmt.Errorf("aggregating learning sessions: %w", err)
	}
	return stats, nil
}

// ExportJSON writes the newest ExportLimit labels as one JSON document.
func (c *DBClient) ExportJSON(w io.Writer) (int, error) {
	labels, err := c.GetRecentLabels(ExportLimit)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	doc := Export{ExportDate: time.Now(), TotalLabels: len(labels), Labels: labels}
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}
	return len(labels), nil
}

func toRecord(l *models.Label) (LabelRecord, error) {
	rec := LabelRecord{
		ID:               l.ID,
		SourceURL:        l.Metadata.SourceURL,
		YouTubeID:        l.Metadata.YouTubeID,
		Title:            l.Metadata.Title,
		Artist:           l.Metadata.Artist,
		SongName:         l.Metadata.SongName,
		Category:         l.Metadata.Category,
		Genre:            l.Metadata.Genre,
		Language:         l.Metadata.Language,
		Notes:            l.Metadata.Notes,
		UserRating:       l.Metadata.UserRating,
		DurationAnalyzed: l.Metadata.DurationAnalyzed,
		DetectedNotes:    l.DetectedNotes,
		AveragePitch:     l.AveragePitch,
		AverageFrequency: l.AverageFrequency,
		PitchRange:       l.PitchRange,
		MainTechnique:    string(l.MainTechnique),
		DominantRegister: string(l.DominantRegister),
		ConfidenceAvg:    l.ConfidenceAvg,
		TotalScore:       l.TotalScore,
		Grade:            string(l.Grade),
		DifficultyLevel:  l.DifficultyLevel,
		Performance:      datatypes.NewJSONType(l.Performance),
		CreatedAt:        l.CreatedAt,
	}
	if l.Summary != nil {
		payload, err := json.Marshal(l.Summary)
		if err != nil {
			return rec, fmt.Errorf("encoding summary: %w", err)
		}
		rec.Summary = datatypes.JSON(payload)
	}
	return rec, nil
}

func fromRecord(r LabelRecord) (*models.Label, error) {
	l := &models.Label{
		ID: r.ID,
		Metadata: models.LabelMetadata{
			SourceURL:        r.SourceURL,
			YouTubeID:        r.YouTubeID,
			Title:            r.Title,
			Artist:           r.Artist,
			SongName:         r.SongName,
			Category:         r.Category,
			Genre:            r.Genre,
			Language:         r.Language,
			Notes:            r.Notes,
			UserRating:       r.UserRating,
			DurationAnalyzed: r.DurationAnalyzed,
		},
		DetectedNotes:    r.DetectedNotes,
		AveragePitch:     r.AveragePitch,
		AverageFrequency: r.AverageFrequency,
		PitchRange:       r.PitchRange,
		MainTechnique:    models.Technique(r.MainTechnique),
		DominantRegister: models.Register(r.DominantRegister),
		ConfidenceAvg:    r.ConfidenceAvg,
		TotalScore:       r.TotalScore,
		Grade:            models.Grade(r.Grade),
		DifficultyLevel:  r.DifficultyLevel,
		Performance:      r.Performance.Data(),
		CreatedAt:        r.CreatedAt,
	}
	if len(r.Summary) > 0 && string(r.Summary) != "null" {
		var s models.SessionSummary
		if err := json.Unmarshal(r.Summary, &s); err != nil {
			return nil, fmt.Errorf("decoding summary of label %s: %w", r.ID, err)
		}
		l.Summary = &s
	}
	return l, nil
}

func fromRecords(rows []LabelRecord) ([]models.Label, error) {
	out := make([]models.Label, 0, len(rows))
	for _, r := range rows {
		l, err := fromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, nil
}
