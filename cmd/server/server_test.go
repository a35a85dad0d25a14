//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/audio"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
)

const testRate = 16000

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	svc, err := vocaldna.NewService(
		vocaldna.WithDBPath(filepath.Join(t.TempDir(), "api.sqlite3")),
		vocaldna.WithTempDir(t.TempDir()),
		vocaldna.WithLogger(logger.Discard()),
		vocaldna.WithPitchEngines(
			engine.StaticPitchEngine{Engine: models.EngineCREPE, Value: models.PitchEstimate{Frequency: 440, Confidence: 0.9}},
			engine.StaticPitchEngine{Engine: models.EngineSPICE, Value: models.PitchEstimate{Frequency: 438, Confidence: 0.8}},
		),
		vocaldna.WithFormantEngine(engine.StaticFormantEngine{Value: models.FormantProfile{F1: 700, F2: 1200, F3: 2600, F4: 3500, SingersFormant: 0.2}}),
	)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	srv := NewServer(svc, &ServerConfig{
		TempDir:        t.TempDir(),
		SampleRate:     testRate,
		AllowedOrigins: []string{"*"},
	})
	srv.log = logger.Discard()
	return srv.setupRoutes()
}

func toneWAV(t *testing.T, seconds float64) []byte {
	t.Helper()
	samples := make([]float64, int(seconds*testRate))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/testRate)
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := audio.WriteWAV(path, samples, testRate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}

func uploadRequest(t *testing.T, wav []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("audio", "take.wav")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(wav)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
}

// analyze uploads a one second A4 tone and returns the stored label id.
func analyze(t *testing.T, h http.Handler, artist string) string {
	t.Helper()
	rec := do(t, h, uploadRequest(t, toneWAV(t, 1), map[string]string{
		"title":      "Warm-up",
		"artist":     artist,
		"source_url": "https://youtu.be/dQw4w9WgXcQ",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/analyze = %d: %s", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	decode(t, rec, &resp)
	if resp.ID == "" || resp.Summary == nil {
		t.Fatalf("Expected a stored label and summary, got %+v", resp)
	}
	return resp.ID
}

// TestHealthAndRoot tests the informational endpoints
func TestHealthAndRoot(t *testing.T) {
	h := setupTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	var root map[string]any
	decode(t, rec, &root)
	if root["service"] != "VocalDNA API" {
		t.Errorf("Unexpected root response: %v", root)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

// TestEnginesEndpoint tests that in-process engines report as available
func TestEnginesEndpoint(t *testing.T) {
	h := setupTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/health/engines", nil))
	var resp EnginesResponse
	decode(t, rec, &resp)
	if resp.Status != "healthy" || len(resp.Engines) != 3 {
		t.Errorf("Unexpected engines response: %+v", resp)
	}
}

// TestAnalyzeAndLabelLifecycle tests upload, lookup, assessment and deletion
func TestAnalyzeAndLabelLifecycle(t *testing.T) {
	h := setupTestServer(t)
	id := analyze(t, h, "Test Singer")

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET label = %d", rec.Code)
	}
	var label models.Label
	decode(t, rec, &label)
	if label.Metadata.Title != "Warm-up" || label.Metadata.YouTubeID != "dQw4w9WgXcQ" || label.AveragePitch != "A4" {
		t.Errorf("Unexpected label: %+v", label.Metadata)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels/"+id+"/assessment", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET assessment = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels", nil))
	var list ListLabelsResponse
	decode(t, rec, &list)
	if list.Count != 1 || list.Labels[0].ID != id {
		t.Errorf("Unexpected label list: %+v", list)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels?artist=Singer", nil))
	decode(t, rec, &list)
	if list.Count != 1 {
		t.Errorf("Expected 1 label by artist, got %d", list.Count)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), id) {
		t.Errorf("GET /api/export = %d", rec.Code)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/labels/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE label = %d", rec.Code)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted label = %d, want 404", rec.Code)
	}
}

// TestAnalyzeValidation tests rejected uploads
func TestAnalyzeValidation(t *testing.T) {
	h := setupTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/analyze = %d, want 405", rec.Code)
	}

	rec = do(t, h, uploadRequest(t, toneWAV(t, 0.2), map[string]string{"user_rating": "9"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rating 9 = %d, want 400", rec.Code)
	}

	rec = do(t, h, uploadRequest(t, toneWAV(t, 0.2), map[string]string{"duration": "soon"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad duration = %d, want 400", rec.Code)
	}
}

// TestLabelRouting tests id validation and unknown sub-resources
func TestLabelRouting(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/labels/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/api/labels/7f0c2f7e-3f55-4a38-9b2e-1d6f6b1c0a11", http.StatusNotFound},
		{http.MethodDelete, "/api/labels/7f0c2f7e-3f55-4a38-9b2e-1d6f6b1c0a11", http.StatusNotFound},
		{http.MethodGet, "/api/labels/7f0c2f7e-3f55-4a38-9b2e-1d6f6b1c0a11/stats", http.StatusNotFound},
		{http.MethodGet, "/api/labels/7f0c2f7e-3f55-4a38-9b2e-1d6f6b1c0a11/lyrics", http.StatusNotFound},
		{http.MethodPut, "/api/labels/7f0c2f7e-3f55-4a38-9b2e-1d6f6b1c0a11", http.StatusMethodNotAllowed},
		{http.MethodOptions, "/api/labels", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestPracticeEndpoints tests recording practice sessions and reading their stats
func TestPracticeEndpoints(t *testing.T) {
	h := setupTestServer(t)
	id := analyze(t, h, "Test Singer")

	for _, body := range []string{
		`{"practice_duration": 10, "accuracy_score": 80, "pitch_match_score": 70}`,
		`{"practice_duration": 20, "accuracy_score": 90, "pitch_match_score": 90}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/labels/"+id+"/practice", strings.NewReader(body))
		if rec := do(t, h, req); rec.Code != http.StatusCreated {
			t.Fatalf("POST practice = %d: %s", rec.Code, rec.Body.String())
		}
	}

	bad := httptest.NewRequest(http.MethodPost, "/api/labels/"+id+"/practice", strings.NewReader(`{"accuracy_score": 120}`))
	if rec := do(t, h, bad); rec.Code != http.StatusBadRequest {
		t.Errorf("score 120 = %d, want 400", rec.Code)
	}

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/labels/"+id+"/stats", nil))
	var stats models.LearningStats
	decode(t, rec, &stats)
	if stats.TotalSessions != 2 || stats.AvgDuration != 15 || stats.AvgAccuracy != 85 || stats.BestAccuracy != 90 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

// TestReportEndpoints tests the report routes on empty and populated stores
func TestReportEndpoints(t *testing.T) {
	h := setupTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/health", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("health report on empty store = %d, want 404", rec.Code)
	}

	analyze(t, h, "Test Singer")

	for _, kind := range []string{"health", "technique"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/"+kind, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET /api/reports/%s = %d: %s", kind, rec.Code, rec.Body.String())
		}
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/mood", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown report = %d, want 404", rec.Code)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/health?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit = %d, want 400", rec.Code)
	}
}
