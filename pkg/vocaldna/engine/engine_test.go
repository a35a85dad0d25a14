package engine

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

func sine(freq, amp float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// newService starts a fake model service answering /analyze with body.
func newService(t *testing.T, status int, body string) (*httptest.Server, *analyzeRequest) {
	t.Helper()
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(status)
		case "/analyze":
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST, got %s", r.Method)
			}
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

// TestResultStates tests the three result constructors
func TestResultStates(t *testing.T) {
	ok := Available(1.5)
	if !ok.OK() || ok.IsUnavailable() {
		t.Errorf("Available should be OK, got %+v", ok)
	}
	absent := Absent[float64]()
	if absent.OK() || absent.IsUnavailable() {
		t.Errorf("Absent should be neither OK nor unavailable, got %+v", absent)
	}
	down := Unavailable[float64](errors.New("dial tcp: refused"))
	if down.OK() || !down.IsUnavailable() {
		t.Errorf("Unavailable should match ErrEngineUnavailable, got %+v", down)
	}
	if !Unavailable[float64](nil).IsUnavailable() {
		t.Error("Unavailable(nil) should still be unavailable")
	}
}

// TestEncodePCM tests the int16 little-endian base64 payload
func TestEncodePCM(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(EncodePCM([]float64{0, 1, -1, 2}))
	if err != nil {
		t.Fatalf("Invalid base64: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("Expected 8 bytes, got %d", len(raw))
	}
	want := []int16{0, 32767, -32767, 32767}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(raw[2*i:])); got != w {
			t.Errorf("Sample %d: expected %d, got %d", i, w, got)
		}
	}
}

// TestHTTPPitchEngine tests reduction of a pitch service response
func TestHTTPPitchEngine(t *testing.T) {
	srv, req := newService(t, http.StatusOK,
		`{"times":[0,0.01,0.02,0.03],"pitches":[440,442,0,300],"confidences":[0.9,0.7,0.95,0.5]}`)

	e := NewHTTPPitchEngine(models.EngineCREPE, srv.URL+"/", 0.6, nil)
	res := e.Estimate(context.Background(), sine(440, 0.5, 16000, 160), 16000)

	if !res.OK() {
		t.Fatalf("Expected estimate, got %+v", res)
	}
	if res.Value.Frequency != 441 || math.Abs(res.Value.Confidence-0.8) > 1e-9 {
		t.Errorf("Expected 441 Hz at 0.8, got %+v", res.Value)
	}
	if res.Value.Source != models.EngineCREPE {
		t.Errorf("Expected source crepe, got %s", res.Value.Source)
	}
	if req.SampleRate != 16000 || req.AudioBase64 == "" {
		t.Errorf("Unexpected request %+v", req)
	}
}

// TestHTTPPitchEngineNoQualifyingEntry tests the absent case
func TestHTTPPitchEngineNoQualifyingEntry(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `{"pitches":[0,220],"confidences":[0.9,0.3]}`)

	res := NewHTTPPitchEngine(models.EngineSPICE, srv.URL, 0.6, nil).
		Estimate(context.Background(), []float64{0}, 16000)
	if res.OK() || res.IsUnavailable() {
		t.Errorf("Expected absent, got %+v", res)
	}
}

// TestHTTPPitchEngineFailures tests that transport problems become Unavailable
func TestHTTPPitchEngineFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"bad json", http.StatusOK, "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newService(t, tt.status, tt.body)
			res := NewHTTPPitchEngine(models.EngineCREPE, srv.URL, 0.6, nil).
				Estimate(context.Background(), []float64{0}, 16000)
			if !res.IsUnavailable() {
				t.Errorf("Expected unavailable, got %+v", res)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv, _ := newService(t, http.StatusOK, "{}")
		url := srv.URL
		srv.Close()
		res := NewHTTPPitchEngine(models.EngineCREPE, url, 0.6, nil).
			Estimate(context.Background(), []float64{0}, 16000)
		if !res.IsUnavailable() {
			t.Errorf("Expected unavailable, got %+v", res)
		}
	})
}

// TestHTTPPitchEngineTimeout tests that a slow service is cut off by the context
func TestHTTPPitchEngineTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := NewHTTPPitchEngine(models.EngineCREPE, srv.URL, 0.6, nil).Estimate(ctx, []float64{0}, 16000)
	if !res.IsUnavailable() {
		t.Errorf("Expected unavailable, got %+v", res)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Timeout was not honoured")
	}
}

// TestHTTPFormantEngine tests neutral defaults for missing fields
func TestHTTPFormantEngine(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `{"formants":{"f1":720,"f2":1180,"singers_formant":0.4}}`)

	res := NewHTTPFormantEngine(srv.URL, nil).Analyze(context.Background(), []float64{0}, 16000)
	if !res.OK() {
		t.Fatalf("Expected formants, got %+v", res)
	}
	p := res.Value
	neutral := models.NeutralFormants()
	if p.F1 != 720 || p.F2 != 1180 || p.SingersFormant != 0.4 {
		t.Errorf("Unexpected profile %+v", p)
	}
	if p.F3 != neutral.F3 || p.F4 != neutral.F4 || len(p.Bandwidth) != 4 {
		t.Errorf("Missing fields should be neutral, got %+v", p)
	}
}

// TestHealth tests the remote health probe and CheckAll
func TestHealth(t *testing.T) {
	up, _ := newService(t, http.StatusOK, "")
	down, _ := newService(t, http.StatusServiceUnavailable, "")

	ctx := context.Background()
	pitch := []PitchEngine{
		NewHTTPPitchEngine(models.EngineCREPE, up.URL, 0.6, nil),
		NewHTTPPitchEngine(models.EngineSPICE, down.URL, 0.6, nil),
		NewAutocorrPitchEngine(),
	}
	statuses := CheckAll(ctx, pitch, NewSpectralFormantEngine())

	if len(statuses) != 4 {
		t.Fatalf("Expected 4 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || !statuses[0].Remote {
		t.Errorf("crepe should be up: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Error == "" {
		t.Errorf("spice should be down: %+v", statuses[1])
	}
	if !statuses[2].Available || statuses[2].Remote {
		t.Errorf("local engine should be available: %+v", statuses[2])
	}
	if statuses[3].Kind != "formant" {
		t.Errorf("Expected formant status last, got %+v", statuses[3])
	}
}

// TestAutocorrPitchEngine tests the local pitch estimator on pure tones
func TestAutocorrPitchEngine(t *testing.T) {
	e := NewAutocorrPitchEngine()
	tests := []struct {
		freq float64
		n    int
	}{
		{110, 2048},
		{220, 1024},
		{440, 1024},
	}

	for _, tt := range tests {
		res := e.Estimate(context.Background(), sine(tt.freq, 0.5, 16000, tt.n), 16000)
		if !res.OK() {
			t.Fatalf("%.0f Hz: expected estimate, got %+v", tt.freq, res)
		}
		if math.Abs(res.Value.Frequency-tt.freq) > 2 {
			t.Errorf("Expected ~%.0f Hz, got %.2f", tt.freq, res.Value.Frequency)
		}
		if res.Value.Confidence < 0.9 {
			t.Errorf("%.0f Hz: expected high confidence, got %.3f", tt.freq, res.Value.Confidence)
		}
	}

	if res := e.Estimate(context.Background(), make([]float64, 1024), 16000); res.OK() {
		t.Errorf("Silence should be absent, got %+v", res)
	}
}

// TestSpectralFormantEngine tests peak picking on a synthetic vowel
func TestSpectralFormantEngine(t *testing.T) {
	const sr, n = 16000, 1600
	x := make([]float64, n)
	for _, c := range []struct{ f, a float64 }{{700, 1}, {1200, 0.8}, {2600, 0.5}, {3400, 0.3}} {
		for i, s := range sine(c.f, c.a, sr, n) {
			x[i] += s
		}
	}

	res := NewSpectralFormantEngine().Analyze(context.Background(), x, sr)
	if !res.OK() {
		t.Fatalf("Expected formants, got %+v", res)
	}
	p := res.Value
	for _, c := range []struct{ got, want float64 }{{p.F1, 700}, {p.F2, 1200}, {p.F3, 2600}, {p.F4, 3400}} {
		if math.Abs(c.got-c.want) > 20 {
			t.Errorf("Expected formant near %.0f, got %.0f", c.want, c.got)
		}
	}
	if len(p.Bandwidth) != 4 || p.Bandwidth[0] <= 0 {
		t.Errorf("Expected positive bandwidths, got %v", p.Bandwidth)
	}

	if res := NewSpectralFormantEngine().Analyze(context.Background(), make([]float64, n), sr); res.OK() {
		t.Errorf("Silence should be absent, got %+v", res)
	}
}

// TestStubs tests the deterministic engines
func TestStubs(t *testing.T) {
	ctx := context.Background()

	s := StaticPitchEngine{Engine: models.EngineCREPE, Value: models.PitchEstimate{Frequency: 220, Confidence: 0.9}}
	if res := s.Estimate(ctx, nil, 0); !res.OK() || res.Value.Source != models.EngineCREPE {
		t.Errorf("Unexpected static result %+v", res)
	}
	if res := (StaticPitchEngine{Engine: models.EngineSPICE}).Estimate(ctx, nil, 0); res.OK() {
		t.Errorf("Zero static value should be absent")
	}

	if res := (FailingEngine{Engine: models.EngineCREPE}).Estimate(ctx, nil, 0); !res.IsUnavailable() {
		t.Errorf("FailingEngine should be unavailable")
	}

	slow := FailingEngine{Engine: models.EngineFormant, Delay: time.Minute}
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if res := slow.Analyze(tctx, nil, 0); !res.IsUnavailable() || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline-wrapped unavailable, got %+v", res)
	}
}
