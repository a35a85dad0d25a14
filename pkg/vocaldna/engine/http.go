package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
)

// Client is the shared HTTP transport for remote model services.
type Client struct {
	c *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{c: &http.Client{Timeout: timeout}}
}

type analyzeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	SampleRate  int    `json:"sample_rate"`
}

type pitchResponse struct {
	Times       []float64 `json:"times,omitempty"`
	Pitches     []float64 `json:"pitches"`
	Confidences []float64 `json:"confidences"`
	Notes       []string  `json:"notes,omitempty"`
}

type formantResponse struct {
	Formants struct {
		F1             *float64  `json:"f1"`
		F2             *float64  `json:"f2"`
		F3             *float64  `json:"f3"`
		F4             *float64  `json:"f4"`
		SingersFormant *float64  `json:"singers_formant"`
		Bandwidth      []float64 `json:"bandwidth"`
	} `json:"formants"`
}

// EncodePCM converts [-1, 1] samples to base64 16-bit little-endian PCM.
func EncodePCM(samples []float64) string {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(s*32767)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func (c *Client) post(ctx context.Context, url string, samples []float64, sampleRate int, out any) error {
	b, err := json.Marshal(analyzeRequest{AudioBase64: EncodePCM(samples), SampleRate: sampleRate})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/analyze", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (c *Client) health(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health %s", ErrEngineUnavailable, resp.Status)
	}
	return nil
}

// HTTPPitchEngine calls a CREPE- or SPICE-style pitch service.
type HTTPPitchEngine struct {
	id            models.EngineID
	baseURL       string
	minConfidence float64
	client        *Client
}

func NewHTTPPitchEngine(id models.EngineID, baseURL string, minConfidence float64, client *Client) *HTTPPitchEngine {
	if client == nil {
		client = NewClient(0)
	}
	return &HTTPPitchEngine{
		id:            id,
		baseURL:       strings.TrimRight(baseURL, "/"),
		minConfidence: minConfidence,
		client:        client,
	}
}

func (e *HTTPPitchEngine) ID() models.EngineID { return e.id }

func (e *HTTPPitchEngine) Health(ctx context.Context) error {
	return e.client.health(ctx, e.baseURL)
}

// Estimate averages the service's per-step pitches whose frequency is positive
// and whose confidence is above the engine threshold.
func (e *HTTPPitchEngine) Estimate(ctx context.Context, samples []float64, sampleRate int) Result[models.PitchEstimate] {
	var resp pitchResponse
	if err := e.client.post(ctx, e.baseURL, samples, sampleRate, &resp); err != nil {
		return Unavailable[models.PitchEstimate](fmt.Errorf("%s: %w", e.id, err))
	}
	return reducePitch(resp, e.minConfidence, e.id)
}

func reducePitch(resp pitchResponse, minConfidence float64, id models.EngineID) Result[models.PitchEstimate] {
	n := len(resp.Pitches)
	if len(resp.Confidences) < n {
		n = len(resp.Confidences)
	}
	var sumF, sumC float64
	count := 0
	for i := 0; i < n; i++ {
		f, c := resp.Pitches[i], resp.Confidences[i]
		if f > 0 && c > minConfidence {
			sumF += f
			sumC += c
			count++
		}
	}
	if count == 0 {
		return Absent[models.PitchEstimate]()
	}
	return Available(models.PitchEstimate{
		Frequency:  sumF / float64(count),
		Confidence: sumC / float64(count),
		Source:     id,
	})
}

// HTTPFormantEngine calls a formant analysis service.
type HTTPFormantEngine struct {
	baseURL string
	client  *Client
}

func NewHTTPFormantEngine(baseURL string, client *Client) *HTTPFormantEngine {
	if client == nil {
		client = NewClient(0)
	}
	return &HTTPFormantEngine{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (e *HTTPFormantEngine) ID() models.EngineID { return models.EngineFormant }

func (e *HTTPFormantEngine) Health(ctx context.Context) error {
	return e.client.health(ctx, e.baseURL)
}

// Analyze fills fields the service leaves out from NeutralFormants.
func (e *HTTPFormantEngine) Analyze(ctx context.Context, samples []float64, sampleRate int) Result[models.FormantProfile] {
	var resp formantResponse
	if err := e.client.post(ctx, e.baseURL, samples, sampleRate, &resp); err != nil {
		return Unavailable[models.FormantProfile](fmt.Errorf("formant: %w", err))
	}

	p := models.NeutralFormants()
	f := resp.Formants
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.F1, f.F1)
	set(&p.F2, f.F2)
	set(&p.F3, f.F3)
	set(&p.F4, f.F4)
	set(&p.SingersFormant, f.SingersFormant)
	if len(f.Bandwidth) > 0 {
		p.Bandwidth = f.Bandwidth
	}
	return Available(p)
}
