package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/score"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
)

type stubAnalyzer struct {
	last pipeline.Input
	err  error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, in pipeline.Input) (*model.Report, error) {
	a.last = in
	if a.err != nil {
		return nil, a.err
	}
	if in.Text == "" {
		return nil, pipeline.ErrEmptyInput
	}
	return &model.Report{
		ID:      "rep-1",
		Input:   in.Text,
		Verdict: model.CredibilityVerdict{Status: model.StatusNeedsVerification, Percentage: 55},
	}, nil
}

type stubReports struct {
	reports map[string]*model.Report
	opts    store.ListOptions
	err     error
}

func (s *stubReports) Get(ctx context.Context, id string) (*model.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (s *stubReports) List(ctx context.Context, opts store.ListOptions) ([]store.Summary, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	out := []store.Summary{}
	for id, r := range s.reports {
		out = append(out, store.Summary{ID: id, Status: r.Verdict.Status})
	}
	return out, nil
}

func newTestServer(t *testing.T, analyzer Analyzer, reports ReportReader) *Server {
	t.Helper()
	engine, err := score.NewEngine(model.DefaultRules(), func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)
	return New(analyzer, engine, Options{Reports: reports, Version: "test"})
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)
	rec := do(t, s, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "reliefscout", body["service"])
	assert.Equal(t, "test", body["version"])
}

func TestAnalyze(t *testing.T) {
	analyzer := &stubAnalyzer{}
	s := newTestServer(t, analyzer, nil)

	rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"text": "Bridge out on Route 9", "source": "twitter"})
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.Report
	decode(t, rec, &report)
	assert.Equal(t, "rep-1", report.ID)
	assert.Equal(t, pipeline.Input{Text: "Bridge out on Route 9", Source: "twitter"}, analyzer.last)
}

func TestAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"missing text", "/analyze", map[string]string{"source": "twitter"}},
		{"missing image url", "/analyze-image", map[string]string{"description": "flooded road"}},
		{"missing description", "/analyze-image-upload", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAnalyze_Failure(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{err: errors.New("fetch: connection refused")}, nil)

	rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"text": "https://example.org/news"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestAnalyzeImage(t *testing.T) {
	analyzer := &stubAnalyzer{}
	s := newTestServer(t, analyzer, nil)

	rec := do(t, s, http.MethodPost, "/analyze-image", map[string]string{
		"image_url":   "https://cdn.example/wall.jpg",
		"description": "Collapsed wall after the quake",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MediaImageURL, analyzer.last.Media)
	assert.Equal(t, "https://cdn.example/wall.jpg", analyzer.last.MediaURL)

	rec = do(t, s, http.MethodPost, "/analyze-image-upload", map[string]string{"description": "Flooded street"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MediaImageUpload, analyzer.last.Media)
	assert.Empty(t, analyzer.last.MediaURL)
}

func TestScore(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)

	confidence := 0.9
	rec := do(t, s, http.MethodPost, "/score", map[string]any{
		"record": model.ClassificationRecord{
			DisasterType: model.DisasterEarthquake,
			Confidence:   &confidence,
		},
		"platform_hint": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd",
		"raw_text":      "M6.1 earthquake reported near the coast",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var eval score.Evaluation
	decode(t, rec, &eval)
	assert.Equal(t, "usgs", eval.Platform.Platform)
	assert.True(t, eval.Platform.IsOfficial)
	assert.NotEmpty(t, eval.Verdict.Status)
	assert.NotEmpty(t, eval.Verdict.Factors)
	assert.InDelta(t, eval.Verdict.Score*100, float64(eval.Verdict.Percentage), 1)
}

func TestScore_UnknownMedia(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)

	rec := do(t, s, http.MethodPost, "/score", map[string]any{"raw_text": "x", "media": "video"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlatforms(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)
	rec := do(t, s, http.MethodGet, "/platforms", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Platforms []model.PlatformEntry `json:"platforms"`
		Bands     []model.VerdictBand   `json:"bands"`
	}
	decode(t, rec, &body)
	assert.NotEmpty(t, body.Platforms)
	assert.Len(t, body.Bands, 5)
}

func TestReports(t *testing.T) {
	reports := &stubReports{reports: map[string]*model.Report{
		"abc": {ID: "abc", Verdict: model.CredibilityVerdict{Status: model.StatusVerified}},
	}}
	s := newTestServer(t, &stubAnalyzer{}, reports)

	rec := do(t, s, http.MethodGet, "/reports?limit=5&status=verified", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.ListOptions{Limit: 5, Status: model.StatusVerified}, reports.opts)

	rec = do(t, s, http.MethodGet, "/reports?limit=-2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/reports/abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.Report
	decode(t, rec, &report)
	assert.Equal(t, "abc", report.ID)

	rec = do(t, s, http.MethodGet, "/reports/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	reports.err = errors.New("database is locked")
	rec = do(t, s, http.MethodGet, "/reports/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReports_StoreDisabled(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)

	for _, path := range []string{"/reports", "/reports/abc"} {
		rec := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_Shutdown(t *testing.T) {
	engine, err := score.NewEngine(model.DefaultRules(), time.Now)
	require.NoError(t, err)
	s := New(&stubAnalyzer{}, engine, Options{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
