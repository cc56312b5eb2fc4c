package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/cache"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/intake"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

type stubClassifier struct {
	mu       sync.Mutex
	err      error
	record   model.ClassificationRecord
	requests []intake.ClassifyRequest
}

func (s *stubClassifier) Name() string { return "stub" }

func (s *stubClassifier) IsAvailable(context.Context) bool { return true }

func (s *stubClassifier) Classify(ctx context.Context, req intake.ClassifyRequest) (*model.ClassificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	rec := s.record.Clone()
	rec.RequestID = fmt.Sprintf("req-%d", len(s.requests))
	rec.NormalizedText = req.Text
	return rec, nil
}

func (s *stubClassifier) lastRequest() intake.ClassifyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

type recordingStore struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (s *recordingStore) Save(ctx context.Context, report *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

var testNow = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.HTTP.RespectRobots = false
	cfg.HTTP.Timeout = 5 * time.Second
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config, opts Options) *Pipeline {
	t.Helper()
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Now == nil {
		opts.Now = testNow
	}
	p, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestAnalyze_Text(t *testing.T) {
	classifier := &stubClassifier{record: model.ClassificationRecord{
		Confidence: floatPtr(0.85),
		Location:   &model.Location{City: "Dhaka"},
	}}
	p := newTestPipeline(t, testConfig(), Options{Classifier: classifier})

	report, err := p.Analyze(context.Background(), Input{
		Text:   "<b>River burst its banks</b>, 2,500 people affected near the bridge",
		Source: "twitter",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	req := classifier.lastRequest()
	if req.Text != "River burst its banks, 2,500 people affected near the bridge" {
		t.Errorf("Expected sanitized text for the classifier, got %q", req.Text)
	}
	if req.SourcePlatform != "twitter" {
		t.Errorf("Expected twitter, got %s", req.SourcePlatform)
	}

	if report.ID != "req-1" {
		t.Errorf("Expected report id from the record, got %s", report.ID)
	}
	if report.Source.Platform != "twitter" || report.Source.InputType != model.InputText {
		t.Errorf("Unexpected source analysis: %+v", report.Source)
	}
	if report.Record.PeopleAffected == nil || *report.Record.PeopleAffected != 2500 {
		t.Errorf("Expected people_affected enriched to 2500, got %v", report.Record.PeopleAffected)
	}
	if report.Workflow.ClassifierUsed != "stub" {
		t.Errorf("Expected stub, got %s", report.Workflow.ClassifierUsed)
	}
	if !report.SubmittedAt.Equal(testNow()) {
		t.Errorf("Expected submitted_at %v, got %v", testNow(), report.SubmittedAt)
	}

	wantSteps := []string{
		StepInputClassification, StepTextProcessing, StepDisasterClassification,
		StepLocationExtraction, StepUrgencyAssessment, StepDonationAnalysis,
		StepFreshnessVerification, StepCredibilityScoring,
	}
	if !reflect.DeepEqual(report.Workflow.StepsCompleted, wantSteps) {
		t.Errorf("Expected steps %v, got %v", wantSteps, report.Workflow.StepsCompleted)
	}

	want := p.Engine().Score(report.Record, "twitter", report.Input)
	if !reflect.DeepEqual(report.Verdict, want) {
		t.Errorf("Expected pipeline verdict to match the engine:\n%+v\n%+v", report.Verdict, want)
	}
}

func TestAnalyze_URL(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><head><title>Cyclone makes landfall</title>
<meta name="description" content="Coastal villages evacuated"></head>
<body><nav>Menu</nav><p>Winds of 180 km/h hit the coast overnight.</p></body></html>`)
	}))
	defer server.Close()

	classifier := &stubClassifier{}
	p := newTestPipeline(t, testConfig(), Options{
		Classifier: classifier,
		Cache:      cache.NewMemoryCache(time.Minute, time.Minute),
	})

	url := server.URL + "/news/cyclone"
	report, err := p.Analyze(context.Background(), Input{Text: url})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	req := classifier.lastRequest()
	if !strings.HasPrefix(req.Text, "Cyclone makes landfall\n\nCoastal villages evacuated\n\n") {
		t.Errorf("Expected page title and description first, got %q", req.Text)
	}
	if strings.Contains(req.Text, "Menu") {
		t.Errorf("Expected navigation to be dropped, got %q", req.Text)
	}

	if report.Source.InputType != model.InputURL || report.Source.Platform != "web" {
		t.Errorf("Unexpected source analysis: %+v", report.Source)
	}
	if report.FetchMeta == nil || report.FetchMeta.Title != "Cyclone makes landfall" {
		t.Errorf("Expected fetch meta with title, got %+v", report.FetchMeta)
	}
	if flags := report.Record.Flags; len(flags) != 1 || flags[0] != "source_url:"+url {
		t.Errorf("Expected source_url flag, got %v", flags)
	}
	if report.Workflow.StepsCompleted[1] != StepContentExtraction {
		t.Errorf("Expected content extraction step, got %v", report.Workflow.StepsCompleted)
	}

	if _, err := p.Analyze(context.Background(), Input{Text: url}); err != nil {
		t.Fatalf("Second Analyze failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected cached page on second run, got %d fetches", hits.Load())
	}
}

func TestAnalyze_URLFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{}})
	if _, err := p.Analyze(context.Background(), Input{Text: server.URL + "/gone"}); err == nil {
		t.Error("Expected error for unreachable URL")
	}
}

func TestAnalyze_SourceURLFlagTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>Flooding</body></html>")
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{}})
	url := server.URL + "/" + strings.Repeat("x", 200)
	report, err := p.Analyze(context.Background(), Input{Text: url})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got := report.Record.Flags[0]; got != "source_url:"+url[:100] {
		t.Errorf("Expected URL cut to 100 chars, got %q", got)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	p := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{}})
	for _, text := range []string{"", "   \n\t"} {
		if _, err := p.Analyze(context.Background(), Input{Text: text}); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Expected ErrEmptyInput for %q, got %v", text, err)
		}
	}
}

func TestAnalyze_ClassifierFailure(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("openai API error: 503")}
	p := newTestPipeline(t, testConfig(), Options{Classifier: classifier})

	report, err := p.Analyze(context.Background(), Input{Text: "Earthquake felt downtown"})
	if err != nil {
		t.Fatalf("Expected offline fallback, got %v", err)
	}
	if report.Workflow.ClassifierUsed != "offline" {
		t.Errorf("Expected offline, got %s", report.Workflow.ClassifierUsed)
	}
	if len(report.Record.Flags) != 1 || report.Record.Flags[0] != intake.OfflineFlag {
		t.Errorf("Expected offline flag, got %v", report.Record.Flags)
	}
	if report.ID == "" {
		t.Error("Expected a generated report id")
	}
}

type emptyClassifier struct{}

func (emptyClassifier) Name() string { return "empty" }

func (emptyClassifier) IsAvailable(context.Context) bool { return true }

func (emptyClassifier) Classify(context.Context, intake.ClassifyRequest) (*model.ClassificationRecord, error) {
	return nil, nil
}

func TestAnalyze_ClassifierReturnsNoRecord(t *testing.T) {
	p := newTestPipeline(t, testConfig(), Options{Classifier: emptyClassifier{}})

	report, err := p.Analyze(context.Background(), Input{Text: "Flood photo shared from the riverside", Source: "twitter"})
	if err != nil {
		t.Fatalf("Expected offline fallback, got %v", err)
	}
	if report.Record == nil {
		t.Fatal("Expected a record")
	}
	if report.Workflow.ClassifierUsed != intake.OfflineName {
		t.Errorf("Expected %s, got %s", intake.OfflineName, report.Workflow.ClassifierUsed)
	}
	if report.Record.NormalizedText == "" || report.Record.RequestID == "" {
		t.Errorf("Expected a finalized record, got %+v", report.Record)
	}
}

func TestAnalyze_Media(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		platform  string
		inputType model.InputType
	}{
		{"image url", Input{Text: "Collapsed bridge over a river", Media: model.MediaImageURL, MediaURL: "https://cdn.example/bridge.jpg"}, "image", model.InputImageURL},
		{"reddit image", Input{Text: "Collapsed bridge over a river", Media: model.MediaImageURL, MediaURL: "https://i.redd.it/bridge.jpg"}, "reddit", model.InputImageURL},
		{"upload", Input{Text: "Collapsed bridge over a river", Media: model.MediaImageUpload}, "image_upload", model.InputImageUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &stubClassifier{}
			p := newTestPipeline(t, testConfig(), Options{Classifier: classifier})

			report, err := p.Analyze(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if report.Source.Platform != tt.platform || report.Source.InputType != tt.inputType {
				t.Errorf("Unexpected source analysis: %+v", report.Source)
			}
			if classifier.lastRequest().SourcePlatform != tt.platform {
				t.Errorf("Expected classifier source %s, got %s", tt.platform, classifier.lastRequest().SourcePlatform)
			}
			if report.Fresh.Freshness != model.FreshnessUnknown {
				t.Errorf("Expected unknown freshness, got %s", report.Fresh.Freshness)
			}
			if flags := report.Record.Flags; len(flags) != 1 || flags[0] != ImageFlag {
				t.Errorf("Expected image flag, got %v", flags)
			}
		})
	}
}

func TestAnalyze_Store(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	p := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{}, Store: store})

	report, err := p.Analyze(context.Background(), Input{Text: "Wildfire near the ridge"})
	if err != nil {
		t.Fatalf("Expected store errors to be non-fatal, got %v", err)
	}
	if len(store.reports) != 1 || store.reports[0] != report {
		t.Errorf("Expected report to be saved once, got %d", len(store.reports))
	}
}

func TestAnalyze_LinkChecks(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD, got %s", r.Method)
		}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Output.CheckLinks = true
	p := newTestPipeline(t, cfg, Options{Classifier: &stubClassifier{}})

	without := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{}})
	text := "Help flood victims, donate at " + server.URL + "/donate"

	report, err := p.Analyze(context.Background(), Input{Text: text})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(report.LinkChecks) != 1 || !report.LinkChecks[0].IsAccessible {
		t.Errorf("Expected one reachable link, got %+v", report.LinkChecks)
	}

	plain, err := without.Analyze(context.Background(), Input{Text: text})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if plain.Verdict.Score != report.Verdict.Score {
		t.Errorf("Expected link checks not to move the score, got %v and %v", plain.Verdict.Score, report.Verdict.Score)
	}
}

func TestNew_InvalidRules(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Bands = nil
	cfg.Rules.Platforms = []model.PlatformEntry{{ID: "bad", Tier: 0, Trust: 2}}
	if _, err := New(cfg, Options{Cache: cache.Nop{}}); err == nil {
		t.Error("Expected error for invalid rules")
	}
}

func TestNew_DefaultClassifier(t *testing.T) {
	p := newTestPipeline(t, testConfig(), Options{})
	if p.ClassifierName() != "offline" {
		t.Errorf("Expected offline classifier without a provider, got %s", p.ClassifierName())
	}
}

func TestRenderer(t *testing.T) {
	p := newTestPipeline(t, testConfig(), Options{Classifier: &stubClassifier{
		record: model.ClassificationRecord{DisasterType: model.DisasterType("flood"), Location: &model.Location{City: "Porto Alegre", Country: "Brazil"}},
	}})
	report, err := p.Analyze(context.Background(), Input{Text: "BREAKING: 3,000 people displaced by flooding", Source: "reddit"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "report.json")
	mdPath := filepath.Join(dir, "out", "report.md")

	var out bytes.Buffer
	if err := p.RenderReport(&out, report, jsonPath, mdPath, true); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Read JSON failed: %v", err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.ID != report.ID || decoded.Verdict.Score != report.Verdict.Score {
		t.Errorf("Expected JSON to carry the report, got %+v", decoded)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("Read Markdown failed: %v", err)
	}
	for _, want := range []string{"# Report req-1", "## Score Breakdown", "| Source |", "Porto Alegre, Brazil", "displaced: 3000", reportFooter} {
		if !strings.Contains(string(md), want) {
			t.Errorf("Expected Markdown to contain %q", want)
		}
	}

	summary := out.String()
	if !strings.Contains(summary, "Wrote JSON") || !strings.Contains(summary, report.Verdict.StatusText) {
		t.Errorf("Unexpected summary: %s", summary)
	}
}

func floatPtr(v float64) *float64 { return &v }
