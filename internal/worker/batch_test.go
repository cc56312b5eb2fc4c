package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
)

type mockAnalyzer struct {
	mu    sync.Mutex
	seen  []pipeline.Input
	fails map[string]bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, in pipeline.Input) (*model.Report, error) {
	m.mu.Lock()
	m.seen = append(m.seen, in)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.fails[in.Text] {
		return nil, errors.New("classifier timeout")
	}

	status := model.StatusNeedsVerification
	if strings.Contains(in.Text, "usgs.gov") {
		status = model.StatusVerified
	}
	return &model.Report{ID: "r-" + in.Text, Input: in.Text, Verdict: model.CredibilityVerdict{Status: status}}, nil
}

func writeInputs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write inputs: %v", err)
	}
	return path
}

func TestBatchProcessor_Process_Order(t *testing.T) {
	inputs := make([]pipeline.Input, 25)
	for i := range inputs {
		inputs[i] = pipeline.Input{Text: strings.Repeat("x", i+1)}
	}

	results := NewBatchProcessor(&mockAnalyzer{}, 4).Process(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("Expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Input != inputs[i] {
			t.Errorf("Result %d out of order: %+v", i, r.Input)
		}
		if r.Report == nil || r.Report.Input != inputs[i].Text {
			t.Errorf("Result %d has the wrong report", i)
		}
	}
}

func TestBatchProcessor_Process_Errors(t *testing.T) {
	analyzer := &mockAnalyzer{fails: map[string]bool{"bad": true}}
	results := NewBatchProcessor(analyzer, 2).Process(context.Background(), []pipeline.Input{
		{Text: "good"}, {Text: "bad"},
	})

	if results[0].GetError() != nil {
		t.Errorf("Expected success, got %v", results[0].Error)
	}
	if results[1].GetError() == nil || results[1].Report != nil {
		t.Errorf("Expected failure without report, got %+v", results[1])
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockAnalyzer{}, 2).Process(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty non-nil results, got %v", results)
	}
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []pipeline.Input{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	results := NewBatchProcessor(&mockAnalyzer{}, 1).Process(ctx, inputs)

	if len(results) != 3 {
		t.Fatalf("Expected a result per input, got %d", len(results))
	}
	for i, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("Result %d: expected context.Canceled, got %v", i, r.Error)
		}
	}
}

func TestBatchProcessor_Limiter(t *testing.T) {
	analyzer := &mockAnalyzer{}
	bp := NewBatchProcessor(analyzer, 2).WithLimiter(NewLimiter(1000, 1))

	results := bp.Process(context.Background(), []pipeline.Input{
		{Text: "https://earthquake.usgs.gov/a"},
		{Text: "https://earthquake.usgs.gov/b"},
		{Text: "plain text report"},
	})
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("Unexpected error: %v", r.Error)
		}
	}
}

func TestReadInputsFromFile(t *testing.T) {
	path := writeInputs(t, `# reports collected on the night of the flood
https://www.reuters.com/world/flood

Water at the second floor on Elm St, 4 people trapped
{"text": "Bridge out on Route 9", "source": "twitter"}
{"text": "Collapsed wall", "media": "image_url", "media_url": "https://cdn.example/wall.jpg"}
https://www.reuters.com/world/flood
{"text": "   "}
`)

	inputs, err := ReadInputsFromFile(path)
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}

	expected := []pipeline.Input{
		{Text: "https://www.reuters.com/world/flood"},
		{Text: "Water at the second floor on Elm St, 4 people trapped"},
		{Text: "Bridge out on Route 9", Source: "twitter"},
		{Text: "Collapsed wall", Media: model.MediaImageURL, MediaURL: "https://cdn.example/wall.jpg"},
	}
	if !reflect.DeepEqual(inputs, expected) {
		t.Errorf("Expected %+v, got %+v", expected, inputs)
	}
}

func TestReadInputsFromFile_Errors(t *testing.T) {
	if _, err := ReadInputsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeInputs(t, "ok line\n{\"text\": \n")
	_, err := ReadInputsFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line number in error, got %v", err)
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeInputs(t, "https://earthquake.usgs.gov/event/1\nflooded basement\n")

	results, err := NewBatchProcessor(&mockAnalyzer{}, 2).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	summary := Summarize(results)
	if summary.Total != 2 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.ByStatus[model.StatusVerified] != 1 || summary.ByStatus[model.StatusNeedsVerification] != 1 {
		t.Errorf("Unexpected status counts: %v", summary.ByStatus)
	}
	if got := summary.Statuses(); len(got) != 2 || got[0] != model.StatusNeedsVerification {
		t.Errorf("Expected sorted statuses, got %v", got)
	}

	if _, err := NewBatchProcessor(&mockAnalyzer{}, 2).ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing file")
	}
}
