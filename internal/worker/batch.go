package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/validate"
)

// Analyzer runs one report through the analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*model.Report, error)
}

// AnalyzeJob analyzes one batch entry
type AnalyzeJob struct {
	Index    int
	Input    pipeline.Input
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute runs the job, waiting on the per-domain limiter for URL inputs
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	result := &AnalyzeResult{Index: j.Index, Input: j.Input}

	if j.Limiter != nil && validate.IsURL(j.Input.Text) {
		if err := j.Limiter.Wait(ctx, j.Input.Text); err != nil {
			result.Error = fmt.Errorf("rate limit: %w", err)
			return result
		}
	}

	result.Report, result.Error = j.Analyzer.Analyze(ctx, j.Input)
	return result
}

// AnalyzeResult is the outcome of one batch entry
type AnalyzeResult struct {
	Index  int
	Input  pipeline.Input
	Report *model.Report
	Error  error
}

// GetError returns the analysis error
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many reports concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      zap.NewNop(),
	}
}

// WithLimiter rate limits URL inputs per domain
func (b *BatchProcessor) WithLimiter(l *Limiter) *BatchProcessor {
	b.limiter = l
	return b
}

// WithLogger sets the logger used for per-entry failures
func (b *BatchProcessor) WithLogger(logger *zap.Logger) *BatchProcessor {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Process analyzes every input. Results come back in input order; entries
// skipped because ctx was cancelled carry the context error.
func (b *BatchProcessor) Process(ctx context.Context, inputs []pipeline.Input) []*AnalyzeResult {
	if len(inputs) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, in := range inputs {
		if !pool.Submit(&AnalyzeJob{Index: i, Input: in, Analyzer: b.analyzer, Limiter: b.limiter}) {
			break
		}
	}

	results := make([]*AnalyzeResult, len(inputs))
	for _, r := range pool.Wait() {
		ar := r.(*AnalyzeResult)
		results[ar.Index] = ar
	}

	for i, r := range results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &AnalyzeResult{Index: i, Input: inputs[i], Error: err}
		}
		if results[i].Error != nil {
			b.logger.Warn("batch entry failed", zap.Int("index", i), zap.Error(results[i].Error))
		}
	}

	return results
}

// ProcessFile reads inputs from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.Process(ctx, inputs), nil
}

// ReadInputsFromFile reads one report per line. A line is either a JSON
// object with the fields of pipeline.Input or plain report text / a URL.
// Blank lines and "#" comments are skipped and duplicates dropped.
func ReadInputsFromFile(filePath string) ([]pipeline.Input, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []pipeline.Input
	seen := make(map[pipeline.Input]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		in := pipeline.Input{Text: line}
		if strings.HasPrefix(line, "{") {
			in = pipeline.Input{}
			if err := json.Unmarshal([]byte(line), &in); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			in.Text = strings.TrimSpace(in.Text)
			if in.Text == "" {
				continue
			}
		}

		if !seen[in] {
			seen[in] = true
			inputs = append(inputs, in)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}

// Summary counts batch results per verdict status
type Summary struct {
	Total    int                  `json:"total"`
	Failed   int                  `json:"failed"`
	ByStatus map[model.Status]int `json:"by_status"`
}

// Summarize aggregates batch results
func Summarize(results []*AnalyzeResult) Summary {
	s := Summary{Total: len(results), ByStatus: make(map[model.Status]int)}
	for _, r := range results {
		if r.Error != nil || r.Report == nil {
			s.Failed++
			continue
		}
		s.ByStatus[r.Report.Verdict.Status]++
	}
	return s
}

// Statuses returns the statuses present in the summary, sorted
func (s Summary) Statuses() []model.Status {
	out := make([]model.Status, 0, len(s.ByStatus))
	for k := range s.ByStatus {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
