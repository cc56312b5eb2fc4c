package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many reports from a file in parallel",
	Long: `Batch analyzes reports concurrently:
- Read one report per line (plain text, a URL, or a JSON object)
- Process reports in parallel with a configurable worker count
- Rate limit fetches per source host
- Write a JSON and Markdown report for each input

JSON lines may set "text", "source", "media" and "media_url".
Blank lines and lines starting with # are ignored.

Example:
  reliefscout batch reports.txt
  reliefscout batch reports.txt --concurrency 8 --output-dir ./reports
  reliefscout batch reports.jsonl --timeout 20m --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./reliefscout-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with analyze
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch and classification)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noStore, "no-store", false, "do not save reports to the history database")
	batchCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	batchCmd.Flags().BoolVar(&checkLinks, "check-links", false, "check that donation links are reachable")
	batchCmd.Flags().StringVar(&intakeProvider, "provider", "", "classifier provider (openai, groq, ollama, offline)")
	batchCmd.Flags().StringVar(&intakeModel, "model", "", "classifier model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ReliefScout Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Rate limit:   %.1f req/s per host (burst %d)\n",
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, _, cleanup, err := newPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer cleanup()
	fmt.Fprintf(os.Stderr, "  Classifier:   %s\n", p.ClassifierName())
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)).
		WithLogger(logger)

	fmt.Fprintf(os.Stderr, "⚙️  Reading reports from file...\n")
	inputs, err := worker.ReadInputsFromFile(file)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d reports\n", len(inputs))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Analyzing with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()
	results := processor.Process(ctx, inputs)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	written := 0
	for _, result := range results {
		label := store.Truncate(result.Input.Text, 60)
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		slug := reportSlug(result.Index, result.Report.ID)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}
		written++

		fmt.Fprintf(os.Stderr, "✓ %s (%s, %d%%)\n", label, result.Report.Verdict.Status, result.Report.Verdict.Percentage)
	}

	summary := worker.Summarize(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d reports\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Written:   %d\n", written)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	for _, status := range summary.Statuses() {
		fmt.Fprintf(os.Stderr, "    %-20s %d\n", status, summary.ByStatus[status])
	}
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// reportSlug names a batch report file by input position and report ID
func reportSlug(index int, id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if len(id) > 36 {
		id = id[:36]
	}
	return fmt.Sprintf("%04d-%s", index+1, id)
}
