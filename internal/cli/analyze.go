package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
)

var (
	outJSON        string
	outMD          string
	timeout        time.Duration
	source         string
	imageURL       string
	imageUpload    bool
	noCache        bool
	noFooter       bool
	noStore        bool
	insecureTLS    bool
	checkLinks     bool
	intakeProvider string
	intakeModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <text|url>",
	Short: "Analyze a single disaster report and score its credibility",
	Long: `Analyze classifies one report and scores how credible it is:
- Resolve the source platform and its trust tier
- Classify disaster type, needs, location and people affected
- Check donation links for scam patterns
- Look for recycled or out-of-date content
- Combine everything into a score, verdict and recommendation

The argument is either the report text or a news/social URL to fetch.

Example:
  reliefscout analyze "Flooding on Elm St, 4 people trapped on a roof" --source twitter
  reliefscout analyze https://www.reuters.com/world/asia-pacific/quake --md report.md
  reliefscout analyze "Collapsed school wall" --image-url https://cdn.example/wall.jpg
  reliefscout analyze "Bridge out on Route 9" --provider groq --model llama-3.1-8b-instant`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVar(&source, "source", "", "declared platform of a text report (twitter, reddit, ...)")
	analyzeCmd.Flags().StringVar(&imageURL, "image-url", "", "image the text was extracted from")
	analyzeCmd.Flags().BoolVar(&imageUpload, "upload", false, "the text was extracted from an uploaded image")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "do not save the report to the history database")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch and classification)")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	analyzeCmd.Flags().BoolVar(&checkLinks, "check-links", false, "check that donation links are reachable")

	// Classifier flags
	analyzeCmd.Flags().StringVar(&intakeProvider, "provider", "", "classifier provider (openai, groq, ollama, offline)")
	analyzeCmd.Flags().StringVar(&intakeModel, "model", "", "classifier model name")
}

// applyRunFlags overlays the flags a user actually set on cfg
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("no-store") && noStore {
		cfg.Store.Path = ""
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("check-links") {
		cfg.Output.CheckLinks = checkLinks
	}
	if flags.Changed("provider") {
		cfg.Intake.Provider = intakeProvider
	}
	if flags.Changed("model") {
		cfg.Intake.Model = intakeModel
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	in := pipeline.Input{Text: args[0], Source: source}
	switch {
	case imageURL != "" && imageUpload:
		return fmt.Errorf("--image-url and --upload are mutually exclusive")
	case imageURL != "":
		in.Media = model.MediaImageURL
		in.MediaURL = imageURL
	case imageUpload:
		in.Media = model.MediaImageUpload
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, _, cleanup, err := newPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", store.Truncate(in.Text, 80))
		fmt.Fprintf(os.Stderr, "Classifier: %s\n", p.ClassifierName())
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := p.Analyze(ctx, in)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.Debug("report analyzed",
		zap.String("id", report.ID),
		zap.String("status", string(report.Verdict.Status)),
		zap.Float64("score", report.Verdict.Score))

	if err := p.RenderReport(os.Stdout, report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
