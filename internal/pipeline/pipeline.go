package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/cache"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/extract"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/intake"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/score"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/util"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/validate"
)

// ErrEmptyInput is returned when a report has no text
var ErrEmptyInput = errors.New("empty report input")

// sourceURLFlagLen bounds the URL carried in the source_url flag
const sourceURLFlagLen = 100

// ImageFlag marks records whose text was extracted from an image
const ImageFlag = "extracted_from_image"

// Workflow step names, in the order they can run
const (
	StepInputClassification    = "Input Classification"
	StepContentExtraction      = "Content Extraction"
	StepTextProcessing         = "Text Processing"
	StepDisasterClassification = "Disaster Classification"
	StepLocationExtraction     = "Location Extraction"
	StepUrgencyAssessment      = "Urgency Assessment"
	StepDonationAnalysis       = "Donation Link Analysis"
	StepFreshnessVerification  = "Freshness Verification"
	StepCredibilityScoring     = "Credibility Scoring"
)

// Store persists finished reports
type Store interface {
	Save(ctx context.Context, report *model.Report) error
}

// Options overrides collaborators built from the config
type Options struct {
	Classifier intake.Classifier
	Store      Store
	Cache      cache.Cache
	Logger     *zap.Logger
	Now        func() time.Time
}

// Input is one submitted report
type Input struct {
	// Text is the report text or an http(s) URL to fetch
	Text string `json:"text"`
	// Source is the declared platform of a text report, e.g. "twitter"
	Source string `json:"source,omitempty"`
	// Media marks text that a vision model already extracted from an image
	Media model.MediaKind `json:"media,omitempty"`
	// MediaURL is the image location for image_url media
	MediaURL string `json:"media_url,omitempty"`
}

// Pipeline runs the full analysis of a report: fetch, classify, score
type Pipeline struct {
	engine     *score.Engine
	fetcher    *Fetcher
	classifier intake.Classifier
	links      *validate.LinkChecker
	store      Store
	cache      cache.Cache
	renderer   *Renderer
	config     *model.Config
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a pipeline from the configuration
func New(cfg *model.Config, opts Options) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	engine, err := score.NewEngine(cfg.Rules, now)
	if err != nil {
		return nil, fmt.Errorf("scoring rules: %w", err)
	}

	c := opts.Cache
	if c == nil {
		c, err = cache.New(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	}

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, fetcher.HTTPClient()))
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier, err = intake.NewClassifier(intake.ConfigFromModel(cfg.Intake))
		if err != nil {
			logger.Warn("classifier unavailable, using offline defaults",
				zap.String("provider", cfg.Intake.Provider), zap.Error(err))
			classifier = intake.NewDefaultsClassifier()
		}
		if cfg.Cache.Enabled {
			classifier = intake.NewCachedClassifier(classifier, c, cfg.Cache.DiskTTL)
		}
	}

	var links *validate.LinkChecker
	if cfg.Output.CheckLinks {
		links = validate.NewLinkChecker(validate.LinkCheckerOptions{
			Timeout:     cfg.HTTP.Timeout,
			MaxWorkers:  cfg.Concurrency.LinkCheckWorkers,
			UserAgent:   cfg.HTTP.UserAgent,
			InsecureTLS: cfg.HTTP.InsecureTLS,
			HTTPProxy:   cfg.HTTP.HTTPProxy,
			HTTPSProxy:  cfg.HTTP.HTTPSProxy,
			NoProxy:     cfg.HTTP.NoProxy,
		})
	}

	return &Pipeline{
		engine:     engine,
		fetcher:    fetcher,
		classifier: classifier,
		links:      links,
		store:      opts.Store,
		cache:      c,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
		logger:     logger,
		now:        now,
	}, nil
}

// Engine returns the scoring engine
func (p *Pipeline) Engine() *score.Engine {
	return p.engine
}

// ClassifierName returns the name of the configured classifier
func (p *Pipeline) ClassifierName() string {
	return p.classifier.Name()
}

// Analyze runs one report through the whole pipeline
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*model.Report, error) {
	raw := strings.TrimSpace(in.Text)
	if raw == "" {
		return nil, ErrEmptyInput
	}

	started := p.now().UTC()
	steps := []string{StepInputClassification}
	inputType := classifyInput(raw, in.Media)
	log := p.logger.With(zap.String("input_type", string(inputType)))

	var (
		classifyText string
		hint         string
		fetchMeta    *model.FetchMeta
	)

	switch inputType {
	case model.InputURL:
		page, meta, err := p.fetchPage(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", raw, err)
		}
		classifyText = page.Combined()
		hint = raw
		fetchMeta = &meta
		steps = append(steps, StepContentExtraction)
	case model.InputImageURL, model.InputImageUpload:
		classifyText = extract.SanitizeText(raw)
		hint = in.MediaURL
		steps = append(steps, StepContentExtraction)
	default:
		classifyText = extract.SanitizeText(raw)
		hint = in.Source
		steps = append(steps, StepTextProcessing)
	}
	if classifyText == "" {
		classifyText = raw
	}

	record, classifierUsed := p.classify(ctx, log, intake.ClassifyRequest{
		Text:           classifyText,
		SourcePlatform: p.sourceLabel(hint, in.Media),
	})
	steps = append(steps, StepDisasterClassification, StepLocationExtraction, StepUrgencyAssessment)

	switch inputType {
	case model.InputURL:
		record.Flags = append(record.Flags, "source_url:"+truncateRunes(raw, sourceURLFlagLen))
	case model.InputImageURL, model.InputImageUpload:
		record.Flags = append(record.Flags, ImageFlag)
	}

	eval := p.engine.Evaluate(score.Request{
		Record:       record,
		PlatformHint: hint,
		Text:         raw,
		SignalText:   raw + " " + record.NormalizedText,
		Media:        in.Media,
		EnrichPeople: true,
	})
	steps = append(steps, StepDonationAnalysis, StepFreshnessVerification, StepCredibilityScoring)

	report := &model.Report{
		ID:          record.RequestID,
		Input:       raw,
		SubmittedAt: started,
		Record:      eval.Record,
		Source:      model.NewSourceAnalysis(eval.Platform, inputType),
		Verdict:     eval.Verdict,
		Donation:    eval.Donation,
		Fresh:       eval.Freshness,
		People:      eval.People,
		FetchMeta:   fetchMeta,
		Workflow: model.AgentWorkflow{
			StepsCompleted:      steps,
			ClassifierUsed:      classifierUsed,
			ProcessingTimestamp: p.now().UTC(),
		},
	}

	if p.links != nil && len(eval.Donation.DonationURLs) > 0 {
		// signal text repeats the input, so the same link can appear twice
		seen := make(map[string]bool)
		var urls []string
		for _, u := range eval.Donation.DonationURLs {
			if !seen[u.URL] {
				seen[u.URL] = true
				urls = append(urls, u.URL)
			}
		}
		report.LinkChecks = p.links.Check(ctx, urls)
	}

	if p.store != nil {
		if err := p.store.Save(ctx, report); err != nil {
			log.Warn("save report failed", zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	log.Info("report analyzed",
		zap.String("report_id", report.ID),
		zap.String("platform", report.Source.Platform),
		zap.Float64("score", report.Verdict.Score),
		zap.String("status", string(report.Verdict.Status)))

	return report, nil
}

// classify asks the configured classifier and falls back to offline defaults
// when it fails or returns no record
func (p *Pipeline) classify(ctx context.Context, log *zap.Logger, req intake.ClassifyRequest) (*model.ClassificationRecord, string) {
	record, err := p.classifier.Classify(ctx, req)
	if err == nil && record != nil {
		return record, p.classifier.Name()
	}

	log.Warn("classification failed, using offline defaults",
		zap.String("classifier", p.classifier.Name()), zap.Error(err))
	return intake.DefaultRecord(req, p.now()), intake.OfflineName
}

func (p *Pipeline) sourceLabel(hint string, media model.MediaKind) string {
	switch media {
	case model.MediaImageURL:
		return p.engine.Platforms().Classify(hint, model.FallbackImageURL).Platform
	case model.MediaImageUpload:
		return model.FallbackImageUpload.ID
	}
	return p.engine.Platforms().Resolve(hint).Platform
}

type cachedPage struct {
	Page extract.PageContent `json:"page"`
	Meta model.FetchMeta     `json:"meta"`
}

// fetchPage fetches a URL and extracts its readable text, reusing a cached
// copy when one exists
func (p *Pipeline) fetchPage(ctx context.Context, rawURL string) (extract.PageContent, model.FetchMeta, error) {
	key := cache.Key("page", rawURL)
	if data, ok := p.cache.Get(key); ok {
		var cp cachedPage
		if err := json.Unmarshal(data, &cp); err == nil {
			return cp.Page, cp.Meta, nil
		}
	}

	result, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return extract.PageContent{}, model.FetchMeta{}, err
	}

	page, err := extract.ExtractPage(result.HTML, p.config.HTTP.MaxTextChars)
	if err != nil {
		return extract.PageContent{}, model.FetchMeta{}, fmt.Errorf("extract page: %w", err)
	}
	meta := result.Meta
	meta.Title = page.Title

	if data, err := json.Marshal(cachedPage{Page: page, Meta: meta}); err == nil {
		if err := p.cache.Set(key, data, p.config.Cache.MemoryTTL); err != nil {
			p.logger.Debug("page cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}

	return page, meta, nil
}

// RenderReport writes the report to the requested files and prints a
// summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}

func classifyInput(raw string, media model.MediaKind) model.InputType {
	switch media {
	case model.MediaImageURL:
		return model.InputImageURL
	case model.MediaImageUpload:
		return model.InputImageUpload
	}
	if validate.IsURL(raw) && !strings.ContainsAny(raw, " \t\n") {
		return model.InputURL
	}
	return model.InputText
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
