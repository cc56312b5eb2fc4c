package score

import (
	"fmt"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/extract"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/validate"
)

// Request is one scoring call
type Request struct {
	Record *model.ClassificationRecord
	// PlatformHint is a URL, a declared platform label, or empty
	PlatformHint string
	// Text is scanned for sensational language
	Text string
	// SignalText feeds the donation, freshness and people extractors.
	// Empty means Text.
	SignalText string
	Media      model.MediaKind
	// EnrichPeople fills a missing people_affected on a copy of the record
	// from the extracted "affected" estimate before scoring
	EnrichPeople bool
}

// Evaluation is a verdict together with the signals it was built from
type Evaluation struct {
	// Record is the record that was scored, enriched when requested
	Record    *model.ClassificationRecord `json:"record"`
	Platform  model.PlatformInfo          `json:"platform"`
	Donation  model.DonationAnalysis      `json:"donation_analysis"`
	Freshness model.FreshnessAnalysis     `json:"freshness_check"`
	People    model.PeopleEstimates       `json:"people_estimates"`
	Verdict   model.CredibilityVerdict    `json:"credibility"`
}

// Engine is the scoring core. It holds only immutable rule tables, so one
// engine may be shared by any number of goroutines.
type Engine struct {
	platforms *validate.PlatformClassifier
	donations *extract.DonationAnalyzer
	freshness *extract.FreshnessDetector
	people    *extract.PeopleExtractor
	scorer    *Scorer
}

// NewEngine builds an engine from the rule tables. A nil clock uses
// time.Now for freshness checks.
func NewEngine(rules model.RulesConfig, now func() time.Time) (*Engine, error) {
	platforms, err := validate.NewPlatformClassifier(rules.Platforms)
	if err != nil {
		return nil, fmt.Errorf("platform table: %w", err)
	}

	scorer, err := NewScorer(rules)
	if err != nil {
		return nil, err
	}

	freshness := extract.NewFreshnessDetector(rules.RecycledPhrases)
	if now != nil {
		freshness.Now = now
	}

	return &Engine{
		platforms: platforms,
		donations: extract.NewDonationAnalyzer(rules.ScamIndicators, rules.CharityDomains, rules.ShortenerDomains),
		freshness: freshness,
		people:    extract.NewPeopleExtractor(),
		scorer:    scorer,
	}, nil
}

// Score returns the credibility verdict for a classified report
func (e *Engine) Score(record *model.ClassificationRecord, platformHint, rawText string) model.CredibilityVerdict {
	return e.Evaluate(Request{Record: record, PlatformHint: platformHint, Text: rawText}).Verdict
}

// Evaluate scores a report and returns the intermediate signals as well
func (e *Engine) Evaluate(req Request) Evaluation {
	signalText := req.SignalText
	if signalText == "" {
		signalText = req.Text
	}

	platform := e.platformFor(req)

	freshness := e.freshness.Detect(signalText)
	if req.Media != model.MediaNone {
		freshness = extract.UnknownFreshness()
	}

	donation := e.donations.Analyze(signalText)
	people := e.people.Extract(signalText)

	record := req.Record
	if req.EnrichPeople {
		record = enrichPeople(record, people)
	}

	verdict := e.scorer.Calculate(Input{
		Record:    record,
		Platform:  platform,
		Text:      req.Text,
		Donation:  donation,
		Freshness: freshness,
		Media:     req.Media,
	})

	return Evaluation{
		Record:    record,
		Platform:  platform,
		Donation:  donation,
		Freshness: freshness,
		People:    people,
		Verdict:   verdict,
	}
}

// Platforms returns the platform classifier bound to this engine
func (e *Engine) Platforms() *validate.PlatformClassifier {
	return e.platforms
}

// Bands returns the verdict bands in descending order
func (e *Engine) Bands() []model.VerdictBand {
	return e.scorer.Thresholder().Bands()
}

func (e *Engine) platformFor(req Request) model.PlatformInfo {
	switch req.Media {
	case model.MediaImageURL:
		return e.platforms.Classify(req.PlatformHint, model.FallbackImageURL)
	case model.MediaImageUpload:
		return model.FallbackImageUpload.Info()
	default:
		return e.platforms.Resolve(req.PlatformHint)
	}
}

func enrichPeople(rec *model.ClassificationRecord, people model.PeopleEstimates) *model.ClassificationRecord {
	affected, ok := people[model.PeopleAffected]
	if !ok || affected <= 0 {
		return rec
	}
	if rec != nil && rec.PeopleAffected != nil && *rec.PeopleAffected > 0 {
		return rec
	}

	enriched := rec.Clone()
	if enriched == nil {
		enriched = &model.ClassificationRecord{}
	}
	enriched.PeopleAffected = &affected
	return enriched
}
