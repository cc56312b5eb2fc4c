package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// Score bounds applied after every adjustment
const (
	MinScore = 0.05
	MaxScore = 0.99
)

// Fixed deltas per stage
const (
	deltaHighConfidence = 0.10
	deltaLowConfidence  = -0.15
	deltaCoordinates    = 0.10
	deltaNamedPlace     = 0.05
	deltaNoLocation     = -0.10
	deltaOutdated       = -0.25
	deltaScam           = -0.30
	deltaCharity        = 0.05
	deltaUnverifiedLink = -0.05
	deltaSensational    = -0.10
	deltaContact        = 0.05
	deltaImpactData     = 0.05
	deltaImageURL       = -0.15
	deltaImageUpload    = 0.05

	highConfidence = 0.8
	lowConfidence  = 0.4
)

// Input is everything the aggregator looks at for one report
type Input struct {
	Record    *model.ClassificationRecord
	Platform  model.PlatformInfo
	Text      string
	Donation  model.DonationAnalysis
	Freshness model.FreshnessAnalysis
	Media     model.MediaKind
}

// adjustment is the outcome of one scoring stage
type adjustment struct {
	delta   float64
	factor  model.Factor
	neutral bool
	// always stages are recorded even when neutral
	always bool
}

// Scorer combines provenance, classifier output and text signals into a
// credibility verdict
type Scorer struct {
	sensational   []string
	recordNeutral bool
	thresholder   *Thresholder
}

// NewScorer binds the sensational keyword list and verdict bands
func NewScorer(rules model.RulesConfig) (*Scorer, error) {
	thresholder, err := NewThresholder(rules.Bands)
	if err != nil {
		return nil, fmt.Errorf("verdict bands: %w", err)
	}

	keywords := rules.SensationalKeywords
	if keywords == nil {
		keywords = model.DefaultRules().SensationalKeywords
	}
	upper := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			upper = append(upper, k)
		}
	}

	return &Scorer{
		sensational:   upper,
		recordNeutral: rules.RecordNeutralFactors,
		thresholder:   thresholder,
	}, nil
}

// Calculate runs the scoring stages in their fixed order and thresholds the
// result. It never fails; absent record fields take the negative branch.
func (s *Scorer) Calculate(in Input) model.CredibilityVerdict {
	rec := in.Record
	if rec == nil {
		rec = &model.ClassificationRecord{}
	}

	score := in.Platform.BaseTrust
	factors := make([]model.Factor, 0, 9)
	factors = append(factors, sourceFactor(in.Platform))

	stages := []adjustment{
		s.confidence(rec),
		s.location(rec),
		s.freshness(in.Freshness),
		s.donations(in.Donation),
		s.language(in.Text),
		s.contact(rec),
		s.impact(rec),
	}
	if media, ok := s.media(in.Media); ok {
		stages = append(stages, media)
	}

	for _, adj := range stages {
		score += adj.delta
		if adj.neutral && !adj.always && !s.recordNeutral {
			continue
		}
		factors = append(factors, adj.factor)
	}

	score = clamp(score)
	band := s.thresholder.Classify(score)

	return model.CredibilityVerdict{
		Score:          score,
		Percentage:     int(math.Round(score * 100)),
		Status:         band.Status,
		StatusText:     band.StatusText,
		Recommendation: band.Recommendation,
		Factors:        factors,
	}
}

// Thresholder exposes the bands this scorer classifies with
func (s *Scorer) Thresholder() *Thresholder {
	return s.thresholder
}

func sourceFactor(p model.PlatformInfo) model.Factor {
	return model.Factor{
		Category: "Source",
		Factor:   fmt.Sprintf("%s Source (%s)", model.TierName(p.Tier), p.PlatformName),
		Impact:   fmt.Sprintf("Base: %d%%", int(math.Round(p.BaseTrust*100))),
		Positive: p.Tier <= model.TierMajorNews,
	}
}

func (s *Scorer) confidence(rec *model.ClassificationRecord) adjustment {
	c := rec.ConfidenceOrDefault()
	switch {
	case c >= highConfidence:
		return positive("AI Analysis", "High AI Confidence", deltaHighConfidence)
	case c < lowConfidence:
		return negative("AI Analysis", "Low AI Confidence", deltaLowConfidence)
	default:
		return neutral("AI Analysis", "Moderate AI Confidence", true)
	}
}

func (s *Scorer) location(rec *model.ClassificationRecord) adjustment {
	switch {
	case rec.Location.HasCoordinates():
		return positive("Location", "GPS Coordinates Available", deltaCoordinates)
	case rec.Location.HasNamedPlace():
		return positive("Location", "Named Location Found", deltaNamedPlace)
	default:
		return negative("Location", "No Location Data", deltaNoLocation)
	}
}

func (s *Scorer) freshness(f model.FreshnessAnalysis) adjustment {
	var adj adjustment
	switch f.Freshness {
	case model.FreshnessOutdated:
		adj = negative("Freshness", "Potentially Outdated/Recycled Content", deltaOutdated)
	case model.FreshnessCurrent:
		adj = neutral("Freshness", "Content Appears Current", true)
	default:
		adj = neutral("Freshness", "Freshness Could Not Be Determined", false)
	}
	adj.always = true
	return adj
}

func (s *Scorer) donations(d model.DonationAnalysis) adjustment {
	switch {
	case d.DonationTrust == model.DonationScamLikely:
		return negative("Donations", "SCAM INDICATORS DETECTED", deltaScam)
	case d.DonationTrust == model.DonationVerified:
		return positive("Donations", "Verified Charity Links", deltaCharity)
	case len(d.DonationURLs) > 0:
		return negative("Donations", "Unverified Donation Links", deltaUnverifiedLink)
	default:
		return neutral("Donations", "No Donation Links", true)
	}
}

func (s *Scorer) language(text string) adjustment {
	upper := strings.ToUpper(text)
	var found []string
	for _, k := range s.sensational {
		if strings.Contains(upper, k) {
			found = append(found, k)
		}
	}
	if len(found) == 0 {
		return neutral("Language", "No Sensationalist Language", true)
	}
	if len(found) > 2 {
		found = found[:2]
	}
	return negative("Language", "Sensationalist: "+strings.Join(found, ", "), deltaSensational)
}

func (s *Scorer) contact(rec *model.ClassificationRecord) adjustment {
	if rec.HasContact() {
		return positive("Contact", "Contact Info Provided", deltaContact)
	}
	return neutral("Contact", "No Contact Info", false)
}

func (s *Scorer) impact(rec *model.ClassificationRecord) adjustment {
	if rec.HasImpactData() {
		return positive("Details", "Specific Impact Data", deltaImpactData)
	}
	return neutral("Details", "No Specific Impact Data", false)
}

func (s *Scorer) media(kind model.MediaKind) (adjustment, bool) {
	switch kind {
	case model.MediaImageURL:
		return negative("Media", "Image Source - Requires Visual Verification", deltaImageURL), true
	case model.MediaImageUpload:
		return positive("Media", "Direct Image Upload - User Provided", deltaImageUpload), true
	default:
		return adjustment{}, false
	}
}

func positive(category, text string, delta float64) adjustment {
	return adjustment{delta: delta, factor: model.Factor{Category: category, Factor: text, Impact: formatImpact(delta), Positive: true}}
}

func negative(category, text string, delta float64) adjustment {
	return adjustment{delta: delta, factor: model.Factor{Category: category, Factor: text, Impact: formatImpact(delta), Positive: false}}
}

func neutral(category, text string, good bool) adjustment {
	return adjustment{neutral: true, factor: model.Factor{Category: category, Factor: text, Impact: formatImpact(0), Positive: good}}
}

// formatImpact renders a delta as a signed whole percentage, e.g. "+10%"
func formatImpact(delta float64) string {
	return fmt.Sprintf("%+d%%", int(math.Round(delta*100)))
}

// clamp bounds the score and rounds it to two decimals. NaN maps to the floor.
func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < MinScore:
		score = MinScore
	case score > MaxScore:
		score = MaxScore
	}
	return math.Round(score*100) / 100
}
