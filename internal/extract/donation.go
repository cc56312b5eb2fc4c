package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const (
	maxScamIndicators = 5
	maxDonationURLs   = 3
	maxURLChars       = 100
)

var urlPattern = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")

// Donation verdict scores
const (
	donationScoreVerified   = 0.9
	donationScoreScam       = 0.1
	donationScoreUnverified = 0.4
)

// DonationAnalyzer scans text for donation requests and scam phrasing
type DonationAnalyzer struct {
	scamIndicators []string
	charities      []string
	shorteners     []string
}

// NewDonationAnalyzer creates a donation analyzer. Nil lists select the
// built-in tables.
func NewDonationAnalyzer(scamIndicators, charityDomains, shortenerDomains []string) *DonationAnalyzer {
	defaults := model.DefaultRules()
	if scamIndicators == nil {
		scamIndicators = defaults.ScamIndicators
	}
	if charityDomains == nil {
		charityDomains = defaults.CharityDomains
	}
	if shortenerDomains == nil {
		shortenerDomains = defaults.ShortenerDomains
	}
	return &DonationAnalyzer{
		scamIndicators: lowerAll(scamIndicators),
		charities:      lowerAll(charityDomains),
		shorteners:     lowerAll(shortenerDomains),
	}
}

// Analyze classifies the donation requests found in text
func (a *DonationAnalyzer) Analyze(text string) model.DonationAnalysis {
	lower := strings.ToLower(text)

	scams := []string{}
	for _, phrase := range a.scamIndicators {
		if strings.Contains(lower, phrase) {
			scams = append(scams, phrase)
		}
	}
	if len(scams) > maxScamIndicators {
		scams = scams[:maxScamIndicators]
	}

	charities := []string{}
	for _, domain := range a.charities {
		if strings.Contains(lower, domain) {
			charities = append(charities, domain)
		}
	}

	found := urlPattern.FindAllString(text, -1)
	urls := make([]model.DonationURL, 0, maxDonationURLs)
	for _, raw := range found {
		if len(urls) == maxDonationURLs {
			break
		}
		urls = append(urls, model.DonationURL{
			URL:                   truncate(raw, maxURLChars),
			IsLegitimateCharity:   a.isCharity(raw),
			IsShortenedSuspicious: a.isShortened(raw),
		})
	}

	analysis := model.DonationAnalysis{
		ScamIndicatorsFound:      scams,
		LegitimateCharitiesFound: charities,
		DonationURLs:             urls,
	}

	switch {
	case len(charities) > 0 && len(scams) == 0:
		analysis.DonationTrust = model.DonationVerified
		analysis.DonationScore = scorePtr(donationScoreVerified)
	case len(scams) > 0:
		analysis.DonationTrust = model.DonationScamLikely
		analysis.DonationScore = scorePtr(donationScoreScam)
	case len(found) > 0:
		analysis.DonationTrust = model.DonationUnverified
		analysis.DonationScore = scorePtr(donationScoreUnverified)
	default:
		analysis.DonationTrust = model.DonationNoneFound
	}

	return analysis
}

// URLs returns every URL found in text, untruncated
func URLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

func (a *DonationAnalyzer) isCharity(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range a.charities {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// isShortened matches the URL host against shortener domains, including
// their subdomains
func (a *DonationAnalyzer) isShortened(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range a.shorteners {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scorePtr(v float64) *float64 {
	return &v
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
