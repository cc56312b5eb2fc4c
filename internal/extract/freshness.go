package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const maxFreshnessEvidence = 3

// OutdatedWarning is attached to potentially outdated content
const OutdatedWarning = "Content may be outdated or recycled from past events"

// ImageFreshnessWarning is attached when freshness cannot be judged from an image
const ImageFreshnessWarning = "Cannot determine freshness from image alone"

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// FreshnessDetector flags content that mentions old years or reads as
// recycled. The reference time comes from Now so tests can freeze it.
type FreshnessDetector struct {
	phrases []string
	Now     func() time.Time
}

// NewFreshnessDetector creates a detector. A nil phrase list selects the
// built-in one.
func NewFreshnessDetector(recycledPhrases []string) *FreshnessDetector {
	if recycledPhrases == nil {
		recycledPhrases = model.DefaultRules().RecycledPhrases
	}
	return &FreshnessDetector{
		phrases: lowerAll(recycledPhrases),
		Now:     time.Now,
	}
}

// Detect judges text against the detector's clock
func (d *FreshnessDetector) Detect(text string) model.FreshnessAnalysis {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return d.DetectAt(text, now())
}

// DetectAt judges text against a fixed reference time. A year is old when
// it is at least two calendar years before the reference year.
func (d *FreshnessDetector) DetectAt(text string, ref time.Time) model.FreshnessAnalysis {
	refYear := ref.Year()

	oldYears := []string{}
	seen := make(map[string]bool)
	for _, m := range yearPattern.FindAllStringSubmatch(text, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil || year >= refYear-1 {
			continue
		}
		if !seen[m[1]] {
			seen[m[1]] = true
			oldYears = append(oldYears, m[1])
		}
	}

	lower := strings.ToLower(text)
	recycled := []string{}
	for _, phrase := range d.phrases {
		if strings.Contains(lower, phrase) {
			recycled = append(recycled, phrase)
		}
	}

	if len(oldYears) == 0 && len(recycled) == 0 {
		return model.FreshnessAnalysis{
			Freshness:          model.FreshnessCurrent,
			OldYearsMentioned:  []string{},
			RecycledIndicators: []string{},
		}
	}

	if len(oldYears) > maxFreshnessEvidence {
		oldYears = oldYears[:maxFreshnessEvidence]
	}
	if len(recycled) > maxFreshnessEvidence {
		recycled = recycled[:maxFreshnessEvidence]
	}

	return model.FreshnessAnalysis{
		Freshness:          model.FreshnessOutdated,
		OldYearsMentioned:  oldYears,
		RecycledIndicators: recycled,
		Warning:            OutdatedWarning,
	}
}

// UnknownFreshness is the analysis used for image inputs
func UnknownFreshness() model.FreshnessAnalysis {
	return model.FreshnessAnalysis{
		Freshness:          model.FreshnessUnknown,
		OldYearsMentioned:  []string{},
		RecycledIndicators: []string{},
		Warning:            ImageFreshnessWarning,
	}
}
