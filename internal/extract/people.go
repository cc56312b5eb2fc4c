package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const (
	statusWords = `affected|displaced|homeless|evacuated|dead|killed|injured|missing`
	peopleWords = `people|persons|victims|residents|families|households`
)

// peoplePattern extracts one count. Group 1 is the number; group 2, when
// present, is a trailing unit word.
type peoplePattern struct {
	re         *regexp.Regexp
	multiplier float64
}

// Applied in order; later matches overwrite earlier ones in the same bucket.
var peoplePatterns = []peoplePattern{
	{
		re:         regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:million|m)\s+(?:(?:` + peopleWords + `)(?:\s+(?:` + statusWords + `))?|(?:` + statusWords + `))\b`),
		multiplier: 1_000_000,
	},
	{
		re:         regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:thousand|k)\s+(?:(?:` + peopleWords + `)(?:\s+(?:` + statusWords + `))?|(?:` + statusWords + `))\b`),
		multiplier: 1_000,
	},
	{
		re:         regexp.MustCompile(`(\d+(?:,\d{3})*)\s*(?:` + peopleWords + `)\s+(?:(?:were|are|have been|had been)\s+)?(?:` + statusWords + `)\b`),
		multiplier: 1,
	},
	{
		re:         regexp.MustCompile(`\b(?:` + statusWords + `)\s+(?:(?:approximately|about|around|over|more than|nearly|at least)\s+)?(\d+(?:,\d{3})*(?:\.\d+)?)(?:\s*(million|thousand|k|m)\b)?`),
		multiplier: 1,
	},
}

// peopleBuckets maps span keywords to categories, checked in order
var peopleBuckets = []struct {
	keywords []string
	category model.PeopleCategory
}{
	{[]string{"dead", "killed"}, model.PeopleDead},
	{[]string{"injured"}, model.PeopleInjured},
	{[]string{"displaced", "homeless"}, model.PeopleDisplaced},
	{[]string{"evacuated"}, model.PeopleEvacuated},
	{[]string{"missing"}, model.PeopleMissing},
}

var unitMultipliers = map[string]float64{
	"million":  1_000_000,
	"m":        1_000_000,
	"thousand": 1_000,
	"k":        1_000,
}

// PeopleExtractor pulls people counts out of free text
type PeopleExtractor struct{}

// NewPeopleExtractor creates a people extractor
func NewPeopleExtractor() *PeopleExtractor {
	return &PeopleExtractor{}
}

// Extract returns the counts found in text. Categories without a match are
// absent. Unparseable numbers are skipped.
func (e *PeopleExtractor) Extract(text string) model.PeopleEstimates {
	lower := strings.ToLower(text)
	estimates := model.PeopleEstimates{}

	for _, p := range peoplePatterns {
		for _, m := range p.re.FindAllStringSubmatch(lower, -1) {
			multiplier := p.multiplier
			if len(m) > 2 && m[2] != "" {
				multiplier = unitMultipliers[m[2]]
			}

			count, ok := parseCount(m[1], multiplier)
			if !ok {
				continue
			}
			estimates[bucketFor(m[0])] = count
		}
	}

	return estimates
}

// bucketFor picks the category named in a matched span
func bucketFor(span string) model.PeopleCategory {
	for _, b := range peopleBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(span, kw) {
				return b.category
			}
		}
	}
	return model.PeopleAffected
}

func parseCount(raw string, multiplier float64) (int64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	v := math.Round(n * multiplier)
	if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
