package score

import (
	"fmt"
	"math"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// Thresholder maps a final score to a verdict band
type Thresholder struct {
	bands []model.VerdictBand
}

// NewThresholder validates and copies the bands. Mins must be strictly
// descending and the last band must start at or below zero so every score
// lands in exactly one band. Nil selects the built-in bands.
func NewThresholder(bands []model.VerdictBand) (*Thresholder, error) {
	if bands == nil {
		bands = model.DefaultRules().Bands
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("no verdict bands configured")
	}

	for i, b := range bands {
		if b.Status == "" {
			return nil, fmt.Errorf("band %d: missing status", i)
		}
		if math.IsNaN(b.Min) {
			return nil, fmt.Errorf("band %q: min is NaN", b.Status)
		}
		if i > 0 && b.Min >= bands[i-1].Min {
			return nil, fmt.Errorf("band %q: min %.2f must be below %.2f", b.Status, b.Min, bands[i-1].Min)
		}
	}
	if last := bands[len(bands)-1]; last.Min > 0 {
		return nil, fmt.Errorf("band %q: lowest band must start at or below 0, got %.2f", last.Status, last.Min)
	}

	return &Thresholder{bands: append([]model.VerdictBand(nil), bands...)}, nil
}

// Classify returns the first band whose lower bound the score reaches
func (t *Thresholder) Classify(score float64) model.VerdictBand {
	for _, b := range t.bands {
		if score >= b.Min {
			return b
		}
	}
	return t.bands[len(t.bands)-1]
}

// Bands returns a copy of the bands in descending order
func (t *Thresholder) Bands() []model.VerdictBand {
	return append([]model.VerdictBand(nil), t.bands...)
}
