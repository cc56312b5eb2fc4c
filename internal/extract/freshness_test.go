package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

var freshnessRef = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestFreshnessDetector_DetectAt(t *testing.T) {
	detector := NewFreshnessDetector(nil)

	tests := []struct {
		text     string
		expected model.Freshness
		years    []string
		recycled []string
		desc     string
	}{
		{"Flooding downtown in 2019, roads closed", model.FreshnessOutdated, []string{"2019"}, []string{}, "Old year"},
		{"Hurricane landfall expected, 2024 levees holding", model.FreshnessOutdated, []string{"2024"}, []string{}, "Two years back is old"},
		{"Storm damage from the 2025 season continues", model.FreshnessCurrent, []string{}, []string{}, "Last year is not old"},
		{"Evacuations ordered today", model.FreshnessCurrent, []string{}, []string{}, "No dates"},
		{"Rebuilding plan targets 2030", model.FreshnessCurrent, []string{}, []string{}, "Future year ignored"},
		{"Throwback to the old footage of the quake", model.FreshnessOutdated, []string{}, []string{"throwback", "old footage"}, "Recycled phrases"},
		{"Footage from 2012, 2013 and 2014 and again 2013 and 2015", model.FreshnessOutdated, []string{"2012", "2013", "2014"}, []string{"from 20"}, "Years deduplicated and truncated"},
		{"Tracking number 120190 is not a year", model.FreshnessCurrent, []string{}, []string{}, "Digits inside a longer number"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := detector.DetectAt(tt.text, freshnessRef)
			if result.Freshness != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result.Freshness)
			}
			if !reflect.DeepEqual(result.OldYearsMentioned, tt.years) {
				t.Errorf("Expected years %v, got %v", tt.years, result.OldYearsMentioned)
			}
			if !reflect.DeepEqual(result.RecycledIndicators, tt.recycled) {
				t.Errorf("Expected recycled %v, got %v", tt.recycled, result.RecycledIndicators)
			}
			if tt.expected == model.FreshnessOutdated && result.Warning != OutdatedWarning {
				t.Errorf("Expected warning %q, got %q", OutdatedWarning, result.Warning)
			}
			if tt.expected == model.FreshnessCurrent && result.Warning != "" {
				t.Errorf("Expected no warning, got %q", result.Warning)
			}
		})
	}
}

func TestFreshnessDetector_RecycledTruncated(t *testing.T) {
	detector := NewFreshnessDetector(nil)

	result := detector.DetectAt("years ago, last year, a throwback, remember when, from the archive", freshnessRef)

	expected := []string{"years ago", "last year", "throwback"}
	if !reflect.DeepEqual(result.RecycledIndicators, expected) {
		t.Errorf("Expected %v, got %v", expected, result.RecycledIndicators)
	}
}

func TestFreshnessDetector_InjectedClock(t *testing.T) {
	detector := NewFreshnessDetector(nil)
	text := "Wildfire photos from the 2024 evacuation"

	detector.Now = func() time.Time { return time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC) }
	if got := detector.Detect(text).Freshness; got != model.FreshnessCurrent {
		t.Errorf("Expected %s at end of 2025, got %s", model.FreshnessCurrent, got)
	}

	detector.Now = func() time.Time { return time.Date(2026, time.January, 1, 1, 0, 0, 0, time.UTC) }
	if got := detector.Detect("Wildfire photos of the 2024 evacuation").Freshness; got != model.FreshnessOutdated {
		t.Errorf("Expected %s in 2026, got %s", model.FreshnessOutdated, got)
	}
}

func TestFreshnessDetector_Idempotent(t *testing.T) {
	detector := NewFreshnessDetector(nil)
	text := "Historical archive photo from 2011"

	first := detector.DetectAt(text, freshnessRef)
	second := detector.DetectAt(text, freshnessRef)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestUnknownFreshness(t *testing.T) {
	result := UnknownFreshness()

	if result.Freshness != model.FreshnessUnknown {
		t.Errorf("Expected %s, got %s", model.FreshnessUnknown, result.Freshness)
	}
	if result.Warning != ImageFreshnessWarning {
		t.Errorf("Expected image warning, got %q", result.Warning)
	}
}
