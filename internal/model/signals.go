package model

// DonationTrust is the verdict on donation requests found in a report
type DonationTrust string

const (
	DonationVerified   DonationTrust = "verified"
	DonationScamLikely DonationTrust = "scam_likely"
	DonationUnverified DonationTrust = "unverified"
	DonationNoneFound  DonationTrust = "none_found"
)

// DonationURL is a link found in report text
type DonationURL struct {
	URL                   string `json:"url"`
	IsLegitimateCharity   bool   `json:"is_legitimate_charity"`
	IsShortenedSuspicious bool   `json:"is_shortened_suspicious"`
}

// DonationAnalysis is the output of the donation/scam extractor
type DonationAnalysis struct {
	DonationTrust            DonationTrust `json:"donation_trust"`
	DonationScore            *float64      `json:"donation_score"`
	ScamIndicatorsFound      []string      `json:"scam_indicators_found"`
	LegitimateCharitiesFound []string      `json:"legitimate_charities_found"`
	DonationURLs             []DonationURL `json:"donation_urls"`
}

// Freshness is the verdict on whether content is current
type Freshness string

const (
	FreshnessCurrent  Freshness = "appears_current"
	FreshnessOutdated Freshness = "potentially_outdated"
	FreshnessUnknown  Freshness = "unknown"
)

// FreshnessAnalysis is the output of the freshness detector
type FreshnessAnalysis struct {
	Freshness          Freshness `json:"freshness"`
	OldYearsMentioned  []string  `json:"old_years_mentioned"`
	RecycledIndicators []string  `json:"recycled_indicators"`
	Warning            string    `json:"warning,omitempty"`
}

// PeopleCategory buckets a people count by what happened to them
type PeopleCategory string

const (
	PeopleAffected  PeopleCategory = "affected"
	PeopleDisplaced PeopleCategory = "displaced"
	PeopleDead      PeopleCategory = "dead"
	PeopleInjured   PeopleCategory = "injured"
	PeopleEvacuated PeopleCategory = "evacuated"
	PeopleMissing   PeopleCategory = "missing"
)

// PeopleEstimates maps categories to counts. Only detected categories are present.
type PeopleEstimates map[PeopleCategory]int64
