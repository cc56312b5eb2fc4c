package model

// Status is the discrete credibility verdict
type Status string

const (
	StatusVerified          Status = "verified"
	StatusLikelyCredible    Status = "likely_credible"
	StatusNeedsVerification Status = "needs_verification"
	StatusSuspicious        Status = "suspicious"
	StatusLikelyFake        Status = "likely_fake"
)

// Factor is one line item of the score breakdown
type Factor struct {
	Category string `json:"category"`
	Factor   string `json:"factor"`
	Impact   string `json:"impact"`
	Positive bool   `json:"positive"`
}

// CredibilityVerdict is the final trust judgment on a report. Factors are in
// evaluation order.
type CredibilityVerdict struct {
	Score          float64  `json:"score"`
	Percentage     int      `json:"percentage"`
	Status         Status   `json:"status"`
	StatusText     string   `json:"status_text"`
	Recommendation string   `json:"recommendation"`
	Factors        []Factor `json:"factors"`
}

// MediaKind marks reports whose content came from an image
type MediaKind string

const (
	MediaNone        MediaKind = ""
	MediaImageURL    MediaKind = "image_url"
	MediaImageUpload MediaKind = "image_upload"
)

// VerdictBand maps scores at or above Min to a status
type VerdictBand struct {
	Min            float64 `json:"min" yaml:"min" mapstructure:"min"`
	Status         Status  `json:"status" yaml:"status" mapstructure:"status"`
	StatusText     string  `json:"status_text" yaml:"status_text" mapstructure:"status_text"`
	Recommendation string  `json:"recommendation" yaml:"recommendation" mapstructure:"recommendation"`
}
