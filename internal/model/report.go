package model

import "time"

// InputType records how a report entered the system
type InputType string

const (
	InputText        InputType = "text"
	InputURL         InputType = "url"
	InputImageURL    InputType = "image_url"
	InputImageUpload InputType = "image_upload"
)

// Report is the complete analysis of one submitted report
type Report struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	SubmittedAt time.Time `json:"submitted_at"`

	Record   *ClassificationRecord `json:"record"`
	Source   SourceAnalysis        `json:"source_analysis"`
	Verdict  CredibilityVerdict    `json:"credibility"`
	Donation DonationAnalysis      `json:"donation_analysis"`
	Fresh    FreshnessAnalysis     `json:"freshness_analysis"`
	People   PeopleEstimates       `json:"people_estimates"`

	FetchMeta  *FetchMeta  `json:"fetch_meta,omitempty"`  // Set for URL inputs
	LinkChecks []LinkCheck `json:"link_checks,omitempty"` // Liveness of donation links, never affects score

	Workflow AgentWorkflow `json:"agent_workflow"`
}

// SourceAnalysis describes where the report came from
type SourceAnalysis struct {
	Platform     string    `json:"platform"`
	PlatformName string    `json:"platform_name"`
	TrustTier    int       `json:"trust_tier"`
	IsOfficial   bool      `json:"is_official_source"`
	InputType    InputType `json:"input_type"`
}

// NewSourceAnalysis builds a SourceAnalysis from a resolved platform
func NewSourceAnalysis(p PlatformInfo, input InputType) SourceAnalysis {
	return SourceAnalysis{
		Platform:     p.Platform,
		PlatformName: p.PlatformName,
		TrustTier:    p.Tier,
		IsOfficial:   p.IsOfficial,
		InputType:    input,
	}
}

// AgentWorkflow lists the processing steps that ran
type AgentWorkflow struct {
	StepsCompleted      []string  `json:"steps_completed"`
	ClassifierUsed      string    `json:"classifier_used"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
}

// FetchMeta contains HTTP metadata from fetching a URL input
type FetchMeta struct {
	FinalURL     string `json:"final_url"`
	StatusCode   int    `json:"status_code"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Title        string `json:"title,omitempty"`
}

// LinkCheck is the reachability of one donation link
type LinkCheck struct {
	URL          string `json:"url"`
	IsAccessible bool   `json:"is_accessible"`
	IsDead       bool   `json:"is_dead"`
	StatusCode   int    `json:"status_code,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	Error        string `json:"error,omitempty"`
}
