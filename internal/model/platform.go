package model

// Trust tiers, 1 being the most trusted
const (
	TierOfficial  = 1 // Government and scientific agencies
	TierMajorNews = 2 // Major news agencies
	TierSocial    = 3 // Social media and user reports
	TierUnknown   = 4 // Anything unrecognized
)

// TierName returns the human-readable label for a tier
func TierName(tier int) string {
	switch tier {
	case TierOfficial:
		return "Official Government"
	case TierMajorNews:
		return "Major News Agency"
	case TierSocial:
		return "Social Media"
	default:
		return "Unknown"
	}
}

// PlatformInfo is the provenance of a report as resolved by the platform
// classifier
type PlatformInfo struct {
	Platform     string  `json:"platform"`
	PlatformName string  `json:"platform_name"`
	Tier         int     `json:"tier"`
	BaseTrust    float64 `json:"base_trust"`
	IsOfficial   bool    `json:"is_official"`
}

// PlatformEntry is one row of the platform table
type PlatformEntry struct {
	ID       string   `json:"id" yaml:"id" mapstructure:"id"`
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	Patterns []string `json:"patterns" yaml:"patterns" mapstructure:"patterns"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
	Tier     int      `json:"tier" yaml:"tier" mapstructure:"tier"`
	Trust    float64  `json:"trust" yaml:"trust" mapstructure:"trust"`
	// Priority orders lookup, lower first. Zero means "use table position".
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty" mapstructure:"priority"`
}

// Info converts the entry into a PlatformInfo
func (e PlatformEntry) Info() PlatformInfo {
	return PlatformInfo{
		Platform:     e.ID,
		PlatformName: e.Name,
		Tier:         e.Tier,
		BaseTrust:    e.Trust,
		IsOfficial:   e.Tier <= TierMajorNews,
	}
}

// Call-site fallbacks used when no table entry matches
var (
	FallbackWeb         = PlatformEntry{ID: "web", Name: "Web Source", Tier: TierUnknown, Trust: 0.30}
	FallbackUserReport  = PlatformEntry{ID: "user_report", Name: "User Report", Tier: TierSocial, Trust: 0.40}
	FallbackImageURL    = PlatformEntry{ID: "image", Name: "Image Analysis", Tier: TierUnknown, Trust: 0.25}
	FallbackImageUpload = PlatformEntry{ID: "image_upload", Name: "Direct Upload", Tier: TierSocial, Trust: 0.35}
)
