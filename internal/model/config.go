package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all reliefscout configuration
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Intake       IntakeConfig      `yaml:"intake" mapstructure:"intake"`
	Rules        RulesConfig       `yaml:"rules" mapstructure:"rules"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls fetching of URL inputs and donation links
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxTextChars  int           `yaml:"max_text_chars" mapstructure:"max_text_chars"` // Visible page text kept for analysis
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls caching of classifier results
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisURL  string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"` // Replaces the disk layer when set
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	Workers          int `yaml:"workers" mapstructure:"workers"`
	LinkCheckWorkers int `yaml:"link_check_workers" mapstructure:"link_check_workers"`
}

// RateLimitConfig controls per-domain request rates in batch mode
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// IntakeConfig selects the text classifier
type IntakeConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, groq, ollama, or empty for offline
	Model       string  `yaml:"model,omitempty" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// RulesConfig holds the static tables of the scoring engine
type RulesConfig struct {
	Platforms            []PlatformEntry `yaml:"platforms" mapstructure:"platforms"`
	ScamIndicators       []string        `yaml:"scam_indicators" mapstructure:"scam_indicators"`
	CharityDomains       []string        `yaml:"charity_domains" mapstructure:"charity_domains"`
	ShortenerDomains     []string        `yaml:"shortener_domains" mapstructure:"shortener_domains"`
	RecycledPhrases      []string        `yaml:"recycled_phrases" mapstructure:"recycled_phrases"`
	SensationalKeywords  []string        `yaml:"sensational_keywords" mapstructure:"sensational_keywords"`
	Bands                []VerdictBand   `yaml:"bands" mapstructure:"bands"`
	RecordNeutralFactors bool            `yaml:"record_neutral_factors" mapstructure:"record_neutral_factors"`
}

// StoreConfig controls report persistence
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file, empty disables
}

// ServerConfig controls the REST server
type ServerConfig struct {
	Addr         string   `yaml:"addr" mapstructure:"addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	CheckLinks    bool `yaml:"check_links" mapstructure:"check_links"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".reliefscout")

	return &Config{
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     "Mozilla/5.0 (compatible; reliefscout/1.0)",
			MaxBodyBytes:  2_000_000,
			MaxTextChars:  2000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:          4,
			LinkCheckWorkers: 8,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Intake: IntakeConfig{
			Timeout:     30,
			MaxTokens:   1000,
			Temperature: 0.1,
		},
		Rules: DefaultRules(),
		Store: StoreConfig{
			Path: filepath.Join(base, "reports.db"),
		},
		Server: ServerConfig{
			Addr:         ":8000",
			AllowOrigins: []string{"*"},
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultRules returns a fresh copy of the built-in rule tables
func DefaultRules() RulesConfig {
	return RulesConfig{
		Platforms: []PlatformEntry{
			{ID: "usgs", Name: "USGS Official", Patterns: []string{"usgs.gov"}, Tier: TierOfficial, Trust: 0.95},
			{ID: "noaa", Name: "NOAA Weather", Patterns: []string{"noaa.gov", "weather.gov", "nhc.noaa.gov"}, Tier: TierOfficial, Trust: 0.95},
			{ID: "fema", Name: "FEMA", Patterns: []string{"fema.gov"}, Tier: TierOfficial, Trust: 0.95},
			{ID: "cdc", Name: "CDC", Patterns: []string{"cdc.gov"}, Tier: TierOfficial, Trust: 0.95},
			{ID: "reuters", Name: "Reuters", Patterns: []string{"reuters.com"}, Tier: TierMajorNews, Trust: 0.85},
			{ID: "ap_news", Name: "AP News", Patterns: []string{"apnews.com"}, Tier: TierMajorNews, Trust: 0.85},
			{ID: "bbc", Name: "BBC News", Patterns: []string{"bbc.com", "bbc.co.uk"}, Tier: TierMajorNews, Trust: 0.85},
			{ID: "cnn", Name: "CNN", Patterns: []string{"cnn.com"}, Tier: TierMajorNews, Trust: 0.80},
			{ID: "nytimes", Name: "NY Times", Patterns: []string{"nytimes.com"}, Tier: TierMajorNews, Trust: 0.85},
			{ID: "guardian", Name: "The Guardian", Patterns: []string{"theguardian.com"}, Tier: TierMajorNews, Trust: 0.82},
			{ID: "aljazeera", Name: "Al Jazeera", Patterns: []string{"aljazeera.com"}, Tier: TierMajorNews, Trust: 0.80},
			{ID: "twitter", Name: "Twitter/X", Patterns: []string{"twitter.com", "://x.com", ".x.com/", "://t.co/"}, Aliases: []string{"x", "x.com"}, Tier: TierSocial, Trust: 0.40},
			{ID: "reddit", Name: "Reddit", Patterns: []string{"reddit.com", "redd.it"}, Tier: TierSocial, Trust: 0.35},
			{ID: "facebook", Name: "Facebook", Patterns: []string{"facebook.com", "fb.com"}, Aliases: []string{"fb"}, Tier: TierSocial, Trust: 0.35},
			{ID: "instagram", Name: "Instagram", Patterns: []string{"instagram.com"}, Tier: TierSocial, Trust: 0.30},
			{ID: "tiktok", Name: "TikTok", Patterns: []string{"tiktok.com"}, Tier: TierSocial, Trust: 0.25},
			{ID: "youtube", Name: "YouTube", Patterns: []string{"youtube.com", "youtu.be"}, Tier: TierSocial, Trust: 0.40},
		},
		ScamIndicators: []string{
			"send crypto", "bitcoin only", "wire transfer", "western union",
			"cash app only", "venmo only", "zelle only", "paypal friends",
			"urgent donate now", "100% goes to victims", "tax deductible guaranteed",
			"dm for donation link", "click link in bio", "limited time",
			"match your donation", "celebrity endorsed", "government approved",
		},
		CharityDomains: []string{
			"redcross.org", "unicef.org", "savethechildren.org", "directrelief.org",
			"americares.org", "doctorswithoutborders.org", "globalgiving.org",
			"gofundme.com/f/", "habitat.org", "feedingamerica.org", "care.org",
		},
		ShortenerDomains: []string{"bit.ly", "tinyurl.com", "t.co", "goo.gl"},
		RecycledPhrases: []string{
			"years ago", "last year", "throwback", "remember when",
			"old footage", "archive", "historical", "from 20",
		},
		SensationalKeywords: []string{
			"BREAKING", "EXCLUSIVE", "SHOCKING", "VIRAL", "YOU WON'T BELIEVE", "SHARE NOW",
		},
		Bands: []VerdictBand{
			{Min: 0.80, Status: StatusVerified, StatusText: "HIGHLY CREDIBLE",
				Recommendation: "This report appears credible and can be acted upon with confidence."},
			{Min: 0.60, Status: StatusLikelyCredible, StatusText: "LIKELY CREDIBLE",
				Recommendation: "This report is probably legitimate but verify key details before major resource allocation."},
			{Min: 0.40, Status: StatusNeedsVerification, StatusText: "NEEDS VERIFICATION",
				Recommendation: "Cross-reference with official sources before taking action."},
			{Min: 0.25, Status: StatusSuspicious, StatusText: "SUSPICIOUS",
				Recommendation: "Multiple red flags detected. Verify thoroughly before sharing or acting."},
			{Min: 0, Status: StatusLikelyFake, StatusText: "LIKELY FAKE/SCAM",
				Recommendation: "DO NOT SHARE. High likelihood of misinformation or scam."},
		},
		RecordNeutralFactors: true,
	}
}
