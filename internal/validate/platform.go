package validate

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// PlatformClassifier maps a URL or declared source label to a trust tier.
// Entries are visited in ascending priority; the first substring hit wins.
type PlatformClassifier struct {
	rules []platformRule
}

type platformRule struct {
	entry    model.PlatformEntry
	patterns []string
	aliases  []string
}

// NewPlatformClassifier builds a classifier from a platform table. A nil
// table selects the built-in one. Entries without an explicit priority are
// ordered by their table position.
func NewPlatformClassifier(entries []model.PlatformEntry) (*PlatformClassifier, error) {
	if entries == nil {
		entries = model.DefaultRules().Platforms
	}

	rules := make([]platformRule, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("platform entry %d: missing id", i)
		}
		if e.Tier < model.TierOfficial || e.Tier > model.TierUnknown {
			return nil, fmt.Errorf("platform %q: tier %d out of range 1-4", e.ID, e.Tier)
		}
		if e.Trust < 0 || e.Trust > 1 {
			return nil, fmt.Errorf("platform %q: trust %.2f out of range 0-1", e.ID, e.Trust)
		}

		entry := e
		entry.Patterns = append([]string(nil), e.Patterns...)
		entry.Aliases = append([]string(nil), e.Aliases...)
		if entry.Priority == 0 {
			entry.Priority = (i + 1) * 10
		}
		if entry.Name == "" {
			entry.Name = entry.ID
		}

		rule := platformRule{entry: entry}
		for _, p := range e.Patterns {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				rule.patterns = append(rule.patterns, p)
			}
		}
		for _, a := range append([]string{e.ID}, e.Aliases...) {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				rule.aliases = append(rule.aliases, a)
			}
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].entry.Priority < rules[j].entry.Priority
	})

	return &PlatformClassifier{rules: rules}, nil
}

// Lookup finds the table entry for input. Patterns are tried first across
// all entries, then exact id/alias matches. A pattern matches as a substring
// of the input or, for URLs, as the host or a parent domain of it.
func (c *PlatformClassifier) Lookup(input string) (model.PlatformEntry, bool) {
	lower := strings.ToLower(input)
	host := urlHost(lower)
	for _, r := range c.rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) || hostMatches(host, p) {
				return r.entry, true
			}
		}
	}

	label := strings.TrimSpace(lower)
	if label == "" {
		return model.PlatformEntry{}, false
	}
	for _, r := range c.rules {
		for _, a := range r.aliases {
			if label == a {
				return r.entry, true
			}
		}
	}
	return model.PlatformEntry{}, false
}

// Classify resolves input, returning fallback when nothing matches
func (c *PlatformClassifier) Classify(input string, fallback model.PlatformEntry) model.PlatformInfo {
	if entry, ok := c.Lookup(input); ok {
		return entry.Info()
	}
	return fallback.Info()
}

// Resolve classifies a platform hint the way the scoring engine does: an
// empty hint is a user report, a URL falls back to a generic web source, and
// any other label falls back to a user report.
func (c *PlatformClassifier) Resolve(hint string) model.PlatformInfo {
	switch {
	case strings.TrimSpace(hint) == "":
		return model.FallbackUserReport.Info()
	case IsURL(hint):
		return c.Classify(hint, model.FallbackWeb)
	default:
		return c.Classify(hint, model.FallbackUserReport)
	}
}

// Entries returns the table in lookup order
func (c *PlatformClassifier) Entries() []model.PlatformEntry {
	out := make([]model.PlatformEntry, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.entry
		out[i].Patterns = append([]string(nil), r.entry.Patterns...)
		out[i].Aliases = append([]string(nil), r.entry.Aliases...)
	}
	return out
}

// urlHost returns the host of an http(s) URL without a leading "www.", or ""
func urlHost(s string) string {
	if !IsURL(s) {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// hostMatches reports whether a domain pattern such as "://t.co/" names host
// or one of its parent domains. Patterns with a path never match here.
func hostMatches(host, pattern string) bool {
	if host == "" {
		return false
	}
	domain := strings.Trim(pattern, ":/.")
	if domain == "" || strings.ContainsAny(domain, "/:?#") {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsURL reports whether s looks like an http(s) URL
func IsURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
