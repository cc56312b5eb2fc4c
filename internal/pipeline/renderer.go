package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const reportFooter = "Generated by reliefscout. Scores are heuristic signals for triage, not proof of truth or falsehood."

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	v := report.Verdict

	fmt.Fprintf(&b, "# Report %s\n\n", report.ID)
	fmt.Fprintf(&b, "**Verdict:** %s (%d%%)\n\n", v.StatusText, v.Percentage)
	fmt.Fprintf(&b, "> %s\n\n", v.Recommendation)

	b.WriteString("## Source\n\n")
	fmt.Fprintf(&b, "- Platform: %s (`%s`)\n", report.Source.PlatformName, report.Source.Platform)
	fmt.Fprintf(&b, "- Trust tier: %d, %s\n", report.Source.TrustTier, model.TierName(report.Source.TrustTier))
	fmt.Fprintf(&b, "- Input type: %s\n", report.Source.InputType)
	if report.FetchMeta != nil {
		fmt.Fprintf(&b, "- Fetched: %s (HTTP %d)\n", report.FetchMeta.FinalURL, report.FetchMeta.StatusCode)
		if report.FetchMeta.Title != "" {
			fmt.Fprintf(&b, "- Title: %s\n", report.FetchMeta.Title)
		}
	}
	b.WriteString("\n")

	if rec := report.Record; rec != nil {
		b.WriteString("## Classification\n\n")
		fmt.Fprintf(&b, "- Disaster: %s\n", orDash(string(rec.DisasterType)))
		fmt.Fprintf(&b, "- Need: %s\n", orDash(string(rec.NeedType)))
		fmt.Fprintf(&b, "- Urgency: %s\n", orDash(string(rec.Urgency)))
		if rec.Location != nil {
			fmt.Fprintf(&b, "- Location: %s\n", orDash(locationLabel(rec.Location)))
		}
		if rec.PeopleAffected != nil {
			fmt.Fprintf(&b, "- People affected: %d\n", *rec.PeopleAffected)
		}
		if len(rec.Flags) > 0 {
			fmt.Fprintf(&b, "- Flags: %s\n", strings.Join(rec.Flags, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Score Breakdown\n\n")
	b.WriteString("| Category | Factor | Impact |\n|---|---|---|\n")
	for _, f := range v.Factors {
		mark := "-"
		if f.Positive {
			mark = "+"
		}
		fmt.Fprintf(&b, "| %s | %s %s | %s |\n", f.Category, mark, escapeCell(f.Factor), f.Impact)
	}
	b.WriteString("\n")

	b.WriteString("## Signals\n\n")
	fmt.Fprintf(&b, "- Donations: %s\n", report.Donation.DonationTrust)
	for _, s := range report.Donation.ScamIndicatorsFound {
		fmt.Fprintf(&b, "  - scam indicator: %q\n", s)
	}
	for _, u := range report.Donation.DonationURLs {
		fmt.Fprintf(&b, "  - %s\n", u.URL)
	}
	fmt.Fprintf(&b, "- Freshness: %s\n", report.Fresh.Freshness)
	if report.Fresh.Warning != "" {
		fmt.Fprintf(&b, "  - %s\n", report.Fresh.Warning)
	}
	if len(report.People) > 0 {
		b.WriteString("- People estimates:\n")
		for _, k := range sortedCategories(report.People) {
			fmt.Fprintf(&b, "  - %s: %d\n", k, report.People[k])
		}
	}
	b.WriteString("\n")

	if len(report.LinkChecks) > 0 {
		b.WriteString("## Donation Links\n\n")
		for _, lc := range report.LinkChecks {
			state := "unreachable"
			switch {
			case lc.IsAccessible:
				state = "reachable"
			case lc.IsDead:
				state = "dead"
			}
			fmt.Fprintf(&b, "- %s: %s", lc.URL, state)
			if lc.StatusCode != 0 {
				fmt.Fprintf(&b, " (HTTP %d)", lc.StatusCode)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Workflow\n\n")
	fmt.Fprintf(&b, "Classifier: %s\n\n", report.Workflow.ClassifierUsed)
	for i, s := range report.Workflow.StepsCompleted {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_%s_\n", reportFooter)
	}
	return b.String()
}

// RenderSummary prints a short verdict summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	v := report.Verdict
	_, _ = fmt.Fprintf(w, "\n%s  %d%%  %s\n", statusIcon(v.Status), v.Percentage, v.StatusText)
	_, _ = fmt.Fprintf(w, "Source: %s (tier %d)\n", report.Source.PlatformName, report.Source.TrustTier)
	for _, f := range v.Factors {
		mark := "-"
		if f.Positive {
			mark = "+"
		}
		_, _ = fmt.Fprintf(w, "  %s %-12s %-48s %s\n", mark, f.Category, f.Factor, f.Impact)
	}
	_, _ = fmt.Fprintf(w, "%s\n", v.Recommendation)
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusVerified, model.StatusLikelyCredible:
		return "✓"
	case model.StatusNeedsVerification:
		return "?"
	default:
		return "✗"
	}
}

func locationLabel(l *model.Location) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{l.City, l.Region, l.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return l.RawText
	}
	return strings.Join(parts, ", ")
}

func sortedCategories(p model.PeopleEstimates) []model.PeopleCategory {
	keys := make([]model.PeopleCategory, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
