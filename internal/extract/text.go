package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// stripPolicy removes all markup; safe for concurrent use
var stripPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from user-submitted text, decodes entities and
// collapses whitespace
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(stripPolicy.Sanitize(s))), " ")
}

// PageContent is the readable part of a fetched web page
type PageContent struct {
	Title       string
	Description string
	Text        string
}

// Combined joins title, description and body text the way they are fed to
// the classifier
func (p PageContent) Combined() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Description, p.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ExtractPage pulls the title, description and visible text out of an HTML
// document. Body text is cut to maxChars runes (0 means no limit).
func ExtractPage(htmlContent string, maxChars int) (PageContent, error) {
	root, err := xhtml.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return PageContent{}, fmt.Errorf("parse HTML: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)

	page := PageContent{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok && strings.TrimSpace(desc) != "" {
		page.Description = strings.TrimSpace(desc)
	} else if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}

	body := root
	if sel := doc.Find("body"); sel.Length() > 0 {
		body = sel.Get(0)
	}
	text := strings.Join(strings.Fields(extractVisibleText(body)), " ")
	if maxChars > 0 {
		text = truncate(text, maxChars)
	}
	page.Text = text

	return page, nil
}

// extractVisibleText extracts text nodes from HTML, skipping non-content elements
func extractVisibleText(n *xhtml.Node) string {
	var buf strings.Builder

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer":
				return
			}
		}

		if n.Type == xhtml.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
