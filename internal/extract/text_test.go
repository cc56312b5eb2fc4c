package extract

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		desc     string
	}{
		{"Flood at <b>Main St</b>", "Flood at Main St", "Strips tags"},
		{"Need water <script>alert(1)</script>now", "Need water now", "Drops script content"},
		{"Food &amp; shelter needed", "Food & shelter needed", "Decodes entities"},
		{"  many\n\n   spaces\there ", "many spaces here", "Collapses whitespace"},
		{"Rescue needed & fast", "Rescue needed & fast", "Plain ampersand survives"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractPage(t *testing.T) {
	html := `<html>
<head>
  <title> Flood Update </title>
  <meta name="description" content="plain description">
  <meta property="og:description" content="Rivers crest tonight">
</head>
<body>
  <nav>Home | News</nav>
  <header>Site header</header>
  <p>Evacuations ordered for   low-lying areas.</p>
  <script>var x = 1;</script>
  <style>.a{}</style>
  <p>Shelters open at the high school.</p>
  <footer>Copyright</footer>
</body>
</html>`

	page, err := ExtractPage(html, 0)
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}

	if page.Title != "Flood Update" {
		t.Errorf("Expected title 'Flood Update', got %q", page.Title)
	}
	if page.Description != "Rivers crest tonight" {
		t.Errorf("Expected og:description to win, got %q", page.Description)
	}
	expectedText := "Evacuations ordered for low-lying areas. Shelters open at the high school."
	if page.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, page.Text)
	}

	combined := page.Combined()
	if !strings.HasPrefix(combined, "Flood Update\n\nRivers crest tonight\n\n") {
		t.Errorf("Unexpected combined text: %q", combined)
	}
}

func TestExtractPage_MetaDescriptionFallback(t *testing.T) {
	html := `<html><head><meta name="description" content="Wildfire spreading"></head><body>Body</body></html>`

	page, err := ExtractPage(html, 0)
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if page.Description != "Wildfire spreading" {
		t.Errorf("Expected meta description, got %q", page.Description)
	}
	if page.Title != "" {
		t.Errorf("Expected empty title, got %q", page.Title)
	}
	if page.Combined() != "Wildfire spreading\n\nBody" {
		t.Errorf("Expected empty parts to be skipped, got %q", page.Combined())
	}
}

func TestExtractPage_Truncates(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("word ", 1000) + "</p></body></html>"

	page, err := ExtractPage(html, 2000)
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if len(page.Text) != 2000 {
		t.Errorf("Expected 2000 chars, got %d", len(page.Text))
	}
}
