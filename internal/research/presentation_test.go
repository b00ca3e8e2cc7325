package research

import (
	"strings"
	"testing"
	"time"

	"researchagent/internal/models"
)

func TestBuildPresentation(t *testing.T) {
	data := &models.ResearchData{
		KeyPoints:          []string{"point one", "point two"},
		RecentDevelopments: []string{"development"},
		Challenges:         []string{"challenge"},
		FutureOutlook:      []string{"outlook"},
		Sources: []models.Source{
			{Title: "Example", Href: "https://example.com"},
			{Href: "https://no-title.example.com"},
		},
	}
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	md := BuildPresentation("quantum computing", data, now)

	for _, want := range []string{
		"# Research Presentation: quantum computing",
		"*Generated on August 24, 2026*",
		"## Key Points",
		"- point one",
		"## Recent Developments",
		"## Challenges",
		"## Future Outlook",
		"## Sources",
		"- [Example](https://example.com)",
		"- [https://no-title.example.com](https://no-title.example.com)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("presentation missing %q", want)
		}
	}
}

func TestBuildPresentationOmitsEmptySections(t *testing.T) {
	md := BuildPresentation("t", &models.ResearchData{KeyPoints: []string{"only"}}, time.Now())
	if strings.Contains(md, "## Challenges") {
		t.Error("empty section rendered")
	}
	if strings.Contains(md, "## Sources") {
		t.Error("empty sources rendered")
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Heading\n\n- item\n")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "<h1>Heading</h1>") {
		t.Errorf("html = %q", html)
	}
	if !strings.Contains(html, "<li>item</li>") {
		t.Errorf("html = %q", html)
	}
}
