package research

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"researchagent/internal/models"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// BuildPresentation composes the markdown presentation for a topic from the
// structured research data.
func BuildPresentation(topic string, data *models.ResearchData, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Presentation: %s\n\n", topic)
	fmt.Fprintf(&b, "*Generated on %s*\n\n", now.Format("January 2, 2006"))

	section(&b, "Key Points", data.KeyPoints)
	section(&b, "Recent Developments", data.RecentDevelopments)
	section(&b, "Challenges", data.Challenges)
	section(&b, "Future Outlook", data.FutureOutlook)

	if len(data.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, s := range data.Sources {
			title := s.Title
			if title == "" {
				title = s.Href
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, s.Href)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func section(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// RenderHTML converts the markdown presentation to the HTML fragment served
// to clients.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
