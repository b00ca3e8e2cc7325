package client

import (
	"fmt"
	"html"
	"strings"
)

// BuildResultHTML renders the results fragment for a completed job: the
// heading with the escaped topic, the server-supplied HTML verbatim, and the
// download link. The fragment is produced by our own server from markdown, so
// it is rendered without further sanitization.
func BuildResultHTML(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Research Complete: %s</h2>\n", html.EscapeString(res.Topic))
	b.WriteString("<div class=\"research-content\">\n")
	b.WriteString(res.HTMLContent)
	b.WriteString("\n</div>\n")
	fmt.Fprintf(&b, "<p><a href=%q download>Download Presentation</a></p>\n", res.DownloadURL)
	return b.String()
}

// BuildResultPage wraps the results fragment in a standalone HTML document.
func BuildResultPage(res *Result) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Research: %s</title>\n", html.EscapeString(res.Topic))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(BuildResultHTML(res))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
