package sources

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockElements = "p, div, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section, article, blockquote, pre"

var remoteMarkers = []string{"remote", "anywhere", "work from home", "wfh"}

// HTMLToText converts an HTML fragment into plain text. Block elements end
// with a newline; scripts and styles are dropped.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	// Greenhouse returns its content field entity-escaped.
	if !strings.Contains(fragment, "<") && strings.Contains(fragment, "&lt;") {
		fragment = html.UnescapeString(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return CleanText(doc.Text())
}

// CleanText collapses horizontal whitespace on each line and drops blank lines.
func CleanText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// IsRemote reports whether a location or workplace label describes remote work.
func IsRemote(labels ...string) bool {
	for _, l := range labels {
		l = strings.ToLower(l)
		for _, m := range remoteMarkers {
			if strings.Contains(l, m) {
				return true
			}
		}
	}
	return false
}

// joinNonEmpty joins the trimmed non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
