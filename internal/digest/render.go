// Package digest renders the ranked postings as a markdown issue body,
// reads that table back, and publishes the digest to the issue tracker.
package digest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/job-digest/internal/jobs"
)

const (
	tableHeader    = "| Score | Sponsorship | Title | Company | Source | Location | Link |"
	tableDelimiter = "|---:|:---:|---|---|---|---|---|"
	emptyMessage   = "_No matching postings today._"
)

// Summary describes the filters of a run; it is printed above the table.
type Summary struct {
	MinScore   int
	MaxResults int
	Locations  []string
	Found      int
	Eligible   int
}

// Row is one line of the digest table.
type Row struct {
	Score       int
	Sponsorship jobs.Sponsorship
	Title       string
	Company     string
	Source      string
	Location    string
	URL         string
}

// Title returns the issue title for a run date.
func Title(date time.Time) string {
	return "Job digest " + date.Format(time.DateOnly)
}

// Render builds the markdown body of the digest issue.
func Render(date time.Time, items []jobs.Scored, s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Title(date))
	fmt.Fprintf(&b, "Generated: **%s**\n\n", date.UTC().Format("2006-01-02 15:04 UTC"))

	locations := "any"
	if len(s.Locations) > 0 {
		locations = strings.Join(s.Locations, ", ")
	}
	fmt.Fprintf(&b, "Filters: score ≥ **%d**, max **%d**, locations: **%s**, sponsorship: **reject if explicit NO; silent = review**\n\n",
		s.MinScore, s.MaxResults, locations)
	fmt.Fprintf(&b, "Postings fetched: **%d**, eligible: **%d**, listed: **%d**\n\n", s.Found, s.Eligible, len(items))
	b.WriteString("---\n\n")

	if len(items) == 0 {
		b.WriteString(emptyMessage + "\n")
	} else {
		b.WriteString(tableHeader + "\n")
		b.WriteString(tableDelimiter + "\n")
		for _, it := range items {
			p := it.Posting
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | [Apply](%s) |\n",
				it.Score,
				sponsorshipLabel(p.Sponsorship),
				cell(p.Title),
				cell(p.Company),
				cell(p.Source),
				cell(p.Location),
				link(p.URL),
			)
		}
	}

	b.WriteString("\n---\n\n")
	b.WriteString("### Notes\n\n")
	b.WriteString("- **Sponsorship** is inferred from posting text. Postings that say **no sponsorship / US citizen only / clearance required** are rejected.\n")
	b.WriteString("- If sponsorship is **silent**, it is marked **UNKNOWN** and kept for review.\n")

	return b.String()
}

// ParseTable reads the digest rows back from a rendered body. Lines that do
// not look like table rows are ignored.
func ParseTable(body string) []Row {
	var rows []Row
	inTable := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == tableHeader:
			inTable = true
			continue
		case !inTable:
			continue
		case !strings.HasPrefix(line, "|"):
			inTable = false
			continue
		case strings.HasPrefix(line, "|---"):
			continue
		}

		cells := splitRow(line)
		if len(cells) != 7 {
			continue
		}
		score, err := strconv.Atoi(cells[0])
		if err != nil {
			continue
		}
		url := linkTarget(cells[6])
		if url == "" {
			continue
		}

		rows = append(rows, Row{
			Score:       score,
			Sponsorship: jobs.Sponsorship(cells[1]),
			Title:       cells[2],
			Company:     cells[3],
			Source:      cells[4],
			Location:    cells[5],
			URL:         url,
		})
	}

	return rows
}

func sponsorshipLabel(s jobs.Sponsorship) string {
	if s == "" {
		return string(jobs.SponsorshipUnknown)
	}
	return string(s)
}

// cell keeps a value on one line and out of the column separators.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Join(strings.Fields(s), " ")
}

// link percent-encodes pipes so the URL stays inside its cell.
func link(url string) string {
	return strings.ReplaceAll(strings.TrimSpace(url), "|", "%7C")
}

func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// linkTarget extracts url from "[text](url)".
func linkTarget(s string) string {
	start := strings.Index(s, "](")
	if start < 0 || !strings.HasSuffix(s, ")") {
		return ""
	}
	return strings.TrimSpace(s[start+2 : len(s)-1])
}
