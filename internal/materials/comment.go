package materials

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-digest/internal/ai"
	"github.com/spigell/job-digest/internal/digest"
	"github.com/spigell/job-digest/internal/github"
)

// Marker tags the materials comment so a second run can detect it.
const Marker = "<!-- JOB_DIGEST_ARTIFACTS_v1 -->"

// Entry is the generated material for one digest row.
type Entry struct {
	Row                 digest.Row
	DescriptionCaptured bool
	Draft               *ai.Draft
}

// HasMarker reports whether any comment already carries Marker.
func HasMarker(comments []github.Comment) bool {
	for _, c := range comments {
		if strings.Contains(c.Body, Marker) {
			return true
		}
	}
	return false
}

// BuildComment renders the materials of every entry as one markdown comment.
func BuildComment(now time.Time, entries []Entry) string {
	parts := []string{
		Marker,
		"## Application materials (auto-generated)",
		fmt.Sprintf("Generated: **%s**\n", now.UTC().Format("2006-01-02 15:04 UTC")),
		"This comment contains **paste-ready** resume bullets and a short cover letter draft per job.\n",
	}

	for _, e := range entries {
		heading := fmt.Sprintf("%s | %s", e.Row.Company, e.Row.Title)

		parts = append(parts, "---")
		parts = append(parts, fmt.Sprintf("### %s: %s", e.Row.Company, e.Row.Title))
		if e.Row.URL != "" {
			parts = append(parts, "- Apply link: "+e.Row.URL)
		} else {
			parts = append(parts, "- Apply link: (missing)")
		}
		if e.DescriptionCaptured {
			parts = append(parts, "- JD captured: Yes (excerpted)")
		} else {
			parts = append(parts, "- JD captured: No (used robust defaults)")
		}
		if e.Draft == nil {
			parts = append(parts, "- Draft: not generated", "")
			continue
		}
		parts = append(parts, "- Drafted by: "+e.Draft.Provider, "")

		bullets := make([]string, 0, len(e.Draft.Bullets))
		for _, b := range e.Draft.Bullets {
			bullets = append(bullets, "- "+b)
		}
		parts = append(parts,
			fmt.Sprintf("**Resume bullets (paste-ready): %s**", heading),
			strings.Join(bullets, "\n"),
			"",
			fmt.Sprintf("**Cover letter draft: %s**", heading),
			e.Draft.CoverLetter,
			"",
		)
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// NoTableComment is posted when the issue body has no digest table.
func NoTableComment() string {
	return Marker + "\n" +
		"## Application materials\n" +
		"I could not find a jobs table in the issue body. " +
		"Ensure the digest includes a markdown table with columns including **Title**, **Company**, and an **Apply** link.\n"
}
