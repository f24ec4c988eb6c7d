package jobs

import (
	"strings"
	"time"
)

// Sponsorship is the visa sponsorship stance inferred from a posting.
type Sponsorship string

const (
	SponsorshipUnknown Sponsorship = "UNKNOWN"
	SponsorshipYes     Sponsorship = "YES"
	SponsorshipNo      Sponsorship = "NO"
)

// Posting is a normalised job posting fetched from one source.
// Empty Location/Description and zero PostedAt mean "unknown".
type Posting struct {
	Source      string      `json:"source"`
	ExternalID  string      `json:"external_id"`
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Location    string      `json:"location,omitempty"`
	Department  string      `json:"department,omitempty"`
	Remote      bool        `json:"remote,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url"`
	PostedAt    time.Time   `json:"posted_at,omitzero"`
	Sponsorship Sponsorship `json:"sponsorship"`
}

// Key returns the identity of the posting: source plus external id.
// It is empty when the source did not provide an id.
func (p Posting) Key() string {
	if p.ExternalID == "" {
		return ""
	}
	return p.Source + ":" + p.ExternalID
}

// TitleCompanyKey returns the normalised (title, company) pair used to spot
// the same opening published through different boards.
func (p Posting) TitleCompanyKey() string {
	return Normalize(p.Title) + "|" + Normalize(p.Company)
}

// Text returns the searchable text of the posting.
func (p Posting) Text() string {
	return p.Title + "\n" + p.Description
}

// Scored wraps a posting with its relevance score and the keywords it matched.
type Scored struct {
	Posting Posting  `json:"posting"`
	Score   int      `json:"score"`
	Matched []string `json:"matched,omitempty"`
}

// Normalize lower-cases s and collapses every run of whitespace into one space.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
