package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-digest/internal/jobs"
)

const LeverBaseURL = "https://api.lever.co"

type Lever struct {
	BaseURL string
}

type leverPosting struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	HostedURL        string `json:"hostedUrl"`
	CreatedAt        int64  `json:"createdAt"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"`
	WorkplaceType    string `json:"workplaceType"`
	Categories       struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Department string `json:"department"`
	} `json:"categories"`
}

func (l *Lever) Kind() string { return KindLever }

func (l *Lever) Endpoint(src Source) string {
	return fmt.Sprintf("%s/v0/postings/%s?mode=json", strings.TrimRight(l.BaseURL, "/"), src.Slug)
}

func (l *Lever) Listings(payload any) ([]RawListing, error) {
	return listItems(payload)
}

func (l *Lever) Normalize(src Source, raw RawListing) (jobs.Posting, error) {
	var rec leverPosting
	if err := decodeRecord(raw, &rec); err != nil {
		return jobs.Posting{}, malformed(src, "", "%v", err)
	}
	if err := requireFields(src, rec.ID, rec.Text, rec.HostedURL); err != nil {
		return jobs.Posting{}, err
	}

	description := CleanText(rec.DescriptionPlain)
	if description == "" {
		description = HTMLToText(rec.Description)
	}

	var posted time.Time
	if rec.CreatedAt > 0 {
		posted = time.UnixMilli(rec.CreatedAt).UTC()
	}

	department := rec.Categories.Team
	if department == "" {
		department = rec.Categories.Department
	}

	location := strings.TrimSpace(rec.Categories.Location)

	return jobs.Posting{
		Source:      src.ID(),
		ExternalID:  rec.ID,
		Title:       strings.TrimSpace(rec.Text),
		Company:     src.Company(),
		Location:    location,
		Department:  department,
		Remote:      strings.EqualFold(rec.WorkplaceType, "remote") || IsRemote(location),
		Description: description,
		URL:         rec.HostedURL,
		PostedAt:    posted,
		Sponsorship: jobs.DetectSponsorship(rec.Text + "\n" + description),
	}, nil
}
