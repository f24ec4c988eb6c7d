package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-digest/internal/jobs"
)

const SmartRecruitersBaseURL = "https://api.smartrecruiters.com"

// SmartRecruiters lists postings without descriptions; Description stays empty.
type SmartRecruiters struct {
	BaseURL string
}

type smartRecruitersPosting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleasedDate string `json:"releasedDate"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

func (s *SmartRecruiters) Kind() string { return KindSmartRecruiters }

func (s *SmartRecruiters) Endpoint(src Source) string {
	return fmt.Sprintf("%s/v1/companies/%s/postings", strings.TrimRight(s.BaseURL, "/"), src.Slug)
}

func (s *SmartRecruiters) Listings(payload any) ([]RawListing, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object with a content list, got %T", payload)
	}
	return listItems(obj["content"])
}

func (s *SmartRecruiters) Normalize(src Source, raw RawListing) (jobs.Posting, error) {
	var rec smartRecruitersPosting
	if err := decodeRecord(raw, &rec); err != nil {
		return jobs.Posting{}, malformed(src, "", "%v", err)
	}

	var url string
	if rec.ID != "" {
		url = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", src.Slug, rec.ID)
	}
	if err := requireFields(src, rec.ID, rec.Name, url); err != nil {
		return jobs.Posting{}, err
	}

	location := joinNonEmpty(", ", rec.Location.City, rec.Location.Region, rec.Location.Country)

	company := src.Company()
	if src.Name == "" && rec.Company.Name != "" {
		company = rec.Company.Name
	}

	return jobs.Posting{
		Source:      src.ID(),
		ExternalID:  rec.ID,
		Title:       strings.TrimSpace(rec.Name),
		Company:     company,
		Location:    location,
		Department:  rec.Department.Label,
		Remote:      rec.Location.Remote || IsRemote(location),
		URL:         url,
		PostedAt:    parseTime([]string{time.RFC3339, "2006-01-02T15:04:05.000Z"}, rec.ReleasedDate),
		Sponsorship: jobs.DetectSponsorship(rec.Name),
	}, nil
}
