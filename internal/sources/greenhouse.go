package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-digest/internal/jobs"
)

const GreenhouseBaseURL = "https://boards-api.greenhouse.io"

type Greenhouse struct {
	BaseURL string
}

type greenhouseJob struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	AbsoluteURL    string `json:"absolute_url"`
	Location       any    `json:"location"`
	Content        string `json:"content"`
	UpdatedAt      string `json:"updated_at"`
	FirstPublished string `json:"first_published"`
	CompanyName    string `json:"company_name"`
	Departments    []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (g *Greenhouse) Kind() string { return KindGreenhouse }

func (g *Greenhouse) Endpoint(src Source) string {
	return fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", strings.TrimRight(g.BaseURL, "/"), src.Slug)
}

func (g *Greenhouse) Listings(payload any) ([]RawListing, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object with a jobs list, got %T", payload)
	}
	return listItems(obj["jobs"])
}

func (g *Greenhouse) Normalize(src Source, raw RawListing) (jobs.Posting, error) {
	var rec greenhouseJob
	if err := decodeRecord(raw, &rec); err != nil {
		return jobs.Posting{}, malformed(src, "", "%v", err)
	}
	if err := requireFields(src, rec.ID, rec.Title, rec.AbsoluteURL); err != nil {
		return jobs.Posting{}, err
	}

	location := greenhouseLocation(rec.Location)
	description := HTMLToText(rec.Content)

	var department string
	if len(rec.Departments) > 0 {
		department = rec.Departments[0].Name
	}

	company := src.Company()
	if src.Name == "" && rec.CompanyName != "" {
		company = rec.CompanyName
	}

	return jobs.Posting{
		Source:      src.ID(),
		ExternalID:  rec.ID,
		Title:       strings.TrimSpace(rec.Title),
		Company:     company,
		Location:    location,
		Department:  department,
		Remote:      IsRemote(location),
		Description: description,
		URL:         rec.AbsoluteURL,
		PostedAt:    parseTime([]string{time.RFC3339}, rec.FirstPublished, rec.UpdatedAt),
		Sponsorship: jobs.DetectSponsorship(rec.Title + "\n" + description),
	}, nil
}

// greenhouseLocation accepts both {"name": "..."} and a bare string.
func greenhouseLocation(v any) string {
	switch loc := v.(type) {
	case string:
		return strings.TrimSpace(loc)
	case map[string]any:
		if name, ok := loc["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// requireFields reports a malformed record when id, title or url is missing.
func requireFields(src Source, id, title, url string) error {
	var missing []string
	if strings.TrimSpace(id) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(url) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return malformed(src, id, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}
