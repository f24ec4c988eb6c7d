package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	PostingKeyField     = "Key"
	PostingCompanyField = "Company"
)

// Postings is a mutable working list of scored postings passed between
// filter steps.
type Postings struct {
	Items []Scored
}

type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	Key        string
	URL        string
	Company    string
	Title      string
	ExcludedAt time.Time
}

func (v *Postings) Len() int {
	return len(v.Items)
}

func (v *Postings) FindByKey(key string) *Scored {
	for i := range v.Items {
		if v.Items[i].Posting.Key() == key {
			return &v.Items[i]
		}
	}
	return nil
}

func (s Scored) stringField(name string) string {
	switch name {
	case PostingKeyField:
		return s.Posting.Key()
	case PostingCompanyField:
		return Normalize(s.Posting.Company)
	default:
		return ""
	}
}

// Exclude removes every posting whose field equals one of targets and
// returns the keys of the removed postings. Order of the rest is preserved.
func (v *Postings) Exclude(name string, targets []string) []string {
	set := make(map[string]bool, len(targets))
	for _, t := range targets {
		if name == PostingCompanyField {
			t = Normalize(t)
		}
		set[t] = true
	}

	var excluded []string
	kept := make([]Scored, 0, len(v.Items))
	for _, s := range v.Items {
		if value := s.stringField(name); value != "" && set[value] {
			excluded = append(excluded, s.Posting.Key())
			continue
		}
		kept = append(kept, s)
	}
	v.Items = kept

	return excluded
}

func (v *Postings) ToExcluded() *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, s := range v.Items {
		if s.Posting.Key() == "" {
			continue
		}
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			Key:        s.Posting.Key(),
			URL:        s.Posting.URL,
			Company:    s.Posting.Company,
			Title:      s.Posting.Title,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// ReportByCompany groups the postings by company for a quick overview.
func (v *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, s := range v.Items {
		report[s.Posting.Company] = append(report[s.Posting.Company], map[string]string{
			"title":       s.Posting.Title,
			"url":         s.Posting.URL,
			"location":    s.Posting.Location,
			"score":       fmt.Sprintf("%d", s.Score),
			"sponsorship": string(s.Posting.Sponsorship),
			"source":      s.Posting.Source,
		})
	}
	return report
}

func (v *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// GetExcludedPostingsFromFile reads an exclude file. A missing or empty file
// yields an empty list.
func GetExcludedPostingsFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedPostings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (v *ExcludedPostings) Append(s *ExcludedPostings) {
	v.Items = append(v.Items, s.Items...)
}

func (v *ExcludedPostings) Keys() []string {
	keys := make([]string, 0, len(v.Items))
	for _, p := range v.Items {
		keys = append(keys, p.Key)
	}
	return keys
}

func (v *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
