package config

import (
	"fmt"
	"strings"

	"github.com/spigell/job-digest/internal/serrors"
	"github.com/spigell/job-digest/internal/sources"
)

// Requirements selects which optional sections must be present for the
// command being run.
type Requirements struct {
	Sources bool
	Repo    bool
}

// Normalize trims list entries and drops blanks and case-insensitive
// duplicates in place.
func (c *Config) Normalize() {
	c.Locations = trimList(c.Locations)
	c.Sources = trimList(c.Sources)
	c.SourcePriority = trimList(c.SourcePriority)
	c.InternshipKeywords = trimList(c.InternshipKeywords)
	c.RoleKeywords = trimList(c.RoleKeywords)
	c.NoSponsorshipPhrases = trimList(c.NoSponsorshipPhrases)
	c.Exclude.Companies = trimList(c.Exclude.Companies)
	c.GitHub.Labels = trimList(c.GitHub.Labels)
	c.GitHub.Repo = strings.TrimSpace(c.GitHub.Repo)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate(req Requirements) error {
	var errs []string
	addErr := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		addErr("min_match_score must be 0..100, got %d", c.MinMatchScore)
	}
	if c.MaxResults <= 0 {
		addErr("max_results must be > 0, got %d", c.MaxResults)
	}

	if req.Sources {
		if len(c.Sources) == 0 {
			addErr("sources must list at least one source")
		}
		for i, raw := range c.Sources {
			if _, err := sources.ParseSource(raw); err != nil {
				addErr("sources[%d]: %v", i, err)
			}
		}
		for i, raw := range c.SourcePriority {
			if _, err := sources.ParseSource(raw); err != nil {
				addErr("source_priority[%d]: %v", i, err)
			}
		}
		if strings.TrimSpace(c.KeywordsFile) == "" {
			addErr("keywords_file is required")
		}
	}

	if c.HTTP.Timeout <= 0 {
		addErr("http.timeout must be > 0")
	}
	if c.HTTP.RetryDelay < 0 {
		addErr("http.retry_delay must be >= 0")
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		addErr("http.requests_per_second must be > 0")
	}
	if strings.TrimSpace(c.StatsFile) == "" {
		addErr("stats_file is required")
	}

	if req.Repo {
		owner, name, ok := strings.Cut(c.GitHub.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			addErr("github.repo must look like owner/name, got %q", c.GitHub.Repo)
		}
	}

	if c.AI != nil && c.AI.Enabled {
		if c.AI.Gemini == nil {
			addErr("ai.gemini is required when ai.enabled=true")
		} else if c.AI.Gemini.MaxRetries < 0 {
			addErr("ai.gemini.max_retries must be >= 0")
		}
	}

	if len(errs) > 0 {
		return serrors.With(serrors.ErrConfig, "config validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}
