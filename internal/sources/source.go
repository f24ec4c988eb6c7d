// Package sources turns public career-page APIs into normalised job postings.
package sources

import (
	"fmt"
	"strings"
)

const (
	KindGreenhouse      = "greenhouse"
	KindLever           = "lever"
	KindSmartRecruiters = "smartrecruiters"
)

// Source is one job board to poll, written in config as
// "<kind>:<slug>" or "<kind>:<slug>=<Company Name>".
type Source struct {
	Kind string
	Slug string
	Name string
}

// ParseSource parses a source identifier.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	kind, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Source{}, fmt.Errorf("source %q must look like <kind>:<slug>", raw)
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case KindGreenhouse, KindLever, KindSmartRecruiters:
	default:
		return Source{}, fmt.Errorf("source %q has unsupported kind %q", raw, kind)
	}

	slug, name, _ := strings.Cut(rest, "=")
	slug = strings.TrimSpace(slug)
	if slug == "" || strings.ContainsAny(slug, "/?# ") {
		return Source{}, fmt.Errorf("source %q has invalid slug %q", raw, slug)
	}

	return Source{Kind: kind, Slug: slug, Name: strings.TrimSpace(name)}, nil
}

// ParseSources parses all identifiers, failing on the first invalid one.
func ParseSources(raw []string) ([]Source, error) {
	out := make([]Source, 0, len(raw))
	for _, r := range raw {
		s, err := ParseSource(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ID is the identifier used in posting keys, logs and tie-break ordering.
func (s Source) ID() string {
	return s.Kind + ":" + s.Slug
}

// Company is the display name used when a payload carries none.
func (s Source) Company() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Slug
}
