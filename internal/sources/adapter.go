package sources

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-digest/internal/jobs"
	"github.com/spigell/job-digest/internal/serrors"
)

// RawListing is one untyped listing as returned by a job board.
type RawListing map[string]any

// Adapter knows the endpoint and payload shape of one kind of job board.
type Adapter interface {
	Kind() string
	Endpoint(src Source) string
	// Listings splits a decoded payload into raw records.
	Listings(payload any) ([]RawListing, error)
	// Normalize turns one raw record into a posting or an ErrMalformedRecord.
	Normalize(src Source, raw RawListing) (jobs.Posting, error)
}

// Registry maps a source kind to its adapter.
type Registry map[string]Adapter

// NewRegistry returns adapters pointed at the public API hosts.
func NewRegistry() Registry {
	return Registry{
		KindGreenhouse:      &Greenhouse{BaseURL: GreenhouseBaseURL},
		KindLever:           &Lever{BaseURL: LeverBaseURL},
		KindSmartRecruiters: &SmartRecruiters{BaseURL: SmartRecruitersBaseURL},
	}
}

func (r Registry) For(src Source) (Adapter, error) {
	a, ok := r[src.Kind]
	if !ok {
		return nil, fmt.Errorf("no adapter for source kind %q", src.Kind)
	}
	return a, nil
}

// decodeRecord fills a typed record from a raw listing. Numbers are accepted
// where strings are expected since boards disagree on id types.
func decodeRecord(raw RawListing, target any) error {
	if raw == nil {
		return fmt.Errorf("listing is not an object")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(map[string]any(raw))
}

// listItems converts a JSON array into raw listings. Elements that are not
// objects become nil so that Normalize reports them individually.
func listItems(v any) ([]RawListing, error) {
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("expected a list of listings, got %T", v)
	}

	out := make([]RawListing, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, RawListing(m))
	}
	return out, nil
}

func malformed(src Source, id string, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if id == "" {
		return serrors.With(serrors.ErrMalformedRecord, "%s: %s", src.ID(), msg)
	}
	return serrors.With(serrors.ErrMalformedRecord, "%s record %s: %s", src.ID(), id, msg)
}

func parseTime(layouts []string, values ...string) time.Time {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
