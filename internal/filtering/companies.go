package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/jobs"
)

type excludedCompaniesFilter struct {
	disabled  bool
	reason    string
	companies []string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes postings of the listed
// companies. Names are compared case-insensitively.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludedCompaniesFilter{
		companies: companies,
		logger:    logger,
	}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludedCompaniesFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedCompaniesFilter) Validate() error { return nil }

func (f *excludedCompaniesFilter) Apply(_ context.Context, v *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := v.Len()
	if len(f.companies) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Exclude(jobs.PostingCompanyField, f.companies)
	if len(excluded) > 0 {
		f.logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *excludedCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
