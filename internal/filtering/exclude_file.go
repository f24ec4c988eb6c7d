package filtering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/jobs"
)

type excludeFileFilter struct {
	disabled bool
	reason   string
	path     string
	logger   *zap.Logger
}

// NewExcludeFile creates a filter that removes postings listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   path,
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

// Validate fails when the exclude file points into a directory that does not exist.
func (f *excludeFileFilter) Validate() error {
	if f.path == "" {
		return nil
	}
	dir := filepath.Dir(f.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("exclude file directory %q: %w", dir, err)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, v *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := v.Len()
	if f.path == "" {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded, err := jobs.GetExcludedPostingsFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	removed := v.Exclude(jobs.PostingKeyField, excluded.Keys())
	if len(removed) > 0 {
		f.logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_postings", removed),
			zap.Int("postings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
