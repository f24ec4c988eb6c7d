package sources

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/jobs"
	"github.com/spigell/job-digest/internal/logger"
)

// ErrAllSourcesFailed is returned by Collect when no source could be fetched.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Fetcher downloads the raw listings of one source.
type Fetcher interface {
	FetchListings(ctx context.Context, adapter Adapter, src Source) ([]RawListing, error)
}

// Report summarises one collection pass.
type Report struct {
	Sources        int
	FailedSources  []string
	SkippedRecords int
	Postings       int
}

// Collect fetches every source in order. A failed source or a malformed
// record is logged and skipped; only the failure of every source is an error.
func Collect(ctx context.Context, fetcher Fetcher, registry Registry, srcs []Source, log *zap.Logger) ([]jobs.Posting, Report, error) {
	var (
		postings []jobs.Posting
		report   = Report{Sources: len(srcs)}
	)

	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return postings, report, err
		}

		slog := logger.WithSource(log, src.ID())

		adapter, err := registry.For(src)
		if err != nil {
			slog.Error("skipping source", zap.Error(err))
			report.FailedSources = append(report.FailedSources, src.ID())
			continue
		}

		raws, err := fetcher.FetchListings(ctx, adapter, src)
		if err != nil {
			slog.Error("skipping source", zap.Error(err))
			report.FailedSources = append(report.FailedSources, src.ID())
			continue
		}

		kept := 0
		for i, raw := range raws {
			p, err := adapter.Normalize(src, raw)
			if err != nil {
				slog.Warn("skipping record",
					zap.String(logger.FieldRecord, fmt.Sprintf("#%d", i)),
					zap.Error(err),
				)
				report.SkippedRecords++
				continue
			}
			postings = append(postings, p)
			kept++
		}

		slog.Info("source fetched", zap.Int("listings", len(raws)), zap.Int("postings", kept))
	}

	report.Postings = len(postings)

	if len(srcs) > 0 && len(report.FailedSources) == len(srcs) {
		return nil, report, fmt.Errorf("%w: %d of %d", ErrAllSourcesFailed, len(report.FailedSources), len(srcs))
	}

	return postings, report, nil
}
