package digest

import (
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/github"
	"github.com/spigell/job-digest/internal/jobs"
	"github.com/spigell/job-digest/internal/serrors"
)

// IssueCreator is the part of the issue tracker the publisher needs.
type IssueCreator interface {
	CreateIssue(req github.IssueRequest) (*github.Issue, error)
}

type Publisher struct {
	Tracker IssueCreator
	Labels  []string
	Logger  *zap.Logger
}

// Publish creates exactly one issue for the run. A failure is returned as
// ErrPublish and is not retried; the operator re-runs the job.
func (p *Publisher) Publish(date time.Time, items []jobs.Scored, s Summary) (*github.Issue, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	req := github.IssueRequest{
		Title:  Title(date),
		Body:   Render(date, items, s),
		Labels: p.Labels,
	}

	issue, err := p.Tracker.CreateIssue(req)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrPublish, err, "publishing %q", req.Title)
	}

	logger.Info("digest published",
		zap.Int("issue", issue.Number),
		zap.String("url", issue.HTMLURL),
		zap.Int("postings", len(items)),
	)

	return issue, nil
}
