// Package materials drafts resume bullets and cover letters for the postings
// of an approved digest issue and posts them back as one comment.
package materials

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/ai"
	"github.com/spigell/job-digest/internal/digest"
	"github.com/spigell/job-digest/internal/github"
	"github.com/spigell/job-digest/internal/serrors"
)

const (
	ReasonNotApproved = "issue is not approved"
	ReasonAlreadyDone = "materials already posted"
	ReasonNoTable     = "no digest table found"
)

// Tracker is the part of the issue tracker the generator needs.
type Tracker interface {
	GetIssue(number int) (*github.Issue, error)
	ListComments(number int) ([]github.Comment, error)
	CreateComment(number int, body string) (*github.Comment, error)
	AddLabels(number int, labels []string) error
}

// DescriptionFetcher returns the description text of a job page.
type DescriptionFetcher interface {
	Description(ctx context.Context, url string) (string, error)
}

type Generator struct {
	Tracker Tracker
	Fetcher DescriptionFetcher
	// Writer drafts the materials. Nil means templates only.
	Writer         ai.Writer
	Applicant      ai.Applicant
	ApprovalLabel  string
	MaterialsLabel string
	Logger         *zap.Logger

	fallback ai.Writer
	now      func() time.Time
}

// Result describes what Run did. Skipped runs post nothing.
type Result struct {
	Issue      int
	Skipped    bool
	Reason     string
	Rows       int
	Drafts     int
	CommentURL string
}

// Run generates the materials for one issue. Unless force is set the issue
// must carry the approval label. An issue that already has the materials
// comment is skipped.
func (g *Generator) Run(ctx context.Context, number int, force bool) (Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.Int("issue", number))

	res := Result{Issue: number}

	issue, err := g.Tracker.GetIssue(number)
	if err != nil {
		return res, serrors.Wrap(serrors.ErrPublish, err, "reading issue #%d", number)
	}

	if !force && g.ApprovalLabel != "" && !issue.HasLabel(g.ApprovalLabel) {
		logger.Info("skipping issue", zap.String("reason", ReasonNotApproved), zap.String("label", g.ApprovalLabel))
		return skipped(res, ReasonNotApproved), nil
	}

	comments, err := g.Tracker.ListComments(number)
	if err != nil {
		return res, serrors.Wrap(serrors.ErrPublish, err, "reading comments of issue #%d", number)
	}
	if HasMarker(comments) {
		logger.Info("skipping issue", zap.String("reason", ReasonAlreadyDone))
		return skipped(res, ReasonAlreadyDone), nil
	}

	rows := digest.ParseTable(issue.Body)
	res.Rows = len(rows)

	var body string
	if len(rows) == 0 {
		logger.Warn("no digest table in issue body")
		res.Reason = ReasonNoTable
		body = NoTableComment()
	} else {
		entries := g.entries(ctx, rows, logger)
		for _, e := range entries {
			if e.Draft != nil {
				res.Drafts++
			}
		}
		body = BuildComment(g.clock(), entries)
	}

	comment, err := g.Tracker.CreateComment(number, body)
	if err != nil {
		return res, serrors.Wrap(serrors.ErrPublish, err, "posting materials to issue #%d", number)
	}
	res.CommentURL = comment.HTMLURL

	if res.Drafts > 0 && g.MaterialsLabel != "" {
		if err := g.Tracker.AddLabels(number, []string{g.MaterialsLabel}); err != nil {
			return res, serrors.Wrap(serrors.ErrPublish, err, "labelling issue #%d", number)
		}
	}

	logger.Info("materials posted",
		zap.Int("rows", res.Rows),
		zap.Int("drafts", res.Drafts),
		zap.String("url", res.CommentURL),
	)

	return res, nil
}

func (g *Generator) entries(ctx context.Context, rows []digest.Row, logger *zap.Logger) []Entry {
	entries := make([]Entry, 0, len(rows))

	for _, row := range rows {
		rowLogger := logger.With(zap.String("company", row.Company), zap.String("title", row.Title))

		var description string
		if g.Fetcher != nil {
			text, err := g.Fetcher.Description(ctx, row.URL)
			if err != nil {
				rowLogger.Warn("job description not captured", zap.Error(err))
			}
			description = text
		}

		req := &ai.Request{
			Applicant:   g.Applicant,
			Title:       row.Title,
			Company:     row.Company,
			Location:    row.Location,
			URL:         row.URL,
			Description: description,
			Hints:       DeriveHints(row.Title, description),
		}

		entries = append(entries, Entry{
			Row:                 row,
			DescriptionCaptured: description != "",
			Draft:               g.draft(ctx, req, rowLogger),
		})
	}

	return entries
}

func (g *Generator) draft(ctx context.Context, req *ai.Request, logger *zap.Logger) *ai.Draft {
	fallback := g.fallback
	if fallback == nil {
		fallback = NewTemplateWriter()
	}

	if g.Writer != nil {
		draft, err := g.Writer.Write(ctx, req)
		if err == nil {
			return draft
		}
		logger.Warn("writer failed, falling back to templates", zap.Error(err))
	}

	draft, err := fallback.Write(ctx, req)
	if err != nil {
		logger.Error("drafting materials", zap.Error(err))
		return nil
	}
	return draft
}

func (g *Generator) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

func skipped(res Result, reason string) Result {
	res.Skipped = true
	res.Reason = reason
	return res
}
