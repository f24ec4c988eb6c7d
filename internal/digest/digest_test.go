package digest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spigell/job-digest/internal/github"
	"github.com/spigell/job-digest/internal/jobs"
	"github.com/spigell/job-digest/internal/serrors"
)

var runDate = time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

func sampleItems() []jobs.Scored {
	return []jobs.Scored{
		{
			Posting: jobs.Posting{
				Source: "lever:acme", ExternalID: "1", Title: "ML | AI Intern", Company: "Acme",
				Location: "Austin, TX", URL: "https://jobs.lever.co/acme/1", Sponsorship: jobs.SponsorshipYes,
			},
			Score: 95,
		},
		{
			Posting: jobs.Posting{
				Source: "greenhouse:globex", ExternalID: "2", Title: "Data Intern", Company: "Globex",
				URL: "https://boards.greenhouse.io/globex/jobs/2",
			},
			Score: 60,
		},
	}
}

func TestRenderAndParseTable(t *testing.T) {
	body := Render(runDate, sampleItems(), Summary{MinScore: 40, MaxResults: 15, Locations: []string{"Texas"}, Found: 10, Eligible: 2})

	require.True(t, strings.HasPrefix(body, "# Job digest 2025-03-01\n"))
	require.Contains(t, body, "score ≥ **40**, max **15**, locations: **Texas**")
	require.Contains(t, body, "| 95 | YES | ML AI Intern | Acme | lever:acme | Austin, TX | [Apply](https://jobs.lever.co/acme/1) |")

	rows := ParseTable(body)
	require.Equal(t, []Row{
		{Score: 95, Sponsorship: jobs.SponsorshipYes, Title: "ML AI Intern", Company: "Acme", Source: "lever:acme", Location: "Austin, TX", URL: "https://jobs.lever.co/acme/1"},
		{Score: 60, Sponsorship: jobs.SponsorshipUnknown, Title: "Data Intern", Company: "Globex", Source: "greenhouse:globex", URL: "https://boards.greenhouse.io/globex/jobs/2"},
	}, rows)
}

func TestRenderEmpty(t *testing.T) {
	body := Render(runDate, nil, Summary{MaxResults: 15})
	require.Contains(t, body, emptyMessage)
	require.NotContains(t, body, tableHeader)
	require.Empty(t, ParseTable(body))
}

func TestParseTableIgnoresNoise(t *testing.T) {
	body := strings.Join([]string{
		"intro | with pipe",
		tableHeader,
		tableDelimiter,
		"| x | YES | Bad score | A | s | l | [Apply](https://a) |",
		"| 50 | NO | No link | A | s | l | none |",
		"| 70 | UNKNOWN | Good | A | s |  | [Apply](https://ok) |",
		"",
		"| 90 | YES | After table | A | s | l | [Apply](https://late) |",
	}, "\n")

	rows := ParseTable(body)
	require.Len(t, rows, 1)
	require.Equal(t, "https://ok", rows[0].URL)
	require.Empty(t, rows[0].Location)
}

func TestRenderEscapesPipeInLink(t *testing.T) {
	items := []jobs.Scored{{
		Score: 75,
		Posting: jobs.Posting{
			Source: "lever:acme", Title: "ML Intern", Company: "Acme",
			URL: "https://jobs.example.com/apply?team=ml|data", Sponsorship: jobs.SponsorshipUnknown,
		},
	}}

	rows := ParseTable(Render(runDate, items, Summary{MaxResults: 15}))
	require.Len(t, rows, 1)
	require.Equal(t, "https://jobs.example.com/apply?team=ml%7Cdata", rows[0].URL)
	require.Equal(t, "ML Intern", rows[0].Title)
}

type fakeTracker struct {
	calls int
	req   github.IssueRequest
	err   error
}

func (f *fakeTracker) CreateIssue(req github.IssueRequest) (*github.Issue, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &github.Issue{Number: 12, Title: req.Title}, nil
}

func TestPublishCreatesOneIssue(t *testing.T) {
	tracker := &fakeTracker{}
	p := &Publisher{Tracker: tracker, Labels: []string{"job-digest"}}

	issue, err := p.Publish(runDate, sampleItems(), Summary{MaxResults: 15})
	require.NoError(t, err)
	require.Equal(t, 12, issue.Number)
	require.Equal(t, 1, tracker.calls)
	require.Equal(t, "Job digest 2025-03-01", tracker.req.Title)
	require.Equal(t, []string{"job-digest"}, tracker.req.Labels)
	require.Len(t, ParseTable(tracker.req.Body), 2)
}

func TestPublishFailureIsNotRetried(t *testing.T) {
	boom := errors.New("502 bad gateway")
	tracker := &fakeTracker{err: boom}

	_, err := (&Publisher{Tracker: tracker}).Publish(runDate, nil, Summary{})
	require.ErrorIs(t, err, serrors.ErrPublish)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, tracker.calls)
}
