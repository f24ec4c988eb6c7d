package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spigell/job-digest/internal/jobs"
)

func TestScoreAllKeywordsMatched(t *testing.T) {
	s := New(Options{Keywords: jobs.NewKeywordSet([]string{"python", "pytorch", "llm"})}, nil)

	got, reason := s.Score(jobs.Posting{Title: "ML Intern", Description: "Build LLM apps with Python and PyTorch"})
	require.Equal(t, Eligible, reason)
	require.Equal(t, 100, got.Score)
	require.Equal(t, []string{"python", "pytorch", "llm"}, got.Matched)
}

func TestScoreIntegerDivision(t *testing.T) {
	s := New(Options{Keywords: jobs.NewKeywordSet([]string{"go", "rust", "python"})}, nil)

	score, matched := s.Match(jobs.Posting{Title: "Backend intern", Description: "We write Go."})
	require.Equal(t, 33, score)
	require.Equal(t, []string{"go"}, matched)
}

func TestMatchUsesWordBoundaries(t *testing.T) {
	s := New(Options{Keywords: jobs.NewKeywordSet([]string{"ai", "machine learning", "c++"})}, nil)

	score, matched := s.Match(jobs.Posting{Title: "Maintenance intern", Description: "Email and chairs"})
	require.Equal(t, 0, score)
	require.Empty(t, matched)

	_, matched = s.Match(jobs.Posting{Title: "AI/ML intern", Description: "Machine\n  Learning with C++."})
	require.Equal(t, []string{"ai", "machine learning", "c++"}, matched)
}

func TestScoreWithoutKeywordsIsZero(t *testing.T) {
	s := New(Options{}, nil)
	got, reason := s.Score(jobs.Posting{Title: "Intern"})
	require.Equal(t, 0, got.Score)
	require.Equal(t, Eligible, reason)
}

func TestScoreAlwaysWithinRange(t *testing.T) {
	keywords := jobs.NewKeywordSet([]string{"a", "b", "c", "d", "e", "f", "g"})
	s := New(Options{Keywords: keywords}, nil)

	texts := []string{"", "a", "a b", "a b c d e f g", "a a a a", "g f e", "x y z"}
	for _, text := range texts {
		got, _ := s.Score(jobs.Posting{Description: text})
		require.GreaterOrEqual(t, got.Score, 0, text)
		require.LessOrEqual(t, got.Score, 100, text)
	}
}

func TestNoSponsorshipExcludedEvenAtFullScore(t *testing.T) {
	s := New(Options{Keywords: jobs.NewKeywordSet([]string{"python"})}, nil)

	got, reason := s.Score(jobs.Posting{Title: "Python Intern", Description: "Note: no sponsorship available."})
	require.Equal(t, 100, got.Score)
	require.Equal(t, ExcludeSponsorship, reason)

	_, reason = s.Score(jobs.Posting{Title: "Python Intern", Sponsorship: jobs.SponsorshipNo})
	require.Equal(t, ExcludeSponsorship, reason)
}

func TestCustomNoSponsorshipPhrases(t *testing.T) {
	s := New(Options{NoSponsorshipPhrases: []string{"green card holders only"}}, nil)

	_, reason := s.Score(jobs.Posting{Title: "Intern", Description: "Green card holders ONLY"})
	require.Equal(t, ExcludeSponsorship, reason)

	_, reason = s.Score(jobs.Posting{Title: "Intern", Description: "no sponsorship"})
	require.Equal(t, Eligible, reason)
}

func TestLocationAllowed(t *testing.T) {
	allowed := []string{"Texas", "Remote US"}

	tests := []struct {
		posting jobs.Posting
		want    bool
	}{
		{jobs.Posting{Location: "Austin, Texas"}, true},
		{jobs.Posting{Location: "remote us - east"}, true},
		{jobs.Posting{Location: "Berlin", Remote: true}, true},
		{jobs.Posting{Location: "Berlin"}, false},
		{jobs.Posting{}, false},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, tt.want, LocationAllowed(tt.posting, allowed))
		})
	}

	require.True(t, LocationAllowed(jobs.Posting{Location: "Berlin"}, nil))
}

func TestExclusionOrder(t *testing.T) {
	s := New(Options{
		Keywords:           jobs.NewKeywordSet([]string{"python", "go"}),
		Locations:          []string{"Texas"},
		InternshipKeywords: []string{"intern"},
		RoleKeywords:       []string{"machine learning", "ml"},
		MinScore:           60,
	}, nil)

	tests := []struct {
		name    string
		posting jobs.Posting
		want    Exclusion
	}{
		{"sponsorship wins over location", jobs.Posting{Title: "Engineer", Location: "Berlin", Description: "unable to sponsor"}, ExcludeSponsorship},
		{"location", jobs.Posting{Title: "ML Intern", Location: "Berlin"}, ExcludeLocation},
		{"internship", jobs.Posting{Title: "ML Engineer", Location: "Texas"}, ExcludeInternship},
		{"role", jobs.Posting{Title: "Sales Intern", Location: "Texas"}, ExcludeRole},
		{"role from department", jobs.Posting{Title: "Intern", Department: "ML", Location: "Texas"}, ExcludeBelowMin},
		{"below min", jobs.Posting{Title: "ML Intern", Location: "Texas", Description: "python"}, ExcludeBelowMin},
		{"eligible", jobs.Posting{Title: "ML Intern", Location: "Texas", Description: "python and go"}, Eligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := s.Score(tt.posting)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestScoreAllKeepsEligibleInOrder(t *testing.T) {
	s := New(Options{Keywords: jobs.NewKeywordSet([]string{"python"}), MinScore: 50}, nil)

	postings := []jobs.Posting{
		{Source: "lever:a", ExternalID: "1", Title: "Python Intern"},
		{Source: "lever:a", ExternalID: "2", Title: "Java Intern"},
		{Source: "lever:a", ExternalID: "3", Title: "Python Intern", Description: "We cannot sponsor."},
		{Source: "lever:a", ExternalID: "4", Title: "Senior Python"},
	}

	kept, res := s.ScoreAll(postings)
	require.Len(t, kept, 2)
	require.Equal(t, "1", kept[0].Posting.ExternalID)
	require.Equal(t, "4", kept[1].Posting.ExternalID)
	require.Equal(t, 4, res.Scored)
	require.Equal(t, 2, res.Eligible)
	require.Equal(t, 1, res.Excluded[ExcludeBelowMin])
	require.Equal(t, 1, res.Excluded[ExcludeSponsorship])
}
