// Package scoring rates postings against the keyword set and applies the
// sponsorship, location and role gates.
package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/jobs"
)

// Exclusion names why a posting was filtered out. Empty means eligible.
type Exclusion string

const (
	Eligible           Exclusion = ""
	ExcludeSponsorship Exclusion = "sponsorship"
	ExcludeLocation    Exclusion = "location"
	ExcludeInternship  Exclusion = "not_internship"
	ExcludeRole        Exclusion = "no_role_keyword"
	ExcludeBelowMin    Exclusion = "below_min_score"
)

const maxScore = 100

type Options struct {
	Keywords  jobs.KeywordSet
	Locations []string
	// NoSponsorshipPhrases defaults to jobs.DefaultNoSponsorshipPhrases when nil.
	NoSponsorshipPhrases []string
	InternshipKeywords   []string
	RoleKeywords         []string
	MinScore             int
}

type Scorer struct {
	opts     Options
	keywords []string
	logger   *zap.Logger
}

// Result counts the outcome of ScoreAll.
type Result struct {
	Scored   int
	Eligible int
	Excluded map[Exclusion]int
}

func New(opts Options, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NoSponsorshipPhrases == nil {
		opts.NoSponsorshipPhrases = jobs.DefaultNoSponsorshipPhrases
	}

	keywords := make([]string, 0, opts.Keywords.Len())
	for _, k := range opts.Keywords.Items() {
		keywords = append(keywords, jobs.Normalize(k))
	}

	return &Scorer{opts: opts, keywords: keywords, logger: logger}
}

// Match returns the score of a posting and the keywords it matched, in
// keyword-set order. The score is always within [0,100].
func (s *Scorer) Match(p jobs.Posting) (int, []string) {
	if len(s.keywords) == 0 {
		return 0, nil
	}

	text := jobs.Normalize(p.Text())
	items := s.opts.Keywords.Items()

	var matched []string
	for i, k := range s.keywords {
		if containsWord(text, k) {
			matched = append(matched, items[i])
		}
	}

	score := len(matched) * maxScore / len(s.keywords)
	return clamp(score), matched
}

// Score rates p and reports the first exclusion that applies. Exclusions are
// checked in a fixed order: sponsorship, location, internship, role, score.
func (s *Scorer) Score(p jobs.Posting) (jobs.Scored, Exclusion) {
	score, matched := s.Match(p)
	scored := jobs.Scored{Posting: p, Score: score, Matched: matched}

	roleText := p.Title + "\n" + p.Description + "\n" + p.Department

	switch {
	case p.Sponsorship == jobs.SponsorshipNo || jobs.ContainsAnyPhrase(roleText, s.opts.NoSponsorshipPhrases):
		return scored, ExcludeSponsorship
	case !LocationAllowed(p, s.opts.Locations):
		return scored, ExcludeLocation
	case len(s.opts.InternshipKeywords) > 0 && !jobs.ContainsAnyPhrase(p.Text(), s.opts.InternshipKeywords):
		return scored, ExcludeInternship
	case len(s.opts.RoleKeywords) > 0 && !jobs.ContainsAnyPhrase(roleText, s.opts.RoleKeywords):
		return scored, ExcludeRole
	case score < s.opts.MinScore:
		return scored, ExcludeBelowMin
	}

	return scored, Eligible
}

// ScoreAll scores every posting and keeps the eligible ones in input order.
func (s *Scorer) ScoreAll(postings []jobs.Posting) ([]jobs.Scored, Result) {
	res := Result{Scored: len(postings), Excluded: map[Exclusion]int{}}

	kept := make([]jobs.Scored, 0, len(postings))
	for _, p := range postings {
		scored, reason := s.Score(p)
		if reason != Eligible {
			res.Excluded[reason]++
			s.logger.Debug("posting excluded",
				zap.String("key", p.Key()),
				zap.String("title", p.Title),
				zap.String("reason", string(reason)),
				zap.Int("score", scored.Score),
			)
			continue
		}
		kept = append(kept, scored)
	}

	res.Eligible = len(kept)
	return kept, res
}

// LocationAllowed reports whether p passes the location filter. An empty
// allow list admits everything; remote postings are always admitted.
func LocationAllowed(p jobs.Posting, allowed []string) bool {
	if len(allowed) == 0 || p.Remote {
		return true
	}

	loc := jobs.Normalize(p.Location)
	if loc == "" {
		return false
	}
	for _, a := range allowed {
		if a = jobs.Normalize(a); a != "" && strings.Contains(loc, a) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in text with no letter or digit
// directly before or after it.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}

	for offset := 0; offset <= len(text)-len(word); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)

		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
