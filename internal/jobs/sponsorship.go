package jobs

import "strings"

// DefaultNoSponsorshipPhrases are phrases that explicitly rule out visa
// sponsorship. Matching is done on normalised text, so "not sponsor" also
// covers "cannot sponsor", "will not sponsor" and "do not sponsor".
var DefaultNoSponsorshipPhrases = []string{
	"no sponsorship",
	"unable to sponsor",
	"not sponsor",
	"without sponsorship",
	"no visa sponsorship",
	"not eligible for sponsorship",
	"us citizen only",
	"u.s. citizen only",
	"must be a u.s. citizen",
	"must be us citizen",
	"security clearance required",
}

// DefaultSponsorshipPhrases signal that sponsorship is offered.
var DefaultSponsorshipPhrases = []string{
	"visa sponsorship",
	"sponsorship available",
	"eligible for sponsorship",
	"will sponsor",
	"can sponsor",
}

// DetectSponsorship classifies text. Rejections win over offers, silence is
// UNKNOWN.
func DetectSponsorship(text string) Sponsorship {
	if ContainsAnyPhrase(text, DefaultNoSponsorshipPhrases) {
		return SponsorshipNo
	}
	if ContainsAnyPhrase(text, DefaultSponsorshipPhrases) {
		return SponsorshipYes
	}

	return SponsorshipUnknown
}

// ContainsAnyPhrase reports whether the normalised text contains any of the
// normalised phrases as a substring.
func ContainsAnyPhrase(text string, phrases []string) bool {
	return FirstPhrase(text, phrases) != ""
}

// FirstPhrase returns the first phrase found in text, or "".
func FirstPhrase(text string, phrases []string) string {
	t := Normalize(text)
	for _, p := range phrases {
		n := Normalize(p)
		if n != "" && strings.Contains(t, n) {
			return p
		}
	}

	return ""
}
