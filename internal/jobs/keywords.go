package jobs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// KeywordSet is an ordered list of distinct keywords. It is loaded once per
// run and only read afterwards.
type KeywordSet struct {
	items []string
}

// NewKeywordSet builds a set from raw phrases, dropping blanks and
// duplicates (compared after normalisation) while keeping the first spelling.
func NewKeywordSet(phrases []string) KeywordSet {
	seen := make(map[string]bool, len(phrases))
	items := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		n := Normalize(p)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		items = append(items, p)
	}

	return KeywordSet{items: items}
}

// ReadKeywords parses one keyword per line. Empty lines and lines starting
// with '#' are ignored.
func ReadKeywords(r io.Reader) (KeywordSet, error) {
	var phrases []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		phrases = append(phrases, line)
	}
	if err := scanner.Err(); err != nil {
		return KeywordSet{}, err
	}

	return NewKeywordSet(phrases), nil
}

// LoadKeywords reads a keyword file from disk.
func LoadKeywords(path string) (KeywordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return KeywordSet{}, err
	}
	defer file.Close()

	set, err := ReadKeywords(file)
	if err != nil {
		return KeywordSet{}, fmt.Errorf("reading keywords from %q: %w", path, err)
	}

	return set, nil
}

func (k KeywordSet) Len() int { return len(k.items) }

// Items returns a copy of the keywords in load order.
func (k KeywordSet) Items() []string {
	out := make([]string, len(k.items))
	copy(out, k.items)
	return out
}
