// Package ranking merges scored postings from all sources into the digest
// order: duplicates removed, best first, truncated.
package ranking

import (
	"sort"

	"github.com/spigell/job-digest/internal/jobs"
)

type Options struct {
	MaxResults int
	// SourcePriority lists source ids in preference order. Sources not
	// listed rank after the listed ones.
	SourcePriority []string
}

type entry struct {
	item     jobs.Scored
	priority int
	index    int
}

// Rank deduplicates items, sorts them by score and recency and keeps at
// most MaxResults. The input slice is not modified and the order is total,
// so ranking the same input twice gives the same output.
func Rank(items []jobs.Scored, opts Options) []jobs.Scored {
	priority := make(map[string]int, len(opts.SourcePriority))
	for i, id := range opts.SourcePriority {
		if _, ok := priority[id]; !ok {
			priority[id] = i
		}
	}
	unlisted := len(opts.SourcePriority)

	entries := make([]entry, 0, len(items))
	for i, it := range items {
		p, ok := priority[it.Posting.Source]
		if !ok {
			p = unlisted
		}
		entries = append(entries, entry{item: it, priority: p, index: i})
	}

	entries = dedup(entries, func(e entry) string { return e.item.Posting.Key() })
	entries = dedupTitleCompany(entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})

	if opts.MaxResults >= 0 && len(entries) > opts.MaxResults {
		entries = entries[:opts.MaxResults]
	}

	out := make([]jobs.Scored, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.item)
	}
	return out
}

// dedup keeps the preferred entry for every non-empty key. Entries with an
// empty key are always kept. Survivors stay in their original order.
func dedup(entries []entry, key func(entry) string) []entry {
	best := make(map[string]int, len(entries))
	for i, e := range entries {
		k := key(e)
		if k == "" {
			continue
		}
		if j, ok := best[k]; !ok || preferred(e, entries[j]) {
			best[k] = i
		}
	}

	kept := make([]entry, 0, len(entries))
	for i, e := range entries {
		if k := key(e); k != "" && best[k] != i {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// dedupTitleCompany merges postings that share the normalised title and
// company when they come from different sources or one of them has no
// external id. Distinct ids from the same source are separate openings and
// are all kept. Entries are visited best first, so every dropped entry loses
// to a kept one. Survivors stay in their original order.
func dedupTitleCompany(entries []entry) []entry {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return preferred(entries[order[i]], entries[order[j]])
	})

	groups := make(map[string][]int, len(entries))
	drop := make([]bool, len(entries))
	for _, i := range order {
		k := entries[i].item.Posting.TitleCompanyKey()
		for _, j := range groups[k] {
			if sameOpening(entries[i].item.Posting, entries[j].item.Posting) {
				drop[i] = true
				break
			}
		}
		if !drop[i] {
			groups[k] = append(groups[k], i)
		}
	}

	kept := make([]entry, 0, len(entries))
	for i, e := range entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	return kept
}

// sameOpening reports whether two postings with equal title and company
// describe one opening.
func sameOpening(a, b jobs.Posting) bool {
	if a.ExternalID == "" || b.ExternalID == "" {
		return true
	}
	return a.Source != b.Source
}

// preferred reports whether a should survive over its duplicate b: higher
// score, then higher-priority source, then earlier input.
func preferred(a, b entry) bool {
	if a.item.Score != b.item.Score {
		return a.item.Score > b.item.Score
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.index < b.index
}

// less is the digest order: score desc, posted desc, source priority asc,
// identity key asc, input order.
func less(a, b entry) bool {
	pa, pb := a.item.Posting, b.item.Posting

	if a.item.Score != b.item.Score {
		return a.item.Score > b.item.Score
	}
	if !pa.PostedAt.Equal(pb.PostedAt) {
		return pa.PostedAt.After(pb.PostedAt)
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if ka, kb := pa.Key(), pb.Key(); ka != kb {
		return ka < kb
	}
	return a.index < b.index
}
