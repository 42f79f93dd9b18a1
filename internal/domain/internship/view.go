package internship

import (
	"sort"
	"strings"
	"time"
)

type sortKey struct {
	priority int
	created  time.Time
	index    int
}

// FilterAll is the status filter that keeps every internship.
const FilterAll = "all"

// View returns the internships matching filter, ordered by status priority
// and then by creation time, most recent first. Internships whose creation
// time cannot be parsed sort last within their status group. The input slice
// is not modified.
func View(records []Internship, filter string) []Internship {
	out := make([]Internship, 0, len(records))
	keepAll := isFilterAll(filter)
	want := ParseStatus(filter)
	for _, rec := range records {
		if keepAll || ParseStatus(string(rec.Status)) == want {
			out = append(out, rec)
		}
	}

	// Timestamps are parsed once per record.
	keys := make([]sortKey, len(out))
	for i, rec := range out {
		keys[i] = sortKey{priority: rec.Status.Priority(), created: rec.Created(), index: i}
	}

	sort.SliceStable(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.priority != kb.priority {
			return ka.priority < kb.priority
		}
		return ka.created.After(kb.created)
	})

	sorted := make([]Internship, len(out))
	for i, k := range keys {
		sorted[i] = out[k.index]
	}
	return sorted
}

// Summarize counts internships per status.
func Summarize(records []Internship) Stats {
	stats := Stats{Total: len(records)}
	for _, rec := range records {
		switch ParseStatus(string(rec.Status)) {
		case StatusNew:
			stats.New++
		case StatusApplied:
			stats.Applied++
		case StatusRejected:
			stats.Rejected++
		default:
			stats.Other++
		}
	}
	return stats
}

// ValidFilter reports whether filter is "all" or a known status.
func ValidFilter(filter string) bool {
	return isFilterAll(filter) || Status(filter).Known()
}

func isFilterAll(filter string) bool {
	f := strings.TrimSpace(filter)
	return f == "" || strings.EqualFold(f, FilterAll)
}
