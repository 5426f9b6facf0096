// Package search ranks free-text queries against the building catalog.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"studyspaces/internal/buildings"
)

const (
	// DefaultMaxResults applies when Search is called with maxResults <= 0.
	DefaultMaxResults = 10
	minQueryLength    = 2

	scoreExact     = 1.0
	scorePrefix    = 0.9
	scoreSubstring = 0.7
	fuzzyThreshold = 0.6
	fuzzyWeight    = 0.5

	defaultMarkOpen  = "<mark>"
	defaultMarkClose = "</mark>"
)

// Result is one ranked building.
type Result struct {
	Name      string  `json:"name"`
	ID        string  `json:"id"`
	Score     float64 `json:"score"`
	Highlight string  `json:"highlight"`
}

// Ranker searches a registry. It holds no per-query state and is safe for concurrent
// use.
type Ranker struct {
	registry  *buildings.Registry
	markOpen  string
	markClose string
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithMarkers sets the strings Highlight wraps matches in.
func WithMarkers(openTag, closeTag string) Option {
	return func(r *Ranker) {
		r.markOpen = openTag
		r.markClose = closeTag
	}
}

// NewRanker creates a ranker over registry.
func NewRanker(registry *buildings.Registry, opts ...Option) *Ranker {
	r := &Ranker{
		registry:  registry,
		markOpen:  defaultMarkOpen,
		markClose: defaultMarkClose,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns at most maxResults buildings matching query, best first. Each
// building appears once, scored by the first tier it matches: alias, exact name,
// prefix, substring, then edit-distance similarity. Equal scores keep catalog order.
func (r *Ranker) Search(query string, maxResults int) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < minQueryLength {
		return []Result{}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	results := []Result{}
	seen := make(map[string]bool)

	if rec, ok := r.registry.AliasFor(q); ok {
		results = append(results, Result{Name: rec.DisplayName, ID: rec.ID, Score: scoreExact, Highlight: q})
		seen[rec.ID] = true
	}

	for _, rec := range r.registry.All() {
		if seen[rec.ID] {
			continue
		}
		if score, ok := scoreRecord(rec, q); ok {
			results = append(results, Result{Name: rec.DisplayName, ID: rec.ID, Score: score, Highlight: q})
			seen[rec.ID] = true
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func scoreRecord(rec buildings.Record, q string) (float64, bool) {
	display := strings.ToLower(rec.DisplayName)
	full := strings.ToLower(rec.FullName)

	switch {
	case display == q || full == q:
		return scoreExact, true
	case strings.HasPrefix(display, q) || strings.HasPrefix(full, q):
		return scorePrefix, true
	case strings.Contains(display, q) || strings.Contains(full, q):
		return scoreSubstring, true
	}

	sim := Similarity(q, display)
	if s := Similarity(q, full); s > sim {
		sim = s
	}
	if sim > fuzzyThreshold {
		return sim * fuzzyWeight, true
	}
	return 0, false
}

// Similarity is 1 minus the case-insensitive edit distance normalized by the longer
// string's length. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(longest-dist) / float64(longest)
}

// Highlight wraps every case-insensitive occurrence of query in name with the
// ranker's markers.
func (r *Ranker) Highlight(name, query string) string {
	return highlight(name, query, r.markOpen, r.markClose)
}

// HighlightMatch wraps every case-insensitive occurrence of query in name with
// <mark> tags.
func HighlightMatch(name, query string) string {
	return highlight(name, query, defaultMarkOpen, defaultMarkClose)
}

func highlight(name, query, openTag, closeTag string) string {
	if name == "" || query == "" {
		return name
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))
	return re.ReplaceAllStringFunc(name, func(m string) string {
		return openTag + m + closeTag
	})
}
