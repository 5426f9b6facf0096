package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyspaces/internal/buildings"
)

const testCatalog = `
buildings:
  - id: main-library
    full_name: Main Library
    display_name: Main Lib
  - id: library-annex
    full_name: Library Annex
  - id: lincoln-hall
    full_name: Lincoln Hall
search_aliases:
  - {term: stacks, building: Library Annex}
`

func newTestRanker(t *testing.T, opts ...Option) *Ranker {
	t.Helper()
	cat, err := buildings.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return NewRanker(buildings.NewRegistry(cat), opts...)
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestSearch_Tiers(t *testing.T) {
	r := newTestRanker(t)

	tests := []struct {
		name   string
		query  string
		ids    []string
		scores []float64
	}{
		{"alias", "STACKS", []string{"library-annex"}, []float64{1.0}},
		{"exact full name", "library annex", []string{"library-annex"}, []float64{1.0}},
		{"exact display name", "main lib", []string{"main-library"}, []float64{1.0}},
		{"prefix beats substring", "lib", []string{"library-annex", "main-library"}, []float64{0.9, 0.7}},
		{"substring", "hall", []string{"lincoln-hall"}, []float64{0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.Search(tt.query, 5)
			require.Equal(t, tt.ids, ids(results))
			for i, score := range tt.scores {
				assert.InDelta(t, score, results[i].Score, 1e-9)
			}
		})
	}
}

func TestSearch_Fuzzy(t *testing.T) {
	r := newTestRanker(t)

	results := r.Search("Lincln Hall", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "lincoln-hall", results[0].ID)
	assert.InDelta(t, 11.0/12.0*0.5, results[0].Score, 1e-9)
	assert.Equal(t, "lincln hall", results[0].Highlight)

	assert.Empty(t, r.Search("zzzz", 5))
}

func TestSearch_DedupByBuilding(t *testing.T) {
	r := newTestRanker(t)

	results := r.Search("main", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "main-library", results[0].ID)
	assert.Equal(t, "Main Lib", results[0].Name)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)

	// alias and name tiers both match, still one entry
	results = r.Search("stacks", 10)
	assert.Len(t, results, 1)
}

func TestSearch_ShortQuery(t *testing.T) {
	r := newTestRanker(t)
	for _, q := range []string{"", "a", "  l  "} {
		results := r.Search(q, 5)
		assert.NotNil(t, results)
		assert.Empty(t, results, q)
	}
}

func TestSearch_MaxResults(t *testing.T) {
	r := NewRanker(buildings.Default())

	assert.Len(t, r.Search("hall", 3), 3)
	assert.LessOrEqual(t, len(r.Search("hall", 0)), DefaultMaxResults)
	assert.Len(t, newTestRanker(t).Search("lib", 1), 1)
}

func TestSearch_Grainger(t *testing.T) {
	r := NewRanker(buildings.Default())

	results := r.Search("grainger", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "grainger-engineering-library", results[0].ID)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestSearch_Deterministic(t *testing.T) {
	r := NewRanker(buildings.Default())

	first := r.Search("sieb", 5)
	second := r.Search("sieb", 5)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "siebel-center-computer-science", first[0].ID)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("ABC", "abc"))
	assert.InDelta(t, 4.0/7.0, Similarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", ""))
}

func TestHighlightMatch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		query    string
		expected string
	}{
		{"case insensitive", "Siebel Center for Design", "sIEBEL", "<mark>Siebel</mark> Center for Design"},
		{"every occurrence", "Hall of Hall", "hall", "<mark>Hall</mark> of <mark>Hall</mark>"},
		{"regexp metacharacters", "C++ Lab (East)", "(east)", "C++ Lab <mark>(East)</mark>"},
		{"empty query", "Lincoln Hall", "", "Lincoln Hall"},
		{"no match", "Lincoln Hall", "xyz", "Lincoln Hall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HighlightMatch(tt.input, tt.query))
		})
	}
}

func TestRanker_HighlightMarkers(t *testing.T) {
	r := newTestRanker(t, WithMarkers("[", "]"))
	assert.Equal(t, "Main [Lib]", r.Highlight("Main Lib", "lib"))
}
