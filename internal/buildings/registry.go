// Package buildings resolves campus building identities: the canonical catalog, the
// names the scheduling data source uses for each building, and the cleanup rules that
// reconcile the two.
package buildings

import (
	"fmt"
	"strings"
	"sync"
)

// Record is a canonical building.
type Record struct {
	ID            string   `json:"id"`
	FullName      string   `json:"fullName"`
	DisplayName   string   `json:"displayName"`
	LegacyPath    string   `json:"legacyPath"`
	LegacyAliases []string `json:"legacyAliases,omitempty"`
	SourceNames   []string `json:"sourceNames,omitempty"`
}

// SearchAlias is a colloquial search term bound to a building.
type SearchAlias struct {
	Term       string
	BuildingID string
}

// Registry is an immutable, ordered building catalog. It is safe for concurrent use.
type Registry struct {
	records []Record
	byID    map[string]int
	// bySource maps a raw data-source name onto its record index.
	bySource map[string]int
	aliases  []SearchAlias
	byTerm   map[string]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded catalog. The embedded catalog
// is validated by tests, so a failure here is a build defect.
func Default() *Registry {
	defaultOnce.Do(func() {
		cat, err := EmbeddedCatalog()
		if err != nil {
			panic(fmt.Sprintf("buildings: embedded catalog: %v", err))
		}
		defaultRegistry = NewRegistry(cat)
	})
	return defaultRegistry
}

// NewRegistry builds a registry from a validated catalog.
func NewRegistry(cat *Catalog) *Registry {
	r := &Registry{
		records:  make([]Record, 0, len(cat.Buildings)),
		byID:     make(map[string]int, len(cat.Buildings)),
		bySource: make(map[string]int),
		byTerm:   make(map[string]int, len(cat.SearchAliases)),
	}

	for _, b := range cat.Buildings {
		idx := len(r.records)
		r.records = append(r.records, Record{
			ID:            b.ID,
			FullName:      b.FullName,
			DisplayName:   b.DisplayName,
			LegacyPath:    b.Path,
			LegacyAliases: append([]string(nil), b.LegacyPaths...),
			SourceNames:   append([]string(nil), b.SourceNames...),
		})
		r.byID[b.ID] = idx
		for _, s := range b.SourceNames {
			if _, ok := r.bySource[s]; !ok {
				r.bySource[s] = idx
			}
		}
	}

	for _, a := range cat.SearchAliases {
		term := strings.ToLower(strings.TrimSpace(a.Term))
		idx, ok := r.indexByDisplayName(a.Building)
		if !ok {
			continue
		}
		if _, dup := r.byTerm[term]; dup {
			continue
		}
		r.byTerm[term] = len(r.aliases)
		r.aliases = append(r.aliases, SearchAlias{Term: term, BuildingID: r.records[idx].ID})
	}

	return r
}

// ByID returns the building with the given id.
func (r *Registry) ByID(id string) (Record, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Record{}, false
	}
	return r.records[idx], true
}

// ByPath returns the building whose legacy map path (or a migration alias of it)
// equals path.
func (r *Registry) ByPath(path string) (Record, bool) {
	if path == "" {
		return Record{}, false
	}
	for _, rec := range r.records {
		if rec.LegacyPath == path {
			return rec, true
		}
		for _, alias := range rec.LegacyAliases {
			if alias == path {
				return rec, true
			}
		}
	}
	return Record{}, false
}

// ByName matches name against full and display names, retrying with abbreviations
// expanded. The first record in catalog order wins.
func (r *Registry) ByName(name string) (Record, bool) {
	if name == "" {
		return Record{}, false
	}
	if idx, ok := r.indexByName(name); ok {
		return r.records[idx], true
	}
	if std := Standardize(name); std != name {
		if idx, ok := r.indexByName(std); ok {
			return r.records[idx], true
		}
	}
	return Record{}, false
}

// BySourceName returns the building a raw data-source name is registered under.
func (r *Registry) BySourceName(raw string) (Record, bool) {
	idx, ok := r.bySource[raw]
	if !ok {
		return Record{}, false
	}
	return r.records[idx], true
}

// All returns every record in catalog order.
func (r *Registry) All() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// IDs returns every building id in catalog order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.ID
	}
	return out
}

// DisplayNames returns every display name in catalog order.
func (r *Registry) DisplayNames() []string {
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.DisplayName
	}
	return out
}

// Len returns the number of buildings.
func (r *Registry) Len() int {
	return len(r.records)
}

// SearchAliases returns the colloquial search terms in catalog order.
func (r *Registry) SearchAliases() []SearchAlias {
	out := make([]SearchAlias, len(r.aliases))
	copy(out, r.aliases)
	return out
}

// AliasFor returns the building bound to a search term (case-insensitive).
func (r *Registry) AliasFor(term string) (Record, bool) {
	idx, ok := r.byTerm[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return Record{}, false
	}
	return r.ByID(r.aliases[idx].BuildingID)
}

func (r *Registry) indexByName(name string) (int, bool) {
	for i, rec := range r.records {
		if rec.FullName == name || rec.DisplayName == name {
			return i, true
		}
	}
	return 0, false
}

func (r *Registry) indexByDisplayName(name string) (int, bool) {
	for i, rec := range r.records {
		if rec.DisplayName == name {
			return i, true
		}
	}
	return 0, false
}
