package buildings

import "strings"

// minSharedWords is the fuzzy-match floor. One shared word ("Hall") matches far too
// much of the catalog.
const minSharedWords = 2

// entry is one name in the reconciliation table: a canonical name or a registered
// data-source name, tagged with the record it belongs to.
type entry struct {
	text   string
	words  map[string]struct{}
	record int
	clean  bool
}

// Reconciler maps canonical buildings onto data-source names and back.
type Reconciler struct {
	registry *Registry
	table    []entry
}

// NewReconciler builds the reconciliation table for a registry.
func NewReconciler(registry *Registry) *Reconciler {
	rc := &Reconciler{registry: registry}
	for i, rec := range registry.records {
		seen := make(map[string]bool)
		names := append([]string{rec.FullName, rec.DisplayName}, rec.SourceNames...)
		for _, n := range names {
			if seen[n] {
				continue
			}
			seen[n] = true
			rc.table = append(rc.table, entry{
				text:   n,
				words:  wordSet(Standardize(n)),
				record: i,
				clean:  isCleanCandidate(n),
			})
		}
	}
	return rc
}

// Resolve finds the building for an id, a canonical name or a raw data-source name.
func (rc *Reconciler) Resolve(nameOrID string) (Record, bool) {
	if nameOrID == "" {
		return Record{}, false
	}
	if rec, ok := rc.registry.ByID(nameOrID); ok {
		return rec, true
	}
	if rec, ok := rc.registry.ByName(nameOrID); ok {
		return rec, true
	}
	return rc.Canonicalize(nameOrID)
}

// ToSourceNames returns every data-source name of a building. Callers query the source
// once per name and merge the results. Unknown buildings yield an empty slice.
func (rc *Reconciler) ToSourceNames(canonicalNameOrID string) []string {
	rec, ok := rc.Resolve(canonicalNameOrID)
	if !ok {
		return []string{}
	}
	return SourceNamesOf(rec)
}

// SourceNamesOf returns the data-source names registered for rec, or its cleaned full
// name when none are registered.
func SourceNamesOf(rec Record) []string {
	if len(rec.SourceNames) > 0 {
		return append([]string(nil), rec.SourceNames...)
	}
	return []string{CleanName(rec.FullName)}
}

// ToCanonicalName maps a raw data-source name onto the canonical full name. Names that
// cannot be matched come back cleaned but otherwise unchanged.
func (rc *Reconciler) ToCanonicalName(raw string) string {
	if rec, ok := rc.Canonicalize(raw); ok {
		return rec.FullName
	}
	return CleanName(raw)
}

// Canonicalize runs the reconciliation pipeline: exact hit, cleaned hit, then fuzzy
// containment on whole words.
func (rc *Reconciler) Canonicalize(raw string) (Record, bool) {
	if raw == "" {
		return Record{}, false
	}

	if rec, ok := rc.exact(raw); ok {
		return rec, true
	}

	cleaned := CleanName(raw)
	if rec, ok := rc.exact(cleaned); ok {
		return rec, true
	}
	if rec, ok := rc.registry.ByName(cleaned); ok {
		return rec, true
	}
	if rec, ok := rc.registry.BySourceName(Standardize(cleaned)); ok {
		return rec, true
	}

	if idx, ok := rc.fuzzy(Standardize(cleaned)); ok {
		return rc.registry.records[rc.table[idx].record], true
	}
	return Record{}, false
}

func (rc *Reconciler) exact(name string) (Record, bool) {
	if rec, ok := rc.registry.BySourceName(name); ok {
		return rec, true
	}
	if idx, ok := rc.registry.indexByName(name); ok {
		return rc.registry.records[idx], true
	}
	return Record{}, false
}

func (rc *Reconciler) fuzzy(name string) (int, bool) {
	input := wordSet(name)
	if len(input) < minSharedWords {
		return 0, false
	}
	best := -1
	for i, e := range rc.table {
		if !containmentMatch(input, e.words) {
			continue
		}
		if best < 0 || (e.clean && !rc.table[best].clean) {
			best = i
		}
		if rc.table[best].clean {
			break
		}
	}
	return best, best >= 0
}

// FuzzyMatch picks the candidate sharing at least two whole words with name where one
// word set contains the other. Candidates without a duplication artifact or an "n.a."
// placeholder are preferred; remaining ties go to the earliest candidate.
func FuzzyMatch(name string, candidates []string) (string, bool) {
	input := wordSet(Standardize(CleanName(name)))
	if len(input) < minSharedWords {
		return "", false
	}
	best := -1
	for i, c := range candidates {
		if !containmentMatch(input, wordSet(Standardize(c))) {
			continue
		}
		if best < 0 || (isCleanCandidate(c) && !isCleanCandidate(candidates[best])) {
			best = i
		}
		if isCleanCandidate(candidates[best]) {
			break
		}
	}
	if best < 0 {
		return "", false
	}
	return candidates[best], true
}

func containmentMatch(a, b map[string]struct{}) bool {
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	if shared < minSharedWords {
		return false
	}
	return shared == len(a) || shared == len(b)
}

func isCleanCandidate(name string) bool {
	return !HasDuplicationArtifact(name) && !hasPlaceholderSuffix(name)
}

func hasPlaceholderSuffix(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, ")")
	return strings.HasSuffix(n, "n.a.") || strings.HasSuffix(n, "n.a") || strings.HasSuffix(n, "n/a")
}

func wordSet(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words(name) {
		set[w] = struct{}{}
	}
	return set
}
