package buildings

import (
	"regexp"
	"strings"
	"unicode"
)

// maxRepetitions bounds the "<Name> <n> <Name>" artifact: the source has been seen
// repeating a name up to four times.
const maxRepetitions = 4

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

type abbreviation struct {
	pattern  *regexp.Regexp
	expanded string
}

// abbreviations is applied in order; later rules see the output of earlier ones.
var abbreviations = buildAbbreviations([][2]string{
	{"Admin", "Administration Building"},
	{"Eng", "Engineering"},
	{"Lab", "Laboratory"},
	{"Lib", "Library"},
	{"Ctr", "Center"},
	{"Bldg", "Building"},
	{"Fac", "Facility"},
	{"Inst", "Institute"},
	{"Res", "Residence"},
	{"Sci", "Science"},
	{"Tech", "Technology"},
	{"Univ", "University"},
	{"Col", "College"},
	{"Sch", "School"},
	{"Dept", "Department"},
	{"Div", "Division"},
	{"Prog", "Program"},
})

func buildAbbreviations(pairs [][2]string) []abbreviation {
	out := make([]abbreviation, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, abbreviation{
			pattern:  regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			expanded: p[1],
		})
	}
	return out
}

// CleanName strips the duplication artifact the scheduling source produces when a
// building name is concatenated with a room number and repeated, e.g.
// "Lincoln Hall 1000 Lincoln Hall" -> "Lincoln Hall". Input without the artifact is
// returned unchanged.
func CleanName(raw string) string {
	name := raw
	for {
		next := cleanOnce(name)
		if next == name {
			return name
		}
		name = next
	}
}

func cleanOnce(name string) string {
	if name == "" {
		return name
	}
	for reps := 2; reps <= maxRepetitions; reps++ {
		if base, ok := repeatedBase(name, reps); ok {
			return base
		}
	}
	if base, ok := numericSplitBase(name); ok {
		return base
	}
	return name
}

// repeatedBase reports whether name is exactly X followed by (reps-1) copies of
// "<spaces><digits><spaces>X", trying the shortest X first.
func repeatedBase(name string, reps int) (string, bool) {
	for i := 1; i < len(name); i++ {
		if !isSpace(name[i]) {
			continue
		}
		base := name[:i]
		rest := name[i:]
		ok := true
		for r := 1; r < reps; r++ {
			rest, ok = consumeSeparator(rest)
			if !ok || !strings.HasPrefix(rest, base) {
				ok = false
				break
			}
			rest = rest[len(base):]
		}
		if ok && rest == "" {
			return base, true
		}
	}
	return "", false
}

// consumeSeparator strips a leading "<spaces><digits><spaces>" run.
func consumeSeparator(s string) (string, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i == 0 {
		return s, false
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return s, false
	}
	k := j
	for k < len(s) && isSpace(s[k]) {
		k++
	}
	if k == j {
		return s, false
	}
	return s[k:], true
}

// numericSplitBase handles artifacts the fixed patterns miss, such as a truncated
// repeat: "Siebel Center 1404 Siebel" -> "Siebel Center".
func numericSplitBase(name string) (string, bool) {
	tokens := strings.Fields(name)
	for i := 1; i < len(tokens)-1; i++ {
		if !isNumeric(tokens[i]) {
			continue
		}
		before, after := tokens[:i], tokens[i+1:]
		if len(after) > len(before) {
			continue
		}
		if equalTokens(before[:len(after)], after) {
			return strings.Join(before, " "), true
		}
	}
	return "", false
}

// HasDuplicationArtifact reports whether CleanName would change name.
func HasDuplicationArtifact(name string) bool {
	return CleanName(name) != name
}

// Standardize expands common abbreviations ("Eng Bldg" -> "Engineering Building").
func Standardize(name string) string {
	if name == "" {
		return name
	}
	out := name
	for _, a := range abbreviations {
		out = a.pattern.ReplaceAllLiteralString(out, a.expanded)
	}
	return out
}

// GenerateID derives a URL-safe id from a building name.
func GenerateID(name string) string {
	if name == "" {
		return ""
	}
	id := strings.ToLower(name)
	id = nonSlugChars.ReplaceAllString(id, "")
	id = strings.TrimSpace(id)
	return whitespace.ReplaceAllString(id, "-")
}

// words splits a name into lower-case alphanumeric words.
func words(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
