package extractor

import (
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMarker is the class token the Material Symbols font uses to mark glyph elements.
const DefaultMarker = "material-symbols-outlined"

// Names is a set of distinct glyph names.
type Names map[string]struct{}

// Add inserts a name; blank names are ignored.
func (n Names) Add(name string) {
	name = NormalizeName(name)
	if name == "" {
		return
	}
	n[name] = struct{}{}
}

// Has reports whether the set contains the name.
func (n Names) Has(name string) bool {
	_, ok := n[NormalizeName(name)]
	return ok
}

// Len returns the number of distinct names.
func (n Names) Len() int { return len(n) }

// Merge adds every name of other to n.
func (n Names) Merge(other Names) {
	for name := range other {
		n[name] = struct{}{}
	}
}

// Sorted returns the names in lexical order.
func (n Names) Sorted() []string {
	out := make([]string, 0, len(n))
	for name := range n {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// NormalizeName trims and lower-cases a glyph name.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}

	quotedLiteralRe = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// elementPattern matches an element whose class (or className) attribute
// carries marker as a whole class token, capturing its inner text.
func elementPattern(marker string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()

	if re, ok := patternCache[marker]; ok {
		return re
	}
	re := regexp.MustCompile(`<\w[\w.-]*[^>]*?\b(?:class|className)\s*=\s*["'](?:[^"']*?\s)?` +
		regexp.QuoteMeta(marker) + `(?:\s[^"']*)?["'][^>]*?>([\s\S]*?)</[\w.-]+\s*>`)
	patternCache[marker] = re
	return re
}

// Extract scans a document for glyph-placeholder elements and returns the
// referenced glyph names.
//
// Literal inner text is taken as one name. An expression such as
// {active ? 'home' : 'search'} or ${...} yields every quoted literal it
// contains, so the result may over-approximate. Empty inner text and inner
// text holding nested markup are ignored.
func Extract(text, marker string) Names {
	if marker == "" {
		marker = DefaultMarker
	}

	names := make(Names)
	if !strings.Contains(text, marker) {
		return names
	}

	for _, m := range elementPattern(marker).FindAllStringSubmatch(text, -1) {
		inner := strings.TrimSpace(m[1])
		if inner == "" {
			continue
		}

		if isExpression(inner) {
			for _, lit := range quotedLiteralRe.FindAllStringSubmatch(inner, -1) {
				names.Add(lit[1])
			}
			continue
		}
		if strings.Contains(inner, "<") {
			// nested markup, not a bare name
			continue
		}

		names.Add(inner)
	}

	return names
}

// ExtractFile reads path and extracts its glyph names.
// Unreadable files yield an empty set.
func ExtractFile(path, marker string) Names {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Names)
	}
	return Extract(string(data), marker)
}

func isExpression(s string) bool {
	return strings.HasSuffix(s, "}") && (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "${"))
}
