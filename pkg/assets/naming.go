package assets

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Sanitize converts a file or glyph name into a code-safe camelCase identifier.
// Runs of characters other than ASCII letters and digits act as word separators,
// the first word starts lower-case and every following word starts upper-case.
// A leading digit gets an underscore prefix and an empty result becomes "unnamed".
//
// Sanitize("My-Icon (2)") == "myIcon2" and Sanitize("my_icon_2") == "myIcon2".
func Sanitize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !isASCIIAlnum(r)
	})
	if len(words) == 0 {
		return "unnamed"
	}

	var sb strings.Builder
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if i == 0 {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(unicode.ToUpper(r))
		}
		sb.WriteString(w[size:])
	}

	id := sb.String()
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// Key returns the case-insensitive lookup form of an identifier or name.
func Key(s string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Hidden reports whether a directory entry is excluded from indexing.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
