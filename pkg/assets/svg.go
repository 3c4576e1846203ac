package assets

import (
	"regexp"
	"strings"
)

var (
	fillAttrRe = regexp.MustCompile(`(?i)\s+fill\s*=\s*(?:"[^"]*"|'[^']*')`)
	svgRootRe  = regexp.MustCompile(`(?i)<svg\b[^>]*?(/?)>`)
)

// CurrentColorFill is the single fill declaration a normalized glyph carries.
const CurrentColorFill = `fill="currentColor"`

// NormalizeSVGFill makes a glyph inherit its container's foreground color.
// Every fill attribute is removed and exactly one fill="currentColor" is set on
// the root svg element. Markup without an svg element is returned unchanged
// and reported with ok=false.
func NormalizeSVGFill(svg string) (out string, ok bool) {
	loc := svgRootRe.FindStringSubmatchIndex(svg)
	if loc == nil {
		return svg, false
	}

	stripped := fillAttrRe.ReplaceAllString(svg, "")

	// Locations shift after stripping, find the root again.
	loc = svgRootRe.FindStringSubmatchIndex(stripped)
	if loc == nil {
		return svg, false
	}
	insertAt := loc[2] // before "/>" or ">"

	var sb strings.Builder
	sb.Grow(len(stripped) + len(CurrentColorFill) + 1)
	sb.WriteString(strings.TrimRight(stripped[:insertAt], " \t\r\n"))
	sb.WriteString(" ")
	sb.WriteString(CurrentColorFill)
	sb.WriteString(stripped[insertAt:])
	return sb.String(), true
}
