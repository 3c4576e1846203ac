package assets

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Flavor is the rendering convention generated modules and rewritten sites follow.
type Flavor int

const (
	// FlavorNone binds every vector glyph to its raw markup string.
	FlavorNone Flavor = iota
	// FlavorComponent wraps vector glyphs in a component that merges caller attributes (React).
	FlavorComponent
	// FlavorDirective wraps vector glyphs in an accessor returning a lazy render handle (Lit).
	FlavorDirective
)

func (f Flavor) String() string {
	switch f {
	case FlavorComponent:
		return "component"
	case FlavorDirective:
		return "directive"
	default:
		return "none"
	}
}

// IndexFile returns the file name of the generated module for the flavor.
func (f Flavor) IndexFile() string {
	if f == FlavorComponent {
		return "index.tsx"
	}
	return "index.ts"
}

// ParseFlavor accepts both the flavor names and the framework aliases
// ("react", "lit", "base").
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "base":
		return FlavorNone, nil
	case "component", "react":
		return FlavorComponent, nil
	case "directive", "lit":
		return FlavorDirective, nil
	}
	return FlavorNone, fmt.Errorf("unknown flavor %q (must be none, component or directive)", s)
}

// FlavorForFile derives the flavor of a target document from its file type.
// The boolean is false for file types that are never rewritten.
func FlavorForFile(path string) (Flavor, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return FlavorComponent, true
	case ".ts", ".js":
		return FlavorDirective, true
	}
	return FlavorNone, false
}

// Kind classifies an asset leaf by extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindVector
	KindRaster
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindRaster:
		return "raster"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

var rasterExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".avif": true, ".ico": true,
}

// KindOf returns the asset kind of a file name.
func KindOf(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".svg" {
		return KindVector
	}
	if rasterExtensions[ext] {
		return KindRaster
	}
	return KindUnknown
}

// BaseName returns the file name without its extension.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
