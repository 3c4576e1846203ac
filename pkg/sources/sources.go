// Package sources discovers the script and markup documents of a web
// project that glyph names are extracted from and injected into.
package sources

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kataras/iconstitch/pkg/assets"
)

// Extensions lists the file types Collect returns.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx"}

// IsSource reports whether path has one of the collected extensions.
func IsSource(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Collect walks each root and returns the source files below it, sorted and
// without duplicates. Directories named node_modules or starting with a dot
// are skipped. A root that is itself a source file is returned as is.
//
// Paths listed in exclude (typically the generated asset tree) are pruned.
func Collect(roots []string, exclude ...string) ([]string, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = struct{}{}
		}
	}

	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && assets.Hidden(d.Name()) {
					return filepath.SkipDir
				}
				if abs, err := filepath.Abs(path); err == nil {
					if _, ok := skip[abs]; ok {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if IsSource(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("sources: walk %q: %w", root, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}
