package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IdentifierMap maps case-folded glyph names to the dotted path of their
// binding inside the generated asset tree rooted at root.
//
// Each vector leaf is reachable both by its raw base name and by its
// sanitized identifier, so "arrow_back", "arrow-back" and "arrowBack" all
// resolve to the same entry. Sub-directories add a path segment. Entries
// dropped by an identifier collision are not reachable, see ReadBindings.
func IdentifierMap(root string) (map[string]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("asset tree %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset tree %q is not a directory", root)
	}

	m := make(map[string]string)
	if err := collectIdentifiers(root, nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

func collectIdentifiers(dir string, prefix []string, m map[string]string) error {
	bindings, _, err := ReadBindings(dir)
	if err != nil {
		return err
	}

	for _, bd := range bindings {
		path := append(prefix[:len(prefix):len(prefix)], bd.ID)
		switch bd.Kind {
		case KindDirectory:
			if err := collectIdentifiers(filepath.Join(dir, bd.Name), path, m); err != nil {
				return err
			}
		case KindVector:
			AddIdentifier(m, BaseName(bd.Name), bd.ID, strings.Join(path, "."))
		}
	}
	return nil
}

// AddIdentifier makes the dotted path reachable by the raw base name and by
// the sanitized identifier of a vector leaf.
func AddIdentifier(m map[string]string, base, id, path string) {
	m[Key(base)] = path
	m[Key(id)] = path
}

// Resolve looks a glyph name up in an identifier map: exact name first,
// then its sanitized form.
func Resolve(m map[string]string, name string) (string, bool) {
	if p, ok := m[Key(name)]; ok {
		return p, true
	}
	p, ok := m[Key(Sanitize(name))]
	return p, ok
}
