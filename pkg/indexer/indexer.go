package indexer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kataras/iconstitch/pkg/assets"
)

// GeneratedMarker is the first line of every generated module.
const GeneratedMarker = "// Code generated by iconstitch. DO NOT EDIT."

// IndexingError reports an asset root that cannot be indexed at all.
// It is raised before any module is written.
type IndexingError struct {
	Root string
	Err  error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexer: %s: %v", e.Root, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// ErrNotDirectory is wrapped by IndexingError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// Entry is one binding of the generated tree.
type Entry struct {
	Identifier string `toml:"identifier"`
	Path       string `toml:"path"` // dotted accessor path from the tree root
	File       string `toml:"file"` // slash-separated, relative to the tree root
	Kind       string `toml:"kind"`
}

// Collision records two entries of one directory that sanitize to the same
// identifier. The one enumerated last is kept and a dropped directory is not
// indexed at all.
type Collision = assets.Collision

// Result holds the output of an indexing run.
type Result struct {
	Modules    []string // written module files, children before parents
	Entries    []Entry
	Collisions []Collision
	Warnings   []error // non-fatal per-leaf problems
}

// Build compiles the directory tree at root into one generated module per
// directory. Sub-directories are generated first because their parent
// imports them.
func Build(root string, flavor assets.Flavor) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &IndexingError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &IndexingError{Root: root, Err: ErrNotDirectory}
	}

	b := &builder{root: root, flavor: flavor, result: &Result{}}
	if _, err := b.indexDir(root, nil); err != nil {
		return b.result, err
	}
	return b.result, nil
}

type bindingKind int

const (
	bindVector bindingKind = iota
	bindRaster
	bindDir
)

type binding struct {
	id     string
	kind   bindingKind
	file   string // entry name inside the directory
	markup string // normalized svg, vector only
}

type builder struct {
	root   string
	flavor assets.Flavor
	result *Result
}

func (b *builder) warnf(format string, args ...any) {
	b.result.Warnings = append(b.result.Warnings, fmt.Errorf(format, args...))
}

// indexDir generates the module of dir and reports whether one was written.
func (b *builder) indexDir(dir string, prefix []string) (bool, error) {
	entries, collisions, err := assets.ReadBindings(dir)
	if err != nil {
		if dir == b.root {
			return false, &IndexingError{Root: dir, Err: err}
		}
		b.warnf("skip directory %s: %w", dir, err)
		return false, nil
	}
	b.result.Collisions = append(b.result.Collisions, collisions...)

	bindings := make([]binding, 0, len(entries))
	for _, e := range entries {
		fullPath := filepath.Join(dir, e.Name)

		switch e.Kind {
		case assets.KindDirectory:
			written, err := b.indexDir(fullPath, append(prefix[:len(prefix):len(prefix)], e.ID))
			if err != nil {
				return false, err
			}
			if written {
				bindings = append(bindings, binding{id: e.ID, kind: bindDir, file: e.Name})
			}
		case assets.KindVector:
			data, err := os.ReadFile(fullPath)
			if err != nil {
				b.warnf("skip %s: %w", fullPath, err)
				continue
			}
			svg, ok := assets.NormalizeSVGFill(string(data))
			if !ok {
				b.warnf("%s: no <svg> root element, fill left as is", fullPath)
			}
			bindings = append(bindings, binding{id: e.ID, kind: bindVector, file: e.Name, markup: svg})
		case assets.KindRaster:
			bindings = append(bindings, binding{id: e.ID, kind: bindRaster, file: e.Name})
		}
	}

	for _, bd := range bindings {
		if bd.kind == bindDir {
			continue
		}
		rel, _ := filepath.Rel(b.root, filepath.Join(dir, bd.file))
		kind := assets.KindVector
		if bd.kind == bindRaster {
			kind = assets.KindRaster
		}
		b.result.Entries = append(b.result.Entries, Entry{
			Identifier: bd.id,
			Path:       strings.Join(append(prefix[:len(prefix):len(prefix)], bd.id), "."),
			File:       filepath.ToSlash(rel),
			Kind:       kind.String(),
		})
	}

	out := filepath.Join(dir, b.flavor.IndexFile())
	if err := os.WriteFile(out, []byte(renderModule(b.flavor, bindings)), 0644); err != nil {
		return false, fmt.Errorf("indexer: write %s: %w", out, err)
	}
	b.removeStale(dir)
	b.result.Modules = append(b.result.Modules, out)
	return true, nil
}

// removeStale deletes a module generated for another flavor so imports of
// the directory stay unambiguous. Hand-written files are never touched.
func (b *builder) removeStale(dir string) {
	for _, name := range []string{"index.ts", "index.tsx"} {
		if name == b.flavor.IndexFile() {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if bytes.HasPrefix(data, []byte(GeneratedMarker)) {
			if err := os.Remove(path); err != nil {
				b.warnf("remove stale module %s: %w", path, err)
			}
		}
	}
}
