package assets

import (
	"fmt"
	"os"
)

// Binding is one entry of a directory that the generated module of that
// directory exports.
type Binding struct {
	ID   string // sanitized identifier
	Name string // entry name inside the directory
	Kind Kind   // KindDirectory, KindVector or KindRaster
}

// Collision records two entries of one directory that sanitize to the same
// identifier. The one enumerated last is kept.
type Collision struct {
	Dir        string
	Identifier string
	Kept       string
	Dropped    string
}

// ReadBindings lists the entries of dir that become bindings of its module,
// in directory order. Hidden entries and unknown file types are skipped.
// Entries whose identifiers collide resolve last-write-wins: the kept entry
// takes the position of the first one and the dropped entry is reported.
//
// Both the indexer and IdentifierMap resolve a directory through this
// function, so an accessor path exists exactly when a module exports it.
func ReadBindings(dir string) ([]Binding, []Collision, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %q: %w", dir, err)
	}

	var (
		bindings   []Binding
		collisions []Collision
		position   = make(map[string]int)
	)

	for _, entry := range entries {
		name := entry.Name()
		if Hidden(name) {
			continue
		}

		var bd Binding
		if entry.IsDir() {
			bd = Binding{ID: Sanitize(name), Name: name, Kind: KindDirectory}
		} else {
			kind := KindOf(name)
			if kind == KindUnknown {
				continue
			}
			bd = Binding{ID: Sanitize(BaseName(name)), Name: name, Kind: kind}
		}

		if i, ok := position[bd.ID]; ok {
			collisions = append(collisions, Collision{
				Dir:        dir,
				Identifier: bd.ID,
				Kept:       bd.Name,
				Dropped:    bindings[i].Name,
			})
			bindings[i] = bd
			continue
		}
		position[bd.ID] = len(bindings)
		bindings = append(bindings, bd)
	}

	return bindings, collisions, nil
}
