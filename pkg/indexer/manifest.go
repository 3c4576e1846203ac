package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest lists every binding of a generated asset tree.
type Manifest struct {
	Root    string  `toml:"root"`
	Flavor  string  `toml:"flavor"`
	Entries []Entry `toml:"entries"`
}

// WriteManifest encodes m as TOML to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("indexer: create manifest directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexer: create manifest %q: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("indexer: encode manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("indexer: read manifest %q: %w", path, err)
	}
	return &m, nil
}
