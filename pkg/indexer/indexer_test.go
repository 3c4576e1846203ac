package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/kataras/iconstitch/pkg/assets"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const homeSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="#000000"><path d="M10 20v-6h4v6"/></svg>`
const menuSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M3 18h18"/></svg>`

func newIconTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "icons")
	writeFile(t, filepath.Join(root, "home.svg"), homeSVG)
	writeFile(t, filepath.Join(root, "nav", "menu.svg"), menuSVG)
	return root
}

func TestBuildEndToEnd(t *testing.T) {
	root := newIconTree(t)

	res, err := Build(root, assets.FlavorComponent)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantModules := []string{
		filepath.Join(root, "nav", "index.tsx"),
		filepath.Join(root, "index.tsx"),
	}
	if len(res.Modules) != len(wantModules) {
		t.Fatalf("Build() wrote %v, want %v", res.Modules, wantModules)
	}
	for i, m := range wantModules {
		if res.Modules[i] != m {
			t.Errorf("Modules[%d] = %q, want %q (children first)", i, res.Modules[i], m)
		}
	}

	rootModule := readFile(t, filepath.Join(root, "index.tsx"))
	for _, want := range []string{
		GeneratedMarker,
		"export function createSvgComponent",
		`import _nav from "./nav";`,
		"  nav: _nav,",
		"  home: createSvgComponent(_home),",
		`fill="currentColor"`,
	} {
		if !strings.Contains(rootModule, want) {
			t.Errorf("root module missing %q:\n%s", want, rootModule)
		}
	}
	if strings.Contains(rootModule, "#000000") {
		t.Errorf("root module kept the original fill:\n%s", rootModule)
	}

	navModule := readFile(t, filepath.Join(root, "nav", "index.tsx"))
	if !strings.Contains(navModule, "  menu: createSvgComponent(_menu),") {
		t.Errorf("nav module missing menu binding:\n%s", navModule)
	}

	if len(res.Entries) != 2 {
		t.Fatalf("Entries = %+v, want 2", res.Entries)
	}
	paths := map[string]string{}
	for _, e := range res.Entries {
		paths[e.Path] = e.File
	}
	if paths["home"] != "home.svg" || paths["nav.menu"] != "nav/menu.svg" {
		t.Errorf("Entries paths = %v", paths)
	}
}

func TestBuildFlavors(t *testing.T) {
	tests := []struct {
		flavor     assets.Flavor
		file       string
		wantHeader string
		wantValue  string
	}{
		{flavor: assets.FlavorNone, file: "index.ts", wantValue: "  home: _home,"},
		{flavor: assets.FlavorComponent, file: "index.tsx", wantHeader: "import React from 'react';", wantValue: "  home: createSvgComponent(_home),"},
		{flavor: assets.FlavorDirective, file: "index.ts", wantHeader: "import { unsafeHTML } from 'lit/directives/unsafe-html.js';", wantValue: "  home: glyph(_home),"},
	}

	for _, tt := range tests {
		t.Run(tt.flavor.String(), func(t *testing.T) {
			root := newIconTree(t)
			if _, err := Build(root, tt.flavor); err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			module := readFile(t, filepath.Join(root, tt.file))
			if tt.wantHeader != "" && !strings.Contains(module, tt.wantHeader) {
				t.Errorf("module missing header %q", tt.wantHeader)
			}
			if !strings.Contains(module, tt.wantValue) {
				t.Errorf("module missing %q:\n%s", tt.wantValue, module)
			}
			if tt.flavor == assets.FlavorNone && strings.Contains(module, "import React") {
				t.Errorf("none flavor carries a framework header:\n%s", module)
			}
		})
	}
}

var bindingLine = regexp.MustCompile(`(?m)^  ([A-Za-z_$][\w$]*): `)

func TestBuildBindsEveryLeaf(t *testing.T) {
	root := t.TempDir()
	leaves := []string{"home.svg", "search.svg", "arrow_back.svg", "delete.svg", "3d_rotation.svg", "logo.png", "photo.jpeg"}
	for _, name := range leaves {
		writeFile(t, filepath.Join(root, name), "<svg></svg>")
	}
	writeFile(t, filepath.Join(root, "notes.txt"), "not an asset")
	writeFile(t, filepath.Join(root, ".hidden", "x.svg"), "<svg/>")

	res, err := Build(root, assets.FlavorNone)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	module := readFile(t, filepath.Join(root, "index.ts"))
	got := bindingLine.FindAllStringSubmatch(module, -1)
	if len(got) != len(leaves) {
		t.Fatalf("module has %d bindings, want %d:\n%s", len(got), len(leaves), module)
	}
	if len(res.Entries) != len(leaves) {
		t.Errorf("Entries = %d, want %d", len(res.Entries), len(leaves))
	}
	for _, want := range []string{
		`import _logo from "./logo.png";`,
		"  _3dRotation: __3dRotation,",
		"  delete: _delete,",
		"  arrowBack: _arrowBack,",
	} {
		if !strings.Contains(module, want) {
			t.Errorf("module missing %q:\n%s", want, module)
		}
	}
	if strings.Contains(module, "notes") || strings.Contains(module, "hidden") {
		t.Errorf("module binds skipped files:\n%s", module)
	}
	if _, err := os.Stat(filepath.Join(root, ".hidden", "index.ts")); !os.IsNotExist(err) {
		t.Errorf("hidden directory was indexed")
	}
}

func TestBuildEscapesTemplateLiterals(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "odd.svg"), "<svg><text>`${x}` \\n</text></svg>")

	if _, err := Build(root, assets.FlavorNone); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	module := readFile(t, filepath.Join(root, "index.ts"))
	if !strings.Contains(module, "\\`\\${x}\\` \\\\n") {
		t.Errorf("template literal not escaped:\n%s", module)
	}
}

func TestBuildCollisionLastWriteWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "my-icon.svg"), `<svg id="first"/>`)
	writeFile(t, filepath.Join(root, "my_icon.svg"), `<svg id="second"/>`)

	res, err := Build(root, assets.FlavorNone)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.Collisions) != 1 {
		t.Fatalf("Collisions = %+v, want 1", res.Collisions)
	}
	c := res.Collisions[0]
	if c.Identifier != "myIcon" || c.Kept != "my_icon.svg" || c.Dropped != "my-icon.svg" {
		t.Errorf("Collision = %+v", c)
	}

	module := readFile(t, filepath.Join(root, "index.ts"))
	if strings.Count(module, "  myIcon: ") != 1 || !strings.Contains(module, `id="second"`) || strings.Contains(module, `id="first"`) {
		t.Errorf("collision not resolved last-write-wins:\n%s", module)
	}
}

func TestBuildFileShadowsDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "nav.svg"), homeSVG)
	writeFile(t, filepath.Join(root, "nav", "menu.svg"), menuSVG)

	res, err := Build(root, assets.FlavorComponent)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.Collisions) != 1 {
		t.Fatalf("Collisions = %+v, want 1", res.Collisions)
	}
	if c := res.Collisions[0]; c.Identifier != "nav" || c.Kept != "nav.svg" || c.Dropped != "nav" {
		t.Errorf("Collision = %+v", c)
	}

	if _, err := os.Stat(filepath.Join(root, "nav", "index.tsx")); !os.IsNotExist(err) {
		t.Errorf("the shadowed directory was indexed")
	}
	if len(res.Entries) != 1 || res.Entries[0].File != "nav.svg" || res.Entries[0].Path != "nav" {
		t.Errorf("Entries = %+v, want only nav.svg", res.Entries)
	}
}

func TestBuildRootErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.svg")
	writeFile(t, file, "<svg/>")

	tests := []struct {
		name string
		root string
	}{
		{name: "missing root", root: filepath.Join(dir, "missing")},
		{name: "file root", root: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.root, assets.FlavorNone)
			var ie *IndexingError
			if !errors.As(err, &ie) {
				t.Fatalf("Build() error = %v, want *IndexingError", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "index.ts")); !os.IsNotExist(err) {
		t.Errorf("a module was written despite the fatal error")
	}
}

func TestBuildRemovesStaleFlavorModule(t *testing.T) {
	root := newIconTree(t)
	if _, err := Build(root, assets.FlavorComponent); err != nil {
		t.Fatal(err)
	}
	navModule := filepath.Join(root, "nav", "index.ts")
	writeFile(t, navModule, "export const x = 1;\n")

	if _, err := Build(root, assets.FlavorDirective); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.tsx")); !os.IsNotExist(err) {
		t.Errorf("stale generated index.tsx survived a flavor change")
	}
	if !strings.HasPrefix(readFile(t, navModule), GeneratedMarker) {
		t.Errorf("nav/index.ts was not regenerated")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	root := newIconTree(t)
	res, err := Build(root, assets.FlavorNone)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "manifest.toml")
	if err := WriteManifest(path, Manifest{Root: root, Flavor: "none", Entries: res.Entries}); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(m.Entries) != 2 || m.Flavor != "none" {
		t.Errorf("ReadManifest() = %+v", m)
	}
}
