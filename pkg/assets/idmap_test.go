package assets

import (
	"os"
	"path/filepath"
	"testing"
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

func TestIdentifierMap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "home.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "arrow_back.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "nav", "menu.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "my-actions", "My-Icon (2).svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "photo.png"), "png")
	writeFile(t, filepath.Join(root, ".cache", "hidden.svg"), "<svg/>")

	m, err := IdentifierMap(root)
	if err != nil {
		t.Fatalf("IdentifierMap() error = %v", err)
	}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "home", want: "home", wantOK: true},
		{name: "HOME", want: "home", wantOK: true},
		{name: "arrow_back", want: "arrowBack", wantOK: true},
		{name: "arrowBack", want: "arrowBack", wantOK: true},
		{name: "arrow-back", want: "arrowBack", wantOK: true},
		{name: "menu", want: "nav.menu", wantOK: true},
		{name: "my_icon_2", want: "myActions.myIcon2", wantOK: true},
		{name: "My-Icon (2)", want: "myActions.myIcon2", wantOK: true},
		{name: "photo", wantOK: false},
		{name: "hidden", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(m, tt.name)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestIdentifierMapMissingRoot(t *testing.T) {
	if _, err := IdentifierMap(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("IdentifierMap() expected error for missing root")
	}
}

func TestIdentifierMapFileShadowsDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "nav.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "nav", "menu.svg"), "<svg/>")

	m, err := IdentifierMap(root)
	if err != nil {
		t.Fatalf("IdentifierMap() error = %v", err)
	}
	if got, ok := Resolve(m, "nav"); !ok || got != "nav" {
		t.Errorf("Resolve(nav) = %q, %v, want nav", got, ok)
	}
	if got, ok := Resolve(m, "menu"); ok {
		t.Errorf("Resolve(menu) = %q, want unresolved", got)
	}
}

func TestReadBindings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "my-icon.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "my_icon.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "photo.png"), "png")
	writeFile(t, filepath.Join(root, "notes.txt"), "text")
	writeFile(t, filepath.Join(root, "nav", "menu.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref")

	bindings, collisions, err := ReadBindings(root)
	if err != nil {
		t.Fatalf("ReadBindings() error = %v", err)
	}

	want := []Binding{
		{ID: "myIcon", Name: "my_icon.svg", Kind: KindVector},
		{ID: "nav", Name: "nav", Kind: KindDirectory},
		{ID: "photo", Name: "photo.png", Kind: KindRaster},
	}
	if len(bindings) != len(want) {
		t.Fatalf("ReadBindings() = %+v, want %+v", bindings, want)
	}
	for i := range want {
		if bindings[i] != want[i] {
			t.Errorf("binding %d = %+v, want %+v", i, bindings[i], want[i])
		}
	}

	if len(collisions) != 1 || collisions[0].Kept != "my_icon.svg" || collisions[0].Dropped != "my-icon.svg" {
		t.Errorf("collisions = %+v", collisions)
	}
}
