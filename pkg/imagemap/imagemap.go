// Package imagemap generates a module mapping the static images served from
// a project's public directory to their absolute web paths.
package imagemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GeneratedMarker heads every module written by Generate.
const GeneratedMarker = "// Code generated by iconstitch imagemap. DO NOT EDIT."

// ErrNoPublicDir is returned when the base directory has no public folder.
var ErrNoPublicDir = errors.New("imagemap: public directory not found")

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
	".webp": {}, ".avif": {}, ".ico": {}, ".bmp": {}, ".tiff": {},
}

// Map is a nested image map: values are either web paths (string) or
// sub-maps for directories.
type Map map[string]any

// Result describes a generated image map.
type Result struct {
	Output   string
	Images   int
	Warnings []string
}

// Options configures Generate.
type Options struct {
	// BaseDir is the project root holding public/ and src/assets/.
	BaseDir string
	// Name is the exported constant and the output file name. Default "images".
	Name string
	// Ext is the output file extension, "ts" or "js". Default "ts".
	Ext string
}

// Generate scans <BaseDir>/public and writes <BaseDir>/src/assets/<Name>.<Ext>.
func Generate(opts Options) (*Result, error) {
	if opts.Name == "" {
		opts.Name = "images"
	}
	opts.Ext = strings.TrimPrefix(opts.Ext, ".")
	if opts.Ext == "" {
		opts.Ext = "ts"
	}

	publicDir := filepath.Join(opts.BaseDir, "public")
	info, err := os.Stat(publicDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoPublicDir, publicDir)
	}

	res := &Result{}
	tree, err := scan(publicDir, publicDir, res)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("imagemap: encode map: %w", err)
	}

	ident := SanitizeKey(opts.Name)
	var sb strings.Builder
	sb.WriteString(GeneratedMarker + "\n")
	sb.WriteString("/* eslint-disable */\n")
	sb.WriteString("// Paths are absolute from the server root.\n\n")
	sb.WriteString(fmt.Sprintf("const %s = %s;\n", ident, body))
	sb.WriteString(fmt.Sprintf("export default %s;\n", ident))

	assetsDir := filepath.Join(opts.BaseDir, "src", "assets")
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return nil, fmt.Errorf("imagemap: create %s: %w", assetsDir, err)
	}

	res.Output = filepath.Join(assetsDir, opts.Name+"."+opts.Ext)
	if err := os.WriteFile(res.Output, []byte(sb.String()), 0644); err != nil {
		return nil, fmt.Errorf("imagemap: write %s: %w", res.Output, err)
	}
	return res, nil
}

func scan(dir, publicDir string, res *Result) (Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("imagemap: read %s: %w", dir, err)
	}

	m := make(Map)
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := scan(full, publicDir, res)
			if err != nil {
				return nil, err
			}
			if len(sub) > 0 {
				m[SanitizeKey(entry.Name())] = sub
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if _, ok := imageExtensions[strings.ToLower(ext)]; !ok {
			continue
		}

		key := SanitizeKey(strings.TrimSuffix(entry.Name(), ext))
		if _, dup := m[key]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate key %q in %s, overwritten by %s", key, dir, entry.Name()))
		} else {
			res.Images++
		}

		rel, err := filepath.Rel(publicDir, full)
		if err != nil {
			return nil, fmt.Errorf("imagemap: %w", err)
		}
		m[key] = "/" + filepath.ToSlash(rel)
	}
	return m, nil
}

// SanitizeKey turns a file name into a snake_case object key:
// "my image (1)" becomes "my_image_1" and "2x" becomes "_2x".
func SanitizeKey(name string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			sb.WriteByte('_')
			underscore = true
		}
	}

	key := strings.Trim(sb.String(), "_")
	if key == "" {
		return "unnamed_resource"
	}
	if key[0] >= '0' && key[0] <= '9' {
		key = "_" + key
	}
	return key
}
