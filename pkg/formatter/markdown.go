package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kataras/iconstitch/pkg/indexer"
	"github.com/kataras/iconstitch/pkg/injector"
)

// Glyph is one glyph written to the asset tree by the catalog session.
type Glyph struct {
	Name string
	Path string
}

// Report gathers everything a stitch run produced. Nil sections are omitted.
type Report struct {
	Project    string
	Names      []string
	Fetched    []Glyph
	Skipped    []string
	Canceled   []string
	Index      *indexer.Result
	Injections []*injector.Result
	Errors     []error
}

// ToMarkdown renders a stitch report: requested glyphs, what the catalog
// returned, the generated modules and every injection diagnostic.
func ToMarkdown(r *Report) string {
	var sb strings.Builder

	title := "Icon Stitch Report"
	if r.Project != "" {
		title += " - " + r.Project
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	rewritten, changed, diagnostics := 0, 0, 0
	for _, res := range r.Injections {
		rewritten += res.Rewritten
		diagnostics += len(res.Diagnostics)
		if res.Changed() {
			changed++
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Glyphs referenced**: %d\n", len(r.Names)))
	sb.WriteString(fmt.Sprintf("- **Fetched**: %d\n", len(r.Fetched)))
	if len(r.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("- **Already present**: %d\n", len(r.Skipped)))
	}
	if len(r.Canceled) > 0 {
		sb.WriteString(fmt.Sprintf("- **Canceled downloads**: %d\n", len(r.Canceled)))
	}
	if r.Index != nil {
		sb.WriteString(fmt.Sprintf("- **Modules generated**: %d\n", len(r.Index.Modules)))
		sb.WriteString(fmt.Sprintf("- **Bindings**: %d\n", len(r.Index.Entries)))
	}
	sb.WriteString(fmt.Sprintf("- **Sites rewritten**: %d in %d file(s)\n", rewritten, changed))
	sb.WriteString(fmt.Sprintf("- **Unresolved sites**: %d\n", diagnostics))
	sb.WriteString("\n")

	if len(r.Fetched) > 0 {
		sb.WriteString("## Fetched Glyphs\n\n")
		sb.WriteString("| Glyph | File |\n")
		sb.WriteString("|-------|------|\n")
		for _, g := range r.Fetched {
			sb.WriteString(fmt.Sprintf("| %s | `%s` |\n", g.Name, filepath.ToSlash(g.Path)))
		}
		sb.WriteString("\n")
	}

	if len(r.Canceled) > 0 {
		sb.WriteString("## Canceled Downloads\n\n")
		for _, name := range r.Canceled {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
		sb.WriteString("\n")
	}

	if r.Index != nil && len(r.Index.Collisions) > 0 {
		sb.WriteString("## Identifier Collisions\n\n")
		sb.WriteString("| Directory | Identifier | Kept | Dropped |\n")
		sb.WriteString("|-----------|------------|------|---------|\n")
		for _, c := range r.Index.Collisions {
			sb.WriteString(fmt.Sprintf("| `%s` | %s | `%s` | `%s` |\n", filepath.ToSlash(c.Dir), c.Identifier, c.Kept, c.Dropped))
		}
		sb.WriteString("\n")
	}

	if diagnostics > 0 {
		sb.WriteString("## Unresolved Sites\n\n")
		for _, res := range r.Injections {
			for _, d := range res.Diagnostics {
				sb.WriteString(fmt.Sprintf("- `%s:%d` %s\n", filepath.ToSlash(d.File), d.Line, d.Name))
			}
		}
		sb.WriteString("\n")
	}

	warnings := r.Errors
	if r.Index != nil {
		warnings = append(warnings[:len(warnings):len(warnings)], r.Index.Warnings...)
	}
	if len(warnings) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, err := range warnings {
			sb.WriteString(fmt.Sprintf("- %v\n", err))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
