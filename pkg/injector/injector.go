package injector

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kataras/iconstitch/pkg/assets"
	"github.com/kataras/iconstitch/pkg/indexer"
)

// ImportName is the binding rewritten documents import the asset tree as.
const ImportName = "assets"

var (
	markupRe = regexp.MustCompile("<[a-zA-Z]|html`|svg`")

	// siteRe matches a container element with a class attribute and a bare
	// glyph name as inner text. Groups: 1 tag, 2 attributes before class,
	// 3 attribute name, 4 quote, 5 class value, 6 attributes after class,
	// 7 glyph name, 8 closing tag.
	siteRe = regexp.MustCompile(`<([A-Za-z][\w.-]*)(\s[^>]*?)?\s(class|className)\s*=\s*(["'])([^"']*)["']([^>]*?)>\s*([A-Za-z0-9_][A-Za-z0-9_-]*)\s*</([A-Za-z][\w.-]*)\s*>`)

	// unquotedBindingRe matches an attribute whose whole value is a template
	// binding: 1 leading space, 2 attribute name, 3 binding.
	unquotedBindingRe = regexp.MustCompile(`(^|\s)([A-Za-z_:][\w:.-]*)=(\$\{[^}]*\})`)

	directivePrologueRe = regexp.MustCompile(`^\s*(?:["']use [a-z ]+["'];?[ \t]*\r?\n)+`)
)

// Diagnostic reports a placeholder whose glyph name is not in the asset tree.
// The site is left untouched.
type Diagnostic struct {
	File string
	Line int
	Name string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: glyph %q not found in assets, left as is", d.File, d.Line, d.Name)
}

// Result describes what Inject did to one document.
type Result struct {
	File        string
	Flavor      assets.Flavor
	Rewritten   int
	ImportAdded bool
	Diagnostics []Diagnostic
}

// Changed reports whether the document was rewritten and saved.
func (r *Result) Changed() bool { return r.Rewritten > 0 }

// Injector rewrites glyph placeholders into accessors of one asset tree.
// It is safe for concurrent use on distinct files.
type Injector struct {
	assetsRoot string
	marker     string

	once   sync.Once
	ids    map[string]string
	idsErr error
}

// New returns an Injector for the generated tree at assetsRoot. The
// identifier map is built on the first document that needs it.
func New(assetsRoot, marker string) (*Injector, error) {
	root, err := filepath.Abs(assetsRoot)
	if err != nil {
		return nil, fmt.Errorf("injector: resolve %q: %w", assetsRoot, err)
	}
	if marker == "" {
		return nil, fmt.Errorf("injector: empty placeholder marker")
	}
	return &Injector{assetsRoot: root, marker: marker}, nil
}

// NewFromEntries returns an Injector that resolves names against the
// bindings an indexing run reported instead of scanning the tree again.
// Only vector entries are resolvable.
func NewFromEntries(assetsRoot, marker string, entries []indexer.Entry) (*Injector, error) {
	in, err := New(assetsRoot, marker)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, 2*len(entries))
	for _, e := range entries {
		if e.Kind != assets.KindVector.String() {
			continue
		}
		assets.AddIdentifier(ids, assets.BaseName(path.Base(e.File)), e.Identifier, e.Path)
	}
	in.ids = ids
	return in, nil
}

// FromManifest returns an Injector for the tree described by the manifest
// at manifestPath.
func FromManifest(manifestPath, marker string) (*Injector, error) {
	m, err := indexer.ReadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("injector: %w", err)
	}
	return NewFromEntries(m.Root, marker, m.Entries)
}

func (in *Injector) identifiers() (map[string]string, error) {
	in.once.Do(func() {
		if in.ids == nil {
			in.ids, in.idsErr = assets.IdentifierMap(in.assetsRoot)
		}
	})
	return in.ids, in.idsErr
}

// Inject rewrites the placeholder sites of target in place. Documents whose
// file type has no flavor, that carry no markup, or that never mention the
// marker are returned untouched without reading the asset tree. The file is
// only written when at least one site was rewritten.
func (in *Injector) Inject(target string) (*Result, error) {
	flavor, ok := assets.FlavorForFile(target)
	res := &Result{File: target, Flavor: flavor}
	if !ok {
		return res, nil
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("injector: %w", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("injector: %w", err)
	}
	content := string(data)

	if !markupRe.MatchString(content) || !strings.Contains(content, in.marker) {
		return res, nil
	}

	ids, err := in.identifiers()
	if err != nil {
		return nil, fmt.Errorf("injector: %w", err)
	}

	out := in.rewrite(content, flavor, ids, res)
	if res.Rewritten == 0 {
		return res, nil
	}

	importPath, err := in.importPath(target)
	if err != nil {
		return nil, err
	}
	if !hasImport(out, importPath) {
		out = insertImport(out, fmt.Sprintf("import %s from %q;", ImportName, importPath))
		res.ImportAdded = true
	}

	if err := os.WriteFile(target, []byte(out), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("injector: write %s: %w", target, err)
	}
	return res, nil
}

func (in *Injector) rewrite(content string, flavor assets.Flavor, ids map[string]string, res *Result) string {
	matches := siteRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	group := func(m []int, i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return content[m[2*i]:m[2*i+1]]
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		tag, closing := group(m, 1), group(m, 8)
		classes := strings.Fields(group(m, 5))
		if tag != closing || !slices.Contains(classes, in.marker) {
			continue
		}

		name := group(m, 7)
		ref, ok := assets.Resolve(ids, name)
		if !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				File: res.File,
				Line: strings.Count(content[:m[0]], "\n") + 1,
				Name: name,
			})
			continue
		}

		remaining := slices.DeleteFunc(classes, func(c string) bool { return c == in.marker })
		attrs := joinAttrs(
			group(m, 2),
			classAttr(group(m, 3), group(m, 4), remaining),
			group(m, 6),
		)

		sb.WriteString(content[last:m[0]])
		sb.WriteString(accessor(flavor, ImportName+"."+ref, attrs))
		last = m[1]
		res.Rewritten++
	}
	sb.WriteString(content[last:])
	return sb.String()
}

// accessor renders the replacement of one site.
//
// Directive attributes become one template literal argument. Template
// bindings such as title=${this.t} stay live expressions inside it, so their
// value is interpolated into the attribute string on every render; unquoted
// binding values are quoted to keep the serialized attribute well formed.
func accessor(flavor assets.Flavor, path, attrs string) string {
	if flavor == assets.FlavorComponent {
		if attrs == "" {
			return "<" + path + " />"
		}
		return "<" + path + " " + attrs + " />"
	}

	if attrs == "" {
		return "${" + path + "()}"
	}
	escaped := strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(attrs)
	escaped = unquotedBindingRe.ReplaceAllString(escaped, `${1}${2}="${3}"`)
	return "${" + path + "(`" + escaped + "`)}"
}

func classAttr(name, quote string, classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	return name + "=" + quote + strings.Join(classes, " ") + quote
}

func joinAttrs(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// importPath is the slash-separated relative path from target's directory
// to the asset tree root, always starting with a dot.
func (in *Injector) importPath(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("injector: resolve %q: %w", target, err)
	}
	rel, err := filepath.Rel(filepath.Dir(abs), in.assetsRoot)
	if err != nil {
		return "", fmt.Errorf("injector: relative import path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel, nil
}

func hasImport(content, importPath string) bool {
	return strings.Contains(content, `from "`+importPath+`"`) ||
		strings.Contains(content, `from '`+importPath+`'`)
}

// insertImport prepends stmt, keeping a shebang line and directive
// prologues such as "use client" first.
func insertImport(content, stmt string) string {
	head := ""
	if strings.HasPrefix(content, "#!") {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			return content + "\n" + stmt + "\n"
		}
		head, content = content[:i+1], content[i+1:]
	}
	if loc := directivePrologueRe.FindStringIndex(content); loc != nil {
		head += content[:loc[1]]
		content = content[loc[1]:]
	}
	return head + stmt + "\n" + content
}
