package iconstitch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kataras/iconstitch/pkg/assets"
	"github.com/kataras/iconstitch/pkg/catalog"
	"github.com/kataras/iconstitch/pkg/extractor"
	"github.com/kataras/iconstitch/pkg/formatter"
	"github.com/kataras/iconstitch/pkg/indexer"
	"github.com/kataras/iconstitch/pkg/injector"
	"github.com/kataras/iconstitch/pkg/sources"
)

// Version is the iconstitch release.
const Version = "0.3.0"

// Fetcher downloads one glyph into the asset directory and returns its
// path. An empty path with a nil error means the download was canceled.
// *catalog.Session implements it.
type Fetcher interface {
	Fetch(ctx context.Context, name string, settle time.Duration) (string, error)
}

var _ Fetcher = (*catalog.Session)(nil)

// Options configures a stitch run.
type Options struct {
	Sources     []string      // directories or files scanned for placeholders
	AssetsDir   string        // fetched glyphs land here; root of the generated tree
	Marker      string        // default extractor.DefaultMarker
	Flavor      assets.Flavor // flavor of the generated modules
	Settle      time.Duration // UI pacing passed to Fetch
	Concurrency int           // parallel injections, default 8
	Manifest    string        // optional TOML manifest path
	Refetch     bool          // fetch glyphs already present in AssetsDir
	Fetcher     Fetcher       // nil = skip acquisition
	Logger      Logger        // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the stitch output.
type Result struct {
	Names    []string
	Acquire  *AcquireResult
	Index    *indexer.Result
	Inject   *InjectResult
	Markdown string // formatted run report
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Run executes the full pipeline: collect names, fetch missing glyphs,
// index the asset tree and inject accessors into every source file.
func Run(ctx context.Context, opts Options) (*Result, error) {
	// Apply defaults.
	if opts.Marker == "" {
		opts.Marker = extractor.DefaultMarker
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if len(opts.Sources) == 0 {
		opts.Sources = []string{"."}
	}
	if opts.AssetsDir == "" {
		return nil, errors.New("no assets directory")
	}

	opts.logInfo("Scanning %d source root(s)...", len(opts.Sources))
	files, err := sources.Collect(opts.Sources, opts.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("collect sources: %w", err)
	}
	opts.logInfo("Found %d source file(s)", len(files))

	names := CollectNames(files, opts.Marker)
	opts.logInfo("Found %d distinct glyph name(s)", names.Len())

	result := &Result{Names: names.Sorted()}

	if err := os.MkdirAll(opts.AssetsDir, 0755); err != nil {
		return nil, fmt.Errorf("create assets directory: %w", err)
	}

	if opts.Fetcher != nil {
		wanted, present := result.Names, []string(nil)
		if !opts.Refetch {
			wanted, present = partitionPresent(opts.AssetsDir, result.Names)
			if len(present) > 0 {
				opts.logInfo("%d glyph(s) already in %s", len(present), opts.AssetsDir)
			}
		}

		opts.logInfo("Fetching %d glyph(s)...", len(wanted))
		result.Acquire, err = Acquire(ctx, opts.Fetcher, wanted, opts.Settle, opts.Logger)
		result.Acquire.Skipped = present
		if err != nil {
			return result, fmt.Errorf("acquire glyphs: %w", err)
		}
		for _, fetchErr := range result.Acquire.Errors {
			opts.logWarn("%v", fetchErr)
		}
		opts.logInfo("Fetched %d glyph(s)", len(result.Acquire.Fetched))
	} else {
		opts.logInfo("No fetcher configured, using the assets on disk")
	}

	opts.logInfo("Indexing %s...", opts.AssetsDir)
	result.Index, err = Index(opts.AssetsDir, opts.Flavor, opts.Manifest)
	if err != nil {
		return result, fmt.Errorf("index assets: %w", err)
	}
	for _, w := range result.Index.Warnings {
		opts.logWarn("%v", w)
	}
	for _, c := range result.Index.Collisions {
		opts.logWarn("%s: %s and %s both map to %q, kept %s", c.Dir, c.Dropped, c.Kept, c.Identifier, c.Kept)
	}
	opts.logInfo("Generated %d module(s)", len(result.Index.Modules))

	in, err := injector.NewFromEntries(opts.AssetsDir, opts.Marker, result.Index.Entries)
	if err != nil {
		return result, err
	}

	opts.logInfo("Injecting accessors into %d file(s)...", len(files))
	result.Inject, err = InjectAll(ctx, in, files, opts.Concurrency)
	if err != nil {
		return result, fmt.Errorf("inject: %w", err)
	}
	for _, injectErr := range result.Inject.Errors {
		opts.logError("%v", injectErr)
	}
	for _, res := range result.Inject.Results {
		for _, d := range res.Diagnostics {
			opts.logWarn("%s", d)
		}
	}
	opts.logInfo("Rewrote %d site(s) in %d file(s)", result.Inject.Rewritten(), len(result.Inject.Changed()))

	result.Markdown = formatter.ToMarkdown(result.Report(filepath.Base(absOrSelf("."))))
	return result, nil
}

// Report converts r into the formatter's run report.
func (r *Result) Report(project string) *formatter.Report {
	rep := &formatter.Report{
		Project: project,
		Names:   r.Names,
		Index:   r.Index,
	}
	if r.Acquire != nil {
		rep.Fetched = r.Acquire.Fetched
		rep.Skipped = r.Acquire.Skipped
		rep.Canceled = r.Acquire.Canceled
		rep.Errors = append(rep.Errors, r.Acquire.Errors...)
	}
	if r.Inject != nil {
		rep.Injections = r.Inject.Results
		rep.Errors = append(rep.Errors, r.Inject.Errors...)
	}
	return rep
}

// partitionPresent splits names into those without a vector file in dir
// and those that already have one.
func partitionPresent(dir string, names []string) (missing, present []string) {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name+".svg")); err == nil {
			present = append(present, name)
			continue
		}
		missing = append(missing, name)
	}
	return missing, present
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
