package iconstitch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kataras/iconstitch/pkg/assets"
	"github.com/kataras/iconstitch/pkg/extractor"
	"github.com/kataras/iconstitch/pkg/formatter"
	"github.com/kataras/iconstitch/pkg/indexer"
	"github.com/kataras/iconstitch/pkg/injector"
)

// CollectNames extracts the glyph names referenced by every file in paths.
// Unreadable files contribute nothing.
func CollectNames(paths []string, marker string) extractor.Names {
	names := make(extractor.Names)
	for _, path := range paths {
		names.Merge(extractor.ExtractFile(path, marker))
	}
	return names
}

// AcquireResult collects the outcome of a fetch loop. Per-glyph failures do
// not stop the loop.
type AcquireResult struct {
	Fetched  []formatter.Glyph
	Skipped  []string // already present, not requested
	Canceled []string
	Errors   []error
}

// Acquire fetches names one at a time, since a catalog session serves a
// single download at once. It stops early only when ctx ends, returning the
// partial result together with the context error.
func Acquire(ctx context.Context, f Fetcher, names []string, settle time.Duration, logger Logger) (*AcquireResult, error) {
	opts := Options{Logger: logger}
	res := &AcquireResult{}

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		opts.logInfo("[%d/%d] %s", i+1, len(names), name)
		path, err := f.Fetch(ctx, name, settle)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return res, ctxErr
			}
			res.Errors = append(res.Errors, fmt.Errorf("fetch %q: %w", name, err))
		case path == "":
			opts.logWarn("download of %q was canceled", name)
			res.Canceled = append(res.Canceled, name)
		default:
			res.Fetched = append(res.Fetched, formatter.Glyph{Name: name, Path: path})
		}
	}
	return res, nil
}

// Index compiles the asset tree at root and, when manifest is not empty,
// writes the TOML manifest of its bindings. The manifest records the
// absolute root so injection can run from any working directory.
func Index(root string, flavor assets.Flavor, manifest string) (*indexer.Result, error) {
	res, err := indexer.Build(root, flavor)
	if err != nil {
		return res, err
	}
	if manifest == "" {
		return res, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return res, fmt.Errorf("resolve %q: %w", root, err)
	}
	err = indexer.WriteManifest(manifest, indexer.Manifest{
		Root:    absRoot,
		Flavor:  flavor.String(),
		Entries: res.Entries,
	})
	return res, err
}

// InjectResult collects the per-file outcome of InjectAll in input order.
type InjectResult struct {
	Results []*injector.Result
	Errors  []error
}

// Rewritten returns the total number of rewritten sites.
func (r *InjectResult) Rewritten() int {
	n := 0
	for _, res := range r.Results {
		n += res.Rewritten
	}
	return n
}

// Changed returns the files that were rewritten.
func (r *InjectResult) Changed() []string {
	var files []string
	for _, res := range r.Results {
		if res.Changed() {
			files = append(files, res.File)
		}
	}
	return files
}

// InjectAll runs in over files with at most concurrency injections at a
// time. A failing file is recorded and does not stop the others; only a
// context cancellation aborts the run.
func InjectAll(ctx context.Context, in *injector.Injector, files []string, concurrency int) (*InjectResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*injector.Result, len(files))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := in.Inject(file)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	out := &InjectResult{Errors: errs}
	for _, res := range results {
		if res != nil {
			out.Results = append(out.Results, res)
		}
	}
	return out, err
}
