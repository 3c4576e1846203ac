package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kataras/iconstitch"
	"github.com/kataras/iconstitch/pkg/assets"
	"github.com/kataras/iconstitch/pkg/imagemap"
	"github.com/kataras/iconstitch/pkg/injector"
	"github.com/kataras/iconstitch/pkg/sources"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List catalog glyphs matching a query",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			session := openSession(ctx)
			defer session.Close()

			results, err := session.Search(ctx, strings.Join(args, " "), cfg.Debounce)
			if err != nil {
				fail(err)
			}
			n := 0
			for name := range results {
				fmt.Println(name)
				n++
			}
			if n == 0 {
				color.New(color.FgYellow).Println("No glyphs found")
			}
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <name>...",
		Short: "Download glyphs into the asset directory",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			session := openSession(ctx)
			defer session.Close()

			res, err := iconstitch.Acquire(ctx, session, args, cfg.Settle, &cliLogger{})
			if err != nil {
				fail(err)
			}
			for _, fetchErr := range res.Errors {
				color.New(color.FgRed).Printf("✗ %v\n", fetchErr)
			}
			for _, g := range res.Fetched {
				fmt.Printf("  • %s → %s\n", g.Name, g.Path)
			}
			color.New(color.FgGreen).Printf("\n✨ Fetched %d of %d glyph(s)\n", len(res.Fetched), len(args))
		},
	}
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [path]...",
		Short: "Print the glyph names referenced by the sources",
		Run: func(cmd *cobra.Command, args []string) {
			files := collect(args)
			for _, name := range iconstitch.CollectNames(files, cfg.Marker).Sorted() {
				fmt.Println(name)
			}
		},
	}
}

func newIndexCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "index [root]",
		Short: "Generate index modules for an asset tree",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			root := cfg.AssetsDir
			if len(args) == 1 {
				root = args[0]
			}
			if manifest == "" {
				manifest = cfg.Manifest
			}

			fl, _ := assets.ParseFlavor(cfg.Flavor)
			res, err := iconstitch.Index(root, fl, manifest)
			if err != nil {
				fail(err)
			}

			log := &cliLogger{}
			for _, w := range res.Warnings {
				log.Warnf("%v", w)
			}
			for _, c := range res.Collisions {
				log.Warnf("%s: %s replaces %s as %q", c.Dir, c.Kept, c.Dropped, c.Identifier)
			}
			color.New(color.FgGreen).Printf("\n✨ Generated %d %s module(s) with %d binding(s)\n",
				len(res.Modules), fl, len(res.Entries))
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "Also write a TOML manifest of every binding")
	return cmd
}

func newInjectCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "inject [path]...",
		Short: "Rewrite glyph placeholders into asset accessors",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			if concurrency <= 0 {
				concurrency = cfg.Concurrency
			}

			in, err := newInjector()
			if err != nil {
				fail(err)
			}
			res, err := iconstitch.InjectAll(ctx, in, collect(args), concurrency)
			if err != nil {
				fail(err)
			}

			log := &cliLogger{}
			for _, injectErr := range res.Errors {
				log.Errorf("%v", injectErr)
			}
			for _, r := range res.Results {
				for _, d := range r.Diagnostics {
					log.Warnf("%s", d)
				}
			}
			for _, file := range res.Changed() {
				fmt.Printf("  • %s\n", file)
			}
			color.New(color.FgGreen).Printf("\n✨ Rewrote %d site(s) in %d file(s)\n", res.Rewritten(), len(res.Changed()))
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Files rewritten in parallel")
	return cmd
}

// newInjector resolves names against the configured manifest when one was
// written by a previous index run, and scans the asset tree otherwise.
func newInjector() (*injector.Injector, error) {
	if cfg.Manifest != "" {
		if _, err := os.Stat(cfg.Manifest); err == nil {
			return injector.FromManifest(cfg.Manifest, cfg.Marker)
		}
	}
	return injector.New(cfg.AssetsDir, cfg.Marker)
}

func newImageMapCmd() *cobra.Command {
	var name, ext string

	cmd := &cobra.Command{
		Use:   "imagemap [base-dir]",
		Short: "Generate a web path map of the images under public/",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			base := "."
			if len(args) == 1 {
				base = args[0]
			}
			if name == "" {
				name = cfg.ImageMap
			}

			res, err := imagemap.Generate(imagemap.Options{BaseDir: base, Name: name, Ext: ext})
			if err != nil {
				fail(err)
			}
			for _, w := range res.Warnings {
				(&cliLogger{}).Warnf("%s", w)
			}
			color.New(color.FgGreen).Printf("✨ Mapped %d image(s) to %s\n", res.Images, res.Output)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Exported constant and file name")
	cmd.Flags().StringVar(&ext, "ext", "ts", "Output extension: ts or js")
	return cmd
}

func newStitchCmd() *cobra.Command {
	var (
		report  string
		offline bool
		refetch bool
	)

	cmd := &cobra.Command{
		Use:   "stitch [path]...",
		Short: "Extract, fetch, index and inject in one run",
		Run: func(cmd *cobra.Command, args []string) {
			green := color.New(color.FgGreen)
			cyan := color.New(color.FgCyan)

			cyan.Println("\n🧵 Icon Stitch")
			cyan.Println("==============")
			cyan.Println()

			ctx, cancel := signalContext()
			defer cancel()

			roots := cfg.Sources
			if len(args) > 0 {
				roots = args
			}
			fl, _ := assets.ParseFlavor(cfg.Flavor)

			opts := iconstitch.Options{
				Sources:     roots,
				AssetsDir:   cfg.AssetsDir,
				Marker:      cfg.Marker,
				Flavor:      fl,
				Settle:      cfg.Settle,
				Concurrency: cfg.Concurrency,
				Manifest:    cfg.Manifest,
				Refetch:     refetch,
				Logger:      &cliLogger{},
			}
			if !offline {
				session := openSession(ctx)
				defer session.Close()
				opts.Fetcher = session
			}

			result, err := iconstitch.Run(ctx, opts)
			if err != nil {
				fail(err)
			}

			cyan.Println("\n📊 Stitch Summary:")
			fmt.Printf("  • Glyphs referenced: %d\n", len(result.Names))
			if result.Acquire != nil {
				fmt.Printf("  • Fetched: %d, already present: %d, canceled: %d, failed: %d\n",
					len(result.Acquire.Fetched), len(result.Acquire.Skipped),
					len(result.Acquire.Canceled), len(result.Acquire.Errors))
			}
			fmt.Printf("  • Modules generated: %d\n", len(result.Index.Modules))
			fmt.Printf("  • Sites rewritten: %d in %d file(s)\n", result.Inject.Rewritten(), len(result.Inject.Changed()))

			if report != "" {
				green.Printf("\n💾 Writing report to %s... ", report)
				if err := os.WriteFile(report, []byte(result.Markdown), 0644); err != nil {
					color.New(color.FgRed).Printf("✗\n")
					fail(err)
				}
				green.Println("✓")
			}

			green.Printf("\n✨ Stitched %s\n\n", cfg.AssetsDir)
		},
	}

	cmd.Flags().StringVarP(&report, "report", "o", "", "Write a markdown run report to this file")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip fetching, use the assets already on disk")
	cmd.Flags().BoolVar(&refetch, "refetch", false, "Download glyphs even when a file already exists")
	return cmd
}

// collect resolves path arguments, or the configured sources, into the
// source files below them. The asset tree itself is never scanned.
func collect(args []string) []string {
	roots := cfg.Sources
	if len(args) > 0 {
		roots = args
	}
	files, err := sources.Collect(roots, cfg.AssetsDir)
	if err != nil {
		fail(err)
	}
	if len(files) == 0 {
		(&cliLogger{}).Warnf("no source files under %s", strings.Join(roots, ", "))
	}
	return files
}

