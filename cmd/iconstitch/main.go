package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/kataras/iconstitch"
	"github.com/kataras/iconstitch/pkg/catalog"
	"github.com/kataras/iconstitch/pkg/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	assetsDir  string
	marker     string
	flavor     string
	headless   bool
	browserURL string
	catalogURL string
	settle     time.Duration
	debounce   time.Duration

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "iconstitch",
		Short: "Fetch, index and inject icon glyphs into web projects",
		Long: "A tool that finds glyph placeholders in JS/TS sources, downloads the referenced icons " +
			"from the Material Symbols catalog, generates index modules for the asset tree and " +
			"rewrites every placeholder into an import of that tree",
		PersistentPreRun: loadConfig,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Configuration file (default .iconstitch.yaml or $XDG_CONFIG_HOME/iconstitch/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose browser logging")
	pf.StringVarP(&assetsDir, "assets", "a", "", "Asset directory, download target and root of the generated tree")
	pf.StringVarP(&marker, "marker", "m", "", "Class token marking glyph placeholders")
	pf.StringVarP(&flavor, "flavor", "f", "", "Generated module flavor: none, component or directive")
	pf.BoolVar(&headless, "headless", true, "Run the browser without a window")
	pf.StringVar(&browserURL, "browser-url", "", "Connect to a running browser at this DevTools URL")
	pf.StringVar(&catalogURL, "catalog-url", "", "Icon catalog page")
	pf.DurationVar(&settle, "settle", 0, "Pause between UI steps of a download")
	pf.DurationVar(&debounce, "debounce", 0, "Pause after typing a search query")

	rootCmd.AddCommand(
		newSearchCmd(),
		newFetchCmd(),
		newExtractCmd(),
		newIndexCmd(),
		newInjectCmd(),
		newImageMapCmd(),
		newStitchCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("iconstitch version %s\n", iconstitch.Version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and the
// flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string) {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		fail(err)
	}

	flags := cmd.Flags()
	if flags.Changed("assets") {
		cfg.AssetsDir = assetsDir
	}
	if flags.Changed("marker") {
		cfg.Marker = marker
	}
	if flags.Changed("flavor") {
		cfg.Flavor = flavor
	}
	if flags.Changed("headless") {
		cfg.Headless = headless
	}
	if flags.Changed("browser-url") {
		cfg.BrowserURL = browserURL
	}
	if flags.Changed("catalog-url") {
		cfg.CatalogURL = catalogURL
	}
	if flags.Changed("settle") {
		cfg.Settle = settle
	}
	if flags.Changed("debounce") {
		cfg.Debounce = debounce
	}

	if err := cfg.Validate(); err != nil {
		fail(err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openSession launches the catalog browser with downloads landing in the
// configured asset directory.
func openSession(ctx context.Context) *catalog.Session {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	session := catalog.NewSession(catalog.Config{
		URL:         cfg.CatalogURL,
		DownloadDir: cfg.AssetsDir,
		Headless:    cfg.Headless,
		RemoteURL:   cfg.BrowserURL,
		Logger:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}, nil)

	color.New(color.FgCyan).Println("Opening icon catalog...")
	if err := session.Initialize(ctx); err != nil {
		session.Close()
		fail(err)
	}
	return session
}

func fail(err error) {
	color.New(color.FgRed).Printf("Error: %v\n", err)
	os.Exit(1)
}

// cliLogger implements iconstitch.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
