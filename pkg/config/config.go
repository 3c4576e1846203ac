// Package config holds the settings shared by the iconstitch commands.
//
// Values are layered: NewConfig defaults, then a YAML file found by
// FindConfigFile, then ICONSTITCH_* environment variables, then CLI flags
// applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"

	"github.com/kataras/iconstitch/pkg/assets"
	"github.com/kataras/iconstitch/pkg/catalog"
	"github.com/kataras/iconstitch/pkg/extractor"
)

// AppName names the XDG sub-directories.
const AppName = "iconstitch"

// Defaults that do not come from other packages.
const (
	DefaultFlavor      = "component"
	DefaultConcurrency = 8
	DefaultImageMap    = "images"
)

// Config is the flat settings struct passed down to the pipeline.
type Config struct {
	// CatalogURL is the icon catalog page the browser opens.
	CatalogURL string `yaml:"catalog_url" env:"ICONSTITCH_CATALOG_URL"`
	// BrowserURL connects to an already running browser instead of launching one.
	BrowserURL string `yaml:"browser_url" env:"ICONSTITCH_BROWSER_URL"`
	Headless   bool   `yaml:"headless" env:"ICONSTITCH_HEADLESS"`

	// AssetsDir receives fetched glyphs and is the root of the generated tree.
	AssetsDir string `yaml:"assets_dir" env:"ICONSTITCH_ASSETS_DIR"`
	// Sources are the directories scanned for placeholders.
	Sources []string `yaml:"sources" env:"ICONSTITCH_SOURCES" envSeparator:","`
	Marker  string   `yaml:"marker" env:"ICONSTITCH_MARKER"`
	Flavor  string   `yaml:"flavor" env:"ICONSTITCH_FLAVOR"`

	Settle   time.Duration `yaml:"settle" env:"ICONSTITCH_SETTLE"`
	Debounce time.Duration `yaml:"debounce" env:"ICONSTITCH_DEBOUNCE"`

	Concurrency int `yaml:"concurrency" env:"ICONSTITCH_CONCURRENCY"`
	// Manifest, when set, is where the TOML binding manifest is written.
	Manifest string `yaml:"manifest" env:"ICONSTITCH_MANIFEST"`
	ImageMap string `yaml:"image_map" env:"ICONSTITCH_IMAGE_MAP"`
}

// NewConfig returns a Config populated with defaults. The assets directory
// is ./src/assets when the working directory looks like a web project and
// the XDG data directory otherwise.
func NewConfig() *Config {
	return &Config{
		CatalogURL:  catalog.DefaultURL,
		Headless:    true,
		AssetsDir:   defaultAssetsDir(),
		Sources:     []string{defaultSourcesDir()},
		Marker:      extractor.DefaultMarker,
		Flavor:      DefaultFlavor,
		Settle:      catalog.DefaultSettle,
		Debounce:    catalog.DefaultDebounce,
		Concurrency: DefaultConcurrency,
		ImageMap:    DefaultImageMap,
	}
}

func defaultAssetsDir() string {
	if info, err := os.Stat(filepath.Join("src", "assets")); err == nil && info.IsDir() {
		return filepath.Join("src", "assets")
	}
	return filepath.Join(xdg.DataHome, AppName, "assets")
}

func defaultSourcesDir() string {
	if info, err := os.Stat("src"); err == nil && info.IsDir() {
		return "src"
	}
	return "."
}

// ApplyEnv overrides c with any ICONSTITCH_* variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the configuration file and the
// environment. An explicit path that does not exist is an error; a missing
// default file is not.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	found := FindConfigFile(path)
	switch {
	case found != "":
		if err := LoadConfigFile(found, cfg); err != nil {
			return nil, err
		}
	case path != "":
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Marker == "" {
		return ErrEmptyMarker
	}
	if c.AssetsDir == "" {
		return ErrNoAssetsDir
	}
	if _, err := assets.ParseFlavor(c.Flavor); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFlavor, c.Flavor)
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Settle < 0 || c.Debounce < 0 {
		return ErrInvalidTiming
	}
	return nil
}
