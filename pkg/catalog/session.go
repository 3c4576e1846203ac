// Package catalog drives a remote icon catalog page through browser
// automation and exposes its UI-triggered downloads as blocking calls.
//
// A Session owns one page. Downloads are observed on the browser's control
// channel (Browser.downloadWillBegin, then Browser.downloadProgress) and a
// completed file is renamed after the glyph it was fetched for.
package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultURL is the Material Symbols catalog page.
	DefaultURL = "https://fonts.google.com/icons?icon.size=24&icon.color=%23e3e3e3"

	// DefaultSettle is the pause between UI steps of a fetch.
	DefaultSettle = 600 * time.Millisecond

	// DefaultDebounce is the pause after typing a search query.
	DefaultDebounce = 400 * time.Millisecond
)

// Selectors is the DOM contract with the catalog page.
type Selectors struct {
	SearchInput    string
	ResultItem     string
	ResultName     string // relative to ResultItem
	DownloadButton string
}

// DefaultSelectors matches the Google Fonts icon browser.
var DefaultSelectors = Selectors{
	SearchInput:    "#mat-input-0",
	ResultItem:     "button[icon-item][aria-label]",
	ResultName:     "span.icon-name",
	DownloadButton: `button[aria-label="Download asset in SVG format for this icon"]`,
}

// Config configures a Session and its RodDriver.
type Config struct {
	// URL of the catalog search page. Default: DefaultURL.
	URL string

	// DownloadDir receives fetched glyphs. Created if absent. Default: "./downloads".
	DownloadDir string

	// Headless runs the browser without a window.
	Headless bool

	// RemoteURL is the WebSocket URL of an already running browser.
	// Empty = launch a local one.
	RemoteURL string

	Selectors Selectors

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.DownloadDir == "" {
		c.DownloadDir = "downloads"
	}
	if c.Selectors.SearchInput == "" {
		c.Selectors.SearchInput = DefaultSelectors.SearchInput
	}
	if c.Selectors.ResultItem == "" {
		c.Selectors.ResultItem = DefaultSelectors.ResultItem
	}
	if c.Selectors.ResultName == "" {
		c.Selectors.ResultName = DefaultSelectors.ResultName
	}
	if c.Selectors.DownloadButton == "" {
		c.Selectors.DownloadButton = DefaultSelectors.DownloadButton
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session is one automation session against the catalog page.
//
// Search and Fetch must be serialized by the caller. A Fetch issued while
// another one is pending fails with ErrFetchInProgress.
type Session struct {
	cfg    Config
	driver Driver

	lifecycle sync.Mutex // Initialize, SetDownloadDirectory, Close
	started   bool
	closed    bool

	mu      sync.Mutex // dir, pending
	dir     string
	pending *pendingFetch
}

// pendingFetch is the completion handle of the single in-flight fetch.
type pendingFetch struct {
	name      string
	begun     chan struct{} // closed on EventBegin
	hasBegun  bool
	guid      string // download claimed by the first EventBegin
	suggested string
	resolved  bool
	done      chan DownloadState // buffered, receives completed or canceled
}

// NewSession creates a Session. A nil driver selects a RodDriver built from cfg.
// Call Initialize before Search or Fetch.
func NewSession(cfg Config, driver Driver) *Session {
	cfg.defaults()
	if driver == nil {
		driver = NewRodDriver(cfg)
	}
	dir := cfg.DownloadDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Session{cfg: cfg, driver: driver, dir: dir}
}

// Initialize launches the session if it is not running yet. It is idempotent.
func (s *Session) Initialize(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return &SessionError{Op: "initialize", Err: ErrClosed}
	}
	if s.started {
		return nil
	}

	dir := s.DownloadDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &SessionError{Op: "create download directory", Err: err}
	}

	if err := s.driver.Start(ctx, s.handleEvent); err != nil {
		return &SessionError{Op: "start", Err: err}
	}
	if err := s.driver.SetDownloadDir(dir); err != nil {
		s.driver.Close()
		return &SessionError{Op: "set download directory", Err: err}
	}

	s.started = true
	s.cfg.Logger.Info("catalog: session started", "url", s.cfg.URL, "dir", dir)
	return nil
}

// DownloadDir returns the directory fetched glyphs arrive in.
func (s *Session) DownloadDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// SetDownloadDirectory redirects future downloads to path, creating it if needed.
// It fails with ErrFetchInProgress while a fetch is awaiting its download.
func (s *Session) SetDownloadDirectory(path string) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("catalog: resolve %q: %w", path, err)
	}

	s.mu.Lock()
	busy := s.pending != nil
	s.mu.Unlock()
	if busy {
		return ErrFetchInProgress
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("catalog: create download directory: %w", err)
	}
	if s.started {
		if err := s.driver.SetDownloadDir(abs); err != nil {
			return fmt.Errorf("catalog: set download directory: %w", err)
		}
	}

	s.mu.Lock()
	s.dir = abs
	s.mu.Unlock()
	return nil
}

// Search returns the catalog's result names for query. An empty query
// lists whatever the page currently shows.
func (s *Session) Search(ctx context.Context, query string, debounce time.Duration) (iter.Seq[string], error) {
	if !s.isStarted() {
		return nil, ErrNotInitialized
	}

	names, err := s.driver.Search(ctx, strings.ToLower(strings.TrimSpace(query)), debounce)
	if err != nil {
		return nil, fmt.Errorf("catalog: search %q: %w", query, err)
	}
	return slices.Values(names), nil
}

// Fetch downloads the glyph called name and returns the path it was stored
// at, <download dir>/<name><ext>. A download canceled by the browser returns
// an empty path and a nil error.
//
// Fetch blocks until the browser reports the download as completed or
// canceled. It has no deadline of its own; ctx bounds the wait.
func (s *Session) Fetch(ctx context.Context, name string, settle time.Duration) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("catalog: fetch: empty glyph name")
	}
	if !s.isStarted() {
		return "", ErrNotInitialized
	}

	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		return "", ErrFetchInProgress
	}
	p := &pendingFetch{
		name:  name,
		begun: make(chan struct{}),
		done:  make(chan DownloadState, 1),
	}
	s.pending = p
	dir := s.dir
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.pending == p {
			s.pending = nil
		}
		s.mu.Unlock()
	}()

	if err := s.driver.TriggerDownload(ctx, name, settle); err != nil {
		return "", &AcquisitionError{Name: name, Err: err}
	}

	var state DownloadState
	select {
	case state = <-p.done:
	case <-ctx.Done():
		select {
		case <-p.begun:
			return "", fmt.Errorf("catalog: fetch %q: %w", name, ctx.Err())
		default:
			return "", &AcquisitionError{Name: name, Err: ctx.Err()}
		}
	}

	if state == StateCanceled {
		s.cfg.Logger.Info("catalog: download canceled", "glyph", name)
		return "", nil
	}

	s.mu.Lock()
	suggested := p.suggested
	s.mu.Unlock()
	if suggested == "" {
		return "", fmt.Errorf("catalog: fetch %q: download completed without a file name", name)
	}

	ext := filepath.Ext(suggested)
	if ext == "" {
		ext = ".svg"
	}
	oldPath := filepath.Join(dir, suggested)
	newPath := filepath.Join(dir, name+ext)
	if oldPath != newPath {
		if err := os.Rename(oldPath, newPath); err != nil {
			return "", fmt.Errorf("catalog: fetch %q: %w", name, err)
		}
	}

	s.cfg.Logger.Debug("catalog: glyph fetched", "glyph", name, "path", newPath)
	return newPath, nil
}

// Close tears down the page and the browser. Closing twice is a no-op.
func (s *Session) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if !s.started {
		return nil
	}
	s.started = false

	if err := s.driver.Close(); err != nil {
		return fmt.Errorf("catalog: close: %w", err)
	}
	return nil
}

func (s *Session) isStarted() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.started
}

// handleEvent advances the pending fetch. The first EventBegin claims its
// download GUID and only progress of that download can resolve the fetch,
// so a late event of an abandoned fetch never completes the next one.
// Events with no fetch waiting (downloads started by hand in a headful
// browser) are dropped.
func (s *Session) handleEvent(e DownloadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	if p == nil {
		s.cfg.Logger.Debug("catalog: download event without pending fetch", "guid", e.GUID)
		return
	}

	switch e.Kind {
	case EventBegin:
		if !p.hasBegun {
			p.hasBegun = true
			p.guid = e.GUID
			p.suggested = e.SuggestedFilename
			close(p.begun)
		}
	case EventProgress:
		if p.resolved || !p.hasBegun {
			return
		}
		if e.GUID != p.guid {
			s.cfg.Logger.Debug("catalog: progress of another download", "guid", e.GUID, "pending", p.name)
			return
		}
		if e.State == StateCompleted || e.State == StateCanceled {
			p.resolved = true
			p.done <- e.State
		}
	}
}
