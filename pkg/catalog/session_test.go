package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// fakeDriver simulates the catalog page: TriggerDownload writes the file
// under its suggested name and emits the matching events.
type fakeDriver struct {
	mu        sync.Mutex
	onEvent   func(DownloadEvent)
	dir       string
	startErr  error
	results   []string
	starts    int
	closes    int
	outcome   DownloadState // completed, canceled or "" (never begins)
	hold      chan struct{} // when set, events wait until it is closed
	triggered chan string

	// events, when set, replaces the default begin/progress sequence.
	events func(name, suggested string) []DownloadEvent
}

func (f *fakeDriver) Start(ctx context.Context, onEvent func(DownloadEvent)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.onEvent = onEvent
	return nil
}

func (f *fakeDriver) SetDownloadDir(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dir = dir
	return nil
}

func (f *fakeDriver) Search(ctx context.Context, query string, debounce time.Duration) ([]string, error) {
	var out []string
	for _, r := range f.results {
		if query == "" || r == query || len(r) >= len(query) && r[:len(query)] == query {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDriver) TriggerDownload(ctx context.Context, name string, settle time.Duration) error {
	f.mu.Lock()
	dir, onEvent, outcome, hold, events := f.dir, f.onEvent, f.outcome, f.hold, f.events
	f.mu.Unlock()

	if f.triggered != nil {
		f.triggered <- name
	}
	if outcome == "" && events == nil {
		return nil
	}

	suggested := name + "_24dp_E3E3E3_FILL0_wght400_GRAD0_opsz24.svg"
	if err := os.WriteFile(filepath.Join(dir, suggested), []byte("<svg/>"), 0644); err != nil {
		return err
	}

	go func() {
		if hold != nil {
			<-hold
		}
		if events != nil {
			for _, e := range events(name, suggested) {
				onEvent(e)
			}
			return
		}
		onEvent(DownloadEvent{Kind: EventBegin, GUID: "g1", SuggestedFilename: suggested})
		onEvent(DownloadEvent{Kind: EventProgress, GUID: "g1", State: StateInProgress})
		onEvent(DownloadEvent{Kind: EventProgress, GUID: "g1", State: outcome})
	}()
	return nil
}

func (f *fakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func newTestSession(t *testing.T, d *fakeDriver) *Session {
	t.Helper()
	s := NewSession(Config{
		DownloadDir: filepath.Join(t.TempDir(), "downloads"),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, d)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitializeIsIdempotent(t *testing.T) {
	d := &fakeDriver{}
	s := newTestSession(t, d)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if d.starts != 1 {
		t.Errorf("driver started %d times, want 1", d.starts)
	}
	if _, err := os.Stat(s.DownloadDir()); err != nil {
		t.Errorf("download directory not created: %v", err)
	}
	if d.dir != s.DownloadDir() {
		t.Errorf("driver download dir = %q, want %q", d.dir, s.DownloadDir())
	}
}

func TestInitializeFailureIsSessionError(t *testing.T) {
	d := &fakeDriver{startErr: errors.New("chrome not found")}
	s := NewSession(Config{DownloadDir: t.TempDir()}, d)

	err := s.Initialize(context.Background())
	var se *SessionError
	if !errors.As(err, &se) {
		t.Fatalf("Initialize() error = %v, want *SessionError", err)
	}
	if _, err := s.Fetch(context.Background(), "home", 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Fetch() after failed init error = %v, want ErrNotInitialized", err)
	}
}

func TestFetchCompleted(t *testing.T) {
	d := &fakeDriver{outcome: StateCompleted}
	s := newTestSession(t, d)

	path, err := s.Fetch(context.Background(), "home", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := filepath.Join(s.DownloadDir(), "home.svg")
	if path != want {
		t.Errorf("Fetch() = %q, want %q", path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestFetchCanceledResolvesEmpty(t *testing.T) {
	d := &fakeDriver{outcome: StateCanceled}
	s := newTestSession(t, d)

	path, err := s.Fetch(context.Background(), "home", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil for canceled download", err)
	}
	if path != "" {
		t.Errorf("Fetch() = %q, want empty path", path)
	}
}

func TestFetchNeverBegins(t *testing.T) {
	d := &fakeDriver{}
	s := newTestSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Fetch(ctx, "home", 0)
	var ae *AcquisitionError
	if !errors.As(err, &ae) {
		t.Fatalf("Fetch() error = %v, want *AcquisitionError", err)
	}
	if ae.Name != "home" || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("AcquisitionError = %+v", ae)
	}

	// The slot is released for the next fetch.
	d.mu.Lock()
	d.outcome = StateCompleted
	d.mu.Unlock()
	if _, err := s.Fetch(context.Background(), "search", 0); err != nil {
		t.Errorf("Fetch() after abandoned fetch error = %v", err)
	}
}

func TestFetchIgnoresOtherDownloads(t *testing.T) {
	d := &fakeDriver{
		events: func(name, suggested string) []DownloadEvent {
			if name == "home" {
				// begins, then stalls past the caller's deadline
				return []DownloadEvent{{Kind: EventBegin, GUID: "a", SuggestedFilename: suggested}}
			}
			return []DownloadEvent{
				{Kind: EventProgress, GUID: "a", State: StateCompleted},
				{Kind: EventBegin, GUID: "b", SuggestedFilename: suggested},
				{Kind: EventProgress, GUID: "a", State: StateCompleted},
				{Kind: EventProgress, GUID: "b", State: StateInProgress},
				{Kind: EventProgress, GUID: "b", State: StateCanceled},
			}
		},
	}
	s := newTestSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.Fetch(ctx, "home", 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("abandoned Fetch() error = %v, want deadline exceeded", err)
	}

	path, err := s.Fetch(context.Background(), "search", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if path != "" {
		t.Errorf("Fetch() = %q, want empty path for the canceled download", path)
	}
	if _, err := os.Stat(filepath.Join(s.DownloadDir(), "search.svg")); !os.IsNotExist(err) {
		t.Errorf("canceled download was renamed into place")
	}
}

func TestConcurrentFetchIsRejected(t *testing.T) {
	hold := make(chan struct{})
	d := &fakeDriver{outcome: StateCompleted, hold: hold, triggered: make(chan string, 2)}
	s := newTestSession(t, d)

	type result struct {
		path string
		err  error
	}
	first := make(chan result, 1)
	go func() {
		p, err := s.Fetch(context.Background(), "home", 0)
		first <- result{p, err}
	}()
	<-d.triggered

	if _, err := s.Fetch(context.Background(), "search", 0); !errors.Is(err, ErrFetchInProgress) {
		t.Errorf("second Fetch() error = %v, want ErrFetchInProgress", err)
	}
	if err := s.SetDownloadDirectory(t.TempDir()); !errors.Is(err, ErrFetchInProgress) {
		t.Errorf("SetDownloadDirectory() during fetch error = %v, want ErrFetchInProgress", err)
	}

	close(hold)
	r := <-first
	if r.err != nil {
		t.Fatalf("first Fetch() error = %v", r.err)
	}
	if filepath.Base(r.path) != "home.svg" {
		t.Errorf("first Fetch() = %q, want home.svg", r.path)
	}
}

func TestSetDownloadDirectory(t *testing.T) {
	d := &fakeDriver{outcome: StateCompleted}
	s := newTestSession(t, d)

	dir := filepath.Join(t.TempDir(), "nested", "icons")
	if err := s.SetDownloadDirectory(dir); err != nil {
		t.Fatalf("SetDownloadDirectory() error = %v", err)
	}
	if d.dir != dir {
		t.Errorf("driver dir = %q, want %q", d.dir, dir)
	}

	path, err := s.Fetch(context.Background(), "menu", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if path != filepath.Join(dir, "menu.svg") {
		t.Errorf("Fetch() = %q, want file inside %q", path, dir)
	}
}

func TestSearch(t *testing.T) {
	d := &fakeDriver{results: []string{"home", "home_work", "search"}}
	s := newTestSession(t, d)

	seq, err := s.Search(context.Background(), "  HOME ", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := slices.Collect(seq); !slices.Equal(got, []string{"home", "home_work"}) {
		t.Errorf("Search() = %v, want [home home_work]", got)
	}
}

func TestCloseTwice(t *testing.T) {
	d := &fakeDriver{}
	s := newTestSession(t, d)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if d.closes != 1 {
		t.Errorf("driver closed %d times, want 1", d.closes)
	}
	if err := s.Initialize(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Initialize() after Close error = %v, want ErrClosed", err)
	}
}
