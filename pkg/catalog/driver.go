package catalog

import (
	"context"
	"time"
)

// EventKind distinguishes the two download lifecycle events of the control channel.
type EventKind int

const (
	EventBegin EventKind = iota
	EventProgress
)

// DownloadState mirrors the CDP Browser.downloadProgress states.
type DownloadState string

const (
	StateInProgress DownloadState = "inProgress"
	StateCompleted  DownloadState = "completed"
	StateCanceled   DownloadState = "canceled"
)

// DownloadEvent is a download lifecycle notification from the control channel.
type DownloadEvent struct {
	Kind              EventKind
	GUID              string
	SuggestedFilename string        // EventBegin only
	State             DownloadState // EventProgress only
}

// Driver drives the remote catalog page. RodDriver is the production
// implementation; tests substitute their own.
type Driver interface {
	// Start launches the browser, opens the catalog page and delivers every
	// download event to onEvent until Close.
	Start(ctx context.Context, onEvent func(DownloadEvent)) error
	// SetDownloadDir redirects where the browser stores downloads.
	SetDownloadDir(dir string) error
	// Search types query into the search field, waits debounce and returns
	// the names of the rendered results.
	Search(ctx context.Context, query string, debounce time.Duration) ([]string, error)
	// TriggerDownload selects the glyph and clicks the download control,
	// pausing settle between UI steps.
	TriggerDownload(ctx context.Context, name string, settle time.Duration) error
	Close() error
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
