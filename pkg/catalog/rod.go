package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodDriver drives the catalog page with a Chrome instance controlled over CDP.
type RodDriver struct {
	cfg        Config
	lnch       *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	stopEvents context.CancelFunc
}

// NewRodDriver creates a driver. Nothing is launched until Start.
func NewRodDriver(cfg Config) *RodDriver {
	cfg.defaults()
	return &RodDriver{cfg: cfg}
}

// Start launches (or connects to) Chrome, subscribes to the browser-level
// download events and opens the catalog page.
func (d *RodDriver) Start(ctx context.Context, onEvent func(DownloadEvent)) error {
	log := d.cfg.Logger

	wsURL := d.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(d.cfg.Headless).
			NoSandbox(true).
			Set("disable-setuid-sandbox").
			Set("disable-infobars").
			Set("ignore-certificate-errors").
			Set("window-size", "1920,1080")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		wsURL = u
		d.lnch = l
		log.Info("catalog: launched local chrome", "url", wsURL, "headless", d.cfg.Headless)
	} else {
		log.Info("catalog: connecting to remote chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		d.cleanup()
		return fmt.Errorf("connect browser: %w", err)
	}
	d.browser = b

	eventsCtx, cancel := context.WithCancel(context.Background())
	d.stopEvents = cancel
	wait := b.Context(eventsCtx).EachEvent(
		func(e *proto.BrowserDownloadWillBegin) {
			onEvent(DownloadEvent{
				Kind:              EventBegin,
				GUID:              e.GUID,
				SuggestedFilename: e.SuggestedFilename,
			})
		},
		func(e *proto.BrowserDownloadProgress) {
			onEvent(DownloadEvent{
				Kind:  EventProgress,
				GUID:  e.GUID,
				State: DownloadState(e.State),
			})
		},
	)
	go wait()

	page, err := stealth.Page(b)
	if err != nil {
		d.cleanup()
		return fmt.Errorf("create page: %w", err)
	}
	d.page = page

	navCtx, navCancel := context.WithTimeout(ctx, time.Minute)
	defer navCancel()

	if err := page.Context(navCtx).Navigate(d.cfg.URL); err != nil {
		d.cleanup()
		return fmt.Errorf("navigate %s: %w", d.cfg.URL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("catalog: wait load", "url", d.cfg.URL, "error", err)
	}

	return nil
}

// SetDownloadDir points Browser.setDownloadBehavior at dir with events enabled.
func (d *RodDriver) SetDownloadDir(dir string) error {
	if d.browser == nil {
		return fmt.Errorf("browser not started")
	}
	return proto.BrowserSetDownloadBehavior{
		Behavior:      proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath:  dir,
		EventsEnabled: true,
	}.Call(d.browser)
}

// Search types the query, waits for the result list to settle and reads it.
func (d *RodDriver) Search(ctx context.Context, query string, debounce time.Duration) ([]string, error) {
	if d.page == nil {
		return nil, fmt.Errorf("page not open")
	}
	p := d.page.Context(ctx)

	if query != "" {
		if err := d.typeQuery(p, query); err != nil {
			return nil, err
		}
		if err := pause(ctx, debounce); err != nil {
			return nil, err
		}
	}

	items, err := p.Elements(d.cfg.Selectors.ResultItem)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := d.itemName(item)
		if ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// TriggerDownload searches for name, opens its result and clicks the
// download control. The download itself is reported through events.
func (d *RodDriver) TriggerDownload(ctx context.Context, name string, settle time.Duration) error {
	if d.page == nil {
		return fmt.Errorf("page not open")
	}
	p := d.page.Context(ctx)

	if err := d.typeQuery(p, name); err != nil {
		return err
	}
	if err := pause(ctx, settle); err != nil {
		return err
	}

	item, err := d.pickResult(p, name)
	if err != nil {
		return err
	}
	if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("select %q: %w", name, err)
	}
	if err := pause(ctx, settle); err != nil {
		return err
	}

	btn, err := p.Element(d.cfg.Selectors.DownloadButton)
	if err != nil {
		return fmt.Errorf("find download control: %w", err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click download control: %w", err)
	}
	return nil
}

// Close stops the event subscription and shuts Chrome down.
func (d *RodDriver) Close() error {
	return d.cleanup()
}

func (d *RodDriver) typeQuery(p *rod.Page, query string) error {
	input, err := p.Element(d.cfg.Selectors.SearchInput)
	if err != nil {
		return fmt.Errorf("find search field: %w", err)
	}
	if err := input.SelectAllText(); err != nil {
		return fmt.Errorf("clear search field: %w", err)
	}
	if err := input.Input(query); err != nil {
		return fmt.Errorf("type %q: %w", query, err)
	}
	return nil
}

// pickResult prefers the result whose name matches exactly and falls back
// to the first one.
func (d *RodDriver) pickResult(p *rod.Page, name string) (*rod.Element, error) {
	items, err := p.Elements(d.cfg.Selectors.ResultItem)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no result for %q", name)
	}

	for _, item := range items {
		if got, ok := d.itemName(item); ok && strings.EqualFold(got, name) {
			return item, nil
		}
	}
	return items[0], nil
}

func (d *RodDriver) itemName(item *rod.Element) (string, bool) {
	els, err := item.Elements(d.cfg.Selectors.ResultName)
	if err != nil || len(els) == 0 {
		return "", false
	}
	text, err := els[0].Text()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (d *RodDriver) cleanup() error {
	var errs []error
	if d.stopEvents != nil {
		d.stopEvents()
		d.stopEvents = nil
	}
	if d.page != nil {
		if err := d.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		d.page = nil
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		d.browser = nil
	}
	if d.lnch != nil {
		d.lnch.Cleanup()
		d.lnch = nil
	}
	return errors.Join(errs...)
}
