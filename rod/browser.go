// Package rod drives a Chrome browser with go-rod.
package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Options configures a browser launch.
type Options struct {
	Headless  bool
	Incognito bool
}

// Browser is a launched Chrome instance. Close must be called when it is no
// longer needed.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     Options
	once     sync.Once
	closeErr error
}

// Launch starts Chrome with stability flags, images and notifications
// disabled, audio muted and a desktop-sized window.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func Launch(opts Options) (*Browser, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("disable-notifications").
		Set("mute-audio").
		Set("blink-settings", "imagesEnabled=false").
		Set("window-size", "1920,1080").
		Leakless(true).
		Headless(opts.Headless)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &Browser{browser: browser, launcher: l, opts: opts}, nil
}

// NewPage opens a tab. In incognito mode the tab gets its own browser
// context.
func (b *Browser) NewPage() (*Page, error) {
	target := b.browser
	if b.opts.Incognito {
		incognito, err := b.browser.Incognito()
		if err != nil {
			return nil, fmt.Errorf("creating incognito context: %w", err)
		}
		target = incognito
	}

	page, err := target.Page(pageTarget)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return &Page{page: page}, nil
}

// Close shuts down the browser and its launcher. Close is safe to call
// multiple times.
func (b *Browser) Close() error {
	b.once.Do(func() {
		b.closeErr = b.browser.Close()
		b.launcher.Kill()
	})
	return b.closeErr
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	return b.launcher.PID()
}
