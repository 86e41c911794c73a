// Package browser fills forms on live pages driven through Rod.
package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// LaunchOptions controls the Chromium instance used for filling.
type LaunchOptions struct {
	// Bin is the browser executable. Empty lets Rod find or download one.
	Bin      string
	Headless bool
	// Stealth opens pages with automation fingerprints masked.
	Stealth bool
}

// Launch starts a browser and connects to it.
func Launch(opts LaunchOptions) (*rod.Browser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		// Hide the "controlled by automated software" signals from page scripts
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check")

	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return browser, nil
}

// NewPage opens a blank page, masked when stealth is set.
func NewPage(browser *rod.Browser, useStealth bool) (*rod.Page, error) {
	if useStealth {
		page, err := stealth.Page(browser)
		if err != nil {
			return nil, fmt.Errorf("open stealth page: %w", err)
		}
		return page, nil
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}
