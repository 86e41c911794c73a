package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// Frame targets accepted by ResolveFrame besides a CSS selector.
const (
	FrameTop     = ""
	FrameDeepest = "deepest"
)

// domStableWindow is how long the DOM must stay unchanged to count as loaded.
const domStableWindow = 300 * time.Millisecond

// WaitForFrames waits for DOM stability on the page and, recursively, on
// every visible iframe, so late-rendered form controls are collected.
func WaitForFrames(page *rod.Page) error {
	if err := page.WaitDOMStable(domStableWindow, 0); err != nil {
		return fmt.Errorf("wait for stable DOM: %w", err)
	}

	iframes, err := page.Elements("iframe")
	if err != nil {
		return nil
	}

	for _, iframe := range iframes {
		if visible, _ := iframe.Visible(); !visible {
			continue
		}

		frame, err := iframe.Frame()
		if err != nil {
			continue
		}

		if err := WaitForFrames(frame); err != nil {
			return err
		}
	}

	return nil
}

// ResolveFrame returns the page context holding the form: the top document,
// the deepest visible iframe, or the iframe matching a CSS selector.
func ResolveFrame(page *rod.Page, target string) (*rod.Page, error) {
	switch target {
	case FrameTop:
		return page, nil
	case FrameDeepest:
		return DeepestVisibleFrame(page)
	default:
		return FrameBySelector(page, target)
	}
}

// DeepestVisibleFrame follows the first visible iframe at every level and
// returns the innermost frame. Without iframes it returns page.
func DeepestVisibleFrame(page *rod.Page) (*rod.Page, error) {
	iframes, err := page.Elements("iframe")
	if err != nil {
		return page, nil
	}

	for _, iframe := range iframes {
		if visible, _ := iframe.Visible(); !visible {
			continue
		}

		child, err := iframe.Frame()
		if err != nil {
			return nil, fmt.Errorf("failed to get frame context: %w", err)
		}
		return DeepestVisibleFrame(child)
	}

	return page, nil
}

// FrameBySelector returns the frame context of the iframe matching selector.
func FrameBySelector(page *rod.Page, selector string) (*rod.Page, error) {
	iframeEl, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("iframe element not found: %w", err)
	}

	frame, err := iframeEl.Frame()
	if err != nil {
		return nil, fmt.Errorf("failed to get frame context: %w", err)
	}

	return frame, nil
}
