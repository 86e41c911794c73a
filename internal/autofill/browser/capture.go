package browser

import (
	"fmt"

	"github.com/go-rod/rod"
)

// Capture returns the page HTML with the body of every reachable iframe
// inlined as a <div data-captured-iframe> container, so the form can be
// filled offline as one document. It also returns how many iframes the top
// document had.
//
// The live DOM is modified. Capture should be the last thing done to a page
// before navigating away.
func Capture(page *rod.Page) (string, int, error) {
	iframes, err := page.Elements("iframe")
	if err != nil {
		return "", 0, fmt.Errorf("query iframes: %w", err)
	}

	if len(iframes) > 0 {
		// Cross-origin frames are replaced by an error marker, not inlined.
		if _, err := page.Eval(inlineIframesJS); err != nil {
			return "", 0, fmt.Errorf("inline iframes: %w", err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", 0, fmt.Errorf("read html: %w", err)
	}
	return html, len(iframes), nil
}

const inlineIframesJS = `() => {
	function inline(root) {
		root.querySelectorAll('iframe').forEach((iframe) => {
			const box = root.createElement('div');
			box.setAttribute('data-captured-iframe', 'true');
			box.setAttribute('data-iframe-src', iframe.src || '');
			box.setAttribute('data-iframe-id', iframe.id || '');
			box.setAttribute('data-iframe-name', iframe.name || '');
			try {
				const doc = iframe.contentDocument || iframe.contentWindow.document;
				if (!doc || !doc.body) return;
				inline(doc);
				box.innerHTML = doc.body.innerHTML;
			} catch (e) {
				box.setAttribute('data-iframe-error', e.message);
			}
			iframe.parentNode.replaceChild(box, iframe);
		});
	}
	inline(document);
}`
