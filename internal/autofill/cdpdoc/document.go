// Package cdpdoc implements the filler page contracts over chromedp, for hosts
// that already drive the browser with a chromedp context.
//
// Every method runs its actions against the context it is given, so the
// context passed to filler.Filler.Run must be a chromedp target context.
package cdpdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/chromedp/chromedp"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

var snapshotSeq atomic.Uint64

// Document is the page currently loaded in a chromedp target.
type Document struct {
	// key names the window property holding the collected elements
	key string
}

func New() *Document {
	return &Document{key: fmt.Sprintf("__autofillControls%d", snapshotSeq.Add(1))}
}

// Controls snapshots the page controls into the page itself and returns
// handles addressing them by position.
func (d *Document) Controls(ctx context.Context) ([]filler.Control, error) {
	var n int
	expr := fmt.Sprintf(`(() => {
		window[%q] = Array.from(document.querySelectorAll('input, select, textarea'));
		return window[%[1]q].length;
	})()`, d.key)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return nil, fmt.Errorf("query controls: %w", err)
	}

	controls := make([]filler.Control, n)
	for i := range controls {
		controls[i] = &Control{doc: d, index: i}
	}
	return controls, nil
}

type lookup struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

func (d *Document) ValueOf(ctx context.Context, name string) (string, bool, error) {
	arg, err := json.Marshal(name)
	if err != nil {
		return "", false, err
	}

	var res lookup
	expr := fmt.Sprintf(`(() => {
		const el = document.getElementsByName(%s)[0];
		return el ? { found: true, value: String(el.value) } : { found: false, value: '' };
	})()`, arg)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &res)); err != nil {
		return "", false, fmt.Errorf("read %q: %w", name, err)
	}
	return res.Value, res.Found, nil
}

// eval runs body as a function of the element `el` and decodes its result.
// body must return a JSON-serializable, non-null value.
func (d *Document) eval(ctx context.Context, index int, body string, out any, args ...any) error {
	encoded := make([]byte, 0, 64)
	encoded = append(encoded, '[')
	for i, a := range args {
		if i > 0 {
			encoded = append(encoded, ',')
		}
		b, err := json.Marshal(a)
		if err != nil {
			return err
		}
		encoded = append(encoded, b...)
	}
	encoded = append(encoded, ']')

	expr := fmt.Sprintf(`((el, args) => {
		if (!el) throw new Error('control %[1]d is gone');
		return (function() { %[2]s }).apply(el, args);
	})((window[%[3]q] || [])[%[1]d], %[4]s)`, index, body, d.key, encoded)

	return chromedp.Run(ctx, chromedp.Evaluate(expr, out))
}
