package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// Typing selects how text values reach a control.
type Typing int

const (
	// TypingNone assigns the value property directly.
	TypingNone Typing = iota
	// TypingFast types the value without pauses.
	TypingFast
	// TypingHuman types the value with human-like pauses.
	TypingHuman
)

const controlsSelector = "input, select, textarea"

// valueByNameJS returns the value of the first element with the given name,
// or null when there is none.
const valueByNameJS = `(name) => {
	const el = document.getElementsByName(name)[0];
	return el ? String(el.value) : null;
}`

// Document is a live page (or frame) driven through Rod.
type Document struct {
	page   *rod.Page
	typing Typing
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

func WithTyping(t Typing) DocumentOption {
	return func(d *Document) {
		d.typing = t
	}
}

func NewDocument(page *rod.Page, opts ...DocumentOption) *Document {
	d := &Document{page: page}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) Controls(ctx context.Context) ([]filler.Control, error) {
	elements, err := d.page.Context(ctx).Elements(controlsSelector)
	if err != nil {
		return nil, fmt.Errorf("query controls: %w", err)
	}

	controls := make([]filler.Control, len(elements))
	for i, el := range elements {
		controls[i] = &Control{el: el, typing: d.typing}
	}
	return controls, nil
}

func (d *Document) ValueOf(ctx context.Context, name string) (string, bool, error) {
	res, err := d.page.Context(ctx).Eval(valueByNameJS, name)
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", name, err)
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

// evalJSON runs js on el and decodes the JSON string it returns into out.
func evalJSON(ctx context.Context, el *rod.Element, js string, out any) error {
	res, err := el.Context(ctx).Eval(js)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), out); err != nil {
		return fmt.Errorf("decode element state: %w", err)
	}
	return nil
}
