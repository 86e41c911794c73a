package cdpdoc

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// Control is one collected element, addressed by its snapshot position.
type Control struct {
	doc   *Document
	index int
}

type optionState struct {
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
}

// clickTarget is the viewport point that hits the element, if any.
type clickTarget struct {
	Hit bool    `json:"hit"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func (c *Control) Describe(ctx context.Context) (filler.Descriptor, error) {
	var desc filler.Descriptor
	err := c.doc.eval(ctx, c.index, `return {
		tag: this.tagName.toLowerCase(),
		type: this.getAttribute('type') || '',
		name: this.getAttribute('name') || '',
		required: !!this.required,
		disabled: this.matches(':disabled'),
		attrs: Object.fromEntries(Array.from(this.attributes).map((a) => [a.name, a.value])),
	};`, &desc)
	if err != nil {
		return filler.Descriptor{}, fmt.Errorf("describe control %d: %w", c.index, err)
	}
	return desc, nil
}

func (c *Control) Value(ctx context.Context) (string, error) {
	var v string
	err := c.doc.eval(ctx, c.index, `return String(this.value ?? '');`, &v)
	return v, err
}

func (c *Control) Checked(ctx context.Context) (bool, error) {
	var v bool
	err := c.doc.eval(ctx, c.index, `return !!this.checked;`, &v)
	return v, err
}

func (c *Control) Options(ctx context.Context) ([]filler.OptionState, error) {
	var states []optionState
	err := c.doc.eval(ctx, c.index, `return Array.from(this.options || []).map((o) => ({
		value: o.value,
		disabled: o.disabled || (o.parentElement.tagName === 'OPTGROUP' && o.parentElement.disabled),
		selected: o.selected,
	}));`, &states)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}

	options := make([]filler.OptionState, len(states))
	for i, s := range states {
		options[i] = filler.OptionState{Value: s.Value, Disabled: s.Disabled, Selected: s.Selected}
	}
	return options, nil
}

func (c *Control) SetValue(ctx context.Context, value string) error {
	var ok bool
	return c.doc.eval(ctx, c.index, `this.value = arguments[0]; return true;`, &ok, value)
}

func (c *Control) SelectOption(ctx context.Context, index int) error {
	var ok bool
	return c.doc.eval(ctx, c.index, `
		const o = this.options && this.options[arguments[0]];
		if (!o) throw new Error('option ' + arguments[0] + ' out of range');
		o.selected = true;
		return true;`, &ok, index)
}

// Click presses the mouse over the element so the browser produces a trusted
// click. Elements that are covered or have no box get a scripted click.
func (c *Control) Click(ctx context.Context) error {
	var target clickTarget
	err := c.doc.eval(ctx, c.index, `
		this.scrollIntoView({ block: 'center', inline: 'center' });
		const r = this.getBoundingClientRect();
		const x = r.left + r.width / 2, y = r.top + r.height / 2;
		const hit = r.width > 0 && r.height > 0 && document.elementFromPoint(x, y) === this;
		return { hit, x, y };`, &target)
	if err != nil {
		return err
	}

	if target.Hit {
		return chromedp.Run(ctx, chromedp.MouseClickXY(target.X, target.Y, chromedp.ButtonType(input.Left)))
	}

	var ok bool
	return c.doc.eval(ctx, c.index, `this.click(); return true;`, &ok)
}

func (c *Control) Dispatch(ctx context.Context, event string) error {
	var ok bool
	return c.doc.eval(ctx, c.index, `
		const type = arguments[0];
		this.dispatchEvent(type === 'blur' ? new FocusEvent('blur') : new Event(type, { bubbles: true }));
		return true;`, &ok, event)
}
