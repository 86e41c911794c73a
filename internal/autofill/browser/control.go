package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

const describeJS = `() => JSON.stringify({
	tag: this.tagName.toLowerCase(),
	type: this.getAttribute('type') || '',
	name: this.getAttribute('name') || '',
	required: !!this.required,
	disabled: this.matches(':disabled'),
	attrs: Object.fromEntries(Array.from(this.attributes).map((a) => [a.name, a.value])),
})`

const optionsJS = `() => JSON.stringify(Array.from(this.options || []).map((o) => ({
	value: o.value,
	disabled: o.disabled || (o.parentElement.tagName === 'OPTGROUP' && o.parentElement.disabled),
	selected: o.selected,
})))`

// dispatchJS fires a bubbling change or a non-bubbling blur, the way the
// browser does for user edits.
const dispatchJS = `(type) => {
	const ev = type === 'blur' ? new FocusEvent('blur') : new Event(type, { bubbles: true });
	this.dispatchEvent(ev);
}`

// clickTimeout bounds the wait for a control to become clickable.
const clickTimeout = 2 * time.Second

type optionState struct {
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
}

// Control is a form element on a live page.
type Control struct {
	el     *rod.Element
	typing Typing
}

// Element exposes the underlying Rod element.
func (c *Control) Element() *rod.Element {
	return c.el
}

func (c *Control) Describe(ctx context.Context) (filler.Descriptor, error) {
	var desc filler.Descriptor
	if err := evalJSON(ctx, c.el, describeJS, &desc); err != nil {
		return filler.Descriptor{}, fmt.Errorf("describe control: %w", err)
	}
	return desc, nil
}

func (c *Control) Value(ctx context.Context) (string, error) {
	res, err := c.el.Context(ctx).Eval(`() => String(this.value ?? '')`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (c *Control) Checked(ctx context.Context) (bool, error) {
	res, err := c.el.Context(ctx).Eval(`() => !!this.checked`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (c *Control) Options(ctx context.Context) ([]filler.OptionState, error) {
	var states []optionState
	if err := evalJSON(ctx, c.el, optionsJS, &states); err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}

	options := make([]filler.OptionState, len(states))
	for i, s := range states {
		options[i] = filler.OptionState{Value: s.Value, Disabled: s.Disabled, Selected: s.Selected}
	}
	return options, nil
}

func (c *Control) SetValue(ctx context.Context, value string) error {
	switch c.typing {
	case TypingFast:
		return TypeFast(ctx, c.el, value)
	case TypingHuman:
		return TypeHuman(ctx, c.el, value)
	}

	_, err := c.el.Context(ctx).Eval(`(v) => { this.value = v }`, value)
	return err
}

func (c *Control) SelectOption(ctx context.Context, index int) error {
	_, err := c.el.Context(ctx).Eval(`(i) => {
		if (!this.options || !this.options[i]) throw new Error('option ' + i + ' out of range');
		this.options[i].selected = true;
	}`, index)
	return err
}

// Click clicks the element with the mouse. Controls hidden behind custom
// styling cannot be hit, so those receive a scripted click instead.
func (c *Control) Click(ctx context.Context) error {
	el := c.el.Context(ctx)

	mouse := el.Timeout(clickTimeout)
	err := mouse.Click(proto.InputMouseButtonLeft, 1)
	mouse.CancelTimeout()
	if err == nil {
		return nil
	}

	_, err = el.Eval(`() => this.click()`)
	return err
}

func (c *Control) Dispatch(ctx context.Context, event string) error {
	_, err := c.el.Context(ctx).Eval(dispatchJS, event)
	return err
}
