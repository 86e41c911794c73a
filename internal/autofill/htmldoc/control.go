package htmldoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// Control is one form element of a Document.
type Control struct {
	doc   *Document
	node  *html.Node
	index int
}

func (c *Control) sel() *goquery.Selection {
	return c.doc.doc.FindNodes(c.node)
}

func (c *Control) tag() string {
	return strings.ToLower(c.node.Data)
}

func (c *Control) inputType() string {
	t := strings.ToLower(attr(c.node, "type"))
	if t == "" && c.tag() == filler.TagInput {
		return filler.TypeText
	}
	return t
}

func (c *Control) Describe(_ context.Context) (filler.Descriptor, error) {
	attrs := make(map[string]string, len(c.node.Attr))
	for _, a := range c.node.Attr {
		attrs[a.Key] = a.Val
	}

	return filler.Descriptor{
		Tag:      c.tag(),
		Type:     attr(c.node, "type"),
		Name:     attr(c.node, "name"),
		Required: hasAttr(c.node, "required"),
		Disabled: c.disabled(),
		Attrs:    attrs,
	}, nil
}

func (c *Control) Value(ctx context.Context) (string, error) {
	switch c.tag() {
	case filler.TagTextarea:
		return c.sel().Text(), nil
	case filler.TagSelect:
		options, err := c.Options(ctx)
		if err != nil {
			return "", err
		}
		for _, o := range options {
			if o.Selected {
				return o.Value, nil
			}
		}
		// Single selects show their first option when none is marked.
		if len(options) > 0 && !hasAttr(c.node, "multiple") {
			return options[0].Value, nil
		}
		return "", nil
	default:
		return attr(c.node, "value"), nil
	}
}

func (c *Control) Checked(_ context.Context) (bool, error) {
	return hasAttr(c.node, "checked"), nil
}

func (c *Control) Options(_ context.Context) ([]filler.OptionState, error) {
	if c.tag() != filler.TagSelect {
		return nil, nil
	}

	var options []filler.OptionState
	c.sel().Find("option").Each(func(_ int, o *goquery.Selection) {
		value, ok := o.Attr("value")
		if !ok {
			value = strings.TrimSpace(o.Text())
		}
		_, disabled := o.Attr("disabled")
		if !disabled {
			_, disabled = o.Parent().Filter("optgroup[disabled]").Attr("disabled")
		}
		_, selected := o.Attr("selected")
		options = append(options, filler.OptionState{Value: value, Disabled: disabled, Selected: selected})
	})
	return options, nil
}

func (c *Control) SetValue(_ context.Context, value string) error {
	if c.tag() == filler.TagTextarea {
		c.sel().SetText(value)
		return nil
	}
	c.sel().SetAttr("value", value)
	return nil
}

func (c *Control) SelectOption(_ context.Context, index int) error {
	options := c.sel().Find("option")
	if index < 0 || index >= options.Length() {
		return fmt.Errorf("option index %d out of range [0, %d)", index, options.Length())
	}
	options.RemoveAttr("selected")
	options.Eq(index).SetAttr("selected", "selected")
	return nil
}

// Click toggles checkboxes and selects radios the way a browser does, then
// delivers a click event. Clicks on disabled controls are ignored.
func (c *Control) Click(_ context.Context) error {
	if c.disabled() {
		return nil
	}

	switch c.inputType() {
	case filler.TypeCheckbox:
		if hasAttr(c.node, "checked") {
			c.sel().RemoveAttr("checked")
		} else {
			c.sel().SetAttr("checked", "checked")
		}
	case filler.TypeRadio:
		if name := attr(c.node, "name"); name != "" {
			for _, n := range c.doc.controlNodes() {
				if attr(n, "name") == name && strings.EqualFold(attr(n, "type"), filler.TypeRadio) {
					c.doc.doc.FindNodes(n).RemoveAttr("checked")
				}
			}
		}
		c.sel().SetAttr("checked", "checked")
	}

	c.doc.emit(c, "click")
	return nil
}

func (c *Control) Dispatch(_ context.Context, event string) error {
	c.doc.emit(c, event)
	return nil
}

// Index is the position of the control in document order.
func (c *Control) Index() int {
	return c.index
}

func (c *Control) disabled() bool {
	if hasAttr(c.node, "disabled") {
		return true
	}
	return c.sel().ParentsFiltered("fieldset[disabled]").Length() > 0
}
