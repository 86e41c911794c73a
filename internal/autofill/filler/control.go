// Package filler defines the form-filling engine and the page contracts it
// runs against.
package filler

import (
	"context"
	"strings"
)

// Tag names of the controls the engine collects.
const (
	TagInput    = "input"
	TagSelect   = "select"
	TagTextarea = "textarea"
)

// Input types with dedicated fill rules.
const (
	TypeText     = "text"
	TypeCheckbox = "checkbox"
	TypeRadio    = "radio"
	TypePassword = "password"
	TypeNumber   = "number"
)

// Events dispatched after every step.
const (
	EventChange = "change"
	EventBlur   = "blur"
)

// AttrZipcodeCountry names the control holding the country code that a postal
// code field depends on.
const AttrZipcodeCountry = "data-fv-zipcode-country"

// Document is a page whose form controls can be filled.
type Document interface {
	// Controls returns every input, select and textarea in document order.
	Controls(ctx context.Context) ([]Control, error)

	// ValueOf returns the current value of the first control with the given
	// name. found is false when no such control exists.
	ValueOf(ctx context.Context, name string) (value string, found bool, err error)
}

// Control is a single form element.
type Control interface {
	Describe(ctx context.Context) (Descriptor, error)

	// Value is the current value. For selects it is the value of the
	// selected option, empty when nothing usable is selected.
	Value(ctx context.Context) (string, error)
	Checked(ctx context.Context) (bool, error)
	Options(ctx context.Context) ([]OptionState, error)

	SetValue(ctx context.Context, value string) error
	// SelectOption marks the option at index (as returned by Options) selected.
	SelectOption(ctx context.Context, index int) error
	// Click simulates a user click so click-bound listeners fire.
	Click(ctx context.Context) error
	Dispatch(ctx context.Context, event string) error
}

// OptionState is one <option> of a select.
type OptionState struct {
	Value    string
	Disabled bool
	Selected bool
}

// Descriptor is the static shape of a control, read once at collection time.
type Descriptor struct {
	Tag      string            `json:"tag"`
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	Required bool              `json:"required"`
	Disabled bool              `json:"disabled"`
	Attrs    map[string]string `json:"attrs"`
}

// Normalize lower-cases tag and type and applies the HTML default input type.
// Only inputs keep a type.
func (d Descriptor) Normalize() Descriptor {
	d.Tag = strings.ToLower(d.Tag)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	switch {
	case d.Tag != TagInput:
		d.Type = ""
	case d.Type == "":
		d.Type = TypeText
	}
	return d
}

// Attr returns an attribute value and whether it is present.
func (d Descriptor) Attr(name string) (string, bool) {
	v, ok := d.Attrs[name]
	return v, ok
}

func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Tag)
	if d.Type != "" {
		b.WriteString("[type=" + d.Type + "]")
	}
	if d.Name != "" {
		b.WriteString("[name=" + d.Name + "]")
	}
	return b.String()
}

// Identity is the caller-owned seed used for identity-looking fields.
type Identity struct {
	Username string
	Email    string
}
