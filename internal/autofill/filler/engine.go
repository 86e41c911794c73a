package filler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Action records what a step did to its control.
type Action string

const (
	ActionNone     Action = "none"
	ActionSelected Action = "selected"
	ActionChecked  Action = "checked"
	ActionRadio    Action = "radio"
	ActionFilled   Action = "filled"
)

// Step is the outcome of processing one control.
type Step struct {
	Index   int
	Control Descriptor
	Action  Action
	Value   string
	// Resolved holds the collection indexes of the radio group settled by
	// this step, including the control itself.
	Resolved []int
	Err      error
}

// Report lists the steps of a run in processing order.
type Report struct {
	Collected int
	Steps     []Step
}

// Filled returns the steps that changed their control.
func (r *Report) Filled() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Action != ActionNone {
			out = append(out, s)
		}
	}
	return out
}

// Filler fills the form controls of a Document with plausible random values.
// A Filler can be reused but runs one Document at a time.
type Filler struct {
	identity Identity

	delay          time.Duration
	rng            *rand.Rand
	log            logr.Logger
	emailFields    map[string]bool
	usernameFields map[string]bool
	password       string
	onStep         func(Step)

	running sync.Mutex
}

// New returns a Filler that writes id into identity fields. Without options
// it waits DefaultStepDelay between steps and draws from a randomly seeded
// generator.
func New(id Identity, opts ...Option) *Filler {
	f := &Filler{
		identity:       id,
		delay:          DefaultStepDelay,
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:            logr.Discard(),
		emailFields:    toSet(DefaultEmailFields),
		usernameFields: map[string]bool{},
		password:       DefaultPassword,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run snapshots the controls of doc and fills them one at a time, pausing
// between steps so page logic can react. Controls that cannot be filled are
// skipped; the returned error only reports collection failure, cancellation
// or a concurrent run.
func (f *Filler) Run(ctx context.Context, doc Document) (*Report, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if !f.running.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer f.running.Unlock()

	q, err := f.collect(ctx, doc)
	if err != nil {
		return nil, err
	}

	report := &Report{Collected: len(q.all)}
	f.log.Info("fill run started", "controls", report.Collected)

	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		step := f.step(ctx, doc, q, q.Pop())
		report.Steps = append(report.Steps, step)
		if f.onStep != nil {
			f.onStep(step)
		}

		if q.Len() == 0 {
			break
		}
		if err := f.wait(ctx); err != nil {
			return report, err
		}
	}

	f.log.Info("fill run finished", "steps", len(report.Steps), "filled", len(report.Filled()))
	return report, nil
}

func (f *Filler) collect(ctx context.Context, doc Document) (*queue, error) {
	controls, err := doc.Controls(ctx)
	if err != nil {
		return nil, &FillError{Operation: "collect controls", Cause: err}
	}

	all := make([]candidate, 0, len(controls))
	for i, c := range controls {
		desc, err := c.Describe(ctx)
		if err != nil {
			f.log.Error(err, "dropping control that cannot be described", "index", i)
			continue
		}
		all = append(all, candidate{index: i, control: c, desc: desc.Normalize()})
	}

	return newQueue(all), nil
}

func (f *Filler) step(ctx context.Context, doc Document, q *queue, c candidate) Step {
	step := Step{Index: c.index, Control: c.desc, Action: ActionNone}
	log := f.log.WithValues("control", c.desc.String(), "index", c.index)

	var err error
	switch {
	case c.desc.Type == TypeRadio:
		// Always settle the whole group, even when the member is disabled.
		err = f.fillRadio(ctx, q, c, &step)
	case c.desc.Disabled:
		log.V(1).Info("skipping disabled control")
	case c.desc.Tag == TagSelect:
		err = f.fillSelect(ctx, c, &step)
	case c.desc.Type == TypeCheckbox:
		err = f.fillCheckbox(ctx, c, &step)
	default:
		err = f.fillValue(ctx, doc, c, &step)
	}

	if err != nil {
		step.Err = err
		var fillErr *FillError
		if errors.As(err, &fillErr) {
			log.Error(err, "control left unfilled")
		} else {
			log.V(1).Info("control left unfilled", "reason", err.Error())
		}
	} else if step.Action != ActionNone {
		log.V(1).Info("control filled", "action", step.Action, "value", step.Value)
	}

	for _, event := range []string{EventChange, EventBlur} {
		if dErr := c.control.Dispatch(ctx, event); dErr != nil {
			dErr = &FillError{Operation: "dispatch " + event, Control: c.desc.String(), Cause: dErr}
			log.Error(dErr, "event not delivered")
			step.Err = errors.Join(step.Err, dErr)
		}
	}

	return step
}

func (f *Filler) fillSelect(ctx context.Context, c candidate, step *Step) error {
	value, err := c.control.Value(ctx)
	if err != nil {
		return &FillError{Operation: "read value", Control: c.desc.String(), Cause: err}
	}
	if value != "" {
		return nil
	}

	options, err := c.control.Options(ctx)
	if err != nil {
		return &FillError{Operation: "read options", Control: c.desc.String(), Cause: err}
	}

	eligible := make([]int, 0, len(options))
	for i, o := range options {
		if o.Value != "" && !o.Disabled {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return ErrNoEligible
	}

	pick := eligible[f.rng.IntN(len(eligible))]
	if err := c.control.SelectOption(ctx, pick); err != nil {
		return &FillError{Operation: "select option", Control: c.desc.String(), Cause: err}
	}

	step.Action = ActionSelected
	step.Value = options[pick].Value
	return nil
}

func (f *Filler) fillCheckbox(ctx context.Context, c candidate, step *Step) error {
	checked, err := c.control.Checked(ctx)
	if err != nil {
		return &FillError{Operation: "read checked", Control: c.desc.String(), Cause: err}
	}
	if checked {
		return nil
	}
	if !c.desc.Required && f.rng.IntN(2) == 0 {
		return nil
	}

	if err := c.control.Click(ctx); err != nil {
		return &FillError{Operation: "click", Control: c.desc.String(), Cause: err}
	}

	step.Action = ActionChecked
	step.Value = c.desc.Attrs["value"]
	return nil
}

func (f *Filler) fillRadio(ctx context.Context, q *queue, c candidate, step *Step) error {
	group := q.radioGroup(c)
	q.removeGroup(group)

	step.Resolved = make([]int, len(group))
	for i, member := range group {
		step.Resolved[i] = member.index
	}

	for _, member := range group {
		checked, err := member.control.Checked(ctx)
		if err != nil {
			return &FillError{Operation: "read checked", Control: member.desc.String(), Cause: err}
		}
		if checked {
			return nil
		}
	}

	chosen := group[RandomInt(f.rng, 0, len(group)-1)]
	if err := chosen.control.Click(ctx); err != nil {
		return &FillError{Operation: "click", Control: chosen.desc.String(), Cause: err}
	}

	// Clicks on a disabled radio do nothing.
	checked, err := chosen.control.Checked(ctx)
	if err != nil {
		return &FillError{Operation: "read checked", Control: chosen.desc.String(), Cause: err}
	}
	if !checked {
		return nil
	}

	step.Action = ActionRadio
	step.Value, _ = chosen.desc.Attr("value")
	return nil
}

func (f *Filler) fillValue(ctx context.Context, doc Document, c candidate, step *Step) error {
	current, err := c.control.Value(ctx)
	if err != nil {
		return &FillError{Operation: "read value", Control: c.desc.String(), Cause: err}
	}
	if current != "" {
		return nil
	}

	d := c.desc
	var value string

	switch {
	case f.emailFields[d.Name]:
		value = f.identity.Email
	case f.usernameFields[d.Name]:
		value = f.identity.Username
	case d.Type == TypePassword:
		value = f.password
	case d.Type == TypeText && d.Attrs[AttrZipcodeCountry] != "":
		value, err = f.postalCode(ctx, doc, d.Attrs[AttrZipcodeCountry])
		if err != nil {
			return err
		}
	case d.Type == TypeNumber:
		lo, hi := numberRange(d)
		if lo > hi {
			return fmt.Errorf("%w: %d > %d", ErrInvalidRange, lo, hi)
		}
		value = strconv.Itoa(RandomInt(f.rng, lo, hi))
	case d.Type == TypeText:
		value = RandomString(f.rng, TextLength)
	case d.Tag == TagTextarea:
		value = RandomString(f.rng, TextareaLength)
	}

	if value == "" {
		return nil
	}

	if err := c.control.SetValue(ctx, value); err != nil {
		return &FillError{Operation: "set value", Control: d.String(), Cause: err}
	}

	step.Action = ActionFilled
	step.Value = value
	return nil
}

func (f *Filler) postalCode(ctx context.Context, doc Document, countryField string) (string, error) {
	country, found, err := doc.ValueOf(ctx, countryField)
	if err != nil {
		return "", &FillError{Operation: "read linked control", Control: countryField, Cause: err}
	}
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNoLinkedControl, countryField)
	}
	return PostalCode(f.rng, country)
}

func (f *Filler) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(f.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// numberRange reads min and max, falling back to the defaults for attributes
// that are absent or carry no leading integer.
func numberRange(d Descriptor) (int, int) {
	lo, hi := DefaultNumberMin, DefaultNumberMax
	if v, ok := parseIntPrefix(d.Attrs["min"]); ok {
		lo = v
	}
	if v, ok := parseIntPrefix(d.Attrs["max"]); ok {
		hi = v
	}
	return lo, hi
}

// parseIntPrefix parses the leading base-10 integer of s, so "3.5" yields 3.
func parseIntPrefix(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, false
	}

	v, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0, false
	}
	return v, true
}
