package filler

import (
	"math/rand/v2"
	"time"

	"github.com/go-logr/logr"
)

const (
	DefaultStepDelay = 50 * time.Millisecond
	DefaultPassword  = "111111"

	TextLength     = 5
	TextareaLength = 15

	DefaultNumberMin = 0
	DefaultNumberMax = 10
)

// DefaultEmailFields name the fields that receive the identity email.
// No field receives the username unless WithUsernameFields names one.
var DefaultEmailFields = []string{"signup_email"}

// Option configures a Filler.
type Option func(*Filler)

// WithDelay sets the pause between two steps. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(f *Filler) {
		if d < 0 {
			d = 0
		}
		f.delay = d
	}
}

// WithSeed makes every generated value reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Filler) {
		f.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand uses r for all random draws.
func WithRand(r *rand.Rand) Option {
	return func(f *Filler) {
		if r != nil {
			f.rng = r
		}
	}
}

// WithLogger sends run and per-step logs to l. The default discards them.
func WithLogger(l logr.Logger) Option {
	return func(f *Filler) {
		f.log = l
	}
}

// WithEmailFields replaces the field names that receive the identity email.
func WithEmailFields(names ...string) Option {
	return func(f *Filler) {
		f.emailFields = toSet(names)
	}
}

// WithUsernameFields names the fields that receive the identity username.
// Without it username fields are filled like any other text field.
func WithUsernameFields(names ...string) Option {
	return func(f *Filler) {
		f.usernameFields = toSet(names)
	}
}

// WithPassword sets the value written to password inputs (default "111111").
func WithPassword(secret string) Option {
	return func(f *Filler) {
		f.password = secret
	}
}

// WithStepHook registers fn to be called after every step, before the delay.
func WithStepHook(fn func(Step)) Option {
	return func(f *Filler) {
		f.onStep = fn
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = true
		}
	}
	return set
}
