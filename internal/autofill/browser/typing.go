package browser

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// TypeHuman replaces the element's text by typing it key by key with small
// random pauses (50-150ms), so keydown/keyup listeners fire as for a person.
func TypeHuman(ctx context.Context, el *rod.Element, text string) error {
	el = el.Context(ctx)
	if err := clearText(el); err != nil {
		return err
	}

	for _, char := range text {
		if err := el.Type(input.Key(char)); err != nil {
			return err
		}

		pause := time.NewTimer(time.Duration(50+rand.IntN(100)) * time.Millisecond)
		select {
		case <-ctx.Done():
			pause.Stop()
			return ctx.Err()
		case <-pause.C:
		}
	}
	return nil
}

// TypeFast replaces the element's text by typing it without pauses.
// Still triggers proper keyboard events (keydown/keyup) for each character.
func TypeFast(ctx context.Context, el *rod.Element, text string) error {
	el = el.Context(ctx)
	if err := clearText(el); err != nil {
		return err
	}

	keys := make([]input.Key, 0, len(text))
	for _, char := range text {
		keys = append(keys, input.Key(char))
	}
	return el.Type(keys...)
}

func clearText(el *rod.Element) error {
	if err := el.Focus(); err != nil {
		return err
	}
	_, err := el.Eval(`() => { this.value = '' }`)
	return err
}
