package filler

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning = errors.New("fill run already in progress")
	ErrNoDocument     = errors.New("no document to fill")

	ErrUnknownCountry = errors.New("no postal code format for country")
	// ErrNoLinkedControl is reported when a postal code field names a
	// country control that is not on the page.
	ErrNoLinkedControl = errors.New("linked country control not found")
	ErrNoEligible      = errors.New("no eligible options")
	ErrInvalidRange    = errors.New("min is greater than max")
)

// FillError provides context for a failed DOM operation.
type FillError struct {
	Operation string
	Control   string
	Cause     error
}

func (e *FillError) Error() string {
	if e.Control == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("[%s] %s failed: %v", e.Control, e.Operation, e.Cause)
}

func (e *FillError) Unwrap() error {
	return e.Cause
}
