package avtime

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds returned by construction and resolution. Match them with errors.Is.
var (
	// ErrInvalidFieldValue reports a fragment field, or a combination of fields,
	// outside its calendar domain.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrAmbiguousFragment reports that no candidate inside the search window
	// satisfies the fragment for the requested anchor and direction.
	ErrAmbiguousFragment = errors.New("ambiguous or invalid fragment")

	// ErrImplausiblePeriod reports a resolved period that ends before it starts
	// or exceeds the configured maximum duration.
	ErrImplausiblePeriod = errors.New("implausible period")
)

// Reasons a single candidate is skipped during the search.
var (
	errNoSuchDate      = errors.New("no such date")
	errSkippedWallTime = errors.New("wall clock time skipped by zone transition")
)

// ResolveError describes a failed resolution of a single fragment.
type ResolveError struct {
	Fragment  Partial
	Anchor    time.Time
	Direction Direction
	Err       error
	Detail    string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("resolve %s against %s (%s): %v", e.Fragment, e.Anchor.Format(time.RFC3339), e.Direction, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ResolveError) Unwrap() error { return e.Err }

func fieldError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFieldValue, fmt.Sprintf(format, args...))
}
