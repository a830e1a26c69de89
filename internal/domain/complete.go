package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnresolvedAnchor marks fields skipped because the time they are
	// anchored on could not be resolved.
	ErrUnresolvedAnchor = errors.New("anchor time unresolved")

	// ErrMissingTime marks a field that requires a time but carries none.
	ErrMissingTime = errors.New("required time missing")
)

// FieldFailure records one time-bearing field that could not be resolved.
type FieldFailure struct {
	Path string
	Err  error
}

func (f FieldFailure) Error() string { return f.Path + ": " + f.Err.Error() }

func (f FieldFailure) Unwrap() error { return f.Err }

// MarshalJSON renders the failure as {"path":…,"kind":…,"error":…}.
func (f FieldFailure) MarshalJSON() ([]byte, error) {
	return marshalFailure(f)
}

// PartialCompletionError aggregates every field that failed during one
// CompleteAllTimes call. Fields that resolved are present in the returned report.
type PartialCompletionError struct {
	Kind     Kind
	Failures []FieldFailure
}

func (e *PartialCompletionError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s: %d time field(s) failed to resolve: %s", e.Kind, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes each cause so errors.Is can match the avtime error kinds.
func (e *PartialCompletionError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Paths lists the failed field paths in report order.
func (e *PartialCompletionError) Paths() []string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return paths
}

// FailureKind classifies a resolution error for metrics and logs.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, avtime.ErrInvalidFieldValue):
		return "invalid_field"
	case errors.Is(err, avtime.ErrAmbiguousFragment):
		return "ambiguous"
	case errors.Is(err, avtime.ErrImplausiblePeriod):
		return "implausible_period"
	case errors.Is(err, ErrUnresolvedAnchor):
		return "unresolved_anchor"
	case errors.Is(err, ErrMissingTime):
		return "missing_time"
	default:
		return "other"
	}
}

// CompleteAllTimes resolves every time-bearing field of r.
//
// The issue time is resolved nearest to anchor. The validity period, geometry
// and forecast times and next-advisory time are then anchored on the resolved
// issue time. A cancellation reference is anchored on its own issue time when
// it carries one. Sibling fields are resolved concurrently.
//
// A failing field does not stop the others. The returned report holds every
// field that resolved, and the error is a *PartialCompletionError listing the
// rest in field order.
func CompleteAllTimes(r Report, anchor time.Time, bounds ValidityBounds) (Report, error) {
	if r == nil {
		return nil, errors.New("complete times: nil report")
	}
	c := &completer{bounds: bounds}
	out := r.completeTimes(c, anchor)
	if len(c.failures) > 0 {
		return out, &PartialCompletionError{Kind: r.Kind(), Failures: c.failures}
	}
	return out, nil
}

// Complete is the typed form of CompleteAllTimes.
func Complete[R Report](r R, anchor time.Time, bounds ValidityBounds) (R, error) {
	out, err := CompleteAllTimes(r, anchor, bounds)
	typed, _ := out.(R)
	return typed, err
}

// IsFullyResolved reports whether every time-bearing field of r, including any
// cancellation reference, is resolved. It never modifies r.
func IsFullyResolved(r Report) bool {
	return r != nil && r.AllTimesComplete()
}

// completer resolves fields and records failures with their paths.
type completer struct {
	bounds   ValidityBounds
	failures []FieldFailure
}

// timeAnchor is a resolved time that dependent fields are resolved against.
type timeAnchor struct {
	at time.Time
	ok bool
}

func (c *completer) fail(path string, err error) {
	c.failures = append(c.failures, FieldFailure{Path: path, Err: err})
}

// issue resolves an issue time nearest to the external anchor.
func (c *completer) issue(path string, in avtime.Instant, anchor time.Time) (avtime.Instant, timeAnchor) {
	out, err := in.Complete(anchor, avtime.Nearest)
	if err != nil {
		c.fail(path, err)
		return in, timeAnchor{}
	}
	t, _ := out.Resolved()
	return out, timeAnchor{at: t, ok: true}
}

func (c *completer) instant(path string, in avtime.Instant, a timeAnchor, dir avtime.Direction) avtime.Instant {
	if in.IsComplete() {
		return in
	}
	if !a.ok {
		c.fail(path, ErrUnresolvedAnchor)
		return in
	}
	out, err := in.Complete(a.at, dir)
	if err != nil {
		c.fail(path, err)
		return in
	}
	return out
}

func (c *completer) optionalInstant(path string, in *avtime.Instant, a timeAnchor, dir avtime.Direction) *avtime.Instant {
	if in == nil {
		return nil
	}
	out := c.instant(path, *in, a, dir)
	return &out
}

func (c *completer) period(path string, p avtime.Period, a timeAnchor, maxDuration time.Duration) avtime.Period {
	if p.IsComplete() {
		if d, _ := p.Duration(); d < 0 {
			c.fail(path, fmt.Errorf("%w: end precedes start", avtime.ErrImplausiblePeriod))
		}
		return p
	}
	if !a.ok {
		c.fail(path, ErrUnresolvedAnchor)
		return p
	}
	out, err := avtime.ResolvePeriod(p, a.at, maxDuration)
	if err != nil {
		c.fail(path, err)
		return p
	}
	return out
}

func (c *completer) optionalPeriod(path string, p *avtime.Period, a timeAnchor, maxDuration time.Duration) *avtime.Period {
	if p == nil {
		return nil
	}
	out := c.period(path, *p, a, maxDuration)
	return &out
}

// parallel runs fn for n independent slots. Each slot records into its own
// completer, and failures are merged in slot order once all have finished.
func (c *completer) parallel(n int, fn func(i int, sub *completer)) {
	if n == 0 {
		return
	}
	subs := make([]completer, n)
	var g errgroup.Group
	for i := range n {
		subs[i].bounds = c.bounds
		g.Go(func() error {
			fn(i, &subs[i])
			return nil
		})
	}
	_ = g.Wait()
	for i := range subs {
		c.failures = append(c.failures, subs[i].failures...)
	}
}

// geometries resolves the time of each geometry nearest to the issue time.
func (c *completer) geometries(path string, geoms []PhenomenonGeometry, issue timeAnchor) []PhenomenonGeometry {
	if geoms == nil {
		return nil
	}
	out := make([]PhenomenonGeometry, len(geoms))
	copy(out, geoms)
	c.parallel(len(out), func(i int, sub *completer) {
		out[i].Time = sub.optionalInstant(indexPath(path, i, "time"), out[i].Time, issue, avtime.Nearest)
	})
	return out
}

// reference resolves a cancellation or replacement reference. Its own issue
// time, when present, is resolved near the report's issue time, or near the
// external anchor if that failed, and then anchors the reference validity.
func (c *completer) reference(path string, issueTime *avtime.Instant, validity avtime.Period, issue timeAnchor, external time.Time, maxDuration time.Duration) (*avtime.Instant, avtime.Period) {
	a := issue
	if issueTime != nil {
		near := external
		if issue.ok {
			near = issue.at
		}
		resolved, own := c.issue(path+".issueTime", *issueTime, near)
		issueTime, a = &resolved, own
	}
	return issueTime, c.period(path+".validityPeriod", validity, a, maxDuration)
}

func indexPath(prefix string, i int, field string) string {
	p := fmt.Sprintf("%s[%d]", prefix, i)
	if field != "" {
		p += "." + field
	}
	return p
}
