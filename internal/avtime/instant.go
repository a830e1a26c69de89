package avtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Instant is a time-bearing report field. It is either unresolved, holding
// only the fragment parsed from the source text, or resolved, holding the
// fragment together with the full timestamp it stands for. Instants are
// values; resolution returns a new Instant.
type Instant struct {
	fragment Partial
	resolved time.Time
	complete bool
}

// Unresolved wraps a fragment that has not been resolved yet.
func Unresolved(p Partial) Instant {
	return Instant{fragment: p}
}

// ResolvedAt returns a resolved instant whose fragment fully specifies t.
func ResolvedAt(t time.Time) Instant {
	return Instant{fragment: FullPartial(t), resolved: t, complete: true}
}

// NewInstant pairs a fragment with its resolved timestamp, rejecting a
// timestamp that contradicts the fragment.
func NewInstant(p Partial, t time.Time) (Instant, error) {
	if !p.Matches(t) {
		return Instant{}, fieldError("resolved time %s contradicts fragment %s", t.Format(time.RFC3339), p)
	}
	return Instant{fragment: p, resolved: t, complete: true}, nil
}

// Fragment returns the partial timestamp the instant was parsed from.
func (i Instant) Fragment() Partial { return i.fragment }

// Resolved returns the full timestamp, if the instant has been resolved.
func (i Instant) Resolved() (time.Time, bool) { return i.resolved, i.complete }

// IsComplete reports whether the instant has been resolved.
func (i Instant) IsComplete() bool { return i.complete }

// IsZero reports whether the instant carries neither fragment nor time.
func (i Instant) IsZero() bool { return !i.complete && i.fragment.IsZero() }

// Complete resolves the instant against anchor. Resolved instants are returned
// unchanged; use ClearCompletion first to re-derive from another anchor.
func (i Instant) Complete(anchor time.Time, dir Direction) (Instant, error) {
	if i.complete {
		return i, nil
	}
	t, err := Resolve(i.fragment, anchor, dir)
	if err != nil {
		return i, err
	}
	return Instant{fragment: i.fragment, resolved: t, complete: true}, nil
}

// ClearCompletion drops the resolved timestamp and keeps the fragment.
func (i Instant) ClearCompletion() Instant {
	return Instant{fragment: i.fragment}
}

func (i Instant) String() string {
	if i.complete {
		return i.resolved.Format(time.RFC3339)
	}
	return i.fragment.String()
}

type instantJSON struct {
	PartialTime  *Partial   `json:"partialTime,omitempty"`
	CompleteTime *time.Time `json:"completeTime,omitempty"`
}

// MarshalJSON emits the fragment notation and, once resolved, the full time.
func (i Instant) MarshalJSON() ([]byte, error) {
	var out instantJSON
	if !i.fragment.IsZero() {
		p := i.fragment
		out.PartialTime = &p
	}
	if i.complete {
		t := i.resolved
		out.CompleteTime = &t
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either or both of partialTime and completeTime. A
// lone completeTime is treated as fully specified.
func (i *Instant) UnmarshalJSON(data []byte) error {
	var in instantJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.PartialTime != nil && in.CompleteTime != nil:
		inst, err := NewInstant(*in.PartialTime, *in.CompleteTime)
		if err != nil {
			return fmt.Errorf("decode instant: %w", err)
		}
		*i = inst
	case in.CompleteTime != nil:
		*i = ResolvedAt(*in.CompleteTime)
	case in.PartialTime != nil:
		*i = Unresolved(*in.PartialTime)
	default:
		*i = Instant{}
	}
	return nil
}
