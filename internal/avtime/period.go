package avtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Period is a validity or change window bounded by two instants.
type Period struct {
	start Instant
	end   Instant
}

// NewPeriod pairs two instants. Ordering is checked when both are resolved
// through ResolvePeriod.
func NewPeriod(start, end Instant) Period {
	return Period{start: start, end: end}
}

// UnresolvedPeriod builds a period from two fragments.
func UnresolvedPeriod(start, end Partial) Period {
	return Period{start: Unresolved(start), end: Unresolved(end)}
}

func (p Period) Start() Instant { return p.start }
func (p Period) End() Instant   { return p.end }

// IsComplete reports whether both ends are resolved.
func (p Period) IsComplete() bool { return p.start.IsComplete() && p.end.IsComplete() }

// IsZero reports whether neither end carries anything.
func (p Period) IsZero() bool { return p.start.IsZero() && p.end.IsZero() }

// Duration returns end minus start once both ends are resolved.
func (p Period) Duration() (time.Duration, bool) {
	s, ok := p.start.Resolved()
	if !ok {
		return 0, false
	}
	e, ok := p.end.Resolved()
	if !ok {
		return 0, false
	}
	return e.Sub(s), true
}

// ClearCompletion clears both ends.
func (p Period) ClearCompletion() Period {
	return Period{start: p.start.ClearCompletion(), end: p.end.ClearCompletion()}
}

func (p Period) String() string {
	return p.start.String() + "/" + p.end.String()
}

// ResolvePeriod resolves start to the occurrence nearest anchor, then end to
// the first occurrence at or after the resolved start. A maxDuration above
// zero rejects longer periods with ErrImplausiblePeriod. On error the input
// period is returned unchanged.
func ResolvePeriod(p Period, anchor time.Time, maxDuration time.Duration) (Period, error) {
	start, err := p.start.Complete(anchor, Nearest)
	if err != nil {
		return p, fmt.Errorf("start: %w", err)
	}
	startTime, _ := start.Resolved()

	end, err := p.end.Complete(startTime, ForwardOnly)
	if err != nil {
		return p, fmt.Errorf("end: %w", err)
	}
	endTime, _ := end.Resolved()

	if endTime.Before(startTime) {
		return p, fmt.Errorf("%w: end %s precedes start %s", ErrImplausiblePeriod,
			endTime.Format(time.RFC3339), startTime.Format(time.RFC3339))
	}
	if d := endTime.Sub(startTime); maxDuration > 0 && d > maxDuration {
		return p, fmt.Errorf("%w: duration %s exceeds %s", ErrImplausiblePeriod, d, maxDuration)
	}
	return Period{start: start, end: end}, nil
}

type periodJSON struct {
	StartTime *Instant `json:"startTime,omitempty"`
	EndTime   *Instant `json:"endTime,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Period) MarshalJSON() ([]byte, error) {
	var out periodJSON
	if !p.start.IsZero() {
		s := p.start
		out.StartTime = &s
	}
	if !p.end.IsZero() {
		e := p.end
		out.EndTime = &e
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Period) UnmarshalJSON(data []byte) error {
	var in periodJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Period{}
	if in.StartTime != nil {
		p.start = *in.StartTime
	}
	if in.EndTime != nil {
		p.end = *in.EndTime
	}
	return nil
}
