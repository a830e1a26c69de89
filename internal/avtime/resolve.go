package avtime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Direction constrains which calendar occurrence of a fragment is chosen
// relative to the anchor.
type Direction int

const (
	// Nearest picks the occurrence closest to the anchor, the earlier one on a tie.
	Nearest Direction = iota
	// ForwardOnly picks the earliest occurrence at or after the anchor.
	ForwardOnly
	// BackwardOnly picks the latest occurrence at or before the anchor.
	BackwardOnly
)

func (d Direction) String() string {
	switch d {
	case Nearest:
		return "nearest"
	case ForwardOnly:
		return "forward"
	case BackwardOnly:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "nearest", "forward" and "backward" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "":
		return Nearest, nil
	case "forward", "forward_only":
		return ForwardOnly, nil
	case "backward", "backward_only":
		return BackwardOnly, nil
	}
	return Nearest, fmt.Errorf("unknown direction %q", s)
}

// SearchWindow bounds how far from the anchor a candidate may lie.
const SearchWindow = 2 // years

// calendarStep is the unit by which successive candidates of a fragment differ.
type calendarStep int

const (
	stepNone calendarStep = iota
	stepYear
	stepMonth
	stepDay
	stepHour
)

// maxSteps covers SearchWindow years in each unit, plus one for rounding.
var maxSteps = map[calendarStep]int{
	stepYear:  SearchWindow + 1,
	stepMonth: SearchWindow*12 + 1,
	stepDay:   SearchWindow*366 + 1,
	stepHour:  SearchWindow*366*24 + 1,
}

// minimums are used for absent components below the least significant present one.
var minimums = [numComponents]int{0, 1, 1, 0, 0}

// Resolve computes the full timestamp described by p relative to anchor.
//
// Absent components above the most significant present one, and gaps between
// present ones, are taken from the anchor. Absent components below the least
// significant present one take their minimum, so "day 28, hour 07" means
// 07:00. Candidates differ by the unit just above the most significant present
// component: a day-led fragment has one candidate per month, an hour-led one
// per day. A fragment that carries its year has exactly one candidate and
// ignores both anchor and direction.
//
// The fragment's own offset wins over the anchor's location. A 24:00 fragment
// is resolved on its own day and then rolls over to 00:00 of the next day.
// Wall clock times skipped by a zone transition are never returned.
func Resolve(p Partial, anchor time.Time, dir Direction) (time.Time, error) {
	fail := func(kind error, format string, args ...any) (time.Time, error) {
		return time.Time{}, &ResolveError{Fragment: p, Anchor: anchor, Direction: dir, Err: kind, Detail: fmt.Sprintf(format, args...)}
	}
	if p.mask&calendarFields == 0 {
		return fail(ErrInvalidFieldValue, "empty fragment")
	}

	loc := p.Location()
	if loc == nil {
		loc = anchor.Location()
	}
	a := anchor.In(loc)
	step := stepFor(p.mostSignificant())

	base, err := p.candidate(a, step, 0)
	switch {
	case errors.Is(err, errSkippedWallTime):
		return fail(ErrAmbiguousFragment, "wall time skipped in %s on %s", loc, a.Format(time.DateOnly))
	case err != nil:
		return fail(ErrInvalidFieldValue, "no such date in %s", a.Format("2006-01"))
	}
	if step == stepNone {
		return base, nil
	}

	lo, hi := a.AddDate(-SearchWindow, 0, 0), a.AddDate(SearchWindow, 0, 0)
	before, hasBefore := p.search(a, step, -1, lo, hi)
	after, hasAfter := p.search(a, step, 1, lo, hi)

	switch dir {
	case ForwardOnly:
		if hasAfter {
			return after, nil
		}
	case BackwardOnly:
		if hasBefore {
			return before, nil
		}
	default:
		switch {
		case hasBefore && hasAfter:
			if after.Sub(a) < a.Sub(before) {
				return after, nil
			}
			return before, nil
		case hasBefore:
			return before, nil
		case hasAfter:
			return after, nil
		}
	}
	return fail(ErrAmbiguousFragment, "no candidate within %d years", SearchWindow)
}

func stepFor(mostSignificant int) calendarStep {
	switch mostSignificant {
	case idxYear:
		return stepNone
	case idxMonth:
		return stepYear
	case idxDay:
		return stepMonth
	case idxHour:
		return stepDay
	default:
		return stepHour
	}
}

// search walks candidates away from the anchor in direction sign and returns
// the first one on the requested side of it, staying inside [lo, hi].
func (p Partial) search(a time.Time, step calendarStep, sign int, lo, hi time.Time) (time.Time, bool) {
	for k := 0; k <= maxSteps[step]; k++ {
		c, err := p.candidate(a, step, sign*k)
		if err != nil {
			continue
		}
		if sign < 0 {
			if c.Before(lo) {
				return time.Time{}, false
			}
			if !c.After(a) {
				return c, true
			}
			continue
		}
		if c.After(hi) {
			return time.Time{}, false
		}
		if !c.Before(a) {
			return c, true
		}
	}
	return time.Time{}, false
}

// candidate builds the k-th occurrence of p counted from the anchor's own
// unit. It fails with errNoSuchDate when the date does not exist, e.g. 31
// April, and with errSkippedWallTime when the anchor's zone skips the wall
// clock time, e.g. 02:30 on a daylight saving start.
func (p Partial) candidate(a time.Time, step calendarStep, k int) (time.Time, error) {
	v := [numComponents]int{a.Year(), int(a.Month()), a.Day(), a.Hour(), a.Minute()}
	switch step {
	case stepYear:
		v[idxYear] += k
	case stepMonth:
		t := time.Date(v[idxYear], time.Month(v[idxMonth]+k), 1, 0, 0, 0, 0, time.UTC)
		v[idxYear], v[idxMonth] = t.Year(), int(t.Month())
	case stepDay:
		t := time.Date(v[idxYear], time.Month(v[idxMonth]), v[idxDay]+k, 0, 0, 0, 0, time.UTC)
		v[idxYear], v[idxMonth], v[idxDay] = t.Year(), int(t.Month()), t.Day()
	case stepHour:
		t := time.Date(v[idxYear], time.Month(v[idxMonth]), v[idxDay], v[idxHour]+k, 0, 0, 0, time.UTC)
		v[idxYear], v[idxMonth], v[idxDay], v[idxHour] = t.Year(), int(t.Month()), t.Day(), t.Hour()
	}

	least := p.leastSignificant()
	for i := range numComponents {
		if val, ok := p.component(i); ok {
			v[i] = val
		} else if i > least {
			v[i] = minimums[i]
		}
	}

	if v[idxDay] > daysIn(v[idxYear], time.Month(v[idxMonth])) {
		return time.Time{}, errNoSuchDate
	}
	if v[idxHour] == 24 && v[idxMinute] != 0 {
		return time.Time{}, errNoSuchDate
	}
	// time.Date rolls 24:00 over to the next day. The UTC value holds the
	// wall clock the result must show.
	wall := time.Date(v[idxYear], time.Month(v[idxMonth]), v[idxDay], v[idxHour], v[idxMinute], 0, 0, time.UTC)
	t := time.Date(v[idxYear], time.Month(v[idxMonth]), v[idxDay], v[idxHour], v[idxMinute], 0, 0, a.Location())
	if !sameWallClock(t, wall) {
		return time.Time{}, errSkippedWallTime
	}
	return t, nil
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}
