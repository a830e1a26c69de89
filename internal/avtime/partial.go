package avtime

import (
	"time"
)

// FieldMask identifies which components of a Partial are present.
type FieldMask uint8

const (
	FieldYear FieldMask = 1 << iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldOffset
)

const calendarFields = FieldYear | FieldMonth | FieldDay | FieldHour | FieldMinute

// Offsets beyond ±18h are not valid UTC offsets.
const maxOffsetMinutes = 18 * 60

// Component indexes into Partial.values, most significant first.
const (
	idxYear = iota
	idxMonth
	idxDay
	idxHour
	idxMinute
	numComponents
)

var componentMasks = [numComponents]FieldMask{FieldYear, FieldMonth, FieldDay, FieldHour, FieldMinute}

// Partial is an immutable fragment of a timestamp. Any subset of year, month,
// day, hour and minute may be known, optionally with a fixed UTC offset.
// The zero value is an empty fragment and is never produced by NewPartial.
type Partial struct {
	values [numComponents]int
	offset int
	mask   FieldMask
}

// FieldOption sets one component of a Partial under construction.
type FieldOption func(*Partial)

func Year(n int) FieldOption   { return setComponent(idxYear, n) }
func Month(n int) FieldOption  { return setComponent(idxMonth, n) }
func Day(n int) FieldOption    { return setComponent(idxDay, n) }
func Hour(n int) FieldOption   { return setComponent(idxHour, n) }
func Minute(n int) FieldOption { return setComponent(idxMinute, n) }

// Offset sets a fixed UTC offset in minutes east of UTC.
func Offset(minutes int) FieldOption {
	return func(p *Partial) {
		p.offset = minutes
		p.mask |= FieldOffset
	}
}

// UTC marks the fragment as carrying the Z zone designator.
func UTC() FieldOption { return Offset(0) }

func setComponent(idx, n int) FieldOption {
	return func(p *Partial) {
		p.values[idx] = n
		p.mask |= componentMasks[idx]
	}
}

// NewPartial builds a fragment from the given components and validates every
// present value against its calendar range.
func NewPartial(opts ...FieldOption) (Partial, error) {
	var p Partial
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.validate(); err != nil {
		return Partial{}, err
	}
	return p, nil
}

// MustPartial is like NewPartial but panics on error. Intended for fixtures
// and package-level values.
func MustPartial(opts ...FieldOption) Partial {
	p, err := NewPartial(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// FullPartial returns the fully specified fragment of t, including its UTC
// offset. Seconds are not represented.
func FullPartial(t time.Time) Partial {
	_, off := t.Zone()
	return Partial{
		values: [numComponents]int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()},
		offset: off / 60,
		mask:   calendarFields | FieldOffset,
	}
}

func (p Partial) validate() error {
	if p.mask&calendarFields == 0 {
		return fieldError("fragment has no calendar fields")
	}
	if y, ok := p.Year(); ok && (y < 0 || y > 9999) {
		return fieldError("year %d out of range 0..9999", y)
	}
	if m, ok := p.Month(); ok && (m < 1 || m > 12) {
		return fieldError("month %d out of range 1..12", m)
	}
	if d, ok := p.Day(); ok && (d < 1 || d > 31) {
		return fieldError("day %d out of range 1..31", d)
	}
	if h, ok := p.Hour(); ok && (h < 0 || h > 24) {
		return fieldError("hour %d out of range 0..24", h)
	}
	if mi, ok := p.Minute(); ok && (mi < 0 || mi > 59) {
		return fieldError("minute %d out of range 0..59", mi)
	}
	if p.isEndOfDay() {
		if mi, ok := p.Minute(); ok && mi != 0 {
			return fieldError("hour 24 requires minute 0, got %d", mi)
		}
	}
	if off, ok := p.OffsetMinutes(); ok && (off < -maxOffsetMinutes || off > maxOffsetMinutes) {
		return fieldError("offset %d minutes out of range", off)
	}
	m, hasMonth := p.Month()
	d, hasDay := p.Day()
	if hasMonth && hasDay {
		year, hasYear := p.Year()
		if !hasYear {
			// 2000 is a leap year, so Feb 29 stays legal without a year.
			year = 2000
		}
		if d > daysIn(year, time.Month(m)) {
			return fieldError("day %d does not exist in month %d", d, m)
		}
	}
	return nil
}

func (p Partial) component(idx int) (int, bool) {
	return p.values[idx], p.mask&componentMasks[idx] != 0
}

func (p Partial) Year() (int, bool)   { return p.component(idxYear) }
func (p Partial) Month() (int, bool)  { return p.component(idxMonth) }
func (p Partial) Day() (int, bool)    { return p.component(idxDay) }
func (p Partial) Hour() (int, bool)   { return p.component(idxHour) }
func (p Partial) Minute() (int, bool) { return p.component(idxMinute) }

// OffsetMinutes returns the fixed UTC offset carried by the fragment.
func (p Partial) OffsetMinutes() (int, bool) {
	return p.offset, p.mask&FieldOffset != 0
}

// Has reports whether every component in mask is present.
func (p Partial) Has(mask FieldMask) bool { return p.mask&mask == mask }

// Fields returns the mask of present components.
func (p Partial) Fields() FieldMask { return p.mask }

// IsZero reports whether p is the empty fragment.
func (p Partial) IsZero() bool { return p.mask == 0 }

// IsFull reports whether all of year, month, day, hour and minute are known.
func (p Partial) IsFull() bool { return p.Has(calendarFields) }

// Location returns the fixed zone of the fragment, or nil when it carries none.
func (p Partial) Location() *time.Location {
	off, ok := p.OffsetMinutes()
	if !ok {
		return nil
	}
	if off == 0 {
		return time.UTC
	}
	return time.FixedZone("", off*60)
}

// Matches reports whether t agrees with every present field of p. A 24:00
// fragment matches 00:00 of the following day.
func (p Partial) Matches(t time.Time) bool {
	if p.mask&calendarFields == 0 {
		return false
	}
	if loc := p.Location(); loc != nil {
		t = t.In(loc)
	}
	if p.isEndOfDay() {
		if t.Hour() != 0 || t.Minute() != 0 {
			return false
		}
		t = t.AddDate(0, 0, -1)
		return p.matchesDate(t)
	}
	if h, ok := p.Hour(); ok && t.Hour() != h {
		return false
	}
	if mi, ok := p.Minute(); ok && t.Minute() != mi {
		return false
	}
	return p.matchesDate(t)
}

func (p Partial) matchesDate(t time.Time) bool {
	if y, ok := p.Year(); ok && t.Year() != y {
		return false
	}
	if m, ok := p.Month(); ok && int(t.Month()) != m {
		return false
	}
	if d, ok := p.Day(); ok && t.Day() != d {
		return false
	}
	return true
}

func (p Partial) isEndOfDay() bool {
	h, ok := p.Hour()
	return ok && h == 24
}

// mostSignificant returns the index of the highest present calendar component.
func (p Partial) mostSignificant() int {
	for i := range numComponents {
		if p.mask&componentMasks[i] != 0 {
			return i
		}
	}
	return numComponents
}

// leastSignificant returns the index of the lowest present calendar component.
func (p Partial) leastSignificant() int {
	for i := numComponents - 1; i >= 0; i-- {
		if p.mask&componentMasks[i] != 0 {
			return i
		}
	}
	return -1
}

// contiguous reports whether the present components form one unbroken run.
func (p Partial) contiguous() bool {
	hi, lo := p.mostSignificant(), p.leastSignificant()
	for i := hi; i <= lo; i++ {
		if p.mask&componentMasks[i] == 0 {
			return false
		}
	}
	return true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
