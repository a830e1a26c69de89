package avtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// partialPattern accepts the truncated ISO 8601 forms used for aviation
// fragments:
//
//	2020-02-27T01:00Z   full
//	--02-27T01:00Z      month, day, hour, minute
//	--27T01:00Z         day, hour, minute (the day form needs a time part)
//	---27               day only
//	--02                month only
//	T01:00+02:00        hour, minute
//	T-30Z               minute only
var partialPattern = regexp.MustCompile(
	`^(?:(\d{4})(?:-(\d{2})(?:-(\d{2}))?)?|--(\d{2})(?:-(\d{2}))?|---(\d{2}))?` +
		`(?:T(?:(\d{1,2})(?::(\d{2}))?|-(\d{2})))?` +
		`(Z|[+-]\d{2}:?\d{2})?$`)

// ParsePartial parses the fragment notation produced by Partial.String.
func ParsePartial(s string) (Partial, error) {
	m := partialPattern.FindStringSubmatch(s)
	if m == nil || s == "" {
		return Partial{}, fieldError("unrecognized fragment %q", s)
	}
	var opts []FieldOption
	add := func(group string, f func(int) FieldOption) {
		if group == "" {
			return
		}
		n, _ := strconv.Atoi(group)
		opts = append(opts, f(n))
	}

	hasTime := m[7] != "" || m[9] != ""
	add(m[1], Year)
	add(m[2], Month)
	add(m[3], Day)
	switch {
	case m[5] != "":
		add(m[4], Month)
		add(m[5], Day)
	case hasTime:
		add(m[4], Day)
	default:
		add(m[4], Month)
	}
	add(m[6], Day)
	add(m[7], Hour)
	add(m[8], Minute)
	add(m[9], Minute)

	if zone := m[10]; zone != "" {
		off, err := parseZone(zone)
		if err != nil {
			return Partial{}, err
		}
		opts = append(opts, Offset(off))
	}

	p, err := NewPartial(opts...)
	if err != nil {
		return Partial{}, fmt.Errorf("parse fragment %q: %w", s, err)
	}
	return p, nil
}

func parseZone(zone string) (int, error) {
	if zone == "Z" {
		return 0, nil
	}
	sign := 1
	if zone[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(zone[1:], ":", "")
	hh, _ := strconv.Atoi(digits[:2])
	mm, _ := strconv.Atoi(digits[2:])
	if mm > 59 {
		return 0, fieldError("zone %q has minutes out of range", zone)
	}
	return sign * (hh*60 + mm), nil
}

// String renders the fragment in its truncated ISO 8601 form. Fragments with
// gaps between present components have no such form and render as a field list.
func (p Partial) String() string {
	if p.IsZero() {
		return "<empty>"
	}
	if !p.contiguous() {
		return p.fieldList()
	}
	var b strings.Builder
	y, hasYear := p.Year()
	mo, hasMonth := p.Month()
	d, hasDay := p.Day()
	h, hasHour := p.Hour()
	mi, hasMinute := p.Minute()

	switch {
	case hasYear:
		fmt.Fprintf(&b, "%04d", y)
		if hasMonth {
			fmt.Fprintf(&b, "-%02d", mo)
		}
		if hasDay {
			fmt.Fprintf(&b, "-%02d", d)
		}
	case hasMonth:
		fmt.Fprintf(&b, "--%02d", mo)
		if hasDay {
			fmt.Fprintf(&b, "-%02d", d)
		}
	case hasDay && hasHour:
		fmt.Fprintf(&b, "--%02d", d)
	case hasDay:
		fmt.Fprintf(&b, "---%02d", d)
	}

	switch {
	case hasHour:
		fmt.Fprintf(&b, "T%02d", h)
		if hasMinute {
			fmt.Fprintf(&b, ":%02d", mi)
		}
	case hasMinute:
		fmt.Fprintf(&b, "T-%02d", mi)
	}

	if off, ok := p.OffsetMinutes(); ok {
		b.WriteString(formatZone(off))
	}
	return b.String()
}

func (p Partial) fieldList() string {
	names := [numComponents]string{"year", "month", "day", "hour", "minute"}
	parts := make([]string, 0, numComponents+1)
	for i := range numComponents {
		if v, ok := p.component(i); ok {
			parts = append(parts, fmt.Sprintf("%s=%d", names[i], v))
		}
	}
	if off, ok := p.OffsetMinutes(); ok {
		parts = append(parts, "zone="+formatZone(off))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatZone(off int) string {
	if off == 0 {
		return "Z"
	}
	sign := '+'
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%c%02d:%02d", sign, off/60, off%60)
}

// MarshalText implements encoding.TextMarshaler.
func (p Partial) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return []byte{}, nil
	}
	if !p.contiguous() {
		return nil, fmt.Errorf("fragment %s has no text notation", p.fieldList())
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// empty fragment.
func (p *Partial) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = Partial{}
		return nil
	}
	parsed, err := ParsePartial(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
