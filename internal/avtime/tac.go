package avtime

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	dayHourMinutePattern = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})Z$`)
	dayHourPattern       = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	validityPattern      = regexp.MustCompile(`^(\d{2})(\d{2})/(\d{2})(\d{2})$`)
)

// ParseDayHourMinute parses the DDHHMMZ group used for METAR, TAF and SIGMET
// issue times, e.g. "270100Z".
func ParseDayHourMinute(code string) (Partial, error) {
	m := dayHourMinutePattern.FindStringSubmatch(code)
	if m == nil {
		return Partial{}, fieldError("invalid day-hour-minute group %q", code)
	}
	return NewPartial(Day(atoi(m[1])), Hour(atoi(m[2])), Minute(atoi(m[3])), UTC())
}

// ParseDayHour parses a DDHH group such as the halves of a TAF validity.
func ParseDayHour(code string) (Partial, error) {
	m := dayHourPattern.FindStringSubmatch(code)
	if m == nil {
		return Partial{}, fieldError("invalid day-hour group %q", code)
	}
	return NewPartial(Day(atoi(m[1])), Hour(atoi(m[2])), UTC())
}

// ParseValidity parses a DDHH/DDHH validity group, e.g. "2706/2812".
func ParseValidity(code string) (start, end Partial, err error) {
	m := validityPattern.FindStringSubmatch(code)
	if m == nil {
		return Partial{}, Partial{}, fieldError("invalid validity group %q", code)
	}
	start, err = NewPartial(Day(atoi(m[1])), Hour(atoi(m[2])), UTC())
	if err != nil {
		return Partial{}, Partial{}, fmt.Errorf("validity start: %w", err)
	}
	end, err = NewPartial(Day(atoi(m[3])), Hour(atoi(m[4])), UTC())
	if err != nil {
		return Partial{}, Partial{}, fmt.Errorf("validity end: %w", err)
	}
	return start, end, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
