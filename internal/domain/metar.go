package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// ErrRoutineDelayed is returned when a delayed routine METAR is presented as a SPECI.
var ErrRoutineDelayed = errors.New("routine delayed report cannot be a SPECI")

// METAR is a routine aerodrome observation. Only its time graph and
// identifying fields are modelled.
type METAR struct {
	Status         Status          `json:"status,omitempty"`
	Aerodrome      string          `json:"aerodrome"`
	IssueTime      avtime.Instant  `json:"issueTime"`
	Automated      bool            `json:"automatedStation,omitempty"`
	RoutineDelayed bool            `json:"routineDelayed,omitempty"`
	Trends         []TrendForecast `json:"trends,omitempty"`
	Remarks        []string        `json:"remarks,omitempty"`
}

// TrendForecast is a BECMG or TEMPO trend. AT groups give an instant of
// change; FM and TL groups give a period.
type TrendForecast struct {
	ChangeIndicator string          `json:"changeIndicator"`
	InstantOfChange *avtime.Instant `json:"instantOfChange,omitempty"`
	PeriodOfChange  *avtime.Period  `json:"periodOfChange,omitempty"`
}

func (m METAR) Kind() Kind                   { return KindMETAR }
func (m METAR) Originator() string           { return m.Aerodrome }
func (m METAR) IssueInstant() avtime.Instant { return m.IssueTime }

func (m METAR) AllTimesComplete() bool {
	if !m.IssueTime.IsComplete() {
		return false
	}
	for _, tr := range m.Trends {
		if !optionalInstantComplete(tr.InstantOfChange) || !optionalPeriodComplete(tr.PeriodOfChange) {
			return false
		}
	}
	return true
}

func (m METAR) completeTimes(c *completer, anchor time.Time) Report {
	return m.withTimes(c, anchor)
}

func (m METAR) withTimes(c *completer, anchor time.Time) METAR {
	out := m
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", m.IssueTime, anchor)

	out.Trends = slices.Clone(m.Trends)
	c.parallel(len(out.Trends), func(i int, sub *completer) {
		tr := &out.Trends[i]
		tr.InstantOfChange = sub.optionalInstant(indexPath("trends", i, "instantOfChange"), tr.InstantOfChange, issue, avtime.Nearest)
		tr.PeriodOfChange = sub.optionalPeriod(indexPath("trends", i, "periodOfChange"), tr.PeriodOfChange, issue, c.bounds.Trend)
	})
	return out
}

// SPECI is a special aerodrome observation. It shares the METAR layout but is
// never routine delayed.
type SPECI struct {
	METAR
}

func (s SPECI) Kind() Kind { return KindSPECI }

func (s SPECI) completeTimes(c *completer, anchor time.Time) Report {
	return SPECI{METAR: s.METAR.withTimes(c, anchor)}
}

// AsSPECI converts an observation to a SPECI. Delayed routine reports are
// rejected with ErrRoutineDelayed.
func AsSPECI(m METAR) (SPECI, error) {
	if m.RoutineDelayed {
		return SPECI{}, ErrRoutineDelayed
	}
	m.Trends = slices.Clone(m.Trends)
	m.Remarks = slices.Clone(m.Remarks)
	return SPECI{METAR: m}, nil
}

// AsMETAR returns the observation as a plain METAR value.
func (s SPECI) AsMETAR() METAR {
	m := s.METAR
	m.Trends = slices.Clone(m.Trends)
	m.Remarks = slices.Clone(m.Remarks)
	return m
}
