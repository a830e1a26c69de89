package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// AnalysisType distinguishes observed from forecast space weather conditions.
type AnalysisType string

const (
	AnalysisObservation AnalysisType = "OBSERVATION"
	AnalysisForecast    AnalysisType = "FORECAST"
)

// NextAdvisoryType qualifies the time of the next advisory.
type NextAdvisoryType string

const (
	NextAdvisoryAt      NextAdvisoryType = "NEXT_ADVISORY_AT"
	NextAdvisoryBy      NextAdvisoryType = "NEXT_ADVISORY_BY"
	NoFurtherAdvisories NextAdvisoryType = "NO_FURTHER_ADVISORIES"
)

// SpaceWeatherAdvisory is an advisory issued by a space weather centre. An
// advisory normally carries one observation followed by four forecasts.
type SpaceWeatherAdvisory struct {
	Status                Status                 `json:"status,omitempty"`
	IssuingCenter         IssuingCenter          `json:"issuingCenter"`
	AdvisoryNumber        AdvisoryNumber         `json:"advisoryNumber"`
	ReplaceAdvisoryNumber *AdvisoryNumber        `json:"replaceAdvisoryNumber,omitempty"`
	IssueTime             avtime.Instant         `json:"issueTime"`
	Phenomena             []string               `json:"phenomena,omitempty"`
	Analyses              []SpaceWeatherAnalysis `json:"analyses"`
	NextAdvisory          NextAdvisory           `json:"nextAdvisory"`
	Remarks               []string               `json:"remarks,omitempty"`
}

// IssuingCenter names the centre and its designator, e.g. "DONLON".
type IssuingCenter struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Designator string `json:"designator,omitempty"`
}

// AdvisoryNumber is the year and serial pair printed as "2020/1".
type AdvisoryNumber struct {
	Year   int `json:"year"`
	Serial int `json:"serialNumber"`
}

// ParseAdvisoryNumber parses the YYYY/N form.
func ParseAdvisoryNumber(s string) (AdvisoryNumber, error) {
	year, serial, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return AdvisoryNumber{}, fmt.Errorf("advisory number %q: expected YYYY/N", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return AdvisoryNumber{}, fmt.Errorf("advisory number %q: invalid year", s)
	}
	n, err := strconv.Atoi(serial)
	if err != nil || n < 1 {
		return AdvisoryNumber{}, fmt.Errorf("advisory number %q: invalid serial", s)
	}
	return AdvisoryNumber{Year: y, Serial: n}, nil
}

func (n AdvisoryNumber) String() string { return fmt.Sprintf("%04d/%d", n.Year, n.Serial) }

// SpaceWeatherAnalysis is one observation or forecast block of an advisory.
type SpaceWeatherAnalysis struct {
	AnalysisType           AnalysisType         `json:"analysisType"`
	Time                   avtime.Instant       `json:"time"`
	Regions                []SpaceWeatherRegion `json:"regions,omitempty"`
	NoPhenomenaExpected    bool                 `json:"noPhenomenaExpected,omitempty"`
	NoInformationAvailable bool                 `json:"noInformationAvailable,omitempty"`
}

// SpaceWeatherRegion is an affected area, e.g. the HNH latitude band.
type SpaceWeatherRegion struct {
	LocationIndicator string          `json:"locationIndicator,omitempty"`
	Geometry          json.RawMessage `json:"geometry,omitempty"`
}

// NextAdvisory announces when the next advisory is due.
type NextAdvisory struct {
	TimeSpecifier NextAdvisoryType `json:"timeSpecifier"`
	Time          *avtime.Instant  `json:"time,omitempty"`
}

func (n NextAdvisory) requiresTime() bool {
	return n.TimeSpecifier == NextAdvisoryAt || n.TimeSpecifier == NextAdvisoryBy
}

func (s SpaceWeatherAdvisory) Kind() Kind                   { return KindSWX }
func (s SpaceWeatherAdvisory) Originator() string           { return s.IssuingCenter.Name }
func (s SpaceWeatherAdvisory) IssueInstant() avtime.Instant { return s.IssueTime }

func (s SpaceWeatherAdvisory) AllTimesComplete() bool {
	if !s.IssueTime.IsComplete() {
		return false
	}
	for _, a := range s.Analyses {
		if !a.Time.IsComplete() {
			return false
		}
	}
	if s.NextAdvisory.requiresTime() && s.NextAdvisory.Time == nil {
		return false
	}
	return optionalInstantComplete(s.NextAdvisory.Time)
}

func (s SpaceWeatherAdvisory) completeTimes(c *completer, anchor time.Time) Report {
	out := s
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", s.IssueTime, anchor)

	out.Analyses = slices.Clone(s.Analyses)
	c.parallel(len(out.Analyses), func(i int, sub *completer) {
		out.Analyses[i].Time = sub.instant(indexPath("analyses", i, "time"), out.Analyses[i].Time, issue, avtime.Nearest)
	})

	if s.NextAdvisory.requiresTime() && s.NextAdvisory.Time == nil {
		c.fail("nextAdvisory.time", fmt.Errorf("%w: %s", ErrMissingTime, s.NextAdvisory.TimeSpecifier))
	}
	out.NextAdvisory.Time = c.optionalInstant("nextAdvisory.time", s.NextAdvisory.Time, issue, avtime.ForwardOnly)
	return out
}
