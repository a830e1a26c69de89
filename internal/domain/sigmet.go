package domain

import (
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// SIGMET warns of en-route weather hazardous to all aircraft.
type SIGMET struct {
	Status                        Status                 `json:"status,omitempty"`
	IssuingAirTrafficServicesUnit string                 `json:"issuingAirTrafficServicesUnit,omitempty"`
	MeteorologicalWatchOffice     string                 `json:"meteorologicalWatchOffice"`
	Airspace                      string                 `json:"airspace,omitempty"`
	SequenceNumber                string                 `json:"sequenceNumber,omitempty"`
	Phenomenon                    string                 `json:"phenomenon,omitempty"`
	IssueTime                     avtime.Instant         `json:"issueTime"`
	ValidityPeriod                avtime.Period          `json:"validityPeriod"`
	AnalysisGeometries            []PhenomenonGeometry   `json:"analysisGeometries,omitempty"`
	ForecastGeometries            []PhenomenonGeometry   `json:"forecastGeometries,omitempty"`
	CancelledReference            *AirmetSigmetReference `json:"cancelledReference,omitempty"`
}

// AIRMET warns of en-route weather hazardous to low-level flights.
type AIRMET struct {
	Status                        Status                 `json:"status,omitempty"`
	IssuingAirTrafficServicesUnit string                 `json:"issuingAirTrafficServicesUnit,omitempty"`
	MeteorologicalWatchOffice     string                 `json:"meteorologicalWatchOffice"`
	Airspace                      string                 `json:"airspace,omitempty"`
	SequenceNumber                string                 `json:"sequenceNumber,omitempty"`
	Phenomenon                    string                 `json:"phenomenon,omitempty"`
	IssueTime                     avtime.Instant         `json:"issueTime"`
	ValidityPeriod                avtime.Period          `json:"validityPeriod"`
	AnalysisGeometries            []PhenomenonGeometry   `json:"analysisGeometries,omitempty"`
	CancelledReference            *AirmetSigmetReference `json:"cancelledReference,omitempty"`
}

// AirmetSigmetReference identifies the SIGMET or AIRMET cancelled by a CNL message.
type AirmetSigmetReference struct {
	IssuingAirTrafficServicesUnit string          `json:"issuingAirTrafficServicesUnit,omitempty"`
	MeteorologicalWatchOffice     string          `json:"meteorologicalWatchOffice,omitempty"`
	SequenceNumber                string          `json:"sequenceNumber"`
	IssueTime                     *avtime.Instant `json:"issueTime,omitempty"`
	ValidityPeriod                avtime.Period   `json:"validityPeriod"`
}

func (r *AirmetSigmetReference) complete() bool {
	return r == nil || (optionalInstantComplete(r.IssueTime) && r.ValidityPeriod.IsComplete())
}

func (c *completer) airmetSigmetReference(ref *AirmetSigmetReference, issue timeAnchor, external time.Time, maxDuration time.Duration) *AirmetSigmetReference {
	if ref == nil {
		return nil
	}
	out := *ref
	out.IssueTime, out.ValidityPeriod = c.reference("cancelledReference", ref.IssueTime, ref.ValidityPeriod, issue, external, maxDuration)
	return &out
}

func (s SIGMET) Kind() Kind                   { return KindSIGMET }
func (s SIGMET) Originator() string           { return s.MeteorologicalWatchOffice }
func (s SIGMET) IssueInstant() avtime.Instant { return s.IssueTime }

func (s SIGMET) AllTimesComplete() bool {
	return s.IssueTime.IsComplete() &&
		s.ValidityPeriod.IsComplete() &&
		geometriesComplete(s.AnalysisGeometries) &&
		geometriesComplete(s.ForecastGeometries) &&
		s.CancelledReference.complete()
}

func (s SIGMET) completeTimes(c *completer, anchor time.Time) Report {
	out := s
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", s.IssueTime, anchor)
	out.ValidityPeriod = c.period("validityPeriod", s.ValidityPeriod, issue, c.bounds.SIGMET)
	out.AnalysisGeometries = c.geometries("analysisGeometries", s.AnalysisGeometries, issue)
	out.ForecastGeometries = c.geometries("forecastGeometries", s.ForecastGeometries, issue)
	out.CancelledReference = c.airmetSigmetReference(s.CancelledReference, issue, anchor, c.bounds.SIGMET)
	return out
}

func (a AIRMET) Kind() Kind                   { return KindAIRMET }
func (a AIRMET) Originator() string           { return a.MeteorologicalWatchOffice }
func (a AIRMET) IssueInstant() avtime.Instant { return a.IssueTime }

func (a AIRMET) AllTimesComplete() bool {
	return a.IssueTime.IsComplete() &&
		a.ValidityPeriod.IsComplete() &&
		geometriesComplete(a.AnalysisGeometries) &&
		a.CancelledReference.complete()
}

func (a AIRMET) completeTimes(c *completer, anchor time.Time) Report {
	out := a
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", a.IssueTime, anchor)
	out.ValidityPeriod = c.period("validityPeriod", a.ValidityPeriod, issue, c.bounds.AIRMET)
	out.AnalysisGeometries = c.geometries("analysisGeometries", a.AnalysisGeometries, issue)
	out.CancelledReference = c.airmetSigmetReference(a.CancelledReference, issue, anchor, c.bounds.AIRMET)
	return out
}
