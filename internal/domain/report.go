package domain

import (
	"encoding/json"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// Kind identifies a report variant on the wire and in metrics labels.
type Kind string

const (
	KindMETAR    Kind = "METAR"
	KindSPECI    Kind = "SPECI"
	KindTAF      Kind = "TAF"
	KindSIGMET   Kind = "SIGMET"
	KindAIRMET   Kind = "AIRMET"
	KindSWX      Kind = "SWX"
	KindGeneric  Kind = "GENERIC"
	KindBulletin Kind = "BULLETIN"
)

// Status is the report status carried in the message header.
type Status string

const (
	StatusNormal       Status = "NORMAL"
	StatusAmendment    Status = "AMENDMENT"
	StatusCorrection   Status = "CORRECTION"
	StatusCancellation Status = "CANCELLATION"
	StatusTest         Status = "TEST"
	StatusExercise     Status = "EXERCISE"
)

// Report is implemented by every report variant. Variants are plain values;
// completion returns a new value and never modifies its input.
type Report interface {
	Kind() Kind
	// Originator is the aerodrome, watch office or centre that issued the report.
	Originator() string
	IssueInstant() avtime.Instant
	// AllTimesComplete reports whether every time-bearing field is resolved.
	AllTimesComplete() bool

	completeTimes(c *completer, anchor time.Time) Report
}

// ValidityBounds caps the duration of resolved periods per report type. A
// zero value disables the check for that type.
type ValidityBounds struct {
	TAF     time.Duration
	SIGMET  time.Duration
	AIRMET  time.Duration
	Trend   time.Duration
	Generic time.Duration
}

// DefaultValidityBounds follows the ICAO Annex 3 maxima: TAF 30h, SIGMET 6h
// (volcanic ash and tropical cyclone), AIRMET 4h and METAR trends 2h.
func DefaultValidityBounds() ValidityBounds {
	return ValidityBounds{
		TAF:    30 * time.Hour,
		SIGMET: 6 * time.Hour,
		AIRMET: 4 * time.Hour,
		Trend:  2 * time.Hour,
	}
}

// PhenomenonGeometry is an analysed or forecast position of a phenomenon.
// The geometry itself is carried through untouched.
type PhenomenonGeometry struct {
	Time                *avtime.Instant `json:"time,omitempty"`
	Geometry            json.RawMessage `json:"geometry,omitempty"`
	ApproximateLocation bool            `json:"approximateLocation,omitempty"`
}

func geometriesComplete(geoms []PhenomenonGeometry) bool {
	for _, g := range geoms {
		if g.Time != nil && !g.Time.IsComplete() {
			return false
		}
	}
	return true
}

func optionalInstantComplete(in *avtime.Instant) bool {
	return in == nil || in.IsComplete()
}

func optionalPeriodComplete(p *avtime.Period) bool {
	return p == nil || p.IsComplete()
}
