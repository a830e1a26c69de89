package domain

import (
	"slices"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// TAF is an aerodrome forecast.
type TAF struct {
	Status           Status              `json:"status,omitempty"`
	Aerodrome        string              `json:"aerodrome"`
	IssueTime        avtime.Instant      `json:"issueTime"`
	ValidityPeriod   *avtime.Period      `json:"validityPeriod,omitempty"`
	ChangeForecasts  []TAFChangeForecast `json:"changeForecasts,omitempty"`
	ReferencedReport *TAFReference       `json:"referencedReport,omitempty"`
	Remarks          []string            `json:"remarks,omitempty"`
}

// TAFChangeForecast is a FM, BECMG, TEMPO or PROB group. FM groups carry an
// instant; the others carry a period.
type TAFChangeForecast struct {
	ChangeIndicator string          `json:"changeIndicator"`
	InstantOfChange *avtime.Instant `json:"instantOfChange,omitempty"`
	PeriodOfChange  *avtime.Period  `json:"periodOfChange,omitempty"`
}

// TAFReference identifies the forecast amended or cancelled by this one.
type TAFReference struct {
	Aerodrome      string          `json:"aerodrome"`
	IssueTime      *avtime.Instant `json:"issueTime,omitempty"`
	ValidityPeriod avtime.Period   `json:"validityPeriod"`
}

func (t TAF) Kind() Kind                   { return KindTAF }
func (t TAF) Originator() string           { return t.Aerodrome }
func (t TAF) IssueInstant() avtime.Instant { return t.IssueTime }

func (t TAF) AllTimesComplete() bool {
	if !t.IssueTime.IsComplete() || !optionalPeriodComplete(t.ValidityPeriod) {
		return false
	}
	for _, cf := range t.ChangeForecasts {
		if !optionalInstantComplete(cf.InstantOfChange) || !optionalPeriodComplete(cf.PeriodOfChange) {
			return false
		}
	}
	if ref := t.ReferencedReport; ref != nil {
		return optionalInstantComplete(ref.IssueTime) && ref.ValidityPeriod.IsComplete()
	}
	return true
}

func (t TAF) completeTimes(c *completer, anchor time.Time) Report {
	out := t
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", t.IssueTime, anchor)
	out.ValidityPeriod = c.optionalPeriod("validityPeriod", t.ValidityPeriod, issue, c.bounds.TAF)

	out.ChangeForecasts = slices.Clone(t.ChangeForecasts)
	c.parallel(len(out.ChangeForecasts), func(i int, sub *completer) {
		cf := &out.ChangeForecasts[i]
		cf.InstantOfChange = sub.optionalInstant(indexPath("changeForecasts", i, "instantOfChange"), cf.InstantOfChange, issue, avtime.Nearest)
		cf.PeriodOfChange = sub.optionalPeriod(indexPath("changeForecasts", i, "periodOfChange"), cf.PeriodOfChange, issue, c.bounds.TAF)
	})

	if ref := t.ReferencedReport; ref != nil {
		r := *ref
		r.IssueTime, r.ValidityPeriod = c.reference("referencedReport", ref.IssueTime, ref.ValidityPeriod, issue, anchor, c.bounds.TAF)
		out.ReferencedReport = &r
	}
	return out
}
