package domain

import (
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// GenericMessage is any aviation weather message kept in its original text
// form, e.g. from a bulletin whose type has no dedicated model.
type GenericMessage struct {
	MessageType     string         `json:"messageType"`
	MessageFormat   string         `json:"messageFormat,omitempty"`
	TargetAerodrome string         `json:"targetAerodrome,omitempty"`
	OriginalMessage string         `json:"originalMessage"`
	IssueTime       avtime.Instant `json:"issueTime"`
	ValidityTime    *avtime.Period `json:"validityTime,omitempty"`
}

func (g GenericMessage) Kind() Kind                   { return KindGeneric }
func (g GenericMessage) Originator() string           { return g.TargetAerodrome }
func (g GenericMessage) IssueInstant() avtime.Instant { return g.IssueTime }

func (g GenericMessage) AllTimesComplete() bool {
	return g.IssueTime.IsComplete() && optionalPeriodComplete(g.ValidityTime)
}

func (g GenericMessage) completeTimes(c *completer, anchor time.Time) Report {
	out := g
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", g.IssueTime, anchor)
	out.ValidityTime = c.optionalPeriod("validityTime", g.ValidityTime, issue, c.bounds.Generic)
	return out
}

// completeWithin resolves a message carried in a bulletin. Its issue time is
// resolved nearest to the bulletin's; a message without one takes the
// bulletin's issue time as the anchor for its validity.
func (g GenericMessage) completeWithin(c *completer, prefix string, bulletin timeAnchor) GenericMessage {
	out := g
	issue := bulletin
	if !g.IssueTime.IsZero() {
		out.IssueTime = c.instant(prefix+".issueTime", g.IssueTime, bulletin, avtime.Nearest)
		t, ok := out.IssueTime.Resolved()
		issue = timeAnchor{at: t, ok: ok}
	}
	out.ValidityTime = c.optionalPeriod(prefix+".validityTime", g.ValidityTime, issue, c.bounds.Generic)
	return out
}
