package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
)

// ErrSequenceNumberRange is returned when a transmission sequence number does
// not fit its digit count.
var ErrSequenceNumberRange = errors.New("transmission sequence number is out of range")

const defaultSequenceDigits = 3

// BulletinHeading is the WMO abbreviated heading TTAAii CCCC YYGGgg (BBB).
type BulletinHeading struct {
	DataTypeDesignator     string `json:"dataTypeDesignator"`
	GeographicalDesignator string `json:"geographicalDesignator"`
	BulletinNumber         int    `json:"bulletinNumber"`
	LocationIndicator      string `json:"locationIndicator"`
	Augmentation           string `json:"augmentationIndicator,omitempty"`
}

func (h BulletinHeading) String() string {
	s := fmt.Sprintf("%s%s%02d %s", h.DataTypeDesignator, h.GeographicalDesignator, h.BulletinNumber, h.LocationIndicator)
	if h.Augmentation != "" {
		s += " " + h.Augmentation
	}
	return s
}

// TransmissionSequenceNumber is the nnn group preceding a bulletin. It is kept
// as text because operational feeds occasionally carry non-numeric values.
type TransmissionSequenceNumber string

// NewTransmissionSequenceNumber formats n zero padded to three digits.
func NewTransmissionSequenceNumber(n int) (TransmissionSequenceNumber, error) {
	return NewTransmissionSequenceNumberWidth(n, defaultSequenceDigits)
}

// NewTransmissionSequenceNumberWidth formats n zero padded to digits.
func NewTransmissionSequenceNumberWidth(n, digits int) (TransmissionSequenceNumber, error) {
	if n < 0 || len(strconv.Itoa(n)) > digits {
		return "", fmt.Errorf("%w: %d in %d digits", ErrSequenceNumberRange, n, digits)
	}
	return TransmissionSequenceNumber(fmt.Sprintf("%0*d", digits, n)), nil
}

// Int returns the numeric value, or false when the number is not all digits.
func (n TransmissionSequenceNumber) Int() (int, bool) {
	v, err := strconv.Atoi(string(n))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Bulletin is a meteorological bulletin carrying generic messages. Message
// times are resolved relative to the bulletin's issue time.
type Bulletin struct {
	Heading                    BulletinHeading            `json:"heading"`
	TransmissionSequenceNumber TransmissionSequenceNumber `json:"transmissionSequenceNumber,omitempty"`
	IssueTime                  avtime.Instant             `json:"issueTime"`
	Messages                   []GenericMessage           `json:"messages"`
}

func (b Bulletin) Kind() Kind                   { return KindBulletin }
func (b Bulletin) Originator() string           { return b.Heading.LocationIndicator }
func (b Bulletin) IssueInstant() avtime.Instant { return b.IssueTime }

func (b Bulletin) AllTimesComplete() bool {
	if !b.IssueTime.IsComplete() {
		return false
	}
	for _, m := range b.Messages {
		if !m.IssueTime.IsZero() && !m.IssueTime.IsComplete() {
			return false
		}
		if !optionalPeriodComplete(m.ValidityTime) {
			return false
		}
	}
	return true
}

func (b Bulletin) completeTimes(c *completer, anchor time.Time) Report {
	out := b
	var issue timeAnchor
	out.IssueTime, issue = c.issue("issueTime", b.IssueTime, anchor)
	if b.Messages == nil {
		return out
	}
	out.Messages = make([]GenericMessage, len(b.Messages))
	c.parallel(len(b.Messages), func(i int, sub *completer) {
		out.Messages[i] = b.Messages[i].completeWithin(sub, indexPath("messages", i, ""), issue)
	})
	return out
}
