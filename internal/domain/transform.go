package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownReportType is returned for envelopes naming an unsupported variant.
var ErrUnknownReportType = errors.New("unknown report type")

// Envelope is the JSON document exchanged on the source topic and over HTTP.
// ReferenceTime, when set, is the anchor for the issue time.
type Envelope struct {
	ReportType    Kind            `json:"reportType"`
	ReferenceTime *time.Time      `json:"referenceTime,omitempty"`
	Report        json.RawMessage `json:"report"`
}

// Anchor sources, in order of preference.
const (
	AnchorFromEnvelope = "envelope"
	AnchorFromHeader   = "header"
	AnchorFromReceipt  = "received"
	AnchorFromClock    = "clock"
)

// ParsedReport is a decoded report together with the anchor chosen for it.
type ParsedReport struct {
	Report        Report
	ReferenceTime time.Time
	AnchorSource  string
}

// DecodeEnvelope decodes an envelope and the report it carries.
func DecodeEnvelope(data []byte) (Envelope, Report, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	report, err := DecodeReport(env.ReportType, env.Report)
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, report, nil
}

// DecodeReport unmarshals data into the variant named by kind.
func DecodeReport(kind Kind, data json.RawMessage) (Report, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode %s: empty report", kind)
	}
	var (
		r   Report
		err error
	)
	switch Kind(strings.ToUpper(string(kind))) {
	case KindMETAR:
		r, err = decodeAs[METAR](data)
	case KindSPECI:
		var m METAR
		if err = json.Unmarshal(data, &m); err == nil {
			r, err = AsSPECI(m)
		}
	case KindTAF:
		r, err = decodeAs[TAF](data)
	case KindSIGMET:
		r, err = decodeAs[SIGMET](data)
	case KindAIRMET:
		r, err = decodeAs[AIRMET](data)
	case KindSWX:
		r, err = decodeAs[SpaceWeatherAdvisory](data)
	case KindGeneric:
		r, err = decodeAs[GenericMessage](data)
	case KindBulletin:
		r, err = decodeAs[Bulletin](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return r, nil
}

func decodeAs[T Report](data json.RawMessage) (Report, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseRawEvent decodes a source message and picks the anchor for its issue
// time: the envelope's referenceTime, then the reference_time header, then the
// message timestamp, then the package clock.
func ParseRawEvent(raw RawEvent) (ParsedReport, error) {
	env, report, err := DecodeEnvelope(raw.Value)
	if err != nil {
		return ParsedReport{}, fmt.Errorf("parse raw event: %w", err)
	}
	ref, source, err := referenceTime(env, raw)
	if err != nil {
		return ParsedReport{}, fmt.Errorf("parse raw event: %w", err)
	}
	return ParsedReport{Report: report, ReferenceTime: ref, AnchorSource: source}, nil
}

func referenceTime(env Envelope, raw RawEvent) (time.Time, string, error) {
	if env.ReferenceTime != nil {
		return *env.ReferenceTime, AnchorFromEnvelope, nil
	}
	if v := raw.Headers[HeaderReferenceTime]; v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("invalid %s header %q: %w", HeaderReferenceTime, v, err)
		}
		return t, AnchorFromHeader, nil
	}
	if !raw.Timestamp.IsZero() {
		return raw.Timestamp.UTC(), AnchorFromReceipt, nil
	}
	return clock.Now().UTC(), AnchorFromClock, nil
}

// CompletionResult is the document published for every completed report.
type CompletionResult struct {
	ReportID      string         `json:"reportId"`
	ReportType    Kind           `json:"reportType"`
	ReferenceTime time.Time      `json:"referenceTime"`
	AnchorSource  string         `json:"anchorSource,omitempty"`
	TimesComplete bool           `json:"timesComplete"`
	Failures      []FieldFailure `json:"failures,omitempty"`
	CompletedAt   time.Time      `json:"completedAt"`
	Report        Report         `json:"report"`
}

// NewCompletionResult packages a completed report. err is the error returned
// by CompleteAllTimes; its field failures are copied into the result.
func NewCompletionResult(parsed ParsedReport, completed Report, err error) CompletionResult {
	res := CompletionResult{
		ReportID:      GenerateReportID(completed),
		ReportType:    completed.Kind(),
		ReferenceTime: parsed.ReferenceTime,
		AnchorSource:  parsed.AnchorSource,
		TimesComplete: IsFullyResolved(completed),
		CompletedAt:   clock.Now().UTC(),
		Report:        completed,
	}
	var pce *PartialCompletionError
	if errors.As(err, &pce) {
		res.Failures = pce.Failures
	}
	return res
}

// SerializeResult marshals a result into a sink message keyed by report ID.
func SerializeResult(res CompletionResult) (OutputEvent, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize completion result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(res.ReportID),
		Value: data,
		Headers: map[string]string{
			HeaderReportType:    string(res.ReportType),
			HeaderTimesComplete: strconv.FormatBool(res.TimesComplete),
			HeaderCompletedAt:   res.CompletedAt.Format(time.RFC3339),
		},
	}, nil
}

// GenerateReportID derives a deterministic ID from the report kind,
// originator and issue time so replays produce the same key.
func GenerateReportID(r Report) string {
	issue := r.IssueInstant()
	issueStr := issue.Fragment().String()
	if t, ok := issue.Resolved(); ok {
		issueStr = t.UTC().Format(time.RFC3339)
	}
	input := fmt.Sprintf("%s|%s|%s", r.Kind(), r.Originator(), issueStr)
	hash := sha256.Sum256([]byte(input))
	return strings.ToLower(string(r.Kind())) + "-" + hex.EncodeToString(hash[:8])
}

type failureJSON struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func marshalFailure(f FieldFailure) ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(failureJSON{Path: f.Path, Kind: FailureKind(f.Err), Error: msg})
}
