// Package domain models aviation weather reports and completes their times.
//
// # Data Source
//
// Reports arrive on the source topic as JSON envelopes produced by the
// upstream TAC parser:
//
//	{"reportType": "SIGMET", "referenceTime": "2020-02-27T01:00:00Z", "report": {...}}
//
// Every time-bearing field is an [avtime.Instant] or [avtime.Period] holding
// the fragment read from the code, e.g. "--27T01:00Z" for "270100Z". The
// parser never guesses month or year.
//
// # Anchors
//
// The issue time is resolved against a reference time chosen per message:
//
//  1. the envelope's referenceTime
//  2. the reference_time Kafka header (RFC 3339)
//  3. the Kafka message timestamp, i.e. the time the document was received
//  4. the package clock
//
// Every other field is then anchored on the resolved issue time:
//
//	issue time             nearest to the reference time
//	validity period        start nearest to issue time, end forward from start
//	geometry and trend     nearest to issue time
//	next advisory          forward from issue time
//	cancelled reference    its own issue time if present, else the report's
//
// Validity periods longer than the configured maximum for the report type
// fail with [avtime.ErrImplausiblePeriod].
//
// # Failures
//
// [CompleteAllTimes] keeps going after a field fails and returns a
// [*PartialCompletionError] naming every failed field path, e.g.
// "analysisGeometries[1].time". Fields anchored on an issue time that failed
// are reported with [ErrUnresolvedAnchor]. Whether a partially completed
// report is published is decided by the pipeline.
//
// # ID Generation
//
// Report IDs are SHA-256 hashes of kind|originator|issue time, so replaying
// the source topic yields the same keys. See [GenerateReportID].
package domain
