package domain

import (
	"context"
	"time"
)

// Header keys read from and written to Kafka messages.
const (
	HeaderReferenceTime = "reference_time"
	HeaderReportType    = "report_type"
	HeaderTimesComplete = "times_complete"
	HeaderCompletedAt   = "completed_at"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
