package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	received := time.Date(2020, 2, 27, 1, 7, 0, 0, time.UTC)
	msg := kafkago.Message{
		Key:       []byte("efkl-1"),
		Value:     []byte(`{"reportType":"SIGMET","report":{}}`),
		Topic:     "raw-aviation-reports",
		Partition: 2,
		Offset:    42,
		Time:      received,
		Headers: []kafkago.Header{
			{Key: domain.HeaderReferenceTime, Value: []byte("2020-02-27T01:05:00Z")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("efkl-1"), raw.Key)
	assert.JSONEq(t, `{"reportType":"SIGMET","report":{}}`, string(raw.Value))
	assert.Equal(t, "raw-aviation-reports", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, received, raw.Timestamp)
	assert.Equal(t, "2020-02-27T01:05:00Z", raw.Headers[domain.HeaderReferenceTime])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("sigmet-0a1b2c3d4e5f6071"),
		Value: []byte(`{"reportType":"SIGMET","timesComplete":true}`),
		Headers: map[string]string{
			domain.HeaderTimesComplete: "true",
			domain.HeaderReportType:    "SIGMET",
			domain.HeaderCompletedAt:   "2020-02-27T01:10:00Z",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, event.Key, msg.Key)
	assert.Equal(t, event.Value, msg.Value)
	assert.Equal(t, []kafkago.Header{
		{Key: domain.HeaderCompletedAt, Value: []byte("2020-02-27T01:10:00Z")},
		{Key: domain.HeaderReportType, Value: []byte("SIGMET")},
		{Key: domain.HeaderTimesComplete, Value: []byte("true")},
	}, msg.Headers)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
}
