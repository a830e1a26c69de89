//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("avi-report-etl-test"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadFixtureList returns every envelope from the shared report fixtures.
func loadFixtureList(t *testing.T) []json.RawMessage {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "pipeline", "testdata", "reports.json"))
	require.NoError(t, err)

	var envs []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &envs))
	return envs
}

// loadFixtureEnvelopes indexes the fixtures by report type; later fixtures of
// the same type win.
func loadFixtureEnvelopes(t *testing.T) map[string][]byte {
	t.Helper()

	out := make(map[string][]byte)
	for _, env := range loadFixtureList(t) {
		var head struct {
			ReportType string `json:"reportType"`
		}
		require.NoError(t, json.Unmarshal(env, &head))
		out[head.ReportType] = env
	}
	return out
}

func withoutReferenceTime(t *testing.T, env []byte) []byte {
	t.Helper()

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env, &m))
	delete(m, "referenceTime")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}
