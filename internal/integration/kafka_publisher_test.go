//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/congress-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/congress-dashboard/internal/config"
	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testViewTopic = "test-view-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("congress-dashboard-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

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

// TestPublisher_RoundTrip publishes two transitions of one session and reads
// them back in order with their headers.
func TestPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testViewTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaViewTopic: testViewTopic}
	metrics := observability.NewMetricsForTesting()
	pub := kafka.NewPublisher(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	occurred := time.Date(2025, 1, 3, 17, 0, 0, 0, time.UTC)
	events := []domain.ViewEvent{
		{ID: "e1", SessionID: "sess-1", Kind: domain.TransitionSelectState, Level: domain.LevelState,
			StateFIPS: "48", StateAbbr: "TX", Generation: 1, OccurredAt: occurred},
		{ID: "e2", SessionID: "sess-1", Kind: domain.TransitionSelectDistrict, Level: domain.LevelDistrict,
			StateFIPS: "48", StateAbbr: "TX", OfficeID: "TX07", Generation: 2, OccurredAt: occurred.Add(time.Second)},
	}
	for _, ev := range events {
		require.NoError(t, pub.Publish(ctx, ev))
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testViewTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	for _, want := range events {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read view event")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var got domain.ViewEvent
		require.NoError(t, json.Unmarshal(msg.Value, &got))

		assert.Equal(t, "sess-1", string(msg.Key))
		assert.Equal(t, want.Kind, headers["event_kind"])
		assert.Equal(t, want.OccurredAt.Format(time.RFC3339), headers["occurred_at"])
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.OfficeID, got.OfficeID)
		assert.Equal(t, want.Generation, got.Generation)
	}
}
