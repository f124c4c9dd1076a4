//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/met-update-db/internal/adapter/kafka"
	"github.com/couchcryptid/met-update-db/internal/adapter/memory"
	"github.com/couchcryptid/met-update-db/internal/config"
	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/couchcryptid/met-update-db/internal/observability"
	"github.com/couchcryptid/met-update-db/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMetarTopic      = "test-metar"
	testTafTopic        = "test-taf"
	testDeadLetterTopic = "test-dead-letter"
)

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaMetarTopic:      testMetarTopic,
		KafkaTafTopic:        testTafTopic,
		KafkaDeadLetterTopic: testDeadLetterTopic,
		KafkaGroupID:         fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval:   2 * time.Second,
	}
}

func publish(ctx context.Context, t *testing.T, broker, topic string, msgs ...kafkago.Message) {
	t.Helper()
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: topic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

// TestPipelineEndToEnd publishes METAR and TAF messages plus a poison message
// and checks that the reports land in the store and the poison message is
// dead-lettered with its provenance headers.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testMetarTopic)
	createTopic(t, broker, testTafTopic)
	createTopic(t, broker, testDeadLetterTopic)

	cfg := testConfig(broker, "test-pipeline")

	publish(ctx, t, broker, testMetarTopic,
		kafkago.Message{Key: []byte("EHAM"), Value: []byte(metarDoc)},
		kafkago.Message{Key: []byte("EHAM"), Value: []byte("not-json{{{")},
	)
	publish(ctx, t, broker, testTafTopic,
		kafkago.Message{
			Key:     []byte("ignored"),
			Value:   []byte(fmt.Sprintf(tafDocFormat, "2022-05-30T12:00:00Z", "2022-05-31T18:00:00Z")),
			Headers: []kafkago.Header{{Key: "airport", Value: []byte("EHAM")}},
		},
	)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	deadLetter := kafka.NewDeadLetterWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = deadLetter.Close() })

	repo := memory.New()
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(discardLogger()), pipeline.NewLoader(repo, discardLogger()), discardLogger(), metrics, 50).
		WithDeadLetter(deadLetter)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testDeadLetterTopic,
		GroupID:     fmt.Sprintf("test-dlq-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 60*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from dead-letter topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "not-json{{{", string(msg.Value))
	assert.Equal(t, testMetarTopic, headers[kafka.HeaderSourceTopic])
	assert.Contains(t, headers[kafka.HeaderError], "parse metar")

	require.Eventually(t, func() bool {
		metars, tafs := repo.Len()
		return metars == 1 && tafs == 1
	}, 60*time.Second, 200*time.Millisecond)

	pipelineCancel()
	require.NoError(t, <-errCh)

	tafs, err := repo.FindTafs(ctx, domain.TafFilter{AirportICAO: "EHAM"})
	require.NoError(t, err)
	require.Len(t, tafs, 1)
	assert.Equal(t, time.Date(2022, 5, 31, 18, 0, 0, 0, time.UTC), tafs[0].EndTime)
}
