package kafka

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/met-update-db/internal/config"
	"github.com/couchcryptid/met-update-db/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Dead-letter headers added on top of the original message headers.
const (
	HeaderSourceTopic     = "source_topic"
	HeaderSourcePartition = "source_partition"
	HeaderSourceOffset    = "source_offset"
	HeaderError           = "error"
	HeaderFailedAt        = "failed_at"
)

// DeadLetterWriter republishes rejected messages to the dead-letter topic.
// It implements pipeline.DeadLetterPublisher.
type DeadLetterWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewDeadLetterWriter creates a Kafka producer for the configured dead-letter
// topic.
func NewDeadLetterWriter(cfg *config.Config, logger *slog.Logger) *DeadLetterWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaDeadLetterTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &DeadLetterWriter{writer: w, logger: logger}
}

// PublishDeadLetter writes raw unchanged with headers describing where it
// came from and why it was rejected.
func (w *DeadLetterWriter) PublishDeadLetter(ctx context.Context, raw domain.RawEvent, cause error) error {
	if err := w.writer.WriteMessages(ctx, deadLetterMessage(raw, cause)); err != nil {
		return err
	}
	w.logger.Info("message dead-lettered",
		"topic", raw.Topic,
		"partition", raw.Partition,
		"offset", raw.Offset,
	)
	return nil
}

func (w *DeadLetterWriter) Close() error {
	return w.writer.Close()
}

func deadLetterMessage(raw domain.RawEvent, cause error) kafkago.Message {
	headers := make([]kafkago.Header, 0, len(raw.Headers)+5)
	for k, v := range raw.Headers {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers,
		kafkago.Header{Key: HeaderSourceTopic, Value: []byte(raw.Topic)},
		kafkago.Header{Key: HeaderSourcePartition, Value: []byte(strconv.Itoa(raw.Partition))},
		kafkago.Header{Key: HeaderSourceOffset, Value: []byte(strconv.FormatInt(raw.Offset, 10))},
		kafkago.Header{Key: HeaderError, Value: []byte(cause.Error())},
		kafkago.Header{Key: HeaderFailedAt, Value: []byte(domain.Now().Format(time.RFC3339))},
	)
	return kafkago.Message{
		Key:     raw.Key,
		Value:   raw.Value,
		Headers: headers,
	}
}
