package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/meteo-forecast-etl/internal/config"
	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes dispatched reports to the archive topic.
// It implements pipeline.ReportArchiver.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured archive topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaArchiveTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.HTTPTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// Archive serializes and publishes a single report record.
func (w *Writer) Archive(ctx context.Context, report domain.ArchivedReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: publish report: %v", domain.ErrTransport, err)
	}
	w.logger.Debug("report archived", "topic", w.writer.Topic, "key", string(msg.Key))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ArchivedReport into a Kafka message keyed by
// run ID.
func serializeToMessage(report domain.ArchivedReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("%w: serialize archived report: %v", domain.ErrSerialization, err)
	}
	return kafkago.Message{
		Key:   []byte(report.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(report.Location)},
			{Key: "dispatched_at", Value: []byte(report.DispatchedAt.Format(time.RFC3339))},
		},
	}, nil
}
