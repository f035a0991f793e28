package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/beach-hazard-etl/internal/config"
	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces hazard reports to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes one refresh cycle's reports in a single
// WriteMessages call. Messages are keyed by source so each source's reports
// stay ordered on one partition.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.HazardReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("reports published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes a HazardReport into a Kafka message.
func serializeToMessage(r domain.HazardReport) (kafkago.Message, error) {
	evt, err := domain.SerializeReport(r)
	if err != nil {
		return kafkago.Message{}, err
	}
	keys := make([]string, 0, len(evt.Headers))
	for k := range evt.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(evt.Headers[k])})
	}
	return kafkago.Message{
		Key:     evt.Key,
		Value:   evt.Value,
		Headers: headers,
	}, nil
}
