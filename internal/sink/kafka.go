package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"chocan/internal/report"
)

// MessageWriter is the subset of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each report as a JSON envelope keyed by
// <category>-<recipient id>, so one recipient's documents share a partition.
type KafkaSink struct {
	w MessageWriter
}

// NewKafkaSink builds a writer for topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, errors.New("kafka sink needs brokers and a topic")
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaSink{w: w}, nil
}

// NewKafkaSinkWithWriter wraps an existing writer.
func NewKafkaSinkWithWriter(w MessageWriter) *KafkaSink { return &KafkaSink{w: w} }

func (s *KafkaSink) Deliver(ctx context.Context, r report.Report) error {
	env := NewEnvelope(r)
	b, err := env.encode()
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(string(r.Category) + "-" + strconv.FormatUint(uint64(r.RecipientID), 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "category", Value: []byte(r.Category)},
			{Key: "document-id", Value: []byte(env.ID)},
		},
		Time: r.GeneratedAt,
	}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s report to kafka: %w", r.Category, err)
	}
	return nil
}

func (s *KafkaSink) Close() error { return s.w.Close() }
