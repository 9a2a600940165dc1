// Package sink delivers rendered reports. The blob sink archives each
// document as a text object (the filesystem driver reproduces the classic
// emails/<category>/ layout); the queue sinks publish a JSON envelope for a
// downstream mailer.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chocan/internal/report"
)

// Sink is a report.Sink that owns resources.
type Sink interface {
	report.Sink
	Close() error
}

// Envelope is the wire form published to queues.
type Envelope struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	To            string    `json:"to"`
	From          string    `json:"from"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	RecipientName string    `json:"recipient_name"`
	RecipientID   uint32    `json:"recipient_id,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// NewEnvelope wraps r with a fresh document id.
func NewEnvelope(r report.Report) Envelope {
	return Envelope{
		ID:            uuid.NewString(),
		Category:      string(r.Category),
		To:            r.To,
		From:          r.From,
		Subject:       r.Subject,
		Body:          r.Body,
		RecipientName: r.RecipientName,
		RecipientID:   r.RecipientID,
		GeneratedAt:   r.GeneratedAt,
	}
}

func (e Envelope) encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode report %s: %w", e.ID, err)
	}
	return b, nil
}

// Multi fans a report out to every sink. All sinks are attempted; their
// errors are joined.
type Multi []Sink

func (m Multi) Deliver(ctx context.Context, r report.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
