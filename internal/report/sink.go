// Package report turns the consultation log into per-recipient documents and
// hands each one to a Sink. It depends only on the read side of the record
// store and on the Sink contract; transports live in internal/sink.
package report

import (
	"context"
	"time"
)

// Category tells a sink which kind of document it is delivering.
type Category string

const (
	CategoryMember    Category = "member"
	CategoryProvider  Category = "provider"
	CategoryManager   Category = "manager"
	CategoryDirectory Category = "directory"
)

// Report is a fully rendered, addressed document.
type Report struct {
	Category      Category
	To            string
	From          string
	Subject       string
	Body          string
	RecipientName string
	// RecipientID is the member or provider number; zero for manager and
	// directory documents.
	RecipientID uint32
	GeneratedAt time.Time
}

// Sink delivers reports. The engine only looks at the returned error.
type Sink interface {
	Deliver(ctx context.Context, r Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r Report) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, r Report) error { return f(ctx, r) }
