package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"chocan/internal/blob"
	"chocan/internal/report"
	"chocan/pkg/domain"
)

const textContentType = "text/plain; charset=utf-8"

// BlobSink archives each report as <category>/<MM-DD-YYYY>_<name>_<id>.txt.
// A second document for the same key gets a short unique suffix rather
// than replacing the first.
type BlobSink struct {
	store blob.Store
}

// NewBlobSink writes into store.
func NewBlobSink(store blob.Store) *BlobSink { return &BlobSink{store: store} }

// Store returns the archive the sink writes to.
func (s *BlobSink) Store() blob.Store { return s.store }

// Key returns the archive key for r.
func Key(r report.Report) string {
	name := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ' ', '\t', '\n':
			return '_'
		}
		return c
	}, r.RecipientName)
	if name == "" {
		name = string(r.Category)
	}
	return fmt.Sprintf("%s/%s_%s_%s.txt", r.Category, domain.FormatServiceDate(r.GeneratedAt), name, strconv.FormatUint(uint64(r.RecipientID), 10))
}

func (s *BlobSink) Deliver(ctx context.Context, r report.Report) error {
	id := uuid.NewString()
	opts := blob.PutOptions{
		ContentType: textContentType,
		Metadata: map[string]string{
			"document-id": id,
			"category":    string(r.Category),
			"to":          r.To,
			"from":        r.From,
			"subject":     r.Subject,
		},
	}
	key := Key(r)
	_, err := s.store.Put(ctx, key, strings.NewReader(r.Body), opts)
	if errors.Is(err, blob.ErrExists) {
		key = strings.TrimSuffix(key, ".txt") + "_" + id[:8] + ".txt"
		_, err = s.store.Put(ctx, key, strings.NewReader(r.Body), opts)
	}
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

func (s *BlobSink) Close() error { return nil }
