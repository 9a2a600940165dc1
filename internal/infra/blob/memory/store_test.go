package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"chocan/internal/blob/blobtest"
	"chocan/internal/blob/core"
)

func TestStoreContract(t *testing.T) {
	blobtest.RunStoreContract(t, New())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPutRejectsBadInput(t *testing.T) {
	st := New()
	ctx := context.Background()
	if _, err := st.Put(ctx, " ", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
	if _, err := st.Put(ctx, "k", failingReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected read error")
	}
	if st.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", st.Driver())
	}
}

func TestStoredMetadataIsCopied(t *testing.T) {
	st := New()
	ctx := context.Background()
	md := map[string]string{"category": "manager"}
	if _, err := st.Put(ctx, "k", bytes.NewReader([]byte("v")), core.PutOptions{Metadata: md}); err != nil {
		t.Fatalf("put: %v", err)
	}
	md["category"] = "changed"
	info, rc, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if info.Metadata["category"] != "manager" || string(b) != "v" {
		t.Fatalf("stored object aliased caller data: %+v %q", info, b)
	}
}
