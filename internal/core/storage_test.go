package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chocan/internal/infra/persistence/memory"
	"chocan/internal/infra/persistence/sqlite"
	"chocan/pkg/domain"
)

func TestOpenRecordStoreVariants(t *testing.T) {
	ctx := context.Background()

	st, err := OpenRecordStore(ctx, StorageConfig{Driver: StorageMemory})
	if err != nil {
		t.Fatalf("memory open: %v", err)
	}
	if _, ok := st.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", st)
	}

	path := filepath.Join(t.TempDir(), "chocan.db")
	st, err = OpenRecordStore(ctx, StorageConfig{SQLitePath: path})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	sq, ok := st.(*sqlite.Store)
	if !ok || sq.Path() != path {
		t.Fatalf("expected default sqlite store at %s, got %T", path, st)
	}

	if _, err := OpenRecordStore(ctx, StorageConfig{Driver: "gibberish"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenRecordStoreSchemaFailureIsStorageError(t *testing.T) {
	// A directory cannot be opened as a database file.
	_, err := OpenRecordStore(context.Background(), StorageConfig{Driver: StorageSQLite, SQLitePath: t.TempDir()})
	if err == nil {
		t.Fatalf("expected failure opening a directory as sqlite")
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
