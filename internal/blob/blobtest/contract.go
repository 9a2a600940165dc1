// Package blobtest holds the behaviour every archive backend shares.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"chocan/internal/blob/core"
)

// RunStoreContract exercises put/get/head/list/delete against a fresh store.
func RunStoreContract(t *testing.T, st core.Store) {
	t.Helper()
	ctx := context.Background()

	info, err := st.Put(ctx, "member/01-20-2025_Member One_1.txt", bytes.NewReader([]byte("Member name: Member One\n")),
		core.PutOptions{ContentType: "text/plain; charset=utf-8", Metadata: map[string]string{"category": "member"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 24 {
		t.Fatalf("unexpected size %d", info.Size)
	}
	if _, err := st.Put(ctx, "member/01-20-2025_Member One_1.txt", bytes.NewReader([]byte("again")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	head, err := st.Head(ctx, "member/01-20-2025_Member One_1.txt")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["category"] != "member" || head.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected head %+v", head)
	}
	got, rc, err := st.Get(ctx, "member/01-20-2025_Member One_1.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "Member name: Member One\n" || got.ETag != head.ETag {
		t.Fatalf("unexpected object %q %+v", body, got)
	}

	if _, err := st.Head(ctx, "member/missing.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if _, _, err := st.Get(ctx, "member/missing.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}

	for _, k := range []string{"provider/b.txt", "provider/a.txt"} {
		if _, err := st.Put(ctx, k, bytes.NewReader([]byte(k)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := st.List(ctx, "provider/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "provider/a.txt" || list[1].Key != "provider/b.txt" {
		t.Fatalf("unexpected listing %+v", list)
	}
	all, err := st.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 objects, got %d (%v)", len(all), err)
	}

	if ok, err := st.Delete(ctx, "provider/a.txt"); err != nil || !ok {
		t.Fatalf("delete existing: %v %v", ok, err)
	}
	if ok, err := st.Delete(ctx, "provider/a.txt"); err != nil || ok {
		t.Fatalf("delete missing: %v %v", ok, err)
	}
}
