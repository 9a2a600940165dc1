package s3

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"chocan/internal/blob/blobtest"
	"chocan/internal/blob/core"
)

func newMockStore(t *testing.T, rt *MockTransport) *Store {
	t.Helper()
	st, err := New(context.Background(), Config{
		Bucket:          "chocan-reports",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return st
}

func TestStoreContract(t *testing.T) {
	blobtest.RunStoreContract(t, NewMockForTests())
}

func TestListFollowsContinuationTokens(t *testing.T) {
	rt := NewMockTransport()
	rt.PageSize = 1
	st := newMockStore(t, rt)
	ctx := context.Background()
	for _, k := range []string{"member/c.txt", "member/a.txt", "member/b.txt"} {
		if _, err := st.Put(ctx, k, bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := st.List(ctx, "member/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Key != "member/a.txt" || list[2].Key != "member/c.txt" {
		t.Fatalf("unexpected listing %+v", list)
	}
	if keys := rt.Keys(); len(keys) != 3 {
		t.Fatalf("unexpected bucket contents %v", keys)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
	st := NewMockForTests()
	if st.Bucket() != "chocan-reports" || st.Driver() != core.DriverS3 {
		t.Fatalf("unexpected store %s %s", st.Bucket(), st.Driver())
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	if _, err := NewMockForTests().Put(context.Background(), "", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}
