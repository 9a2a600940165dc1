package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "chocan_metrics_") {
		t.Fatalf("unexpected name %s", rec.Name())
	}
	ctx := context.Background()
	rec.Observe(ctx, "add_member", true, 2*time.Millisecond)
	rec.Observe(ctx, "add_member", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)
	snap := rec.Snapshot()
	st := snap["add_member"]
	if st.Successes != 1 || st.Failures != 1 || st.TotalMS != 7 || st.MaxMS != 5 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if len(snap) != 1 {
		t.Fatalf("empty operation should be ignored: %+v", snap)
	}
}

func TestJSONTracerWritesAndRetainsSpans(t *testing.T) {
	var out bytes.Buffer
	tracer := NewJSONTracer(&out)
	_, span := tracer.Start(context.Background(), "member_reports")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "manager_report")
	span.End(errors.New("sink down"))

	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Status != "ok" || entries[1].Status != "error" || entries[1].Error != "sink down" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	line, err := out.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read trace line: %v", err)
	}
	var first JSONTraceEntry
	if err := json.Unmarshal(line, &first); err != nil || first.Operation != "member_reports" {
		t.Fatalf("unexpected first line %s: %v", line, err)
	}
	if len(NewJSONTracer(nil).Entries()) != 0 {
		t.Fatal("new tracer should be empty")
	}
}

func TestNopsAndClock(t *testing.T) {
	ctx := context.Background()
	NopLogger{}.Info("ignored", "k", "v")
	NopMetrics{}.Observe(ctx, "op", true, time.Second)
	got, span := NopTracer{}.Start(ctx, "op")
	span.End(nil)
	if got != ctx {
		t.Fatal("nop tracer should return the caller's context")
	}
	if ClockFunc(nil).Now().IsZero() {
		t.Fatal("nil clock func should read the wall clock")
	}
	fixed := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	if !ClockFunc(func() time.Time { return fixed }).Now().Equal(fixed) {
		t.Fatal("clock func should return its time")
	}
}
