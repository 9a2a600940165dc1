package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"chocan/internal/core"
	"chocan/pkg/domain"
)

func TestZerologLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	zl, err := NewZerolog(&buf, "debug", false)
	if err != nil {
		t.Fatalf("new zerolog: %v", err)
	}
	NewZerologLogger(zl).Info("chocan operation completed", "operation", "add_member", "id", uint32(5))
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %s: %v", buf.String(), err)
	}
	if line["message"] != "chocan operation completed" || line["operation"] != "add_member" || line["id"] != float64(5) || line["level"] != "info" {
		t.Fatalf("unexpected line %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("missing timestamp")
	}
}

func TestZerologLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	zl, err := NewZerolog(&buf, "WARN", false)
	if err != nil {
		t.Fatalf("new zerolog: %v", err)
	}
	l := NewZerologLogger(zl)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "error", errors.New("boom"))
	if strings.Count(buf.String(), "\n") != 1 || !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if _, err := NewZerolog(&buf, "shouty", false); err == nil {
		t.Fatalf("expected bad level error")
	}
}

func TestAuditLoggerRecordsEntry(t *testing.T) {
	var buf bytes.Buffer
	zl, _ := NewZerolog(&buf, "", false)
	NewAuditLogger(zl).Record(context.Background(), core.AuditEntry{
		Operation: "remove_member",
		Entity:    domain.EntityMember,
		EntityID:  555000111,
		Status:    core.AuditStatusError,
		Error:     "not found",
		Timestamp: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	out := buf.String()
	for _, want := range []string{`"stream":"audit"`, `"operation":"remove_member"`, `"entity_id":555000111`, `"status":"error"`, `"error":"not found"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "add_member", true, 2*time.Millisecond)
	rec.Observe(ctx, "add_member", true, time.Millisecond)
	rec.Observe(ctx, "add_member", false, time.Millisecond)
	if got := promtest.ToFloat64(rec.ops.WithLabelValues("add_member", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := promtest.ToFloat64(rec.ops.WithLabelValues("add_member", "error")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if n := promtest.CollectAndCount(rec.duration); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

type recSpan struct {
	noop.Span
	name   string
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }
func (s *recSpan) SetStatus(c codes.Code, _ string)              { s.status = c }
func (s *recSpan) End(...trace.SpanEndOption)                    { s.ended = true }

type recTracer struct {
	noop.Tracer
	spans []*recSpan
}

func (t *recTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recSpan{name: name}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recProvider struct {
	noop.TracerProvider
	t *recTracer
}

func (p recProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.t }

func TestOTelTracerSetsStatus(t *testing.T) {
	rt := &recTracer{}
	tr := NewOTelTracer(recProvider{t: rt})
	ctx, span := tr.Start(context.Background(), "member_reports")
	if trace.SpanFromContext(ctx) != trace.Span(rt.spans[0]) {
		t.Fatalf("span not attached to context")
	}
	span.End(nil)
	_, span = tr.Start(context.Background(), "record_consultation")
	span.End(errors.New("member is not active"))

	if rt.spans[0].name != "member_reports" || rt.spans[0].status != codes.Ok || !rt.spans[0].ended {
		t.Fatalf("unexpected ok span %+v", rt.spans[0])
	}
	if rt.spans[1].status != codes.Error || len(rt.spans[1].errs) != 1 || !rt.spans[1].ended {
		t.Fatalf("unexpected error span %+v", rt.spans[1])
	}
}

func TestOTelTracerDrivesService(t *testing.T) {
	rt := &recTracer{}
	svc := core.NewInMemoryService(core.WithTracer(NewOTelTracer(recProvider{t: rt})))
	if err := svc.AddService(context.Background(), 1, "Therapy", 10); err != nil {
		t.Fatalf("add service: %v", err)
	}
	if len(rt.spans) != 1 || rt.spans[0].name != "add_service" {
		t.Fatalf("unexpected spans %+v", rt.spans)
	}
	// The global provider is a no-op until one is installed.
	_, span := NewOTelTracer(nil).Start(context.Background(), "noop")
	span.End(nil)
}
