package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"chocan/internal/telemetry"
	"chocan/pkg/domain"
	"chocan/testutil"
)

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureLogger struct {
	debugs int
	errors int
}

func (l *captureLogger) Debug(string, ...any) { l.debugs++ }
func (l *captureLogger) Info(string, ...any)  {}
func (l *captureLogger) Warn(string, ...any)  {}
func (l *captureLogger) Error(string, ...any) { l.errors++ }

var fixedNow = time.Date(2025, time.January, 20, 9, 30, 15, 0, time.UTC)

func seededService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return fixedNow }))}, opts...)
	svc := NewInMemoryService(opts...)
	ctx := context.Background()
	if err := svc.AddMember(ctx, testutil.Person(1, "Member One")); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := svc.AddProvider(ctx, testutil.Person(61, "Provider")); err != nil {
		t.Fatalf("add provider: %v", err)
	}
	if err := svc.AddService(ctx, 123456, "ServiceName123456", 99.99); err != nil {
		t.Fatalf("add service: %v", err)
	}
	return svc
}

func TestRecordConsultationStampsCaptureTime(t *testing.T) {
	svc := seededService(t)
	c, err := svc.RecordConsultation(context.Background(), ConsultationRequest{
		ServiceDate: "01-19-2025", ProviderID: 61, MemberID: 1, ServiceCode: 123456, Comments: "follow-up",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if c.CapturedAt != "01-20-2025 09:30:15" {
		t.Fatalf("unexpected capture stamp %q", c.CapturedAt)
	}
	list, err := svc.ListConsultations(context.Background())
	if err != nil || len(list) != 1 || list[0] != c {
		t.Fatalf("expected stored consultation, got %v %v", list, err)
	}
}

func TestRecordConsultationGates(t *testing.T) {
	ctx := context.Background()
	svc := seededService(t)
	if err := svc.SuspendMember(ctx, 1); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	cases := []struct {
		name string
		req  ConsultationRequest
		want error
	}{
		{"unknown provider", ConsultationRequest{ServiceDate: "01-19-2025", ProviderID: 99, MemberID: 1, ServiceCode: 123456}, ErrProviderIneligible},
		{"suspended member", ConsultationRequest{ServiceDate: "01-19-2025", ProviderID: 61, MemberID: 1, ServiceCode: 123456}, ErrMemberIneligible},
	}
	for _, tc := range cases {
		if _, err := svc.RecordConsultation(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if err := svc.ReinstateMember(ctx, 1); err != nil {
		t.Fatalf("reinstate: %v", err)
	}
	if _, err := svc.RecordConsultation(ctx, ConsultationRequest{ServiceDate: "01-19-2025", ProviderID: 61, MemberID: 1, ServiceCode: 7}); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected unknown service, got %v", err)
	}
	if _, err := svc.RecordConsultation(ctx, ConsultationRequest{ServiceDate: "13-01-2025", ProviderID: 61, MemberID: 1, ServiceCode: 123456}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	list, _ := svc.ListConsultations(ctx)
	if len(list) != 0 {
		t.Fatalf("gated consultations were stored: %v", list)
	}
}

func TestServiceObservability(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	var traceOut bytes.Buffer
	tracer := telemetry.NewJSONTracer(&traceOut)
	logger := &captureLogger{}
	svc := seededService(t, WithAuditRecorder(audit), WithMetricsRecorder(metrics), WithTracer(tracer), WithLogger(logger))

	if err := svc.RemoveMember(ctx, 555000111); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ok, err := svc.ValidateProvider(ctx, 61); err != nil || !ok {
		t.Fatalf("validate provider: %v %v", ok, err)
	}

	if !audit.has("add_member", AuditStatusSuccess) || !audit.has("remove_member", AuditStatusError) {
		t.Fatalf("missing audit entries: %+v", audit.entries)
	}
	for _, e := range audit.entries {
		if e.Operation == "validate_provider" {
			t.Fatalf("read operations should not be audited")
		}
		if !e.Timestamp.Equal(fixedNow) {
			t.Fatalf("audit timestamp should come from the clock, got %v", e.Timestamp)
		}
	}
	if !metrics.has("remove_member", false) || !metrics.has("validate_provider", true) {
		t.Fatalf("missing metrics: %+v", metrics.calls)
	}
	if logger.errors != 1 || logger.debugs == 0 {
		t.Fatalf("unexpected log counts debug=%d error=%d", logger.debugs, logger.errors)
	}

	var failed bool
	for _, e := range tracer.Entries() {
		if e.Operation == "remove_member" && e.Status == "error" && strings.Contains(e.Error, "not found") {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("expected failed remove_member span, got %+v", tracer.Entries())
	}
	line, err := traceOut.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read trace line: %v", err)
	}
	var first telemetry.JSONTraceEntry
	if err := json.Unmarshal(line, &first); err != nil || first.Operation != "add_member" {
		t.Fatalf("unexpected first trace line %s: %v", line, err)
	}
}

func TestNilOptionsKeepDefaults(t *testing.T) {
	svc := NewInMemoryService(WithLogger(nil), WithClock(nil), WithMetricsRecorder(nil), WithTracer(nil), WithAuditRecorder(nil), nil)
	if err := svc.AddService(context.Background(), 1, "Therapy", 10); err != nil {
		t.Fatalf("add service: %v", err)
	}
	if got := ClockFunc(nil).Now(); got.IsZero() {
		t.Fatalf("nil clock func should read the wall clock")
	}
}
