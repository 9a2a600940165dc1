package core

import (
	"context"
	"time"

	"chocan/internal/telemetry"
	"chocan/pkg/domain"
)

// The service's logging, metrics, tracing and clock contracts live in
// telemetry so the report engine can share them.
type (
	Logger          = telemetry.Logger
	MetricsRecorder = telemetry.MetricsRecorder
	Tracer          = telemetry.Tracer
	TraceSpan       = telemetry.TraceSpan
	Clock           = telemetry.Clock
	ClockFunc       = telemetry.ClockFunc
)

// AuditStatus is the outcome recorded for an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating service call.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	EntityID  uint32
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every mutating operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}
