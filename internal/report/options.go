package report

import (
	"time"

	"chocan/internal/telemetry"
)

// The engine shares the service's observability contracts so one set of
// adapters serves both.
type (
	Logger          = telemetry.Logger
	MetricsRecorder = telemetry.MetricsRecorder
	Tracer          = telemetry.Tracer
	TraceSpan       = telemetry.TraceSpan
	Clock           = telemetry.Clock
)

// Defaults applied by NewEngine.
const (
	DefaultSender         = "testing@chocan.com"
	DefaultManagerAddress = "manager@pdx.edu"
	DefaultManagerName    = "ManagerName"
	DefaultDirectoryName  = "ProviderName"
	DefaultRecencyDays    = 7
)

type engineOptions struct {
	sender         string
	managerAddress string
	managerName    string
	recencyDays    int
	providerTotals bool
	policy         Policy
	location       *time.Location
	clock          Clock
	logger         Logger
	metrics        MetricsRecorder
	tracer         Tracer
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		sender:         DefaultSender,
		managerAddress: DefaultManagerAddress,
		managerName:    DefaultManagerName,
		recencyDays:    DefaultRecencyDays,
		providerTotals: true,
		policy:         FailFast,
		location:       time.Local,
		clock:          telemetry.ClockFunc(nil),
		logger:         telemetry.NopLogger{},
		metrics:        telemetry.NopMetrics{},
		tracer:         telemetry.NopTracer{},
	}
}

// Option customises an Engine.
type Option func(*engineOptions)

// WithSender sets the From address on every document.
func WithSender(addr string) Option {
	return func(o *engineOptions) {
		if addr != "" {
			o.sender = addr
		}
	}
}

// WithManager sets the manager report recipient.
func WithManager(addr, name string) Option {
	return func(o *engineOptions) {
		if addr != "" {
			o.managerAddress = addr
		}
		if name != "" {
			o.managerName = name
		}
	}
}

// WithRecencyWindow sets how many days back member and provider reports
// reach. Negative values are ignored.
func WithRecencyWindow(days int) Option {
	return func(o *engineOptions) {
		if days >= 0 {
			o.recencyDays = days
		}
	}
}

// WithProviderTotals toggles the consultation count and fee footer.
func WithProviderTotals(enabled bool) Option {
	return func(o *engineOptions) { o.providerTotals = enabled }
}

// WithPolicy selects the missing-reference policy.
func WithPolicy(p Policy) Option {
	return func(o *engineOptions) { o.policy = p }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(o *engineOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithClock sets the clock used for the recency cutoff and GeneratedAt.
func WithClock(c Clock) Option {
	return func(o *engineOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the engine logger. Nil keeps the no-op logger.
func WithLogger(l Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsRecorder observes each report run and each delivery.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *engineOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer opens one span per report run.
func WithTracer(t Tracer) Option {
	return func(o *engineOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}
