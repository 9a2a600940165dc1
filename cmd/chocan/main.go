// Command chocan maintains the ChocAn member, provider and service records,
// records consultations and runs the weekly reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chocan/internal/config"
	"chocan/internal/core"
	"chocan/internal/observability"
	"chocan/internal/report"
	"chocan/internal/sink"
	"chocan/internal/telemetry"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one command line and closes whatever it opened, including
// after a failed command.
func run(ctx context.Context, args []string, out, logOut io.Writer) error {
	a := &app{logOut: logOut}
	root := newRootCmd(a, out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

// app holds what a single command invocation opens.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	reg       *prometheus.Registry
	expvar    *telemetry.ExpvarMetricsRecorder
	traceFile *os.File
	svc       *core.Service
	sink      sink.Sink
	engine    *report.Engine
	logOut    io.Writer
	cfgFile   string
}

func newRootCmd(a *app, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "chocan",
		Short:        "ChocAn consultation records and reports",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(a.logOut)
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "env-style config file (default .env)")

	root.AddCommand(
		personCmd(a, "member"),
		personCmd(a, "provider"),
		serviceCmd(a),
		consultationCmd(a),
		reportCmd(a),
		seedCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log, err = observability.NewZerolog(a.logOut, cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return err
	}
	metrics, err := a.newMetrics(cfg.MetricsBackend)
	if err != nil {
		return err
	}
	tracer, err := a.newTracer(cfg.TraceBackend, cfg.TraceFile)
	if err != nil {
		return err
	}
	logger := observability.NewZerologLogger(a.log)

	// A store that cannot initialise its schema is fatal for the process.
	store, err := core.OpenRecordStore(ctx, cfg.Storage())
	if err != nil {
		a.log.Error().Err(err).Str("driver", cfg.StorageDriver).Msg("open record store")
		return err
	}
	a.svc = core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithTracer(tracer),
		core.WithAuditRecorder(observability.NewAuditLogger(a.log)),
	)

	a.sink, err = sink.Open(ctx, cfg.Sink())
	if err != nil {
		return err
	}
	opts := append(cfg.ReportOptions(),
		report.WithLogger(logger),
		report.WithMetricsRecorder(metrics),
		report.WithTracer(tracer),
	)
	a.engine, err = report.NewEngine(store, a.sink, opts...)
	if err != nil {
		return err
	}
	return nil
}

func (a *app) newMetrics(backend string) (core.MetricsRecorder, error) {
	if backend == config.MetricsExpvar {
		a.expvar = telemetry.NewExpvarMetricsRecorder("")
		return a.expvar, nil
	}
	a.reg = prometheus.NewRegistry()
	rec, err := observability.NewPrometheusRecorder(a.reg)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// newTracer returns the otel tracer, or JSON spans written to file (the log
// stream when file is empty).
func (a *app) newTracer(backend, file string) (core.Tracer, error) {
	if backend != config.TraceJSON {
		return observability.NewOTelTracer(nil), nil
	}
	w := a.logOut
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		a.traceFile = f
		w = f
	}
	return telemetry.NewJSONTracer(w), nil
}

func (a *app) close() error {
	var errs []error
	if a.sink != nil {
		errs = append(errs, a.sink.Close())
		a.sink = nil
	}
	if a.svc != nil {
		errs = append(errs, a.svc.Close())
		a.svc = nil
	}
	a.logMetrics()
	if a.traceFile != nil {
		errs = append(errs, a.traceFile.Close())
		a.traceFile = nil
	}
	return errors.Join(errs...)
}

// logMetrics writes the run's operation counters at debug level.
func (a *app) logMetrics() {
	if a.expvar != nil {
		for op, st := range a.expvar.Snapshot() {
			a.log.Debug().Str("operation", op).Int64("successes", st.Successes).
				Int64("failures", st.Failures).Float64("total_ms", st.TotalMS).Msg("operation count")
		}
		return
	}
	if a.reg == nil {
		return
	}
	families, err := a.reg.Gather()
	if err != nil {
		a.log.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		if mf.GetName() != "chocan_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			ev := a.log.Debug()
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			ev.Float64("count", m.GetCounter().GetValue()).Msg("operation count")
		}
	}
}
