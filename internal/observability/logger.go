// Package observability adapts third-party logging, metrics and tracing
// libraries to the service and report engine hooks.
package observability

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chocan/internal/core"
)

// NewZerolog builds the process logger: JSON lines with a timestamp, or a
// console writer in development.
func NewZerolog(w io.Writer, level string, dev bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ZerologLogger satisfies core.Logger. Arguments are key/value pairs.
type ZerologLogger struct {
	l zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(l zerolog.Logger) *ZerologLogger { return &ZerologLogger{l: l} }

func (z *ZerologLogger) Debug(msg string, args ...any) { z.l.Debug().Fields(args).Msg(msg) }
func (z *ZerologLogger) Info(msg string, args ...any)  { z.l.Info().Fields(args).Msg(msg) }
func (z *ZerologLogger) Warn(msg string, args ...any)  { z.l.Warn().Fields(args).Msg(msg) }
func (z *ZerologLogger) Error(msg string, args ...any) { z.l.Error().Fields(args).Msg(msg) }

// AuditLogger writes audit entries as info lines on a dedicated logger.
type AuditLogger struct {
	l zerolog.Logger
}

var _ core.AuditRecorder = (*AuditLogger)(nil)

func NewAuditLogger(l zerolog.Logger) *AuditLogger {
	return &AuditLogger{l: l.With().Str("stream", "audit").Logger()}
}

func (a *AuditLogger) Record(_ context.Context, e core.AuditEntry) {
	ev := a.l.Info().
		Str("operation", e.Operation).
		Str("entity", string(e.Entity)).
		Uint32("entity_id", e.EntityID).
		Str("status", string(e.Status)).
		Dur("duration", e.Duration).
		Time("at", e.Timestamp)
	if e.Error != "" {
		ev = ev.Str("error", e.Error)
	}
	ev.Msg("audit")
}
