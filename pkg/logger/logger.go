package logger

import (
	"context"
	"io"
	"os"
	"time"

	"attendance.service/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Setup configures the global zerolog logger. Every line carries the
// service name so api and worker output can share one sink.
func Setup(service string, isLocalDev bool) {
	// Use Unix timestamps for performance and consistency
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if isLocalDev {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = newLogger(os.Stderr, service, isLocalDev)
}

func newLogger(w io.Writer, service string, isLocalDev bool) zerolog.Logger {
	if isLocalDev {
		// Pretty printing for local development
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// EnrichContextWithLogger adds a zerolog logger to the context carrying the
// trace ids of the active span and the user id the request or message is about.
func EnrichContextWithLogger(ctx context.Context) context.Context {
	lc := log.With()
	enriched := false

	if sCtx := trace.SpanFromContext(ctx).SpanContext(); sCtx.HasTraceID() {
		lc = lc.Str("trace_id", sCtx.TraceID().String()).
			Str("span_id", sCtx.SpanID().String())
		enriched = true
	}
	if userID := telemetry.GetUserIDFromContext(ctx); userID != "" {
		lc = lc.Str("userId", userID)
		enriched = true
	}
	if !enriched {
		return ctx
	}

	l := lc.Logger()
	return l.WithContext(ctx)
}
