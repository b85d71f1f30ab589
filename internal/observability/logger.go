// Package observability provides clockd's leveled logger, Prometheus and
// OpenTelemetry wiring, used by cmd/clockd and internal/api.
package observability

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents logging levels.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var (
	currentLogLevel = LogLevelInfo
	debugEnabled    = false
)

func init() {
	if os.Getenv("DEBUG") != "" || os.Getenv("CLOCKD_DEBUG") != "" {
		currentLogLevel = LogLevelDebug
		debugEnabled = true
		log.Println("debug logging enabled")
	}
}

// Debug logs debug-level messages (only if CLOCKD_DEBUG or DEBUG is set).
func Debug(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelDebug {
		logWithContext(ctx, "DEBUG", format, args...)
	}
}

// Info logs info-level messages.
func Info(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelInfo {
		logWithContext(ctx, "INFO", format, args...)
	}
}

// Warn logs warning-level messages.
func Warn(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelWarn {
		logWithContext(ctx, "WARN", format, args...)
	}
}

// Error logs error-level messages.
func Error(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelError {
		logWithContext(ctx, "ERROR", format, args...)
	}
}

// logWithContext logs with the current span's trace ID if one is present.
func logWithContext(ctx context.Context, level string, format string, args ...interface{}) {
	timestamp := time.Now().Format("2006/01/02 15:04:05.000")
	message := fmt.Sprintf(format, args...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		traceID := span.SpanContext().TraceID().String()
		log.Printf("%s [%s] [trace=%s] %s", timestamp, level, traceID[:8], message)
	} else {
		log.Printf("%s [%s] %s", timestamp, level, message)
	}
}

// LogRequest logs an incoming HTTP request.
func LogRequest(ctx context.Context, method, path string, params map[string]interface{}) {
	if debugEnabled {
		Debug(ctx, "-> request: %s %s params=%v", method, path, params)
	}
}

// LogResponse logs an outgoing HTTP response.
func LogResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if debugEnabled {
		Debug(ctx, "<- response: %s %s status=%d duration=%v", method, path, statusCode, duration)
	} else if statusCode >= 400 {
		Warn(ctx, "<- response: %s %s status=%d duration=%v", method, path, statusCode, duration)
	}
}

// LogError logs an error with its originating operation name.
func LogError(ctx context.Context, operation string, err error) {
	Error(ctx, "operation failed: %s error=%v", operation, err)
}

// IsDebugEnabled reports whether debug logging is enabled.
func IsDebugEnabled() bool {
	return debugEnabled
}

// ContextLogger adapts the package-level leveled logger to pkg/clock.Logger,
// so LiveClock's past-instant-promotion warnings and dropped-event errors
// flow through the same logging path as the rest of clockd. Ctx is fixed
// at construction since LiveClock's internal call sites don't carry one of
// their own.
type ContextLogger struct {
	Ctx context.Context
}

// Warnf implements pkg/clock.Logger.
func (l ContextLogger) Warnf(format string, args ...any) {
	Warn(l.ctxOrBackground(), format, args...)
}

// Errorf implements pkg/clock.Logger.
func (l ContextLogger) Errorf(format string, args ...any) {
	Error(l.ctxOrBackground(), format, args...)
}

func (l ContextLogger) ctxOrBackground() context.Context {
	if l.Ctx != nil {
		return l.Ctx
	}
	return context.Background()
}
