package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Bucanero06/nautilus-clock/internal/api"
	"github.com/Bucanero06/nautilus-clock/internal/config"
	"github.com/Bucanero06/nautilus-clock/internal/middleware"
	"github.com/Bucanero06/nautilus-clock/internal/observability"
	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

var (
	version = "dev"
	commit  = "unknown"
	tracer  oteltrace.Tracer
)

func main() {
	configPath := flag.String("config", "", "path to clockd config file (yaml/json/toml, viper-compatible)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdownTracer := observability.InitOpenTelemetryOrNoop(ctx, "clockd", version)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Printf("error shutting down tracer: %v", err)
		}
	}()
	tracer = observability.Tracer

	if err := observability.InitMetrics(); err != nil {
		log.Printf("warning: failed to initialize metrics: %v", err)
	} else {
		log.Println("metrics initialized")
	}

	c := newClock(cfg.Clock)
	log.Printf("clock initialized: mode=%s", cfg.Clock.Mode)

	// A default handler must exist before any timer can be installed
	// (SetTimer/SetAlert reject an undeliverable registration), and the
	// manifest below installs timers with no per-call callback of its
	// own. POST /api/timers/default-handler can still replace this once
	// the server is serving.
	c.RegisterDefaultHandler(clock.CallbackFunc(func(ev clock.TimeEvent) {
		observability.Debug(context.Background(), "clock: dispatched %s id=%s ts_event=%d", ev.Name, ev.ID, ev.TsEvent)
	}))

	if cfg.Manifest.Path != "" {
		results, err := api.InstallManifest(c, afero.NewOsFs(), cfg.Manifest.Path)
		if err != nil {
			log.Fatalf("failed to install timer manifest %s: %v", cfg.Manifest.Path, err)
		}
		log.Printf("manifest %s installed: %d/%d timers succeeded", cfg.Manifest.Path, results.Succeeded, results.Total)
		for _, r := range results.Results {
			if r.Error != "" {
				log.Printf("manifest timer %s failed: %s", r.Name, r.Error)
			}
		}
	}

	mux := api.NewRouter(c, cfg.Clock.Mode, tracer)
	bodyLimit := middleware.BodyLimitMiddleware(int64(cfg.HTTP.MaxBodyBytes))
	handler := withLogging(withCORS(bodyLimit(mux)))

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:        handler,
		ReadTimeout:    time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.HTTP.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("clockd %s (%s) starting on http://localhost%s\n", version, commit, server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	log.Println("server stopped gracefully")
}

// newClock builds the Clock implementation selected by cfg.Mode. "live"
// drives timers off the real system clock; anything else (including the
// default "sim") starts a SimClock at time zero; the HTTP API has no
// route that advances it, so only an embedding host can.
func newClock(cfg config.ClockConfig) clock.Clock {
	switch cfg.Mode {
	case "live":
		return clock.NewLiveClock(observability.ContextLogger{})
	default:
		c := clock.NewSimClock(0)
		c.SetLogger(observability.ContextLogger{})
		return c
	}
}

// withCORS allows clockd's HTTP API to be called from browser-based
// backtest dashboards and notebook frontends during development.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging spans and logs every request, mirroring the handler-level
// spans clock_handlers.go starts for individual clock operations.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		if tracer != nil {
			var span oteltrace.Span
			ctx, span = tracer.Start(ctx, r.Method+" "+r.URL.Path,
				oteltrace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.Path),
					attribute.String("http.user_agent", r.UserAgent()),
				),
			)
			defer span.End()
			r = r.WithContext(ctx)
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		if tracer != nil {
			span := oteltrace.SpanFromContext(ctx)
			span.SetAttributes(
				attribute.Int("http.status_code", wrapped.statusCode),
				attribute.Int64("http.response_time_ms", time.Since(start).Milliseconds()),
			)
		}

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging/tracing.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
