package observability

import (
	"context"
	"log"
	"sync"
	"time"
)

// DispatchRecord is a single dispatched-event observation queued for
// async span emission, so the goroutine that calls Emit never blocks on
// trace export. Nothing in pkg/clock calls it.
type DispatchRecord struct {
	ClockKind string
	Timer     string
	TsEvent   uint64
	EmittedAt time.Time
	Resolved  bool
}

// AsyncEmitter buffers dispatch observations and emits their spans on
// a background goroutine.
type AsyncEmitter struct {
	buffer chan DispatchRecord
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewAsyncEmitter creates a new async dispatch-span emitter.
func NewAsyncEmitter(bufferSize int) *AsyncEmitter {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncEmitter{
		buffer: make(chan DispatchRecord, bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the background worker that exports spans.
func (e *AsyncEmitter) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case rec := <-e.buffer:
				e.emit(rec)
			case <-e.ctx.Done():
				e.drainBuffer()
				return
			}
		}
	}()
}

// Emit queues a dispatch observation for async span emission. Non-blocking:
// if the buffer is full, the observation is dropped with a log line rather
// than stalling the goroutine that called it.
func (e *AsyncEmitter) Emit(rec DispatchRecord) {
	select {
	case e.buffer <- rec:
	default:
		log.Printf("dispatch span buffer full, dropping observation: clock=%s timer=%s", rec.ClockKind, rec.Timer)
	}
}

// Stop gracefully shuts down the emitter, draining the buffer.
func (e *AsyncEmitter) Stop() {
	e.cancel()
	e.wg.Wait()
}

func (e *AsyncEmitter) drainBuffer() {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case rec := <-e.buffer:
			e.emit(rec)
		case <-timeout:
			if remaining := len(e.buffer); remaining > 0 {
				log.Printf("timed out draining dispatch spans, %d observations dropped", remaining)
			}
			return
		default:
			return
		}
	}
}

func (e *AsyncEmitter) emit(rec DispatchRecord) {
	ctx, span := StartDispatchSpan(context.Background(), rec.ClockKind, rec.Timer, rec.TsEvent)
	RecordDispatchResult(ctx, span, rec.ClockKind, rec.EmittedAt, rec.Resolved)
	span.End()
}

// BufferSize returns the current number of buffered observations.
func (e *AsyncEmitter) BufferSize() int {
	return len(e.buffer)
}

// BufferCapacity returns the maximum buffer capacity.
func (e *AsyncEmitter) BufferCapacity() int {
	return cap(e.buffer)
}
