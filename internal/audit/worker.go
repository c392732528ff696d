package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Worker drains events from a buffered channel into a Sink on its own goroutine.
type Worker struct {
	eventCh chan Event
	sink    Sink
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWorker(sink Sink, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan Event, bufferSize),
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *Worker) Start() {
	w.wg.Go(func() {
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("draining audit events before shutdown", "remaining_events", len(w.eventCh))
				for len(w.eventCh) > 0 {
					event := <-w.eventCh
					if err := w.sink.SaveEvent(context.Background(), event); err != nil {
						slog.Error("failed to save audit event during shutdown", "error", err, "event_type", event.Type)
					}
				}
				return
			case event := <-w.eventCh:
				if err := w.sink.SaveEvent(w.ctx, event); err != nil {
					slog.Error("failed to save audit event", "error", err, "event_type", event.Type)
				}
			}
		}
	})
}

// Log enqueues an event. It never blocks: when the buffer is full the event is dropped.
func (w *Worker) Log(event Event) {
	select {
	case w.eventCh <- event:
	default:
		slog.Warn("audit channel full, dropping event", "event_type", event.Type)
	}
}

// Shutdown stops the worker after persisting every buffered event.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
