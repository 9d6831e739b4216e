package worker

import (
	"context"
	"log/slog"

	audit "recordgate/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Append errors
// are logged and the loop keeps going; audit delivery must not stall callers.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until it is closed or ctx is cancelled. When the inbox
// is closed every buffered event has been appended before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"event_id", event.ID,
					"event_type", event.EventType,
					"error", err,
				)
			}
		}
	}
}
