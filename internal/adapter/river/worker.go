package river

import (
	"context"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// Handler receives every event the worker processes.
type Handler func(ctx context.Context, event domain.Event) error

// EventWorker processes domain event jobs from the River queue. It logs
// each event and hands it to the registered handlers in order; a handler
// error fails the job so River retries it.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]

	logger   *zap.Logger
	handlers []Handler
}

// NewEventWorker creates a worker that logs through logger.
func NewEventWorker(logger *zap.Logger, handlers ...Handler) *EventWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventWorker{logger: logger, handlers: handlers}
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	event := job.Args.Event()
	w.logger.Info("processing event",
		zap.String("event", string(event.Type)),
		zap.String("tenant_id", event.TenantID),
		zap.String("subject_id", event.SubjectID),
		zap.String("to", event.To),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
	)

	for _, h := range w.handlers {
		if err := h(ctx, event); err != nil {
			w.logger.Warn("event handler failed",
				zap.String("event", string(event.Type)),
				zap.Int64("job_id", job.ID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
