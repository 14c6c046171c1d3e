package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"
)

// eventWorkers bounds concurrent event deliveries. SQLite serialises
// writers, so more would only queue on the connection.
const eventWorkers = 2

// Setup brings the job tables up to date and returns a client that delivers
// lifecycle events to worker. The client is not started.
func Setup(ctx context.Context, db *sql.DB, logger *zap.Logger, worker *EventWorker) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if worker == nil {
		worker = NewEventWorker(logger)
	}
	driver := riversqlite.New(db)

	if err := migrateJobTables(ctx, driver, logger); err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: eventWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating job client: %w", err)
	}
	return client, nil
}

// migrateJobTables applies the queue's own schema next to the application
// tables.
func migrateJobTables(ctx context.Context, driver *riversqlite.Driver, logger *zap.Logger) error {
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return fmt.Errorf("creating job migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("migrating job tables: %w", err)
	}

	applied := make([]int, 0, len(res.Versions))
	for _, v := range res.Versions {
		applied = append(applied, v.Version)
	}
	if len(applied) == 0 {
		logger.Debug("job tables up to date")
		return nil
	}
	logger.Info("job tables migrated", zap.Ints("versions", applied))
	return nil
}
