package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a domain event through the job queue. River
// serializes it as JSON into its job table, so the worker never needs to
// query application tables.
type EventJobArgs struct {
	Type       string    `json:"type"`
	TenantID   string    `json:"tenant_id"`
	SubjectID  string    `json:"subject_id"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "domain.event" }

// Event converts the job arguments back into a domain event.
func (a EventJobArgs) Event() domain.Event {
	return domain.Event{
		Type:       domain.EventType(a.Type),
		TenantID:   a.TenantID,
		SubjectID:  a.SubjectID,
		From:       a.From,
		To:         a.To,
		Actor:      a.Actor,
		Reason:     a.Reason,
		OccurredAt: a.OccurredAt,
	}
}

func argsFromEvent(e domain.Event) EventJobArgs {
	return EventJobArgs{
		Type:       string(e.Type),
		TenantID:   e.TenantID,
		SubjectID:  e.SubjectID,
		From:       e.From,
		To:         e.To,
		Actor:      e.Actor,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a domain event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if _, err := p.client.Insert(ctx, argsFromEvent(event), nil); err != nil {
		return fmt.Errorf("enqueuing %s job: %w", event.Type, err)
	}
	return nil
}
