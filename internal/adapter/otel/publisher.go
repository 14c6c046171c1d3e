package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing
// and counts published events by type and outcome.
type TracingPublisher struct {
	next      domain.EventPublisher
	tracer    trace.Tracer
	published metric.Int64Counter
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	published, err := otel.Meter(tracerName).Int64Counter("wrkcopilot.events.published",
		metric.WithDescription("Domain events handed to the event publisher"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		otel.Handle(err)
		published = noop.Int64Counter{}
	}
	return &TracingPublisher{
		next:      next,
		tracer:    otel.Tracer(tracerName),
		published: published,
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event) (err error) {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event.Type)),
			attribute.String("event.subject_id", event.SubjectID),
			attribute.String("tenant.id", event.TenantID),
		),
	)
	defer func() {
		p.published.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event.type", string(event.Type)),
			attribute.Bool("error", err != nil),
		))
		finish(span, err)
	}()

	if event.To != "" {
		span.SetAttributes(attribute.String("event.to", event.To))
	}
	return p.next.Publish(ctx, event)
}

// TracingCatalog wraps a domain.CatalogProvider with OpenTelemetry tracing.
type TracingCatalog struct {
	next   domain.CatalogProvider
	tracer trace.Tracer
}

var _ domain.CatalogProvider = (*TracingCatalog)(nil)

// NewTracingCatalog creates a tracing decorator around the given provider.
func NewTracingCatalog(next domain.CatalogProvider) *TracingCatalog {
	return &TracingCatalog{next: next, tracer: otel.Tracer(tracerName)}
}

func (c *TracingCatalog) Catalog(ctx context.Context) (catalog domain.ActionCatalog, err error) {
	ctx, span := c.tracer.Start(ctx, "CatalogProvider.Catalog")
	defer func() { finish(span, err) }()

	catalog, err = c.next.Catalog(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("catalog.entries", len(catalog)))
	}
	return catalog, err
}
