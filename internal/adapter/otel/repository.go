package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

const tracerName = "github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/otel"

// finish records err on span, if any, and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracingAutomationRepository wraps a domain.AutomationRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingAutomationRepository struct {
	next   domain.AutomationRepository
	tracer trace.Tracer
}

var _ domain.AutomationRepository = (*TracingAutomationRepository)(nil)

// NewTracingAutomationRepository creates a tracing decorator around the given repository.
func NewTracingAutomationRepository(next domain.AutomationRepository) *TracingAutomationRepository {
	return &TracingAutomationRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingAutomationRepository) Create(ctx context.Context, v domain.AutomationVersion) (err error) {
	ctx, span := r.tracer.Start(ctx, "AutomationRepository.Create",
		trace.WithAttributes(
			attribute.String("automation_version.id", v.ID),
			attribute.String("tenant.id", v.TenantID),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Create(ctx, v)
}

func (r *TracingAutomationRepository) GetByID(ctx context.Context, id string) (v domain.AutomationVersion, err error) {
	ctx, span := r.tracer.Start(ctx, "AutomationRepository.GetByID",
		trace.WithAttributes(attribute.String("automation_version.id", id)),
	)
	defer func() { finish(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingAutomationRepository) List(ctx context.Context, filter domain.ListFilter) (versions []domain.AutomationVersion, err error) {
	ctx, span := r.tracer.Start(ctx, "AutomationRepository.List",
		trace.WithAttributes(
			attribute.String("filter.tenant_id", filter.TenantID),
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer func() { finish(span, err) }()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	versions, err = r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(versions)))
	}
	return versions, err
}

func (r *TracingAutomationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LifecycleStatus) (err error) {
	ctx, span := r.tracer.Start(ctx, "AutomationRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("automation_version.id", id),
			attribute.String("status.from", string(from)),
			attribute.String("status.to", string(to)),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.UpdateStatus(ctx, id, from, to)
}

func (r *TracingAutomationRepository) HasEarlierVersions(ctx context.Context, tenantID, versionID string) (has bool, err error) {
	ctx, span := r.tracer.Start(ctx, "AutomationRepository.HasEarlierVersions",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("automation_version.id", versionID),
		),
	)
	defer func() {
		span.SetAttributes(attribute.Bool("result.exists", has))
		finish(span, err)
	}()

	return r.next.HasEarlierVersions(ctx, tenantID, versionID)
}

// TracingQuoteRepository wraps a domain.QuoteRepository with OpenTelemetry tracing.
type TracingQuoteRepository struct {
	next   domain.QuoteRepository
	tracer trace.Tracer
}

var _ domain.QuoteRepository = (*TracingQuoteRepository)(nil)

// NewTracingQuoteRepository creates a tracing decorator around the given repository.
func NewTracingQuoteRepository(next domain.QuoteRepository) *TracingQuoteRepository {
	return &TracingQuoteRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingQuoteRepository) Create(ctx context.Context, q domain.Quote) (err error) {
	ctx, span := r.tracer.Start(ctx, "QuoteRepository.Create",
		trace.WithAttributes(
			attribute.String("quote.id", q.ID),
			attribute.String("automation_version.id", q.AutomationVersionID),
			attribute.Int("quote.discounts", len(q.DiscountsApplied)),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Create(ctx, q)
}

func (r *TracingQuoteRepository) GetByID(ctx context.Context, id string) (q domain.Quote, err error) {
	ctx, span := r.tracer.Start(ctx, "QuoteRepository.GetByID",
		trace.WithAttributes(attribute.String("quote.id", id)),
	)
	defer func() { finish(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingQuoteRepository) Latest(ctx context.Context, versionID string) (q domain.Quote, err error) {
	ctx, span := r.tracer.Start(ctx, "QuoteRepository.Latest",
		trace.WithAttributes(attribute.String("automation_version.id", versionID)),
	)
	defer func() { finish(span, err) }()

	return r.next.Latest(ctx, versionID)
}

func (r *TracingQuoteRepository) UpdateStatus(ctx context.Context, id string, from, to domain.QuoteStatus) (err error) {
	ctx, span := r.tracer.Start(ctx, "QuoteRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("quote.id", id),
			attribute.String("status.from", string(from)),
			attribute.String("status.to", string(to)),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.UpdateStatus(ctx, id, from, to)
}

func (r *TracingQuoteRepository) Sign(ctx context.Context, id string, offerIDs []string, at time.Time) (err error) {
	ctx, span := r.tracer.Start(ctx, "QuoteRepository.Sign",
		trace.WithAttributes(
			attribute.String("quote.id", id),
			attribute.Int("quote.offers", len(offerIDs)),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Sign(ctx, id, offerIDs, at)
}

// TracingDiscountRepository wraps a domain.DiscountRepository with OpenTelemetry tracing.
// Codes are never recorded as attributes.
type TracingDiscountRepository struct {
	next   domain.DiscountRepository
	tracer trace.Tracer
}

var _ domain.DiscountRepository = (*TracingDiscountRepository)(nil)

// NewTracingDiscountRepository creates a tracing decorator around the given repository.
func NewTracingDiscountRepository(next domain.DiscountRepository) *TracingDiscountRepository {
	return &TracingDiscountRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingDiscountRepository) ListByVersion(ctx context.Context, versionID string) (offers []domain.DiscountOffer, err error) {
	ctx, span := r.tracer.Start(ctx, "DiscountRepository.ListByVersion",
		trace.WithAttributes(attribute.String("automation_version.id", versionID)),
	)
	defer func() { finish(span, err) }()

	offers, err = r.next.ListByVersion(ctx, versionID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(offers)))
	}
	return offers, err
}

func (r *TracingDiscountRepository) Insert(ctx context.Context, offer domain.DiscountOffer) (err error) {
	ctx, span := r.tracer.Start(ctx, "DiscountRepository.Insert",
		trace.WithAttributes(
			attribute.String("discount.id", offer.ID),
			attribute.String("discount.kind", string(offer.Kind)),
			attribute.String("automation_version.id", offer.AutomationVersionID),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Insert(ctx, offer)
}

func (r *TracingDiscountRepository) GetByID(ctx context.Context, id string) (offer domain.DiscountOffer, err error) {
	ctx, span := r.tracer.Start(ctx, "DiscountRepository.GetByID",
		trace.WithAttributes(attribute.String("discount.id", id)),
	)
	defer func() { finish(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingDiscountRepository) FindByCode(ctx context.Context, tenantID, code string) (offer domain.DiscountOffer, err error) {
	ctx, span := r.tracer.Start(ctx, "DiscountRepository.FindByCode",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer func() { finish(span, err) }()

	return r.next.FindByCode(ctx, tenantID, code)
}

func (r *TracingDiscountRepository) MarkUsed(ctx context.Context, id string, at time.Time) (ok bool, err error) {
	ctx, span := r.tracer.Start(ctx, "DiscountRepository.MarkUsed",
		trace.WithAttributes(attribute.String("discount.id", id)),
	)
	defer func() { finish(span, err) }()

	ok, err = r.next.MarkUsed(ctx, id, at)
	span.SetAttributes(attribute.Bool("discount.redeemed", ok))
	return ok, err
}
