package otel_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/otel"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	events []domain.Event
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event) error {
	m.events = append(m.events, e)
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(context.Context, domain.Event) error {
	return fmt.Errorf("publish failed")
}

type catalogFunc func(context.Context) (domain.ActionCatalog, error)

func (f catalogFunc) Catalog(ctx context.Context) (domain.ActionCatalog, error) { return f(ctx) }

// --- Tests ---

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	event := domain.NewEvent(domain.EventAutomationStatusChanged, "t-1", "v-1")
	event.From = string(domain.StatusIntakeInProgress)
	event.To = string(domain.StatusNeedsPricing)
	require.NoError(t, pub.Publish(context.Background(), event))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "EventPublisher.Publish", spans[0].Name)
	assertAttribute(t, spans[0], "event.type", "automation.status_changed")
	assertAttribute(t, spans[0], "event.subject_id", "v-1")
	assertAttribute(t, spans[0], "tenant.id", "t-1")
	assertAttribute(t, spans[0], "event.to", "NeedsPricing")

	require.Len(t, inner.events, 1)
	assert.Equal(t, event, inner.events[0])
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(&failingPublisher{})

	err := pub.Publish(context.Background(), domain.NewEvent(domain.EventQuoteCreated, "t-1", "q-1"))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracingPublisher_CountsEvents(t *testing.T) {
	setupTestTracer(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	ctx := context.Background()
	ok := adapter.NewTracingPublisher(&mockPublisher{})
	failing := adapter.NewTracingPublisher(&failingPublisher{})
	require.NoError(t, ok.Publish(ctx, domain.NewEvent(domain.EventQuoteCreated, "t-1", "q-1")))
	require.NoError(t, ok.Publish(ctx, domain.NewEvent(domain.EventQuoteCreated, "t-1", "q-2")))
	require.Error(t, failing.Publish(ctx, domain.NewEvent(domain.EventQuoteCreated, "t-1", "q-3")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[bool]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "wrkcopilot.events.published" {
				continue
			}
			sum, isSum := m.Data.(metricdata.Sum[int64])
			require.True(t, isSum)
			for _, dp := range sum.DataPoints {
				failed, _ := dp.Attributes.Value(attribute.Key("error"))
				counts[failed.AsBool()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[bool]int64{false: 2, true: 1}, counts)
}

func TestTracingCatalog_RecordsEntries(t *testing.T) {
	exporter := setupTestTracer(t)
	c := adapter.NewTracingCatalog(catalogFunc(func(context.Context) (domain.ActionCatalog, error) {
		return domain.ActionCatalog{"wrkaction-1": {ListPrice: 1}, "wrkaction-2": {ListPrice: 0.5}}, nil
	}))

	got, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "CatalogProvider.Catalog", spans[0].Name)
	assertAttribute(t, spans[0], "catalog.entries", "2")
}

func TestTracingCatalog_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	c := adapter.NewTracingCatalog(catalogFunc(func(context.Context) (domain.ActionCatalog, error) {
		return nil, errors.New("catalog unavailable")
	}))

	_, err := c.Catalog(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
