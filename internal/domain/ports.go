package domain

import (
	"context"
	"time"
)

// AutomationRepository defines the persistence contract for automation versions.
type AutomationRepository interface {
	Create(ctx context.Context, v AutomationVersion) error
	GetByID(ctx context.Context, id string) (AutomationVersion, error)
	List(ctx context.Context, filter ListFilter) ([]AutomationVersion, error)
	// UpdateStatus moves a version from one status to another only if it is
	// still at from; otherwise it returns ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, from, to LifecycleStatus) error
	// HasEarlierVersions reports whether the tenant owns a version created
	// before versionID. Versions created at the same instant order by id.
	HasEarlierVersions(ctx context.Context, tenantID, versionID string) (bool, error)
}

// ListFilter holds optional criteria for listing automation versions.
type ListFilter struct {
	TenantID string
	Status   *LifecycleStatus
	Limit    int
	Offset   int
}

// QuoteRepository defines the persistence contract for quotes.
type QuoteRepository interface {
	Create(ctx context.Context, q Quote) error
	GetByID(ctx context.Context, id string) (Quote, error)
	// Latest returns the newest quote of an automation version.
	Latest(ctx context.Context, versionID string) (Quote, error)
	UpdateStatus(ctx context.Context, id string, from, to QuoteStatus) error
	// Sign marks every offer in offerIDs used and moves the quote from SENT
	// to SIGNED as one unit. When an offer is already used it returns
	// ErrDiscountAlreadyUsed, when the quote has left SENT it returns
	// ErrStatusConflict, and in both cases nothing is written.
	Sign(ctx context.Context, id string, offerIDs []string, at time.Time) error
}

// DiscountRepository defines the persistence contract for discount offers.
type DiscountRepository interface {
	ListByVersion(ctx context.Context, versionID string) ([]DiscountOffer, error)
	// Insert returns *DuplicateOfferKindError when the kind already exists
	// for the version.
	Insert(ctx context.Context, offer DiscountOffer) error
	GetByID(ctx context.Context, id string) (DiscountOffer, error)
	FindByCode(ctx context.Context, tenantID, code string) (DiscountOffer, error)
	// MarkUsed sets used_at only when it is still unset and reports whether
	// this call performed the update.
	MarkUsed(ctx context.Context, id string, at time.Time) (bool, error)
}

// CatalogProvider supplies the current action catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) (ActionCatalog, error)
}

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// TransitionValidator checks lifecycle and quote moves against their graphs.
type TransitionValidator interface {
	Apply(ctx context.Context, req TransitionRequest) (LifecycleStatus, error)
	ApplyQuote(ctx context.Context, from, to QuoteStatus, role LifecycleRole) (QuoteStatus, error)
}
