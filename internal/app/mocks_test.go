package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// --- Mocks ---

type mockAutomations struct {
	mu       sync.Mutex
	versions map[string]domain.AutomationVersion
}

func newMockAutomations() *mockAutomations {
	return &mockAutomations{versions: make(map[string]domain.AutomationVersion)}
}

func (m *mockAutomations) Create(_ context.Context, v domain.AutomationVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.ID] = v
	return nil
}

func (m *mockAutomations) GetByID(_ context.Context, id string) (domain.AutomationVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[id]
	if !ok {
		return domain.AutomationVersion{}, domain.ErrAutomationNotFound
	}
	return v, nil
}

func (m *mockAutomations) List(_ context.Context, filter domain.ListFilter) ([]domain.AutomationVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AutomationVersion
	for _, v := range m.versions {
		if filter.TenantID != "" && v.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAutomations) UpdateStatus(_ context.Context, id string, from, to domain.LifecycleStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[id]
	if !ok {
		return domain.ErrAutomationNotFound
	}
	if v.Status != from {
		return domain.ErrStatusConflict
	}
	v.Status = to
	m.versions[id] = v
	return nil
}

func (m *mockAutomations) HasEarlierVersions(_ context.Context, tenantID, versionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.versions[versionID]
	if !ok {
		return false, nil
	}
	for _, v := range m.versions {
		if v.TenantID != tenantID || v.ID == versionID {
			continue
		}
		if v.CreatedAt.Before(target.CreatedAt) || (v.CreatedAt.Equal(target.CreatedAt) && v.ID < versionID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAutomations) put(v domain.AutomationVersion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.ID] = v
}

type mockQuotes struct {
	mu     sync.Mutex
	quotes map[string]domain.Quote
	order  []string
	// offers backs Sign; it stands in for the shared database.
	offers *mockOffers
	// beforeSign, when set, runs before Sign takes its locks.
	beforeSign func(id string)
}

func newMockQuotes() *mockQuotes {
	return &mockQuotes{quotes: make(map[string]domain.Quote)}
}

func (m *mockQuotes) Create(_ context.Context, q domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.ID] = q
	m.order = append(m.order, q.ID)
	return nil
}

func (m *mockQuotes) GetByID(_ context.Context, id string) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return q, nil
}

func (m *mockQuotes) Latest(_ context.Context, versionID string) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		if q := m.quotes[m.order[i]]; q.AutomationVersionID == versionID {
			return q, nil
		}
	}
	return domain.Quote{}, domain.ErrQuoteNotFound
}

func (m *mockQuotes) UpdateStatus(_ context.Context, id string, from, to domain.QuoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return domain.ErrQuoteNotFound
	}
	if q.Status != from {
		return domain.ErrStatusConflict
	}
	q.Status = to
	m.quotes[id] = q
	return nil
}

func (m *mockQuotes) Sign(_ context.Context, id string, offerIDs []string, at time.Time) error {
	if m.beforeSign != nil {
		m.beforeSign(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers.mu.Lock()
	defer m.offers.mu.Unlock()

	q, ok := m.quotes[id]
	if !ok {
		return domain.ErrQuoteNotFound
	}
	for _, offerID := range offerIDs {
		o, ok := m.offers.offers[offerID]
		if !ok {
			return domain.ErrDiscountNotFound
		}
		if o.UsedAt != nil {
			return domain.ErrDiscountAlreadyUsed
		}
	}
	if q.Status != domain.QuoteSent {
		return domain.ErrStatusConflict
	}

	for _, offerID := range offerIDs {
		o := m.offers.offers[offerID]
		o.UsedAt = &at
		m.offers.offers[offerID] = o
	}
	q.Status = domain.QuoteSigned
	m.quotes[id] = q
	return nil
}

// mockOffers enforces the (version, kind) uniqueness the real store enforces.
type mockOffers struct {
	mu     sync.Mutex
	offers map[string]domain.DiscountOffer
	// beforeInsert, when set, runs before the uniqueness check.
	beforeInsert func(domain.DiscountOffer)
}

func newMockOffers() *mockOffers {
	return &mockOffers{offers: make(map[string]domain.DiscountOffer)}
}

func (m *mockOffers) ListByVersion(_ context.Context, versionID string) ([]domain.DiscountOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DiscountOffer
	for _, o := range m.offers {
		if o.AutomationVersionID == versionID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (m *mockOffers) Insert(_ context.Context, o domain.DiscountOffer) error {
	if m.beforeInsert != nil {
		m.beforeInsert(o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.offers {
		if existing.AutomationVersionID == o.AutomationVersionID && existing.Kind == o.Kind {
			return &domain.DuplicateOfferKindError{AutomationVersionID: o.AutomationVersionID, Kind: o.Kind}
		}
	}
	m.offers[o.ID] = o
	return nil
}

func (m *mockOffers) GetByID(_ context.Context, id string) (domain.DiscountOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return domain.DiscountOffer{}, domain.ErrDiscountNotFound
	}
	return o, nil
}

func (m *mockOffers) FindByCode(_ context.Context, tenantID, code string) (domain.DiscountOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = domain.NormalizeDiscountCode(code)
	for _, o := range m.offers {
		if o.TenantID == tenantID && o.Code == code {
			return o, nil
		}
	}
	return domain.DiscountOffer{}, domain.ErrDiscountNotFound
}

func (m *mockOffers) MarkUsed(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return false, domain.ErrDiscountNotFound
	}
	if o.UsedAt != nil {
		return false, nil
	}
	o.UsedAt = &at
	m.offers[id] = o
	return true, nil
}

func (m *mockOffers) put(o domain.DiscountOffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[o.ID] = o
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

type staticCatalog domain.ActionCatalog

func (c staticCatalog) Catalog(context.Context) (domain.ActionCatalog, error) {
	return domain.ActionCatalog(c), nil
}

// --- Sessions ---

func tenantSession(tenantID string, roles ...string) domain.Session {
	return domain.Session{Kind: domain.SessionTenant, UserID: "u-" + tenantID, TenantID: tenantID, Roles: roles}
}

func staffSession(role string) domain.Session {
	return domain.Session{Kind: domain.SessionStaff, UserID: "staff-1", StaffRole: role}
}
