package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/logging"
)

// DiscountService issues, looks up and redeems discount offers.
type DiscountService struct {
	offers      domain.DiscountRepository
	automations domain.AutomationRepository
	publisher   domain.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewDiscountService creates a service with the given adapters.
func NewDiscountService(offers domain.DiscountRepository, automations domain.AutomationRepository, publisher domain.EventPublisher, opts ...Option) *DiscountService {
	o := applyOptions(opts)
	return &DiscountService{
		offers:      offers,
		automations: automations,
		publisher:   publisher,
		logger:      o.logger,
		now:         o.now,
	}
}

// EnsureOffersForVersion issues whichever offer kinds the version is still
// missing and returns every offer it holds. Safe to call repeatedly and
// concurrently: a kind inserted by a competing call is treated as present.
func (s *DiscountService) EnsureOffersForVersion(ctx context.Context, tenantID, versionID string) ([]domain.DiscountOffer, error) {
	version, err := s.automations.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version.TenantID != tenantID {
		return nil, domain.ErrAutomationNotFound
	}

	existing, err := s.offers.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}

	// Once a version holds offers its family is fixed, whatever the
	// tenant creates afterwards.
	first, issued := domain.IssuedFamily(existing)
	if !issued {
		hasEarlier, err := s.automations.HasEarlierVersions(ctx, tenantID, versionID)
		if err != nil {
			return nil, fmt.Errorf("checking earlier automations: %w", err)
		}
		first = !hasEarlier
	}

	missing := domain.MissingOfferKinds(domain.RequiredOfferKinds(first), existing)
	if len(missing) == 0 {
		return existing, nil
	}

	now := s.now()
	var added []string
	for _, kind := range missing {
		spec, _ := domain.SpecFor(kind)
		code, err := generateDiscountCode(spec.CodePrefix)
		if err != nil {
			return nil, fmt.Errorf("generating discount code: %w", err)
		}

		offer := domain.NewDiscountOffer(generateID(), tenantID, versionID, code, spec, now)
		if err := s.offers.Insert(ctx, offer); err != nil {
			var dup *domain.DuplicateOfferKindError
			if errors.As(err, &dup) {
				logging.FromContext(ctx, s.logger).Debug("offer kind already issued",
					zap.String("automation_version_id", versionID),
					zap.String("kind", string(kind)),
				)
				continue
			}
			return nil, fmt.Errorf("inserting %s offer: %w", kind, err)
		}
		added = append(added, string(kind))
	}

	if len(added) > 0 {
		event := domain.NewEvent(domain.EventDiscountOffersIssued, tenantID, versionID)
		event.Reason = fmt.Sprintf("issued %v", added)
		if err := s.publisher.Publish(ctx, event); err != nil {
			return nil, fmt.Errorf("publishing offers event: %w", err)
		}
		logging.FromContext(ctx, s.logger).Info("discount offers issued",
			zap.String("tenant_id", tenantID),
			zap.String("automation_version_id", versionID),
			zap.Strings("kinds", added),
			zap.Bool("first_automation", first),
		)
	}

	return s.offers.ListByVersion(ctx, versionID)
}

// ListOffers returns the offers issued for a version.
func (s *DiscountService) ListOffers(ctx context.Context, versionID string) ([]domain.DiscountOffer, error) {
	return s.offers.ListByVersion(ctx, versionID)
}

// FindActiveByCode looks up a code within a tenant. A missing, expired or
// already used code yields (nil, nil); only storage failures are errors.
func (s *DiscountService) FindActiveByCode(ctx context.Context, tenantID, code string) (*domain.DiscountOffer, error) {
	offer, err := s.offers.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, domain.ErrDiscountNotFound) {
			logging.FromContext(ctx, s.logger).Debug("discount code not usable", zap.String("tenant_id", tenantID), zap.String("reason", "not_found"))
			return nil, nil
		}
		return nil, fmt.Errorf("finding discount code: %w", err)
	}

	if !offer.Usable(s.now()) {
		reason := "expired"
		if offer.UsedAt != nil {
			reason = "used"
		}
		logging.FromContext(ctx, s.logger).Debug("discount code not usable",
			zap.String("tenant_id", tenantID),
			zap.String("offer_id", offer.ID),
			zap.String("reason", reason),
		)
		return nil, nil
	}

	return &offer, nil
}

// MarkUsed redeems an offer. Exactly one of several concurrent callers
// succeeds; the rest get domain.ErrDiscountAlreadyUsed.
func (s *DiscountService) MarkUsed(ctx context.Context, offerID string) error {
	ok, err := s.offers.MarkUsed(ctx, offerID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDiscountAlreadyUsed
	}
	return s.publishRedeemed(ctx, []string{offerID})
}

// publishRedeemed emits one redemption event per offer already marked used.
func (s *DiscountService) publishRedeemed(ctx context.Context, offerIDs []string) error {
	for _, offerID := range offerIDs {
		offer, err := s.offers.GetByID(ctx, offerID)
		if err != nil {
			return fmt.Errorf("reloading redeemed offer: %w", err)
		}

		event := domain.NewEvent(domain.EventDiscountRedeemed, offer.TenantID, offer.ID)
		event.Reason = offer.Code
		if err := s.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publishing redemption event: %w", err)
		}
	}
	return nil
}
