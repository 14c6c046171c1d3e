package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/logging"
)

// ActionEstimate is one expected action type and its count per outcome.
type ActionEstimate struct {
	ActionType string `validate:"required"`
	Count      int    `validate:"gte=0"`
}

// PriceRequest is the pricing input shared by previews and quotes.
type PriceRequest struct {
	Complexity       string           `validate:"required,oneof=basic medium complex enterprise"`
	EstimatedActions []ActionEstimate `validate:"dive"`
	EstimatedVolume  int              `validate:"gte=0"`
	Currency         string           `validate:"omitempty,len=3,uppercase"`
}

// CreateQuoteRequest prices a version and redeems nothing until the quote is signed.
type CreateQuoteRequest struct {
	PriceRequest
	DiscountCodes []string `validate:"dive,required"`
}

// QuoteService prices automation versions and moves quotes through approval.
type QuoteService struct {
	quotes      domain.QuoteRepository
	automations *AutomationService
	discounts   *DiscountService
	catalog     domain.CatalogProvider
	validator   domain.TransitionValidator
	publisher   domain.EventPublisher
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewQuoteService creates a service. It reuses the automation and discount
// services for lifecycle coupling and redemption.
func NewQuoteService(
	quotes domain.QuoteRepository,
	automations *AutomationService,
	discounts *DiscountService,
	catalog domain.CatalogProvider,
	transitions domain.TransitionValidator,
	publisher domain.EventPublisher,
	opts ...Option,
) *QuoteService {
	o := applyOptions(opts)
	return &QuoteService{
		quotes:      quotes,
		automations: automations,
		discounts:   discounts,
		catalog:     catalog,
		validator:   transitions,
		publisher:   publisher,
		validate:    validator.New(),
		logger:      o.logger,
		now:         o.now,
	}
}

// Preview runs the pricing engine against the current catalog without persisting anything.
func (s *QuoteService) Preview(ctx context.Context, req PriceRequest, discounts []domain.Discount) (domain.PricingResult, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return domain.PricingResult{}, err
	}
	return s.price(ctx, req, discounts)
}

func (s *QuoteService) price(ctx context.Context, req PriceRequest, discounts []domain.Discount) (domain.PricingResult, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return domain.PricingResult{}, fmt.Errorf("loading action catalog: %w", err)
	}

	actions := make([]domain.EstimatedAction, 0, len(req.EstimatedActions))
	for _, a := range req.EstimatedActions {
		actions = append(actions, domain.EstimatedAction{ActionType: a.ActionType, Count: a.Count})
	}

	return domain.ComputePricing(domain.PricingInput{
		Complexity:       domain.Complexity(req.Complexity),
		EstimatedActions: actions,
		Catalog:          catalog,
		Discounts:        discounts,
		EstimatedVolume:  req.EstimatedVolume,
		Currency:         req.Currency,
	})
}

// Create prices a version with the given discount codes and stores a DRAFT quote.
func (s *QuoteService) Create(ctx context.Context, sess domain.Session, versionID string, req CreateQuoteRequest) (domain.Quote, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return domain.Quote{}, err
	}

	version, err := s.automations.Get(ctx, sess, versionID)
	if err != nil {
		return domain.Quote{}, err
	}

	role, err := domain.DeriveLifecycleActorRole(sess)
	if err != nil {
		return domain.Quote{}, err
	}
	if !role.CanTransition() {
		return domain.Quote{}, &domain.ForbiddenError{Role: role, From: string(version.Status), To: string(domain.QuoteDraft)}
	}

	if version.Status != domain.StatusNeedsPricing && version.Status != domain.StatusAwaitingClientApproval {
		return domain.Quote{}, fmt.Errorf("%w: status is %s", domain.ErrQuoteNotAllowed, version.Status)
	}

	discounts, offerIDs, err := s.resolveCodes(ctx, version.TenantID, req.DiscountCodes)
	if err != nil {
		return domain.Quote{}, err
	}

	result, err := s.price(ctx, req.PriceRequest, discounts)
	if err != nil {
		return domain.Quote{}, err
	}
	for _, w := range result.Warnings {
		logging.FromContext(ctx, s.logger).Warn("pricing warning", zap.String("automation_version_id", version.ID), zap.String("warning", w))
	}

	quote := domain.NewQuote(generateID(), version.TenantID, version.ID, domain.Complexity(req.Complexity), result, req.EstimatedVolume, offerIDs)
	if err := s.quotes.Create(ctx, quote); err != nil {
		return domain.Quote{}, fmt.Errorf("creating quote: %w", err)
	}

	event := domain.NewEvent(domain.EventQuoteCreated, quote.TenantID, quote.ID)
	event.To = string(quote.Status)
	event.Actor = sess.UserID
	if err := s.publisher.Publish(ctx, event); err != nil {
		return domain.Quote{}, fmt.Errorf("publishing quote event: %w", err)
	}

	return quote, nil
}

// resolveCodes turns discount codes into pricing discounts. Duplicate codes
// count once; an unusable code is an *domain.InvalidDiscountError.
func (s *QuoteService) resolveCodes(ctx context.Context, tenantID string, codes []string) ([]domain.Discount, []string, error) {
	seen := make(map[string]bool, len(codes))
	var discounts []domain.Discount
	var offerIDs []string

	for _, raw := range codes {
		code := domain.NormalizeDiscountCode(raw)
		if seen[code] {
			continue
		}
		seen[code] = true

		offer, err := s.discounts.FindActiveByCode(ctx, tenantID, code)
		if err != nil {
			return nil, nil, err
		}
		if offer == nil {
			return nil, nil, &domain.InvalidDiscountError{Source: code, Reason: "code is not usable"}
		}
		discounts = append(discounts, offer.AsPricingDiscount())
		offerIDs = append(offerIDs, offer.ID)
	}

	return discounts, offerIDs, nil
}

// Latest returns the newest quote of a version visible to the session.
func (s *QuoteService) Latest(ctx context.Context, sess domain.Session, versionID string) (domain.Quote, error) {
	if _, err := s.automations.Get(ctx, sess, versionID); err != nil {
		return domain.Quote{}, err
	}
	return s.quotes.Latest(ctx, versionID)
}

// Get returns a quote visible to the session.
func (s *QuoteService) Get(ctx context.Context, sess domain.Session, id string) (domain.Quote, error) {
	if err := requireSession(sess); err != nil {
		return domain.Quote{}, err
	}
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if !sess.CanAccessTenant(quote.TenantID) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return quote, nil
}

// Transition moves a quote to the status named by rawStatus. Sending a quote
// advances its version to AwaitingClientApproval; signing redeems the quote's
// offers and advances the version to ReadyForBuild.
func (s *QuoteService) Transition(ctx context.Context, sess domain.Session, id, rawStatus string) (domain.Quote, error) {
	to, err := domain.ResolveQuoteStatus(rawStatus)
	if err != nil {
		return domain.Quote{}, err
	}

	quote, err := s.Get(ctx, sess, id)
	if err != nil {
		return domain.Quote{}, err
	}

	role, err := domain.DeriveLifecycleActorRole(sess)
	if err != nil {
		return domain.Quote{}, err
	}

	dst, err := s.validator.ApplyQuote(ctx, quote.Status, to, role)
	if err != nil {
		return domain.Quote{}, err
	}
	if dst == quote.Status {
		return quote, nil
	}

	if dst == domain.QuoteSigned {
		if err := s.sign(ctx, quote); err != nil {
			return domain.Quote{}, err
		}
	} else if err := s.quotes.UpdateStatus(ctx, quote.ID, quote.Status, dst); err != nil {
		return domain.Quote{}, fmt.Errorf("updating quote status: %w", err)
	}
	from := quote.Status
	quote.Status = dst

	event := domain.NewEvent(domain.EventQuoteStatusChanged, quote.TenantID, quote.ID)
	event.From = string(from)
	event.To = string(dst)
	event.Actor = sess.UserID
	if err := s.publisher.Publish(ctx, event); err != nil {
		return domain.Quote{}, fmt.Errorf("publishing quote event: %w", err)
	}

	if err := s.advanceVersion(ctx, sess, role, quote); err != nil {
		return domain.Quote{}, err
	}

	return quote, nil
}

// sign redeems the quote's offers and marks it SIGNED in one store call.
// If any offer is already used, or the quote has left SENT, nothing changes.
func (s *QuoteService) sign(ctx context.Context, quote domain.Quote) error {
	if err := s.quotes.Sign(ctx, quote.ID, quote.DiscountOfferIDs, s.now()); err != nil {
		if errors.Is(err, domain.ErrDiscountAlreadyUsed) {
			logging.FromContext(ctx, s.logger).Warn("quote offer already redeemed",
				zap.String("quote_id", quote.ID),
				zap.Error(err),
			)
		}
		return fmt.Errorf("signing quote: %w", err)
	}
	return s.discounts.publishRedeemed(ctx, quote.DiscountOfferIDs)
}

func (s *QuoteService) advanceVersion(ctx context.Context, sess domain.Session, role domain.LifecycleRole, quote domain.Quote) error {
	var from, to domain.LifecycleStatus
	switch quote.Status {
	case domain.QuoteSent:
		from, to = domain.StatusNeedsPricing, domain.StatusAwaitingClientApproval
	case domain.QuoteSigned:
		from, to = domain.StatusAwaitingClientApproval, domain.StatusReadyForBuild
	default:
		return nil
	}

	version, err := s.automations.Get(ctx, sess, quote.AutomationVersionID)
	if err != nil {
		return err
	}
	_, err = s.automations.advanceIfAt(ctx, version, from, to, role, sess.UserID, "quote "+string(quote.Status))
	return err
}
