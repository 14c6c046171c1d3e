package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/logging"
)

// CreateAutomationRequest describes a new automation version.
type CreateAutomationRequest struct {
	// TenantID is required for staff sessions and ignored for tenant sessions.
	TenantID     string `validate:"omitempty,max=64"`
	AutomationID string `validate:"omitempty,max=64"`
	Name         string `validate:"required,max=200"`
}

// AutomationService orchestrates automation version lifecycle operations.
type AutomationService struct {
	repo      domain.AutomationRepository
	publisher domain.EventPublisher
	validator domain.TransitionValidator
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAutomationService creates a service with the given adapters.
func NewAutomationService(repo domain.AutomationRepository, publisher domain.EventPublisher, transitions domain.TransitionValidator, opts ...Option) *AutomationService {
	o := applyOptions(opts)
	return &AutomationService{
		repo:      repo,
		publisher: publisher,
		validator: transitions,
		validate:  validator.New(),
		logger:    o.logger,
	}
}

// Create persists a new automation version in IntakeInProgress and publishes a creation event.
func (s *AutomationService) Create(ctx context.Context, sess domain.Session, req CreateAutomationRequest) (domain.AutomationVersion, error) {
	if err := requireSession(sess); err != nil {
		return domain.AutomationVersion{}, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return domain.AutomationVersion{}, err
	}

	tenantID := sess.TenantID
	if sess.IsStaff() {
		if req.TenantID == "" {
			return domain.AutomationVersion{}, &domain.InvalidInputError{Field: "TenantID", Reason: "required for staff sessions"}
		}
		tenantID = req.TenantID
	}

	id := generateID()
	automationID := req.AutomationID
	if automationID == "" {
		automationID = id
	}

	version := domain.NewAutomationVersion(id, tenantID, automationID, req.Name)
	if err := s.repo.Create(ctx, version); err != nil {
		return domain.AutomationVersion{}, fmt.Errorf("creating automation version: %w", err)
	}

	event := domain.NewEvent(domain.EventAutomationCreated, tenantID, version.ID)
	event.To = string(version.Status)
	event.Actor = sess.UserID
	if err := s.publisher.Publish(ctx, event); err != nil {
		return domain.AutomationVersion{}, fmt.Errorf("publishing creation event: %w", err)
	}

	return version, nil
}

// Get returns a version visible to the session. Versions owned by another
// tenant are reported as not found.
func (s *AutomationService) Get(ctx context.Context, sess domain.Session, id string) (domain.AutomationVersion, error) {
	if err := requireSession(sess); err != nil {
		return domain.AutomationVersion{}, err
	}
	version, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.AutomationVersion{}, err
	}
	if !sess.CanAccessTenant(version.TenantID) {
		return domain.AutomationVersion{}, domain.ErrAutomationNotFound
	}
	return version, nil
}

// GetForUpdate returns a version the session may change, rejecting roles
// that cannot drive the lifecycle with *domain.ForbiddenError.
func (s *AutomationService) GetForUpdate(ctx context.Context, sess domain.Session, id string) (domain.AutomationVersion, error) {
	version, err := s.Get(ctx, sess, id)
	if err != nil {
		return domain.AutomationVersion{}, err
	}
	role, err := domain.DeriveLifecycleActorRole(sess)
	if err != nil {
		return domain.AutomationVersion{}, err
	}
	if !role.CanTransition() {
		return domain.AutomationVersion{}, &domain.ForbiddenError{Role: role, From: string(version.Status), To: string(version.Status)}
	}
	return version, nil
}

// List returns versions matching the filter. Tenant sessions only ever see their own tenant.
func (s *AutomationService) List(ctx context.Context, sess domain.Session, filter domain.ListFilter) ([]domain.AutomationVersion, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.IsStaff() {
		filter.TenantID = sess.TenantID
	}
	return s.repo.List(ctx, filter)
}

// Transition moves a version to the status named by rawStatus on behalf of the session.
func (s *AutomationService) Transition(ctx context.Context, sess domain.Session, id, rawStatus, reason string) (domain.AutomationVersion, error) {
	to, err := domain.ResolveLifecycleStatus(rawStatus)
	if err != nil {
		return domain.AutomationVersion{}, err
	}

	version, err := s.Get(ctx, sess, id)
	if err != nil {
		return domain.AutomationVersion{}, err
	}

	role, err := domain.DeriveLifecycleActorRole(sess)
	if err != nil {
		return domain.AutomationVersion{}, err
	}

	return s.apply(ctx, version, to, role, sess.UserID, reason)
}

// advanceIfAt moves version from one status to the next when it is still at
// from, and leaves it untouched otherwise.
func (s *AutomationService) advanceIfAt(ctx context.Context, version domain.AutomationVersion, from, to domain.LifecycleStatus, role domain.LifecycleRole, actor, reason string) (domain.AutomationVersion, error) {
	if version.Status != from {
		logging.FromContext(ctx, s.logger).Debug("lifecycle advance skipped",
			zap.String("automation_version_id", version.ID),
			zap.String("status", string(version.Status)),
			zap.String("expected", string(from)),
		)
		return version, nil
	}
	return s.apply(ctx, version, to, role, actor, reason)
}

func (s *AutomationService) apply(ctx context.Context, version domain.AutomationVersion, to domain.LifecycleStatus, role domain.LifecycleRole, actor, reason string) (domain.AutomationVersion, error) {
	dst, err := s.validator.Apply(ctx, domain.TransitionRequest{
		From:      version.Status,
		To:        to,
		ActorRole: role,
		Reason:    reason,
	})
	if err != nil {
		return domain.AutomationVersion{}, err
	}
	if dst == version.Status {
		return version, nil
	}

	if err := s.repo.UpdateStatus(ctx, version.ID, version.Status, dst); err != nil {
		return domain.AutomationVersion{}, fmt.Errorf("updating automation status: %w", err)
	}

	from := version.Status
	version.Status = dst

	event := domain.NewEvent(domain.EventAutomationStatusChanged, version.TenantID, version.ID)
	event.From = string(from)
	event.To = string(dst)
	event.Actor = actor
	event.Reason = reason
	if err := s.publisher.Publish(ctx, event); err != nil {
		return domain.AutomationVersion{}, fmt.Errorf("publishing status event: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("automation status changed",
		zap.String("automation_version_id", version.ID),
		zap.String("tenant_id", version.TenantID),
		zap.String("from", string(from)),
		zap.String("to", string(dst)),
		zap.String("role", string(role)),
	)

	return version, nil
}
