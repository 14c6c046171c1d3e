package http

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/session"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Services bundles the application services exposed over HTTP.
type Services struct {
	Automations *app.AutomationService
	Quotes      *app.QuoteService
	Discounts   *app.DiscountService
}

// Register adds every API route to the Huma API.
func Register(api huma.API, svc Services) {
	registerAutomations(api, svc.Automations)
	registerDiscounts(api, svc.Automations, svc.Discounts)
	registerQuotes(api, svc.Quotes)
}

// sessionFrom returns the request session, or the zero session which the
// services reject as unauthenticated.
func sessionFrom(ctx context.Context) domain.Session {
	sess, _ := session.FromContext(ctx)
	return sess
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAutomationNotFound),
		errors.Is(err, domain.ErrQuoteNotFound),
		errors.Is(err, domain.ErrDiscountNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrStatusConflict),
		errors.Is(err, domain.ErrDiscountAlreadyUsed),
		errors.Is(err, domain.ErrQuoteNotAllowed):
		return huma.Error409Conflict(err.Error())
	}

	var (
		forbidden *domain.ForbiddenError
		roleErr   *domain.RoleResolutionError
		statusErr *domain.UnknownStatusError
		trErr     *domain.TransitionError
		inputErr  *domain.InvalidInputError
		discErr   *domain.InvalidDiscountError
		cxErr     *domain.UnknownComplexityError
	)
	switch {
	case errors.As(err, &forbidden):
		return huma.Error403Forbidden(forbidden.Error())
	case errors.As(err, &roleErr):
		return huma.Error403Forbidden(roleErr.Error())
	case errors.As(err, &statusErr):
		return huma.Error400BadRequest(statusErr.Error())
	case errors.As(err, &trErr):
		return huma.Error422UnprocessableEntity(trErr.Error())
	case errors.As(err, &inputErr):
		return huma.Error422UnprocessableEntity(inputErr.Error())
	case errors.As(err, &discErr):
		return huma.Error422UnprocessableEntity(discErr.Error())
	case errors.As(err, &cxErr):
		return huma.Error422UnprocessableEntity(cxErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
