package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// DiscountOfferResponse is the API representation of a discount offer.
type DiscountOfferResponse struct {
	ID                  string  `json:"id" doc:"Unique identifier"`
	AutomationVersionID string  `json:"automation_version_id" doc:"Version the offer was issued for"`
	Code                string  `json:"code" doc:"Redeemable code"`
	Kind                string  `json:"kind" doc:"Offer kind"`
	Percent             float64 `json:"percent" doc:"Fraction taken off, between 0 and 1"`
	AppliesTo           string  `json:"applies_to" doc:"setup_fee or unit_price"`
	UsedAt              *string `json:"used_at,omitempty" doc:"Redemption timestamp (ISO 8601)"`
	ExpiresAt           *string `json:"expires_at,omitempty" doc:"Expiry timestamp (ISO 8601)"`
	CreatedAt           string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toDiscountOfferResponse(o domain.DiscountOffer) DiscountOfferResponse {
	return DiscountOfferResponse{
		ID:                  o.ID,
		AutomationVersionID: o.AutomationVersionID,
		Code:                o.Code,
		Kind:                string(o.Kind),
		Percent:             o.Percent,
		AppliesTo:           string(o.AppliesTo),
		UsedAt:              formatOptionalTime(o.UsedAt),
		ExpiresAt:           formatOptionalTime(o.ExpiresAt),
		CreatedAt:           formatTime(o.CreatedAt),
	}
}

func toDiscountOfferResponses(offers []domain.DiscountOffer) []DiscountOfferResponse {
	resp := make([]DiscountOfferResponse, len(offers))
	for i, o := range offers {
		resp[i] = toDiscountOfferResponse(o)
	}
	return resp
}

type VersionOffersInput struct {
	ID string `path:"id" doc:"Automation version ID"`
}

type DiscountOffersOutput struct {
	Body []DiscountOfferResponse
}

type LookupDiscountCodeInput struct {
	Code     string `path:"code" doc:"Discount code, case-insensitive"`
	TenantID string `query:"tenant_id" required:"false" doc:"Tenant to search (staff only)"`
}

type DiscountOfferOutput struct {
	Body DiscountOfferResponse
}

func registerDiscounts(api huma.API, automations *app.AutomationService, svc *app.DiscountService) {
	huma.Register(api, huma.Operation{
		OperationID: "ensure-discount-offers",
		Method:      http.MethodPost,
		Path:        "/api/v1/automations/{id}/discount-offers",
		Summary:     "Issue any missing discount offers for a version",
		Description: "Requires a role that may drive the lifecycle; viewers and billing members get 403.",
		Tags:        []string{"Discounts"},
	}, func(ctx context.Context, input *VersionOffersInput) (*DiscountOffersOutput, error) {
		v, err := automations.GetForUpdate(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		offers, err := svc.EnsureOffersForVersion(ctx, v.TenantID, v.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &DiscountOffersOutput{Body: toDiscountOfferResponses(offers)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-discount-offers",
		Method:      http.MethodGet,
		Path:        "/api/v1/automations/{id}/discount-offers",
		Summary:     "List the discount offers of a version",
		Tags:        []string{"Discounts"},
	}, func(ctx context.Context, input *VersionOffersInput) (*DiscountOffersOutput, error) {
		v, err := automations.Get(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		offers, err := svc.ListOffers(ctx, v.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &DiscountOffersOutput{Body: toDiscountOfferResponses(offers)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lookup-discount-code",
		Method:      http.MethodGet,
		Path:        "/api/v1/discount-codes/{code}",
		Summary:     "Look up an active discount code",
		Tags:        []string{"Discounts"},
	}, func(ctx context.Context, input *LookupDiscountCodeInput) (*DiscountOfferOutput, error) {
		sess := sessionFrom(ctx)
		var tenantID string
		switch sess.Kind {
		case domain.SessionTenant:
			tenantID = sess.TenantID
		case domain.SessionStaff:
			tenantID = input.TenantID
			if tenantID == "" {
				return nil, toHumaError(&domain.InvalidInputError{Field: "tenant_id", Reason: "required"})
			}
		}
		if tenantID == "" {
			return nil, toHumaError(domain.ErrUnauthenticated)
		}

		offer, err := svc.FindActiveByCode(ctx, tenantID, input.Code)
		if err != nil {
			return nil, toHumaError(err)
		}
		if offer == nil {
			return nil, huma.Error404NotFound("discount code not found or no longer usable")
		}
		return &DiscountOfferOutput{Body: toDiscountOfferResponse(*offer)}, nil
	})
}
