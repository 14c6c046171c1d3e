package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// ActionEstimateBody is one expected action type and its count per outcome.
type ActionEstimateBody struct {
	ActionType string `json:"action_type" doc:"Catalog action identifier"`
	Count      int    `json:"count" doc:"Uses per outcome"`
}

// PriceRequestBody is the pricing input shared by previews and quotes.
type PriceRequestBody struct {
	Complexity       string               `json:"complexity" doc:"basic, medium, complex or enterprise"`
	EstimatedActions []ActionEstimateBody `json:"estimated_actions,omitempty" doc:"Expected actions per outcome"`
	EstimatedVolume  int                  `json:"estimated_volume,omitempty" doc:"Expected outcomes per month"`
	Currency         string               `json:"currency,omitempty" doc:"ISO 4217 code, USD when empty"`
}

func (b PriceRequestBody) toRequest() app.PriceRequest {
	actions := make([]app.ActionEstimate, len(b.EstimatedActions))
	for i, a := range b.EstimatedActions {
		actions[i] = app.ActionEstimate{ActionType: a.ActionType, Count: a.Count}
	}
	return app.PriceRequest{
		Complexity:       b.Complexity,
		EstimatedActions: actions,
		EstimatedVolume:  b.EstimatedVolume,
		Currency:         b.Currency,
	}
}

// AppliedDiscountResponse records the effect of one discount.
type AppliedDiscountResponse struct {
	Source    string  `json:"source"`
	Percent   float64 `json:"percent"`
	AppliesTo string  `json:"applies_to"`
	Amount    float64 `json:"amount" doc:"Amount taken off, in currency units"`
}

func toAppliedDiscounts(ds []domain.AppliedDiscount) []AppliedDiscountResponse {
	resp := make([]AppliedDiscountResponse, len(ds))
	for i, d := range ds {
		resp[i] = AppliedDiscountResponse{
			Source:    d.Source,
			Percent:   d.Percent,
			AppliesTo: string(d.AppliesTo),
			Amount:    d.Amount,
		}
	}
	return resp
}

// PricingResponse is the API representation of a pricing result.
type PricingResponse struct {
	Currency              string                    `json:"currency"`
	BaseSetupFee          float64                   `json:"base_setup_fee"`
	SetupFee              float64                   `json:"setup_fee"`
	UnitPrice             float64                   `json:"unit_price" doc:"Price per outcome before discounts"`
	EffectiveUnitPrice    float64                   `json:"effective_unit_price" doc:"Price per outcome after discounts"`
	EstimatedVolume       int                       `json:"estimated_volume"`
	EstimatedMonthlySpend float64                   `json:"estimated_monthly_spend"`
	DiscountsApplied      []AppliedDiscountResponse `json:"discounts_applied"`
	Warnings              []string                  `json:"warnings,omitempty"`
}

func toPricingResponse(r domain.PricingResult) PricingResponse {
	return PricingResponse{
		Currency:              r.Currency,
		BaseSetupFee:          r.BaseSetupFee,
		SetupFee:              r.SetupFee,
		UnitPrice:             r.UnitPrice,
		EffectiveUnitPrice:    r.EffectiveUnitPrice,
		EstimatedVolume:       r.EstimatedVolume,
		EstimatedMonthlySpend: r.EstimatedMonthlySpend,
		DiscountsApplied:      toAppliedDiscounts(r.DiscountsApplied),
		Warnings:              r.Warnings,
	}
}

// QuoteResponse is the API representation of a quote.
type QuoteResponse struct {
	ID                    string                    `json:"id"`
	TenantID              string                    `json:"tenant_id"`
	AutomationVersionID   string                    `json:"automation_version_id"`
	Status                string                    `json:"status" doc:"DRAFT, SENT, SIGNED or REJECTED"`
	Complexity            string                    `json:"complexity"`
	Currency              string                    `json:"currency"`
	SetupFee              float64                   `json:"setup_fee"`
	UnitPrice             float64                   `json:"unit_price"`
	EffectiveUnitPrice    float64                   `json:"effective_unit_price"`
	EstimatedVolume       int                       `json:"estimated_volume"`
	EstimatedMonthlySpend float64                   `json:"estimated_monthly_spend"`
	DiscountsApplied      []AppliedDiscountResponse `json:"discounts_applied"`
	DiscountOfferIDs      []string                  `json:"discount_offer_ids"`
	CreatedAt             string                    `json:"created_at"`
	UpdatedAt             string                    `json:"updated_at"`
}

func toQuoteResponse(q domain.Quote) QuoteResponse {
	offerIDs := q.DiscountOfferIDs
	if offerIDs == nil {
		offerIDs = []string{}
	}
	return QuoteResponse{
		ID:                    q.ID,
		TenantID:              q.TenantID,
		AutomationVersionID:   q.AutomationVersionID,
		Status:                string(q.Status),
		Complexity:            string(q.Complexity),
		Currency:              q.Currency,
		SetupFee:              q.SetupFee,
		UnitPrice:             q.UnitPrice,
		EffectiveUnitPrice:    q.EffectiveUnitPrice,
		EstimatedVolume:       q.EstimatedVolume,
		EstimatedMonthlySpend: q.EstimatedMonthlySpend,
		DiscountsApplied:      toAppliedDiscounts(q.DiscountsApplied),
		DiscountOfferIDs:      offerIDs,
		CreatedAt:             formatTime(q.CreatedAt),
		UpdatedAt:             formatTime(q.UpdatedAt),
	}
}

// --- Preview ---

type DiscountBody struct {
	Source    string  `json:"source" doc:"Label reported back in discounts_applied"`
	Percent   float64 `json:"percent" doc:"Fraction between 0 and 1"`
	AppliesTo string  `json:"applies_to" doc:"setup_fee or unit_price"`
}

type PreviewPricingInput struct {
	Body struct {
		PriceRequestBody
		Discounts []DiscountBody `json:"discounts,omitempty" doc:"Ad-hoc discounts to apply"`
	}
}

type PreviewPricingOutput struct {
	Body PricingResponse
}

// --- Quotes ---

type CreateQuoteInput struct {
	ID   string `path:"id" doc:"Automation version ID"`
	Body struct {
		PriceRequestBody
		DiscountCodes []string `json:"discount_codes,omitempty" doc:"Discount codes to apply"`
	}
}

type VersionQuoteInput struct {
	ID string `path:"id" doc:"Automation version ID"`
}

type GetQuoteInput struct {
	ID string `path:"id" doc:"Quote ID"`
}

type TransitionQuoteInput struct {
	ID   string `path:"id" doc:"Quote ID"`
	Body struct {
		Status string `json:"status" minLength:"1" doc:"Target quote status"`
	}
}

type QuoteOutput struct {
	Body QuoteResponse
}

func registerQuotes(api huma.API, svc *app.QuoteService) {
	huma.Register(api, huma.Operation{
		OperationID: "preview-pricing",
		Method:      http.MethodPost,
		Path:        "/api/v1/pricing/preview",
		Summary:     "Price an estimate without storing a quote",
		Tags:        []string{"Pricing"},
	}, func(ctx context.Context, input *PreviewPricingInput) (*PreviewPricingOutput, error) {
		discounts := make([]domain.Discount, len(input.Body.Discounts))
		for i, d := range input.Body.Discounts {
			discounts[i] = domain.Discount{Source: d.Source, Percent: d.Percent, AppliesTo: domain.DiscountScope(d.AppliesTo)}
		}
		result, err := svc.Preview(ctx, input.Body.toRequest(), discounts)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PreviewPricingOutput{Body: toPricingResponse(result)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-quote",
		Method:      http.MethodPost,
		Path:        "/api/v1/automations/{id}/quotes",
		Summary:     "Price an automation version and store a draft quote",
		Tags:        []string{"Quotes"},
	}, func(ctx context.Context, input *CreateQuoteInput) (*QuoteOutput, error) {
		q, err := svc.Create(ctx, sessionFrom(ctx), input.ID, app.CreateQuoteRequest{
			PriceRequest:  input.Body.toRequest(),
			DiscountCodes: input.Body.DiscountCodes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &QuoteOutput{Body: toQuoteResponse(q)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "latest-quote",
		Method:      http.MethodGet,
		Path:        "/api/v1/automations/{id}/quotes/latest",
		Summary:     "Get the newest quote of an automation version",
		Tags:        []string{"Quotes"},
	}, func(ctx context.Context, input *VersionQuoteInput) (*QuoteOutput, error) {
		q, err := svc.Latest(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &QuoteOutput{Body: toQuoteResponse(q)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-quote",
		Method:      http.MethodGet,
		Path:        "/api/v1/quotes/{id}",
		Summary:     "Get a quote by ID",
		Tags:        []string{"Quotes"},
	}, func(ctx context.Context, input *GetQuoteInput) (*QuoteOutput, error) {
		q, err := svc.Get(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &QuoteOutput{Body: toQuoteResponse(q)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-quote",
		Method:      http.MethodPost,
		Path:        "/api/v1/quotes/{id}/status",
		Summary:     "Send, sign or reject a quote",
		Tags:        []string{"Quotes"},
	}, func(ctx context.Context, input *TransitionQuoteInput) (*QuoteOutput, error) {
		q, err := svc.Transition(ctx, sessionFrom(ctx), input.ID, input.Body.Status)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &QuoteOutput{Body: toQuoteResponse(q)}, nil
	})
}
