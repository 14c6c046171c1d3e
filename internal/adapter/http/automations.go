package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// AutomationResponse is the API representation of an automation version.
type AutomationResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	TenantID     string `json:"tenant_id" doc:"Owning tenant"`
	AutomationID string `json:"automation_id" doc:"Automation this version belongs to"`
	Name         string `json:"name" doc:"Display name"`
	Status       string `json:"status" doc:"Lifecycle status"`
	CreatedAt    string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt    string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toAutomationResponse(v domain.AutomationVersion) AutomationResponse {
	return AutomationResponse{
		ID:           v.ID,
		TenantID:     v.TenantID,
		AutomationID: v.AutomationID,
		Name:         v.Name,
		Status:       string(v.Status),
		CreatedAt:    formatTime(v.CreatedAt),
		UpdatedAt:    formatTime(v.UpdatedAt),
	}
}

// --- Create Automation ---

type CreateAutomationInput struct {
	Body struct {
		Name         string `json:"name" minLength:"1" maxLength:"200" doc:"Display name"`
		TenantID     string `json:"tenant_id,omitempty" doc:"Owning tenant (staff only)"`
		AutomationID string `json:"automation_id,omitempty" doc:"Existing automation to add a version to"`
	}
}

type AutomationOutput struct {
	Body AutomationResponse
}

// --- Get Automation ---

type GetAutomationInput struct {
	ID string `path:"id" doc:"Automation version ID"`
}

// --- List Automations ---

type ListAutomationsInput struct {
	TenantID string `query:"tenant_id" required:"false" doc:"Filter by tenant (staff only)"`
	Status   string `query:"status" required:"false" doc:"Filter by lifecycle status; aliases accepted"`
	Limit    int    `query:"limit" required:"false" default:"50" minimum:"0" doc:"Max results"`
	Offset   int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListAutomationsOutput struct {
	Body []AutomationResponse
}

// --- Transition ---

type TransitionAutomationInput struct {
	ID   string `path:"id" doc:"Automation version ID"`
	Body struct {
		Status string `json:"status" minLength:"1" doc:"Target lifecycle status; display names and aliases accepted"`
		Reason string `json:"reason,omitempty" maxLength:"500" doc:"Free-text reason recorded on the event"`
	}
}

func registerAutomations(api huma.API, svc *app.AutomationService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-automation",
		Method:      http.MethodPost,
		Path:        "/api/v1/automations",
		Summary:     "Create an automation version",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *CreateAutomationInput) (*AutomationOutput, error) {
		v, err := svc.Create(ctx, sessionFrom(ctx), app.CreateAutomationRequest{
			TenantID:     input.Body.TenantID,
			AutomationID: input.Body.AutomationID,
			Name:         input.Body.Name,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AutomationOutput{Body: toAutomationResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-automation",
		Method:      http.MethodGet,
		Path:        "/api/v1/automations/{id}",
		Summary:     "Get an automation version by ID",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *GetAutomationInput) (*AutomationOutput, error) {
		v, err := svc.Get(ctx, sessionFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AutomationOutput{Body: toAutomationResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-automations",
		Method:      http.MethodGet,
		Path:        "/api/v1/automations",
		Summary:     "List automation versions",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *ListAutomationsInput) (*ListAutomationsOutput, error) {
		filter := domain.ListFilter{
			TenantID: input.TenantID,
			Limit:    input.Limit,
			Offset:   input.Offset,
		}
		if input.Status != "" {
			s, err := domain.ResolveLifecycleStatus(input.Status)
			if err != nil {
				return nil, toHumaError(err)
			}
			filter.Status = &s
		}

		versions, err := svc.List(ctx, sessionFrom(ctx), filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]AutomationResponse, len(versions))
		for i, v := range versions {
			resp[i] = toAutomationResponse(v)
		}
		return &ListAutomationsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-automation",
		Method:      http.MethodPost,
		Path:        "/api/v1/automations/{id}/status",
		Summary:     "Move an automation version to a new lifecycle status",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *TransitionAutomationInput) (*AutomationOutput, error) {
		v, err := svc.Transition(ctx, sessionFrom(ctx), input.ID, input.Body.Status, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AutomationOutput{Body: toAutomationResponse(v)}, nil
	})
}
