package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{From: "NeedsPricing", To: "Live"}
	assert.Equal(t, `transition from "NeedsPricing" to "Live" is not allowed`, err.Error())
}

func TestForbiddenError_Error(t *testing.T) {
	err := &domain.ForbiddenError{Role: domain.RoleTenantViewer, From: "NeedsPricing", To: "AwaitingClientApproval"}
	assert.Equal(t, `role "tenant_viewer" may not transition from "NeedsPricing" to "AwaitingClientApproval"`, err.Error())
}

func TestRoleResolutionError_Error(t *testing.T) {
	assert.Equal(t, "role resolution: staff session has no role",
		(&domain.RoleResolutionError{Reason: "staff session has no role"}).Error())
	assert.Equal(t, "role resolution: no recognized tenant role [guest, root]",
		(&domain.RoleResolutionError{Roles: []string{"guest", "root"}, Reason: "no recognized tenant role"}).Error())
}

func TestUnknownStatusError_Error(t *testing.T) {
	assert.Equal(t, `unknown status "shipped"`, (&domain.UnknownStatusError{Value: "shipped"}).Error())
}

func TestNewAutomationVersion(t *testing.T) {
	v := domain.NewAutomationVersion("v-1", "t-1", "a-1", "Invoice sync")

	assert.Equal(t, domain.StatusIntakeInProgress, v.Status)
	assert.Equal(t, "t-1", v.TenantID)
	assert.Equal(t, v.CreatedAt, v.UpdatedAt)
	assert.False(t, v.CreatedAt.IsZero())
}

func TestInvalidInputError_Error(t *testing.T) {
	assert.Equal(t, "invalid input Complexity: must be one of basic medium complex enterprise",
		(&domain.InvalidInputError{Field: "Complexity", Reason: "must be one of basic medium complex enterprise"}).Error())
	assert.Equal(t, "invalid input: empty body", (&domain.InvalidInputError{Reason: "empty body"}).Error())
}
