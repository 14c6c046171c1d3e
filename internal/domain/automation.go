package domain

import "time"

// AutomationVersion is one submitted version of a tenant's automation. Its
// Status only moves forward through the lifecycle.
type AutomationVersion struct {
	ID           string
	TenantID     string
	AutomationID string
	Name         string
	Status       LifecycleStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAutomationVersion creates a version in the initial IntakeInProgress state.
func NewAutomationVersion(id, tenantID, automationID, name string) AutomationVersion {
	now := time.Now().UTC()
	return AutomationVersion{
		ID:           id,
		TenantID:     tenantID,
		AutomationID: automationID,
		Name:         name,
		Status:       StatusIntakeInProgress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
