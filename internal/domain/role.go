package domain

import "strings"

// SessionKind distinguishes tenant members from platform staff.
type SessionKind string

const (
	SessionTenant SessionKind = "tenant"
	SessionStaff  SessionKind = "staff"
)

// Session is the authenticated caller as supplied by the session provider.
// Tenant sessions carry TenantID and Roles; staff sessions carry StaffRole.
type Session struct {
	Kind      SessionKind
	UserID    string
	TenantID  string
	Roles     []string
	StaffRole string
}

// IsStaff reports whether the session belongs to platform staff.
func (s Session) IsStaff() bool {
	return s.Kind == SessionStaff
}

// CanAccessTenant reports whether the session may see data owned by tenantID.
// Staff see every tenant.
func (s Session) CanAccessTenant(tenantID string) bool {
	return s.IsStaff() || (s.TenantID != "" && s.TenantID == tenantID)
}

// TenantRole is the normalized membership role of a tenant user.
type TenantRole string

const (
	TenantRoleOwner   TenantRole = "owner"
	TenantRoleAdmin   TenantRole = "admin"
	TenantRoleEditor  TenantRole = "editor"
	TenantRoleBilling TenantRole = "billing"
	TenantRoleViewer  TenantRole = "viewer"
)

// tenantRolePriority is the scan order used when a session holds several roles.
var tenantRolePriority = []TenantRole{
	TenantRoleOwner,
	TenantRoleAdmin,
	TenantRoleEditor,
	TenantRoleBilling,
	TenantRoleViewer,
}

// tenantRoleAliases maps raw membership role names to normalized tenant roles.
var tenantRoleAliases = map[string]TenantRole{
	"owner":            TenantRoleOwner,
	"workspace_owner":  TenantRoleOwner,
	"admin":            TenantRoleAdmin,
	"workspace_admin":  TenantRoleAdmin,
	"editor":           TenantRoleEditor,
	"member":           TenantRoleEditor,
	"workflows_editor": TenantRoleEditor,
	"billing":          TenantRoleBilling,
	"billing_admin":    TenantRoleBilling,
	"viewer":           TenantRoleViewer,
	"read_only":        TenantRoleViewer,
}

// NormalizeTenantRole maps a raw role name onto a TenantRole.
func NormalizeTenantRole(raw string) (TenantRole, bool) {
	role, ok := tenantRoleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}

// LifecycleRole is the permission level of a session within the lifecycle.
type LifecycleRole string

const (
	RoleTenantOwner   LifecycleRole = "tenant_owner"
	RoleTenantAdmin   LifecycleRole = "tenant_admin"
	RoleTenantEditor  LifecycleRole = "tenant_editor"
	RoleTenantBilling LifecycleRole = "tenant_billing"
	RoleTenantViewer  LifecycleRole = "tenant_viewer"

	RoleWrkMasterAdmin LifecycleRole = "wrk_master_admin"
	RoleWrkAdmin       LifecycleRole = "wrk_admin"
	RoleWrkOperator    LifecycleRole = "wrk_operator"
	RoleWrkViewer      LifecycleRole = "wrk_viewer"
)

var tenantLifecycleRoles = map[TenantRole]LifecycleRole{
	TenantRoleOwner:   RoleTenantOwner,
	TenantRoleAdmin:   RoleTenantAdmin,
	TenantRoleEditor:  RoleTenantEditor,
	TenantRoleBilling: RoleTenantBilling,
	TenantRoleViewer:  RoleTenantViewer,
}

var staffRoles = map[LifecycleRole]bool{
	RoleWrkMasterAdmin: true,
	RoleWrkAdmin:       true,
	RoleWrkOperator:    true,
	RoleWrkViewer:      true,
}

// IsStaff reports whether r belongs to the staff vocabulary.
func (r LifecycleRole) IsStaff() bool {
	return staffRoles[r]
}

// CanTransition reports whether r may drive lifecycle and quote transitions.
func (r LifecycleRole) CanTransition() bool {
	switch r {
	case RoleTenantOwner, RoleTenantAdmin, RoleTenantEditor,
		RoleWrkMasterAdmin, RoleWrkAdmin, RoleWrkOperator:
		return true
	}
	return false
}

// DeriveLifecycleActorRole resolves the single lifecycle role of a session.
func DeriveLifecycleActorRole(s Session) (LifecycleRole, error) {
	if s.IsStaff() {
		role := LifecycleRole(strings.TrimSpace(s.StaffRole))
		if role == "" {
			return "", &RoleResolutionError{Reason: "staff session has no role"}
		}
		if !role.IsStaff() {
			return "", &RoleResolutionError{Roles: []string{s.StaffRole}, Reason: "unknown staff role"}
		}
		if role == RoleWrkViewer {
			return "", &RoleResolutionError{Roles: []string{s.StaffRole}, Reason: "staff viewer cannot act on the lifecycle"}
		}
		return role, nil
	}

	held := make(map[TenantRole]bool, len(s.Roles))
	for _, raw := range s.Roles {
		if role, ok := NormalizeTenantRole(raw); ok {
			held[role] = true
		}
	}
	for _, candidate := range tenantRolePriority {
		if held[candidate] {
			return tenantLifecycleRoles[candidate], nil
		}
	}
	return "", &RoleResolutionError{Roles: s.Roles, Reason: "no recognized tenant role"}
}
