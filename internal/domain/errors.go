package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrAutomationNotFound  = errors.New("automation version not found")
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrDiscountNotFound    = errors.New("discount offer not found")
	ErrDiscountAlreadyUsed = errors.New("discount offer already used")
	ErrStatusConflict      = errors.New("status changed concurrently")
	ErrUnauthenticated     = errors.New("no session")
	ErrQuoteNotAllowed     = errors.New("automation version is not open for pricing")
)

// TransitionError is returned when a status change is not an allowed edge.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

// ForbiddenError is returned when the actor's role may not perform a transition.
type ForbiddenError struct {
	Role LifecycleRole
	From string
	To   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q may not transition from %q to %q", e.Role, e.From, e.To)
}

// UnknownStatusError is returned when a status string cannot be resolved.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status %q", e.Value)
}

// RoleResolutionError is returned when a session carries no usable lifecycle role.
type RoleResolutionError struct {
	Roles  []string
	Reason string
}

func (e *RoleResolutionError) Error() string {
	if len(e.Roles) == 0 {
		return "role resolution: " + e.Reason
	}
	return fmt.Sprintf("role resolution: %s [%s]", e.Reason, strings.Join(e.Roles, ", "))
}

// UnknownComplexityError is returned for a complexity tier with no setup fee.
type UnknownComplexityError struct {
	Value string
}

func (e *UnknownComplexityError) Error() string {
	return fmt.Sprintf("unknown complexity %q", e.Value)
}

// InvalidDiscountError is returned for a malformed pricing discount.
type InvalidDiscountError struct {
	Source string
	Reason string
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("invalid discount %q: %s", e.Source, e.Reason)
}

// DuplicateOfferKindError is returned by storage when an offer kind already
// exists for an automation version.
type DuplicateOfferKindError struct {
	AutomationVersionID string
	Kind                OfferKind
}

func (e *DuplicateOfferKindError) Error() string {
	return fmt.Sprintf("offer %q already exists for automation version %q", e.Kind, e.AutomationVersionID)
}

// InvalidInputError is returned when a request fails field validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}
