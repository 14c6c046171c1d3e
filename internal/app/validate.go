package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// requireSession rejects the zero session and tenant sessions without a tenant.
func requireSession(sess domain.Session) error {
	switch sess.Kind {
	case domain.SessionStaff:
		return nil
	case domain.SessionTenant:
		if sess.TenantID == "" {
			return domain.ErrUnauthenticated
		}
		return nil
	}
	return domain.ErrUnauthenticated
}

// validateStruct runs struct tag validation and reports the first failing
// field as an *domain.InvalidInputError.
func validateStruct(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return &domain.InvalidInputError{Field: fe.Namespace(), Reason: reason}
	}
	return &domain.InvalidInputError{Reason: err.Error()}
}
