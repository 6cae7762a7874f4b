package handler

import (
	"github.com/focoalerta/reports-api/internal/pkg/validate"
)

// echoValidator adapts validate.Validator so Echo can call c.Validate(req).
// Failures surface as *domain.ValidationError.
type echoValidator struct {
	v *validate.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validate.New()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
