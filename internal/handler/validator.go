package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator installed on the echo instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// fieldErrors flattens validator errors into per-field messages for 400
// responses.
func fieldErrors(err error) []echo.Map {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	details := make([]echo.Map, 0, len(errs))
	for _, fe := range errs {
		details = append(details, echo.Map{
			"field":   fe.Field(),
			"message": fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return details
}
