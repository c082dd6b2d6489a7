package server

import "github.com/go-playground/validator/v10"

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator backed by go-playground/validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	return &CustomValidator{validator: v}
}

// Validate runs the struct tag checks.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
