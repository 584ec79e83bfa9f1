package http_utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ValidateStruct reports ok=false together with a response listing every failed field.
func ValidateStruct(v *validator.Validate, s interface{}) (ValidationErrorResponse, bool) {
	err := v.Struct(s)
	if err == nil {
		return ValidationErrorResponse{}, true
	}

	response := ValidationErrorResponse{
		BaseResponse: NewBaseResponse(false, "invalid body, validation failed"),
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		response.Errors = lo.Map(fieldErrs, func(item validator.FieldError, _ int) string {
			return item.Error()
		})
	} else {
		response.Errors = []string{err.Error()}
	}

	return response, false
}
