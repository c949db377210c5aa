package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed binding rule, keyed by struct field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries per-field detail for a rejected body.
type ValidationErrorResponse struct {
	Error   string       `json:"error" example:"validation failed"`
	Details []FieldError `json:"details,omitempty"`
}

// NewValidationError turns a gin binding error into a response body. Errors
// that are not validator failures (malformed JSON, wrong types) fall back to
// the raw message.
func NewValidationError(err error) ValidationErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrorResponse{Error: err.Error()}
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldErrorMessage(fe),
		})
	}
	return ValidationErrorResponse{Error: "validation failed", Details: details}
}

func fieldErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
