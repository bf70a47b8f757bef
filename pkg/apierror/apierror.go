package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation reports per-field problems of a submitted form.
func Validation(fields map[string]string) *APIError {
	return &APIError{
		Code:       "VALIDATION_FAILED",
		Message:    "submitted data is invalid",
		Fields:     fields,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}
