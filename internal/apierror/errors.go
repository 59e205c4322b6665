package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ValidationError carries per-field failure messages and renders as 422.
type ValidationError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation() *ValidationError {
	return &ValidationError{
		Message: "The given data was invalid.",
		Errors:  make(map[string][]string),
	}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors[field] = append(e.Errors[field], message)
	return e
}

func (e *ValidationError) Empty() bool {
	return len(e.Errors) == 0
}

// NotFoundError renders as 404. Resource names the entity, e.g. "event".
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// AuthenticationError renders as 401.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func Unauthenticated(message string) *AuthenticationError {
	if message == "" {
		message = "unauthenticated"
	}
	return &AuthenticationError{Message: message}
}

type messageBody struct {
	Message string `json:"message"`
}

// Write maps the error taxonomy onto HTTP responses. Anything outside the
// taxonomy (raw store failures included) is masked as a 500.
func Write(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var ve *ValidationError
	if errors.As(err, &ve) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(ve)
		return
	}

	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(messageBody{Message: nfe.Error()})
		return
	}

	var ae *AuthenticationError
	if errors.As(err, &ae) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(messageBody{Message: ae.Error()})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(messageBody{Message: "internal server error"})
}
