// Package httpx holds the JSON response envelope, request decoding and the mapping from
// apperr errors to HTTP status codes shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"org-membership-service/internal/platform/apperr"
)

// Envelope is the body of every non-validation response.
type Envelope struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"statusCode,omitempty"`
}

// ValidationBody is the body of a 422 response.
type ValidationBody struct {
	Errors []apperr.FieldError `json:"errors"`
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	_ = WriteJSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// WriteErrorMessage writes an error envelope with a fixed message.
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, Envelope{Status: "error", Message: message, StatusCode: status})
}

// WriteValidation writes the field errors as a 422 response.
func WriteValidation(w http.ResponseWriter, fields []apperr.FieldError) {
	_ = WriteJSON(w, http.StatusUnprocessableEntity, ValidationBody{Errors: fields})
}

// WriteError maps err to a status code and writes the matching body. Unmapped errors are
// logged and answered with a generic 500 so internals never leak to clients.
func WriteError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidation(w, verr.Fields)
	case errors.Is(err, apperr.ErrDuplicateEmail):
		WriteValidation(w, []apperr.FieldError{{Field: "email", Message: "A user with this email address already exists."}})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		_ = WriteJSON(w, http.StatusUnauthorized, Envelope{Status: "Bad request", Message: "Authentication failed", StatusCode: http.StatusUnauthorized})
	case errors.Is(err, apperr.ErrExpiredToken):
		WriteErrorMessage(w, http.StatusUnauthorized, "Token has expired")
	case errors.Is(err, apperr.ErrInvalidToken):
		WriteErrorMessage(w, http.StatusUnauthorized, "Authentication credentials were not provided or are invalid")
	case errors.Is(err, apperr.ErrPermissionDenied):
		WriteErrorMessage(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, apperr.ErrNotFound):
		WriteErrorMessage(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, apperr.ErrAlreadyMember):
		WriteErrorMessage(w, http.StatusBadRequest, "User is already a member of this organization")
	default:
		if log != nil {
			log.WithError(err).Error("unhandled request error")
		}
		WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, apperr.ErrOrgNotFound):
		return "Organization not found"
	}
	return "Not found"
}
