package api

import (
	"encoding/json"
	"net/http"

	"github.com/susankaotw/bulau/internal/domain"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithReason writes an error JSON response carrying a reason code, so
// callers can branch without parsing the localized message.
func ErrorWithReason(w http.ResponseWriter, status int, message, reason string) {
	JSON(w, status, ErrorResponse{Error: message, Reason: reason})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	domainErr, ok := err.(*domain.DomainError)
	if !ok {
		return http.StatusInternalServerError
	}
	return ReasonToHTTP(domainErr.Code)
}

// ReasonToHTTP maps gate reason codes and error codes to HTTP status codes.
// Input errors are 400s, authorization denials 403s; the webhook surface
// overrides all of this with its always-200 policy.
func ReasonToHTTP(code string) int {
	switch code {
	case domain.ErrCodeValidation, domain.ReasonMissingIdentity, domain.ReasonMalformedEmail:
		return http.StatusBadRequest
	case domain.ReasonNotFound:
		return http.StatusNotFound
	case domain.ReasonDisabled, domain.ReasonExpired, domain.ReasonAlreadyBoundElsewhere:
		return http.StatusForbidden
	case domain.ReasonRegistryUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)
	if domainErr, ok := err.(*domain.DomainError); ok {
		ErrorWithReason(w, status, domainErr.Message, domainErr.Code)
		return
	}
	Error(w, status, err.Error())
}
