package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Gate reason codes. Denials are reported to callers with these codes plus
// a localized message; they are a distinct category from input errors.
const (
	ReasonMissingIdentity       = "MISSING_IDENTITY"
	ReasonMalformedEmail        = "MALFORMED_EMAIL"
	ReasonNotFound              = "NOT_FOUND"
	ReasonDisabled              = "DISABLED"
	ReasonExpired               = "EXPIRED"
	ReasonRegistryUnavailable   = "REGISTRY_UNAVAILABLE"
	ReasonAlreadyBoundElsewhere = "ALREADY_BOUND_ELSEWHERE"
)

// Validation errors
var (
	ErrMissingQuery    = NewDomainError(ErrCodeValidation, "query text is required")
	ErrMissingTopic    = NewDomainError(ErrCodeValidation, "topic is required")
	ErrMissingIdentity = NewDomainError(ReasonMissingIdentity, "identity is required")
	ErrMalformedEmail  = NewDomainError(ReasonMalformedEmail, "email is malformed")
)

// Registry errors
var (
	ErrMemberNotFound        = NewDomainError(ReasonNotFound, "member not found")
	ErrRegistryUnavailable   = NewDomainError(ReasonRegistryUnavailable, "member registry unavailable")
	ErrKnowledgeUnavailable  = NewDomainError(ReasonRegistryUnavailable, "knowledge store unavailable")
	ErrAlreadyBoundElsewhere = NewDomainError(ReasonAlreadyBoundElsewhere, "member already bound to a different chat account")
)
