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
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeInvalidOperation   = "INVALID_OPERATION"
)

// Sentinel errors shared across repositories and services.
var (
	ErrDocumentNotFound      = NewDomainError(ErrCodeNotFound, "document not found")
	ErrKnowledgeItemNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrLearningEventNotFound = NewDomainError(ErrCodeNotFound, "learning event not found")
	ErrEventAlreadyUndone    = NewDomainError(ErrCodePreconditionFailed, "learning event already undone")
	ErrClientNotFound        = NewDomainError(ErrCodeNotFound, "client not found")
	ErrProjectNotFound       = NewDomainError(ErrCodeNotFound, "project not found")
	ErrOrgNotFound           = NewDomainError(ErrCodeNotFound, "organization not found")
	ErrAPIKeyNotFound        = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrInvalidAPIKey         = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrAPIKeyRevoked         = NewDomainError(ErrCodeUnauthorized, "api key revoked")
	ErrAPIKeyExpired         = NewDomainError(ErrCodeUnauthorized, "api key expired")
)
