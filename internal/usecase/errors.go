package usecase

import "errors"

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeInvalidReference      = "INVALID_REFERENCE"
	CodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	CodeDatabase              = "DATABASE_ERROR"
)

const (
	MsgExhibitionNotFound    = "Exhibition not found"
	MsgProductNotFound       = "Product not found"
	MsgDuplicateRegistration = "This email is already registered for this exhibition"
)

// DomainError is a rejection the caller can act on. It always maps to a 4xx.
type DomainError struct {
	Code    string
	Message string
	// Field names the offending reference ("exhibition", "product") when there is one.
	Field string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// TechnicalError wraps storage faults. Never caused by the request content.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var techErr *TechnicalError
	return errors.As(err, &techErr)
}

func invalidReference(field, message string) *DomainError {
	return &DomainError{Code: CodeInvalidReference, Message: message, Field: field}
}

func duplicateRegistration() *DomainError {
	return &DomainError{Code: CodeDuplicateRegistration, Message: MsgDuplicateRegistration}
}

func databaseError(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: message + ": " + err.Error(), Err: err}
}
