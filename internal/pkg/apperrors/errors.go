package apperrors

import "errors"

// Registry errors
var (
	ErrFacultyNotFound = errors.New("faculty does not exist")
	ErrStudentNotFound = errors.New("student not found in the specified faculty")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

// Storage errors
var (
	ErrPersistence     = errors.New("persistence failed")
	ErrMalformedRecord = errors.New("malformed record")
	ErrUnknownBackend  = errors.New("unknown storage backend")
)

// NewValidationError creates a new custom error for validation failures with a message
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewMalformedRecordError creates a new custom error describing a rejected storage row
func NewMalformedRecordError(message string) *CustomError {
	return &CustomError{
		Err:     ErrMalformedRecord,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
