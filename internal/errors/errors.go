package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
	// Fields names the inputs the error refers to (missing columns, form fields).
	Fields []string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
			Fields:  appErr.Fields,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return GetCode(err) == code
}

// UserMessage returns the message meant for display: the outermost AppError
// message without its cause chain, or err.Error() for foreign errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Title maps an error to the heading shown above it in a notice.
func Title(err error) string {
	switch GetCode(err) {
	case CodeUnauthorized:
		return "Not allowed"
	case CodeMissingFields:
		return "Missing fields"
	case CodeInvalidEmail:
		return "Invalid email"
	case CodeNoRows:
		return "No rows"
	case CodeInsufficientData, CodeMissingColumns, CodeNoValidRows:
		return "Invalid CSV"
	case CodeServerError, CodeTransportError:
		return "Request failed"
	default:
		return "Error"
	}
}

// FieldsOf returns the Fields of the first AppError in the chain that has any.
func FieldsOf(err error) []string {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && len(appErr.Fields) > 0 {
			return appErr.Fields
		}
		err = stderrors.Unwrap(err)
	}
	return nil
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"

	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeMissingColumns   = "MISSING_COLUMNS"
	CodeNoValidRows      = "NO_VALID_ROWS"
	CodeNoRows           = "NO_ROWS"
	CodeMissingFields    = "MISSING_FIELDS"
	CodeInvalidEmail     = "INVALID_EMAIL"
	CodeServerError      = "SERVER_ERROR"
	CodeTransportError   = "TRANSPORT_ERROR"
	CodeBusy             = "BUSY"
	CodeNothingPending   = "NOTHING_PENDING"
	CodeCancelled        = "CANCELLED"
	CodeLocked           = "LOCKED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError reports a failed store operation and keeps the driver error
// as the cause.
func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InsufficientData(message string) *AppError {
	return New(CodeInsufficientData, message)
}

// MissingColumns reports required columns absent from an upload header.
func MissingColumns(names []string, message string) *AppError {
	return &AppError{
		Code:    CodeMissingColumns,
		Message: message,
		Fields:  append([]string(nil), names...),
	}
}

func NoValidRows(message string) *AppError {
	return New(CodeNoValidRows, message)
}

// ServerError carries a message reported by the remote API verbatim.
func ServerError(message string) *AppError {
	return New(CodeServerError, message)
}

func TransportError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeTransportError,
		Message: message,
		Cause:   cause,
	}
}
