package errors

import (
	stderrors "errors"
	"fmt"

	"socialgap/domain/core"
)

// Error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeIngestionError    = "INGESTION_ERROR"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeSchemaError       = "SCHEMA_ERROR"
	CodeMissingDependency = "MISSING_DEPENDENCY"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// AppError is an error tagged with a code for the layer that produced it
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// New creates an AppError without a cause
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of the innermost AppError is kept;
// anything else becomes INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: GetCode(err), Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the first AppError in err's chain, or
// INTERNAL_ERROR when there is none
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// IngestionError reports a source file that could not be read or parsed
func IngestionError(message string, cause error) *AppError {
	return &AppError{Code: CodeIngestionError, Message: message, Cause: cause}
}

// DatabaseError reports a failed connection or query
func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

// Classify returns the error code for err. Domain errors map to their code
// even when wrapped inside an AppError.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsSchemaError(err):
		return CodeSchemaError
	case core.IsMissingDependencyError(err):
		return CodeMissingDependency
	case core.IsInputError(err):
		return CodeInvalidInput
	}
	return GetCode(err)
}
