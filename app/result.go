package app

import (
	"errors"
	"fmt"

	"socialgap/domain/core"
	apperrors "socialgap/internal/errors"
)

// Error kinds of an ErrorResult
const (
	KindSchema            = "schema"
	KindMissingDependency = "missing-dependency"
	KindAmbiguous         = "ambiguous"
	KindInvalidInput      = "invalid-input"
	KindInternal          = "internal"
)

// ErrorResult is the serialized form of a failed call
type ErrorResult struct {
	Error        string   `json:"error"`
	Kind         string   `json:"kind"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// UnknownFunctionError reports a function name outside the catalog
type UnknownFunctionError struct {
	Name      string
	Available []string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function '%s'", e.Name)
}

func (e *UnknownFunctionError) Unwrap() error { return core.ErrUnknownFunction }

// Alternatives lists the catalog
func (e *UnknownFunctionError) Alternatives() []string { return e.Available }

// AmbiguousQueryError reports a free-text query that cannot be executed as is
type AmbiguousQueryError struct {
	Message      string
	Alternatives []string
}

func (e *AmbiguousQueryError) Error() string { return e.Message }

// NewErrorResult classifies err into the caller-facing error payload
func NewErrorResult(err error) ErrorResult {
	result := ErrorResult{Error: err.Error(), Alternatives: core.AlternativesOf(err)}

	var ambiguous *AmbiguousQueryError
	if errors.As(err, &ambiguous) {
		result.Kind = KindAmbiguous
		result.Alternatives = ambiguous.Alternatives
		return result
	}

	switch apperrors.Classify(err) {
	case apperrors.CodeSchemaError:
		result.Kind = KindSchema
	case apperrors.CodeMissingDependency:
		result.Kind = KindMissingDependency
	case apperrors.CodeInvalidInput:
		result.Kind = KindInvalidInput
	default:
		result.Kind = KindInternal
	}
	return result
}
