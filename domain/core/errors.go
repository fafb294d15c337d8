package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Schema errors
	ErrSchema             = errors.New("schema error")
	ErrProgramNotFound    = fmt.Errorf("%w: program not found", ErrSchema)
	ErrFieldNotFound      = fmt.Errorf("%w: field not found", ErrSchema)
	ErrUnknownDeprivation = fmt.Errorf("%w: unknown deprivation", ErrSchema)
	ErrNoMappedPrograms   = fmt.Errorf("%w: no programs mapped to deprivation", ErrSchema)
	ErrNotNumeric         = fmt.Errorf("%w: field is not numeric", ErrSchema)

	// Missing dependency errors
	ErrMissingColumn = errors.New("required column missing")

	// Input errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownFunction = errors.New("unknown analysis function")
)

// AlternativesError is implemented by errors that can list valid replacements
// for the value that caused them.
type AlternativesError interface {
	error
	Alternatives() []string
}

// ProgramNotFoundError reports a program id that is not part of the table's catalog.
type ProgramNotFoundError struct {
	Program   string
	Available []string
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("program '%s' not found", e.Program)
}

func (e *ProgramNotFoundError) Unwrap() error { return ErrProgramNotFound }

// Alternatives returns the valid program ids.
func (e *ProgramNotFoundError) Alternatives() []string { return e.Available }

// FieldNotFoundError reports a column name absent from the schema.
type FieldNotFoundError struct {
	Field     string
	Available []string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field '%s' does not exist in the dataset", e.Field)
}

func (e *FieldNotFoundError) Unwrap() error { return ErrFieldNotFound }

// Alternatives returns the schema columns.
func (e *FieldNotFoundError) Alternatives() []string { return e.Available }

// MissingColumnError reports a column an analysis depends on but the table lacks.
type MissingColumnError struct {
	Column   string
	Analysis string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column '%s' is required by %s but is absent", e.Column, e.Analysis)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// DeprivationError reports an unknown deprivation or one without mapped programs.
type DeprivationError struct {
	Deprivation string
	Valid       []string
	cause       error
}

// NewUnknownDeprivationError creates an error for an unrecognized deprivation key
func NewUnknownDeprivationError(deprivation string, valid []string) *DeprivationError {
	return &DeprivationError{Deprivation: deprivation, Valid: valid, cause: ErrUnknownDeprivation}
}

// NewNoMappedProgramsError creates an error for a deprivation with an empty program list
func NewNoMappedProgramsError(deprivation string) *DeprivationError {
	return &DeprivationError{Deprivation: deprivation, cause: ErrNoMappedPrograms}
}

func (e *DeprivationError) Error() string {
	if errors.Is(e.cause, ErrNoMappedPrograms) {
		return fmt.Sprintf("no programs related to deprivation '%s'", e.Deprivation)
	}
	return fmt.Sprintf("deprivation '%s' not recognized, valid: %s", e.Deprivation, strings.Join(e.Valid, ", "))
}

func (e *DeprivationError) Unwrap() error { return e.cause }

// Alternatives returns the valid deprivation keys.
func (e *DeprivationError) Alternatives() []string { return e.Valid }

// NewInvalidArgumentError creates an error for a malformed call argument
func NewInvalidArgumentError(argument string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidArgument, argument, reason)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsMissingDependencyError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrUnknownFunction)
}

// AlternativesOf extracts the list of valid alternatives carried by err, if any.
func AlternativesOf(err error) []string {
	var alt AlternativesError
	if errors.As(err, &alt) {
		return alt.Alternatives()
	}
	return nil
}
