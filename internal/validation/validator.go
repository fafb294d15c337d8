package validation

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"socialgap/internal/terms"
)

// Failure distinguishes why a translated query cannot run
type Failure string

const (
	FailureNone          Failure = ""
	FailureNoCriteria    Failure = "no-criteria"
	FailureInvalidFields Failure = "invalid-fields"
)

const (
	ageRangeMarkerPrefix = "rango_edad_"
)

// Schema is the part of a table the validator needs
type Schema interface {
	HasColumn(column string) bool
	Columns() []string
}

// Report is the executability verdict for one translation
type Report struct {
	Query            string       `json:"query"`
	Status           terms.Status `json:"status"`
	ValidFields      []string     `json:"valid_fields"`
	ConceptualFields []string     `json:"conceptual_fields"`
	InvalidFields    []string     `json:"invalid_fields"`
	HasCriteria      bool         `json:"has_criteria"`
	FieldsValid      bool         `json:"fields_valid"`
	Executable       bool         `json:"executable"`
	Failure          Failure      `json:"failure,omitempty"`
	Message          string       `json:"message,omitempty"`
	// Available lists the schema columns when some field was not recognized
	Available []string `json:"available,omitempty"`
}

// Validator decides whether a translation can be executed against a schema
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validator
func NewValidator(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger.Named("validation")}
}

// IsConceptual reports whether field is a derived token rather than a column
func IsConceptual(field string) bool {
	return strings.HasPrefix(field, ageRangeMarkerPrefix) ||
		strings.Contains(field, terms.MultipleDeprivationsField)
}

// Validate classifies every detected field and computes the verdict. A query
// without criteria fails as no-criteria even if it also has invalid fields.
func (v *Validator) Validate(tr terms.Translation, schema Schema) Report {
	report := Report{
		Query:            tr.Query,
		Status:           tr.Status,
		ValidFields:      []string{},
		ConceptualFields: []string{},
		InvalidFields:    []string{},
		HasCriteria:      tr.Status == terms.StatusTranslated && !tr.Criteria.IsEmpty(),
	}

	for _, field := range tr.Fields {
		switch {
		case IsConceptual(field):
			report.ConceptualFields = append(report.ConceptualFields, field)
		case schema.HasColumn(field):
			report.ValidFields = append(report.ValidFields, field)
		default:
			report.InvalidFields = append(report.InvalidFields, field)
		}
	}
	sort.Strings(report.InvalidFields)

	report.FieldsValid = len(report.InvalidFields) == 0
	report.Executable = report.HasCriteria && report.FieldsValid

	switch {
	case !report.HasCriteria:
		report.Failure = FailureNoCriteria
		report.Message = "no criteria detected; mention an age group, sex, deprivation, program or area"
	case !report.FieldsValid:
		report.Failure = FailureInvalidFields
		report.Message = fmt.Sprintf("fields not present in the dataset: %s", strings.Join(report.InvalidFields, ", "))
		report.Available = schema.Columns()
	}

	v.logger.Debug("translation validated",
		zap.String("query", tr.Query),
		zap.Bool("executable", report.Executable),
		zap.String("failure", string(report.Failure)),
		zap.Strings("invalid", report.InvalidFields))

	return report
}
