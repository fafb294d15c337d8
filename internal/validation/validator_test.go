package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgap/domain/population"
	"socialgap/internal/terms"
)

func schema(columns ...string) *population.Table {
	return population.NewTable(columns, nil)
}

func translate(t *testing.T, query string) terms.Translation {
	t.Helper()
	return terms.NewTranslator(terms.DefaultDictionary(), zap.NewNop()).Translate(query)
}

func TestValidate_Executable(t *testing.T) {
	v := NewValidator(zap.NewNop())
	table := schema(population.ColumnAge, population.ColumnSex, population.EligibilityColumn(population.ProgramPensionAdultosMayores))

	report := v.Validate(translate(t, "adultos mayores sin pensión"), table)

	assert.True(t, report.Executable)
	assert.Equal(t, FailureNone, report.Failure)
	assert.Equal(t, []string{"es_elegible_pension_adultos_mayores"}, report.ValidFields)
	assert.Equal(t, []string{"rango_edad_65_100"}, report.ConceptualFields)
	assert.Empty(t, report.InvalidFields)
	assert.Empty(t, report.Available)
}

func TestValidate_InvalidFields(t *testing.T) {
	v := NewValidator(zap.NewNop())
	table := schema(population.ColumnAge)

	report := v.Validate(translate(t, "mujeres con carencia de salud"), table)

	assert.True(t, report.HasCriteria)
	assert.False(t, report.FieldsValid)
	assert.False(t, report.Executable)
	assert.Equal(t, FailureInvalidFields, report.Failure)
	assert.Equal(t, []string{population.ColumnHealthLack, population.ColumnSex}, report.InvalidFields)
	assert.Equal(t, []string{population.ColumnAge}, report.Available)
}

func TestValidate_NoCriteriaWins(t *testing.T) {
	v := NewValidator(zap.NewNop())

	report := v.Validate(translate(t, "¿qué tal?"), schema(population.ColumnAge))
	assert.Equal(t, FailureNoCriteria, report.Failure)
	assert.False(t, report.Executable)

	// a column phrase alone sets no criterion but still yields an invalid field
	report = v.Validate(translate(t, "parentesco"), schema(population.ColumnAge))
	require.Equal(t, []string{population.ColumnKinship}, report.InvalidFields)
	assert.Equal(t, FailureNoCriteria, report.Failure)
}

func TestIsConceptual(t *testing.T) {
	assert.True(t, IsConceptual("rango_edad_0_12"))
	assert.True(t, IsConceptual("multiple_carencias_3"))
	assert.False(t, IsConceptual(population.ColumnAge))
}
