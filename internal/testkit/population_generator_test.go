package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgap/domain/population"
)

func TestPopulationGenerator_Deterministic(t *testing.T) {
	config := DefaultPopulationConfig()
	config.HouseholdCount = 50

	first := NewPopulationGenerator(config).Generate()
	second := NewPopulationGenerator(config).Generate()

	require.Equal(t, first.Len(), second.Len())
	assert.Equal(t, first.Rows(), second.Rows())
	assert.Equal(t, 50, first.Households())
}

func TestPopulationGenerator_Schema(t *testing.T) {
	table := NewPopulationGenerator(DefaultPopulationConfig()).Generate()

	assert.ElementsMatch(t, population.KnownPrograms, table.Programs())
	for _, p := range table.Rows() {
		if p.Age < 0 || p.Age > 120 {
			t.Fatalf("age out of range: %d", p.Age)
		}
		if p.IsEligible(population.ProgramPensionAdultosMayores) != (p.Age >= 65) {
			t.Errorf("pension eligibility does not follow age for %s", p.PersonID)
		}
	}
}

func TestRecords(t *testing.T) {
	table := TableOf(
		Person{Age: 70, Sex: population.SexFemale, Health: true, Eligible: []string{population.ProgramINEA}},
	)

	header, records := Records(table)
	require.Len(t, records, 1)
	require.Len(t, records[0], len(header))

	values := make(map[string]string, len(header))
	for i, col := range header {
		values[col] = records[0][i]
	}
	assert.Equal(t, "70", values[population.ColumnAge])
	assert.Equal(t, "yes", values[population.ColumnHealthLack])
	assert.Equal(t, "no", values[population.ColumnReceivesSupport])
	assert.Equal(t, "yes", values[population.EligibilityColumn(population.ProgramINEA)])
}
