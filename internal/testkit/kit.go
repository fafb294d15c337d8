// Package testkit builds population tables for tests.
package testkit

import (
	"strconv"

	"socialgap/domain/population"
)

// BaseColumns is the fixed part of the flat schema
var BaseColumns = []string{
	population.ColumnHouseholdID,
	population.ColumnPersonID,
	population.ColumnAge,
	population.ColumnSex,
	population.ColumnKinship,
	population.ColumnPersonType,
	population.ColumnNeighborhood,
	population.ColumnCensusBlock,
	population.ColumnBlock,
	population.ColumnZone,
	population.ColumnHealthLack,
	population.ColumnEducationLag,
	population.ColumnSocialSecurityLack,
	population.ColumnReceivesSupport,
}

// Columns returns the flat schema with one eligibility column per program
func Columns(programs []string) []string {
	cols := make([]string, 0, len(BaseColumns)+len(programs))
	cols = append(cols, BaseColumns...)
	for _, p := range programs {
		cols = append(cols, population.EligibilityColumn(p))
	}
	return cols
}

// Table builds a table over the full schema and every known program
func Table(rows ...population.Person) *population.Table {
	return population.NewTable(Columns(population.KnownPrograms), rows)
}

// Person is a compact row builder for hand-written fixtures
type Person struct {
	Household    string
	Age          int
	Sex          population.Sex
	Neighborhood string
	CensusBlock  string
	Zone         string
	Health       bool
	Education    bool
	Social       bool
	Support      bool
	Eligible     []string
}

// Build converts the fixture into a population row
func (f Person) Build(id int) population.Person {
	household := f.Household
	if household == "" {
		household = "H" + strconv.Itoa(id)
	}
	p := population.Person{
		HouseholdID:        household,
		PersonID:           "P" + strconv.Itoa(id),
		Age:                f.Age,
		Sex:                f.Sex,
		Neighborhood:       f.Neighborhood,
		CensusBlock:        f.CensusBlock,
		Zone:               f.Zone,
		HealthLack:         f.Health,
		EducationLag:       f.Education,
		SocialSecurityLack: f.Social,
		ReceivesSupport:    f.Support,
		Eligible:           make(map[string]bool, len(population.KnownPrograms)),
	}
	for _, program := range population.KnownPrograms {
		p.Eligible[program] = false
	}
	for _, program := range f.Eligible {
		p.Eligible[program] = true
	}
	return p
}

// TableOf builds a full-schema table from fixtures, numbering people in order
func TableOf(fixtures ...Person) *population.Table {
	rows := make([]population.Person, len(fixtures))
	for i, f := range fixtures {
		rows[i] = f.Build(i + 1)
	}
	return Table(rows...)
}

// Records renders a table as a header and string records in the dataset's
// external convention
func Records(table *population.Table) ([]string, [][]string) {
	header := table.Columns()
	records := make([][]string, 0, table.Len())
	for _, p := range table.Rows() {
		record := make([]string, len(header))
		for i, col := range header {
			record[i], _ = p.Field(col)
		}
		records = append(records, record)
	}
	return header, records
}
