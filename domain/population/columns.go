package population

import "strings"

// Column names of the flat person table produced by ingestion
const (
	ColumnHouseholdID        = "id_hogar"
	ColumnPersonID           = "id_persona"
	ColumnAge                = "edad_persona"
	ColumnSex                = "sexo_persona"
	ColumnKinship            = "parentesco_persona"
	ColumnPersonType         = "tipo_persona"
	ColumnNeighborhood       = "colonia"
	ColumnCensusBlock        = "ageb"
	ColumnBlock              = "manzana"
	ColumnZone               = "ubicacion"
	ColumnHealthLack         = "presencia_carencia_salud_persona"
	ColumnEducationLag       = "presencia_rezago_educativo_persona"
	ColumnSocialSecurityLack = "presencia_carencia_seguridad_social_persona"
	ColumnReceivesSupport    = "recibe_apoyos_sociales"

	// EligibilityPrefix precedes the program id in eligibility column names
	EligibilityPrefix = "es_elegible_"
)

// GeographicColumns are the columns usable as a geographic grouping level
var GeographicColumns = []string{ColumnNeighborhood, ColumnCensusBlock, ColumnBlock, ColumnZone}

// EligibilityColumn returns the eligibility column for a program id
func EligibilityColumn(program string) string {
	return EligibilityPrefix + program
}

// ProgramFromColumn extracts the program id from an eligibility column name
func ProgramFromColumn(column string) (string, bool) {
	if !strings.HasPrefix(column, EligibilityPrefix) {
		return "", false
	}
	program := strings.TrimPrefix(column, EligibilityPrefix)
	return program, program != ""
}

// IsGeographicColumn reports whether column is a valid geographic level
func IsGeographicColumn(column string) bool {
	for _, c := range GeographicColumns {
		if c == column {
			return true
		}
	}
	return false
}
