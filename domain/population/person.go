package population

import (
	"strconv"
	"strings"
)

// Sex is the canonical sex label used in the dataset
type Sex string

const (
	SexFemale Sex = "Mujer"
	SexMale   Sex = "Hombre"
)

var sexSynonyms = map[string]Sex{
	"mujer":   SexFemale,
	"mujeres": SexFemale,
	"m":       SexFemale,
	"f":       SexFemale,
	"female":  SexFemale,
	"hombre":  SexMale,
	"hombres": SexMale,
	"h":       SexMale,
	"male":    SexMale,
}

// ParseSex resolves a sex label or synonym to its canonical value
func ParseSex(value string) (Sex, bool) {
	sex, ok := sexSynonyms[strings.ToLower(strings.TrimSpace(value))]
	return sex, ok
}

// Deprivation identifies one of the three deprivation categories
type Deprivation string

const (
	DeprivationHealth         Deprivation = "salud"
	DeprivationEducation      Deprivation = "educacion"
	DeprivationSocialSecurity Deprivation = "seguridad_social"
)

// Deprivations lists every category in reporting order
var Deprivations = []Deprivation{DeprivationHealth, DeprivationEducation, DeprivationSocialSecurity}

// ParseDeprivation resolves a deprivation key, accepting the "carencia_" prefix
// and the accented spelling of educación.
func ParseDeprivation(value string) (Deprivation, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.TrimPrefix(key, "carencia_")
	key = strings.ReplaceAll(key, "ó", "o")
	key = strings.ReplaceAll(key, " ", "_")
	for _, d := range Deprivations {
		if string(d) == key {
			return d, true
		}
	}
	return "", false
}

// Column returns the dataset column holding this deprivation flag
func (d Deprivation) Column() string {
	switch d {
	case DeprivationHealth:
		return ColumnHealthLack
	case DeprivationEducation:
		return ColumnEducationLag
	case DeprivationSocialSecurity:
		return ColumnSocialSecurityLack
	}
	return ""
}

// Label returns the human-readable name of the deprivation
func (d Deprivation) Label() string {
	switch d {
	case DeprivationHealth:
		return "Salud"
	case DeprivationEducation:
		return "Educación"
	case DeprivationSocialSecurity:
		return "Seguridad Social"
	}
	return string(d)
}

// DeprivationKeys returns the string keys of all categories
func DeprivationKeys() []string {
	keys := make([]string, len(Deprivations))
	for i, d := range Deprivations {
		keys[i] = string(d)
	}
	return keys
}

// Person is one row of the flat table. Values are set once by ingestion.
type Person struct {
	HouseholdID string
	PersonID    string
	Age         int
	Sex         Sex
	Kinship     string
	PersonType  string

	Neighborhood string
	CensusBlock  string
	Block        string
	Zone         string

	HealthLack         bool
	EducationLag       bool
	SocialSecurityLack bool
	ReceivesSupport    bool

	// Eligible holds one flag per program id
	Eligible map[string]bool
	// Attributes keeps any other source column as its raw string
	Attributes map[string]string
}

// HasDeprivation reports whether the flag for d is present
func (p Person) HasDeprivation(d Deprivation) bool {
	switch d {
	case DeprivationHealth:
		return p.HealthLack
	case DeprivationEducation:
		return p.EducationLag
	case DeprivationSocialSecurity:
		return p.SocialSecurityLack
	}
	return false
}

// Intensity counts how many deprivation flags are present (0-3)
func (p Person) Intensity() int {
	n := 0
	for _, d := range Deprivations {
		if p.HasDeprivation(d) {
			n++
		}
	}
	return n
}

// IsEligible reports eligibility for a program id
func (p Person) IsEligible(program string) bool {
	return p.Eligible[program]
}

// Field returns the value of a column in its external string form.
// Boolean flags render as "yes"/"no", matching the source dataset convention.
func (p Person) Field(column string) (string, bool) {
	switch column {
	case ColumnHouseholdID:
		return p.HouseholdID, true
	case ColumnPersonID:
		return p.PersonID, true
	case ColumnAge:
		return strconv.Itoa(p.Age), true
	case ColumnSex:
		return string(p.Sex), true
	case ColumnKinship:
		return p.Kinship, true
	case ColumnPersonType:
		return p.PersonType, true
	case ColumnNeighborhood:
		return p.Neighborhood, true
	case ColumnCensusBlock:
		return p.CensusBlock, true
	case ColumnBlock:
		return p.Block, true
	case ColumnZone:
		return p.Zone, true
	case ColumnHealthLack:
		return YesNo(p.HealthLack), true
	case ColumnEducationLag:
		return YesNo(p.EducationLag), true
	case ColumnSocialSecurityLack:
		return YesNo(p.SocialSecurityLack), true
	case ColumnReceivesSupport:
		return YesNo(p.ReceivesSupport), true
	}
	if program, ok := ProgramFromColumn(column); ok {
		eligible, exists := p.Eligible[program]
		if !exists {
			return "", false
		}
		return YesNo(eligible), true
	}
	value, ok := p.Attributes[column]
	return value, ok
}

// YesNo renders a boolean in the dataset's string convention
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
