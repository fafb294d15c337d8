package terms

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	return NewTranslator(DefaultDictionary(), zap.NewNop())
}

func TestDefaultDictionary_LongestFirst(t *testing.T) {
	rules := DefaultDictionary().Rules()
	require.NotEmpty(t, rules)

	for i := 1; i < len(rules); i++ {
		prev := utf8.RuneCountInString(rules[i-1].match)
		cur := utf8.RuneCountInString(rules[i].match)
		assert.GreaterOrEqual(t, prev, cur, "rule %q before %q", rules[i-1].Phrase, rules[i].Phrase)
	}
}

func TestTranslate_OlderAdultsWithoutPension(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("adultos mayores sin pensión")

	assert.Equal(t, StatusTranslated, result.Status)
	require.NotNil(t, result.Criteria.AgeRange)
	assert.Equal(t, criteria.AgeRange{Min: 65, Max: 100}, *result.Criteria.AgeRange)
	assert.Equal(t, population.ProgramPensionAdultosMayores, result.Criteria.Program)
	assert.Contains(t, result.Fields, "rango_edad_65_100")
	assert.Contains(t, result.Fields, "es_elegible_pension_adultos_mayores")
	assert.Contains(t, result.MatchedPhrases(), "adultos mayores")

	// "adultos" also matches but the longer phrase already set the range
	require.NotEmpty(t, result.Ignored)
	assert.Equal(t, "adultos", result.Ignored[0].Phrase)

	again := tr.Translate("adultos mayores sin pensión")
	assert.Equal(t, result, again)
	assert.Equal(t, result.Criteria.Fingerprint(), again.Criteria.Fingerprint())

	assert.Empty(t, result.Criteria.Order)
	assert.NotContains(t, result.MatchedPhrases(), "mayor")
}

func TestTranslate_OrderMatchesWholeWords(t *testing.T) {
	tr := newTestTranslator(t)

	cases := map[string]criteria.Order{
		"colonias con mayor carencia de salud": criteria.OrderDescending,
		"mujeres, por colonia, de menor a":     criteria.OrderAscending,
		"la colonia más poblada":               criteria.OrderDescending,
		"adultos mayores por colonia":          "",
		"hombres menores de edad":              "",
	}
	for query, want := range cases {
		assert.Equal(t, want, tr.Translate(query).Criteria.Order, query)
	}
}

func TestTranslate_AgeAndDeprivation(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("Niñas con carencia de salud")

	require.NotNil(t, result.Criteria.AgeRange)
	assert.Equal(t, criteria.AgeRange{Min: 0, Max: 12}, *result.Criteria.AgeRange)
	assert.Equal(t, []population.Deprivation{population.DeprivationHealth}, result.Criteria.Deprivations)
	assert.Equal(t, []string{population.ColumnHealthLack, "rango_edad_0_12"}, result.Fields)
	assert.Empty(t, result.Ignored)
}

func TestTranslate_NoCriteria(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("hola, ¿cómo estás?")

	assert.Equal(t, StatusNoCriteria, result.Status)
	assert.True(t, result.Criteria.IsEmpty())
	assert.Empty(t, result.Fields)
	assert.Empty(t, result.Matches)
}

func TestTranslate_SexFirstMatchWins(t *testing.T) {
	tr := newTestTranslator(t)

	same := tr.Translate("mujeres jóvenes")
	assert.Equal(t, string(population.SexFemale), same.Criteria.Sex)
	assert.Empty(t, same.Ignored)

	conflict := tr.Translate("hombres y mujeres")
	assert.Equal(t, string(population.SexMale), conflict.Criteria.Sex)
	require.Len(t, conflict.Ignored, 2)
	assert.Equal(t, KindSex, conflict.Ignored[0].Kind)
}

func TestTranslate_GeographyAndEligibility(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("elegibles por ageb")

	assert.Equal(t, StatusTranslated, result.Status)
	assert.Equal(t, population.ColumnCensusBlock, result.Criteria.Geography)
	assert.Equal(t, []string{population.ColumnCensusBlock}, result.Fields)
	assert.Contains(t, result.MatchedPhrases(), "elegibles")
}

func TestTranslate_MultipleDeprivations(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("personas con carencia máxima")

	assert.Equal(t, 3, result.Criteria.MinIntensity)
	assert.Equal(t, []string{"multiple_carencias_3"}, result.Fields)
}

func TestTranslate_ProgramAlsoDerivesColumn(t *testing.T) {
	tr := newTestTranslator(t)

	result := tr.Translate("becas benito juárez para adolescentes")

	assert.Equal(t, population.ProgramBecaBenitoJuarez, result.Criteria.Program)
	assert.Contains(t, result.Fields, "es_elegible_beca_benito_juarez")
	assert.NotContains(t, result.Fields, "es_elegible_beca_rita_cetina")
	require.NotEmpty(t, result.Ignored)
	assert.Equal(t, "becas", result.Ignored[0].Phrase)
}

func TestDetectAmbiguities(t *testing.T) {
	tr := newTestTranslator(t)

	report := tr.DetectAmbiguities("¿Dónde hay más Pobreza y acceso limitado?")
	assert.True(t, report.Ambiguous)
	require.Len(t, report.Ambiguities, 2)
	assert.Equal(t, "pobreza", report.Ambiguities[0].Term)
	assert.Contains(t, ClarificationPrompt(report), "pobreza multidimensional")

	plain := tr.DetectAmbiguities("mujeres con carencia de salud")
	assert.False(t, plain.Ambiguous)
	assert.Empty(t, ClarificationPrompt(plain))
}

func TestLoadDictionary_Errors(t *testing.T) {
	_, err := LoadDictionary([]byte(`sex:
  - phrases: ["mujer"]
    value: Otro
`))
	assert.Error(t, err)

	_, err = LoadDictionary([]byte(`programs:
  - program: inea
    phrases: ["inea"]
columns:
  - column: inea
    phrases: ["inea"]
`))
	assert.ErrorContains(t, err, "defined twice")

	_, err = LoadDictionary([]byte(`geography:
  - column: edad_persona
    phrases: ["por edad"]
`))
	assert.Error(t, err)
}
