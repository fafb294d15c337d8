package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/crosstab"
	"socialgap/internal/eligibility"
	"socialgap/internal/profiling"
	"socialgap/internal/testkit"
	"socialgap/internal/validation"
)

const pension = population.ProgramPensionAdultosMayores

func newTestService() *Service {
	table := testkit.TableOf(
		testkit.Person{Household: "H1", Neighborhood: "Centro", CensusBlock: "001-1", Age: 70, Sex: population.SexFemale, Health: true, Eligible: []string{pension}},
		testkit.Person{Household: "H1", Neighborhood: "Centro", CensusBlock: "001-1", Age: 68, Sex: population.SexMale, Support: true, Eligible: []string{pension}},
		testkit.Person{Household: "H2", Neighborhood: "La Joya", CensusBlock: "002-3", Age: 30, Sex: population.SexFemale, Health: true, Social: true},
		testkit.Person{Household: "H3", Neighborhood: "La Joya", CensusBlock: "002-3", Age: 8, Sex: population.SexMale, Education: true, Eligible: []string{population.ProgramBecaBenitoJuarez}},
		testkit.Person{Household: "H4", Neighborhood: "San Miguel", CensusBlock: "003-0", Age: 81, Sex: population.SexFemale, Health: true, Education: true, Social: true, Eligible: []string{pension}},
	)
	return NewService(table, nil, Options{Workers: 2, DefaultTopN: 10}, zap.NewNop())
}

func call(t *testing.T, s *Service, name, args string) (any, error) {
	t.Helper()
	return s.Call(context.Background(), name, MustArgs(args))
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments([]byte(`{"program":" imss ","top_n":"5","age_range":[0,12],"programs":"imss, benito","bin_ages":false}`))
	require.NoError(t, err)

	assert.Equal(t, "imss", args.String("program"))
	n, err := args.Int("top_n", 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"imss", "benito"}, args.Strings("programs"))
	assert.False(t, args.Bool("bin_ages", true))
	assert.True(t, args.Bool("missing", true))

	c, err := args.Criteria(false)
	require.NoError(t, err)
	assert.Equal(t, &criteria.AgeRange{Min: 0, Max: 12}, c.AgeRange)
	assert.Empty(t, c.Program)

	empty, err := ParseArguments(nil)
	require.NoError(t, err)
	assert.False(t, empty.Has("program"))

	_, err = ParseArguments([]byte(`[1,2]`))
	assert.True(t, core.IsInputError(err))
	_, err = ParseArguments([]byte(`{"a":`))
	assert.True(t, core.IsInputError(err))
}

func TestArgs_CriteriaShapes(t *testing.T) {
	c, err := MustArgs(`{"age_range":{"min":65,"max":100},"deprivations":["salud","carencia_educacion"],"sex":"m","geography":"ageb","order":"ASC"}`).Criteria(true)
	require.NoError(t, err)
	assert.Equal(t, &criteria.AgeRange{Min: 65, Max: 100}, c.AgeRange)
	assert.Equal(t, []population.Deprivation{population.DeprivationHealth, population.DeprivationEducation}, c.Deprivations)
	assert.Equal(t, "m", c.Sex)
	assert.Equal(t, population.ColumnCensusBlock, c.Geography)
	assert.Equal(t, criteria.OrderAscending, c.Order)

	c, err = MustArgs(`{"age_range":"18-29"}`).Criteria(true)
	require.NoError(t, err)
	assert.Equal(t, &criteria.AgeRange{Min: 18, Max: 29}, c.AgeRange)

	for _, bad := range []string{
		`{"age_range":[12]}`,
		`{"age_range":[30,10]}`,
		`{"age_range":[17.9,30]}`,
		`{"age_range":"17.5-30"}`,
		`{"geography":"estado"}`,
		`{"order":"random"}`,
		`{"min_intensity":1.5}`,
	} {
		_, err := MustArgs(bad).Criteria(true)
		assert.True(t, core.IsInputError(err), bad)
	}

	_, err = MustArgs(`{"age_range":{"min":18,"max":29.5}}`).Criteria(true)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = MustArgs(`{"deprivation":"vivienda"}`).Criteria(true)
	assert.True(t, core.IsSchemaError(err))
	assert.Equal(t, population.DeprivationKeys(), core.AlternativesOf(err))
}

func TestCatalog_Names(t *testing.T) {
	names := FunctionNames()
	assert.Len(t, names, 12)
	for _, name := range []string{
		FnEligibilityByProgram, FnCoverageGapByProgram, FnDeprivationWithoutCoverage,
		FnMultiDeprivationIntensity, FnMultiProgramComparison, FnCrossTabulation,
		FnCategoricalDistribution, FnNumericDistribution, FnGeographyExplorer,
		FnGeographicCoverage, FnPopulationSegment, FnTranslateQuery,
	} {
		fn, ok := Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, fn.Description, name)
	}
}

func TestCall_EveryFunction(t *testing.T) {
	s := newTestService()

	result, err := call(t, s, FnEligibilityByProgram, `{"program":"pension_adultos_mayores","location":"Centro"}`)
	require.NoError(t, err)
	elig := result.(*eligibility.EligibilityResult)
	assert.Equal(t, 2, elig.Population.Eligible)
	require.NotNil(t, elig.Comparison)

	result, err = call(t, s, FnCoverageGapByProgram, `{"program":"pension_adultos_mayores"}`)
	require.NoError(t, err)
	assert.Equal(t, 2, result.(*eligibility.CoverageGapResult).Gap)

	result, err = call(t, s, FnDeprivationWithoutCoverage, `{"deprivation":"salud"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*eligibility.DeprivationGapResult).WithoutCoverage)

	result, err = call(t, s, FnMultiDeprivationIntensity, `{}`)
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*eligibility.IntensityResult).Extreme.Count)

	_, err = call(t, s, FnMultiDeprivationIntensity, `{"program":"pension_adultos_mayores"}`)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Equal(t, KindInvalidInput, NewErrorResult(err).Kind)

	result, err = call(t, s, FnMultiProgramComparison, `{"programs":["benito","pension_adultos_mayores"]}`)
	require.NoError(t, err)
	assert.Equal(t, pension, result.(*eligibility.ComparisonResult).TopProgram)

	result, err = call(t, s, FnCrossTabulation, `{"row_field":"sexo_persona","column_field":"presencia_carencia_salud_persona"}`)
	require.NoError(t, err)
	ct := result.(*crosstab.Result)
	assert.Equal(t, 5, ct.Summary.GrandTotal)
	assert.Len(t, ct.Table.Rows, 3)

	result, err = call(t, s, FnCategoricalDistribution, `{"column":"colonia","filters":{"sex":"Mujer"}}`)
	require.NoError(t, err)
	assert.Equal(t, 3, result.(*profiling.CategoricalDistribution).Total)

	result, err = call(t, s, FnNumericDistribution, `{"column":"edad_persona"}`)
	require.NoError(t, err)
	assert.Equal(t, 81.0, result.(*profiling.NumericDistribution).Summary.Max)

	result, err = call(t, s, FnGeographyExplorer, `{"top_n":2}`)
	require.NoError(t, err)
	assert.Len(t, result.(profiling.GeographyOverview).Neighborhoods.Top, 2)

	result, err = call(t, s, FnGeographicCoverage, `{"program":"pension_adultos_mayores","level":"colonia"}`)
	require.NoError(t, err)
	assert.Equal(t, 3, result.(*eligibility.GeographicCoverageResult).TotalEligible)

	result, err = call(t, s, FnPopulationSegment, `{"criteria":{"age_range":[60,100]},"limit":1}`)
	require.NoError(t, err)
	segment := result.(*eligibility.SegmentResult)
	assert.Equal(t, 3, segment.Profile.Total)
	require.Len(t, segment.Distribution.TopAreas, 1)
	assert.Equal(t, "Centro", segment.Distribution.TopAreas[0].Value)

	result, err = call(t, s, FnTranslateQuery, `{"query":"adultos mayores sin pensión"}`)
	require.NoError(t, err)
	qt := result.(*QueryTranslation)
	assert.True(t, qt.Validation.Executable)
	assert.Equal(t, pension, qt.Translation.Criteria.Program)
}

func TestCall_Errors(t *testing.T) {
	s := newTestService()

	_, err := call(t, s, "eligibility-by-magic", `{}`)
	res := NewErrorResult(err)
	assert.Equal(t, KindInvalidInput, res.Kind)
	assert.Equal(t, FunctionNames(), res.Alternatives)

	_, err = call(t, s, FnEligibilityByProgram, `{"program":"inexistente"}`)
	res = NewErrorResult(err)
	assert.Equal(t, KindSchema, res.Kind)
	assert.Equal(t, s.Table().Programs(), res.Alternatives)

	_, err = call(t, s, FnEligibilityByProgram, `{}`)
	assert.Equal(t, KindInvalidInput, NewErrorResult(err).Kind)

	_, err = call(t, s, FnCrossTabulation, `{"row_field":"sexo_persona","column_field":"ingreso"}`)
	res = NewErrorResult(err)
	assert.Equal(t, KindSchema, res.Kind)
	assert.Contains(t, res.Alternatives, population.ColumnAge)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Call(ctx, FnMultiDeprivationIntensity, MustArgs(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCall_MissingSupportColumn(t *testing.T) {
	cols := []string{population.ColumnAge, population.EligibilityColumn(pension)}
	table := population.NewTable(cols, []population.Person{{Age: 70, Eligible: map[string]bool{pension: true}}})
	s := NewService(table, nil, Options{}, nil)

	_, err := s.Call(context.Background(), FnCoverageGapByProgram, MustArgs(`{"program":"pension_adultos_mayores"}`))
	assert.Equal(t, KindMissingDependency, NewErrorResult(err).Kind)
}

func TestQuery(t *testing.T) {
	s := newTestService()

	res, err := s.Query(context.Background(), "adultos mayores sin pensión")
	require.NoError(t, err)
	assert.Equal(t, FnEligibilityByProgram, res.Function)
	assert.Equal(t, 3, res.Result.(*eligibility.EligibilityResult).Population.Eligible)

	res, err = s.Query(context.Background(), "mujeres con carencia de salud")
	require.NoError(t, err)
	assert.Equal(t, FnPopulationSegment, res.Function)
	assert.Equal(t, 3, res.Result.(*eligibility.SegmentResult).Profile.Total)

	_, err = s.Query(context.Background(), "hola, ¿qué tal?")
	assert.Equal(t, KindAmbiguous, NewErrorResult(err).Kind)

	_, err = s.Query(context.Background(), "  ")
	assert.Equal(t, KindInvalidInput, NewErrorResult(err).Kind)
}

func TestQuery_InvalidFieldsAreSchemaErrors(t *testing.T) {
	table := population.NewTable([]string{population.ColumnAge, population.ColumnSex}, []population.Person{{Age: 40, Sex: population.SexFemale}})
	s := NewService(table, nil, Options{}, nil)

	qt := s.Translate("mujeres con carencia de salud")
	assert.Equal(t, validation.FailureInvalidFields, qt.Validation.Failure)

	_, err := s.Query(context.Background(), "mujeres con carencia de salud")
	assert.Equal(t, KindSchema, NewErrorResult(err).Kind)
}

func TestCallIDFrom(t *testing.T) {
	id := core.CallID("fixed")
	assert.Equal(t, id, CallIDFrom(WithCallID(context.Background(), id)))
	assert.False(t, CallIDFrom(context.Background()).IsEmpty())
}
