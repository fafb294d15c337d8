package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgap/domain/core"
	"socialgap/domain/population"
	"socialgap/internal/testkit"
)

func household() *population.Table {
	return testkit.TableOf(
		testkit.Person{Household: "A", Age: 40, Sex: population.SexFemale, Neighborhood: "Centro", Health: true},
		testkit.Person{Household: "A", Age: 42, Sex: population.SexMale, Neighborhood: "Centro", Health: true, Social: true},
		testkit.Person{Household: "A", Age: 10, Sex: population.SexFemale, Neighborhood: "Centro"},
		testkit.Person{Household: "B", Age: 71, Sex: population.SexFemale, Neighborhood: "La Joya", Social: true},
	)
}

func TestProfile(t *testing.T) {
	profile := Profile(household())

	assert.Equal(t, 4, profile.Total)
	assert.Equal(t, 40.8, profile.MeanAge)
	assert.Equal(t, map[string]int{"Mujer": 3, "Hombre": 1}, profile.SexDistribution)
	assert.Equal(t, 2, profile.Households)
	assert.Equal(t, 2.0, profile.PersonsPerHousehold)
}

func TestProfile_Empty(t *testing.T) {
	profile := Profile(testkit.TableOf())

	assert.Equal(t, 0, profile.Total)
	assert.Equal(t, 0.0, profile.MeanAge)
	assert.Equal(t, 0.0, profile.PersonsPerHousehold)
	assert.Empty(t, profile.SexDistribution)
}

func TestProfile_MeanAgeBounded(t *testing.T) {
	table := testkit.NewPopulationGenerator(testkit.DefaultPopulationConfig()).Generate()
	for _, sex := range []population.Sex{population.SexFemale, population.SexMale} {
		subset := table.Where(func(p population.Person) bool { return p.Sex == sex })
		mean := Profile(subset).MeanAge
		assert.GreaterOrEqual(t, mean, 0.0)
		assert.LessOrEqual(t, mean, 120.0)
	}
}

func TestAgesAndSexPercentages(t *testing.T) {
	ages := Ages(household())
	assert.Equal(t, AgeStats{Mean: 40.8, Median: 41, Min: 10, Max: 71}, ages)

	pct := SexPercentages(map[string]int{"Mujer": 2, "Hombre": 1}, 3)
	assert.Equal(t, 66.7, pct["Mujer"])
	assert.Equal(t, 33.3, pct["Hombre"])
}

func TestPrevalence(t *testing.T) {
	prev := Prevalence(household())
	require.Len(t, prev, 3)

	assert.Equal(t, population.DeprivationHealth, prev[0].Deprivation)
	assert.Equal(t, 2, prev[0].Count)
	assert.Equal(t, 50.0, prev[0].Percent)
	assert.Equal(t, 0, prev[1].Count)
	assert.Equal(t, 2, prev[2].Count)

	empty := Prevalence(testkit.TableOf())
	assert.Equal(t, 0.0, empty[0].Percent)
}

func TestCategorical(t *testing.T) {
	dist, err := Categorical(household(), population.ColumnNeighborhood, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, dist.Total)
	assert.Equal(t, 2, dist.Distinct)
	require.Len(t, dist.Categories, 1)
	assert.Equal(t, CategoryShare{Value: "Centro", Count: 3, Percent: 75}, dist.Categories[0])

	_, err = Categorical(household(), "ingreso", 5)
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
}

func TestNumeric(t *testing.T) {
	dist, err := Numeric(household(), population.ColumnAge)
	require.NoError(t, err)

	assert.Equal(t, 4, dist.Total)
	assert.Equal(t, 40.75, dist.Summary.Mean)
	assert.Equal(t, 41.0, dist.Summary.Median)
	assert.Equal(t, 10.0, dist.Summary.Min)
	assert.Equal(t, 71.0, dist.Summary.Max)
	assert.Equal(t, 24.92, dist.Summary.StdDev)
	assert.LessOrEqual(t, dist.Summary.Q1, dist.Summary.Median)
	assert.GreaterOrEqual(t, dist.Summary.Q3, dist.Summary.Median)

	_, err = Numeric(household(), population.ColumnNeighborhood)
	assert.ErrorIs(t, err, core.ErrNotNumeric)
}

func TestGeographic(t *testing.T) {
	dist := Geographic(household(), population.ColumnNeighborhood, 3)

	assert.Equal(t, 2, dist.AreasAffected)
	require.Len(t, dist.TopAreas, 2)
	assert.Equal(t, "Centro", dist.TopAreas[0].Value)
	assert.Equal(t, 75.0, dist.TopAreas[0].Percent)

	empty := Geographic(testkit.TableOf(), population.ColumnNeighborhood, 3)
	assert.Equal(t, 0, empty.AreasAffected)
	assert.Empty(t, empty.TopAreas)
}

func TestExploreGeography(t *testing.T) {
	table := testkit.NewPopulationGenerator(testkit.DefaultPopulationConfig()).Generate()

	overview := ExploreGeography(table, 3)

	assert.Equal(t, 7, overview.Neighborhoods.Distinct)
	assert.Len(t, overview.Neighborhoods.Top, 3)
	assert.LessOrEqual(t, len(overview.CensusBlocks.Top), 3)
	assert.Equal(t, 2, overview.Zones.Distinct)
	assert.Len(t, overview.Zones.Top, 2)

	total := 0
	for _, z := range overview.Zones.Top {
		total += z.Count
	}
	assert.Equal(t, table.Len(), total)
}
