package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgap/domain/population"
)

func TestNewAgeRange(t *testing.T) {
	r, err := NewAgeRange(0, 12)
	require.NoError(t, err)
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(12))
	assert.False(t, r.Contains(13))
	assert.Equal(t, "rango_edad_0_12", r.Marker())

	_, err = NewAgeRange(20, 10)
	assert.Error(t, err)
}

func TestCriteria_Empty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{Order: OrderDescending}.IsEmpty())
	assert.False(t, Criteria{Order: OrderDescending}.Filters())
	assert.True(t, Criteria{Sex: "Mujer"}.Filters())
}

func TestCriteria_WithDeprivationKeepsOrder(t *testing.T) {
	base := Criteria{}
	c := base.WithDeprivation(population.DeprivationSocialSecurity).
		WithDeprivation(population.DeprivationHealth).
		WithDeprivation(population.DeprivationHealth)

	assert.Equal(t, []population.Deprivation{population.DeprivationHealth, population.DeprivationSocialSecurity}, c.Deprivations)
	assert.Empty(t, base.Deprivations)
}

func TestCriteria_FingerprintDeterministic(t *testing.T) {
	a := Criteria{AgeRange: &AgeRange{Min: 65, Max: 100}, Program: population.ProgramPensionAdultosMayores}
	b := Criteria{AgeRange: &AgeRange{Min: 65, Max: 100}, Program: population.ProgramPensionAdultosMayores}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), Criteria{}.Fingerprint())
}

func TestParseOrder(t *testing.T) {
	o, ok := ParseOrder("descendente")
	assert.True(t, ok)
	assert.Equal(t, OrderDescending, o)
	_, ok = ParseOrder("sideways")
	assert.False(t, ok)
}
