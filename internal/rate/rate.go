// Package rate holds the rounding rules shared by every analysis.
package rate

import "math"

// Decimal places used in results
const (
	RatePlaces       = 2
	MeanAgePlaces    = 1
	ComparisonPlaces = 1
	SexPlaces        = 1
	HouseholdPlaces  = 2
	StatPlaces       = 2
	TestPlaces       = 4
)

// Round rounds x half away from zero to the given number of decimals
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Percent returns num/den*100 rounded, or 0 when den is zero
func Percent(num, den int, places int) float64 {
	if den == 0 {
		return 0
	}
	return Round(float64(num)/float64(den)*100, places)
}
