// Package profiling computes demographic summaries and value distributions
// over population subsets.
package profiling

import (
	"github.com/montanaflynn/stats"

	"socialgap/domain/population"
	"socialgap/internal/rate"
)

// DemographicProfile summarizes a subset. MeanAge and PersonsPerHousehold are
// 0.0 for an empty subset.
type DemographicProfile struct {
	Total               int            `json:"total"`
	MeanAge             float64        `json:"mean_age"`
	SexDistribution     map[string]int `json:"sex_distribution"`
	Households          int            `json:"households"`
	PersonsPerHousehold float64        `json:"persons_per_household"`
}

// AgeStats describes the age of a subset; every field is zero when empty
type AgeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Profile computes the demographic profile of table
func Profile(table *population.Table) DemographicProfile {
	profile := DemographicProfile{
		Total:           table.Len(),
		SexDistribution: SexDistribution(table),
	}
	if table.Len() == 0 {
		return profile
	}

	profile.MeanAge = Ages(table).Mean
	profile.Households = table.Households()

	sizes := make(map[string]int, profile.Households)
	for _, p := range table.Rows() {
		sizes[p.HouseholdID]++
	}
	values := make([]float64, 0, len(sizes))
	for _, n := range sizes {
		values = append(values, float64(n))
	}
	if mean, err := stats.Mean(values); err == nil {
		profile.PersonsPerHousehold = rate.Round(mean, rate.HouseholdPlaces)
	}

	return profile
}

// Ages computes age statistics, with the mean and median rounded to one decimal
func Ages(table *population.Table) AgeStats {
	if table.Len() == 0 {
		return AgeStats{}
	}
	values := make([]float64, table.Len())
	for i, p := range table.Rows() {
		values[i] = float64(p.Age)
	}

	s := AgeStats{}
	if mean, err := stats.Mean(values); err == nil {
		s.Mean = rate.Round(mean, rate.MeanAgePlaces)
	}
	if median, err := stats.Median(values); err == nil {
		s.Median = rate.Round(median, rate.MeanAgePlaces)
	}
	if min, err := stats.Min(values); err == nil {
		s.Min = int(min)
	}
	if max, err := stats.Max(values); err == nil {
		s.Max = int(max)
	}
	return s
}

// SexDistribution counts people per sex category
func SexDistribution(table *population.Table) map[string]int {
	dist := make(map[string]int)
	for _, p := range table.Rows() {
		dist[string(p.Sex)]++
	}
	return dist
}

// SexPercentages converts a sex distribution into percentages of total
func SexPercentages(dist map[string]int, total int) map[string]float64 {
	out := make(map[string]float64, len(dist))
	for sex, n := range dist {
		out[sex] = rate.Percent(n, total, rate.SexPlaces)
	}
	return out
}

// DeprivationPrevalence is the share of a subset carrying one deprivation
type DeprivationPrevalence struct {
	Deprivation population.Deprivation `json:"deprivation"`
	Label       string                 `json:"label"`
	Count       int                    `json:"count"`
	Percent     float64                `json:"percent"`
}

// Prevalence computes each deprivation's count and rate, in canonical order
func Prevalence(table *population.Table) []DeprivationPrevalence {
	out := make([]DeprivationPrevalence, 0, len(population.Deprivations))
	for _, d := range population.Deprivations {
		n := 0
		for _, p := range table.Rows() {
			if p.HasDeprivation(d) {
				n++
			}
		}
		out = append(out, DeprivationPrevalence{
			Deprivation: d,
			Label:       d.Label(),
			Count:       n,
			Percent:     rate.Percent(n, table.Len(), rate.RatePlaces),
		})
	}
	return out
}
