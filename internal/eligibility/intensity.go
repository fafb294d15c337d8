package eligibility

import (
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/filter"
	"socialgap/internal/rate"
)

var intensityLabels = []string{"none", "one", "two", "three"}

// IntensityLevel is the number of people with exactly Deprivations flags
type IntensityLevel struct {
	Deprivations int     `json:"deprivations"`
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	Percent      float64 `json:"percent"`
}

// ExtremeCohort is the people with every deprivation present
type ExtremeCohort struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// IntensityResult is the 0-3 distribution of simultaneous deprivations
type IntensityResult struct {
	Criteria criteria.Criteria `json:"criteria"`
	Total    int               `json:"total"`
	Levels   []IntensityLevel  `json:"levels"`
	Extreme  ExtremeCohort     `json:"extreme_vulnerability"`
}

// Intensity counts present deprivations per person over the filtered subset
func (a *Analyzer) Intensity(c criteria.Criteria) (*IntensityResult, error) {
	base := baseCriteria(c)
	subset, err := filter.Apply(a.table, base)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(population.Deprivations)+1)
	for _, p := range subset.Rows() {
		counts[p.Intensity()]++
	}

	result := &IntensityResult{
		Criteria: base,
		Total:    subset.Len(),
		Levels:   make([]IntensityLevel, len(counts)),
	}
	for n, count := range counts {
		result.Levels[n] = IntensityLevel{
			Deprivations: n,
			Label:        intensityLabels[n],
			Count:        count,
			Percent:      rate.Percent(count, subset.Len(), rate.RatePlaces),
		}
	}
	extreme := counts[len(counts)-1]
	result.Extreme = ExtremeCohort{
		Count:   extreme,
		Percent: rate.Percent(extreme, subset.Len(), rate.RatePlaces),
	}
	return result, nil
}
