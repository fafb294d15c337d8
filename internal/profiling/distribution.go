package profiling

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"socialgap/domain/core"
	"socialgap/domain/population"
	"socialgap/internal/rate"
)

// CategoryShare is one category of a distribution
type CategoryShare struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CategoricalDistribution is the frequency of each value of a column
type CategoricalDistribution struct {
	Column     string          `json:"column"`
	Total      int             `json:"total"`
	Distinct   int             `json:"distinct"`
	Categories []CategoryShare `json:"categories"`
}

// NumericSummary holds descriptive statistics of a numeric column
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// NumericDistribution describes a numeric column
type NumericDistribution struct {
	Column  string         `json:"column"`
	Total   int            `json:"total"`
	Summary NumericSummary `json:"summary"`
}

// Categorical counts the values of column, keeping the topN most frequent.
// topN <= 0 keeps every category. Empty values are not counted.
func Categorical(table *population.Table, column string, topN int) (*CategoricalDistribution, error) {
	if !table.HasColumn(column) {
		return nil, &core.FieldNotFoundError{Field: column, Available: table.Columns()}
	}

	counts := table.ValueCounts(column)
	total := 0
	kept := make([]population.Count, 0, len(counts))
	for _, c := range counts {
		if strings.TrimSpace(c.Value) == "" {
			continue
		}
		kept = append(kept, c)
		total += c.Count
	}

	dist := &CategoricalDistribution{
		Column:     column,
		Total:      total,
		Distinct:   len(kept),
		Categories: make([]CategoryShare, 0, len(kept)),
	}
	for i, c := range kept {
		if topN > 0 && i >= topN {
			break
		}
		dist.Categories = append(dist.Categories, CategoryShare{
			Value:   c.Value,
			Count:   c.Count,
			Percent: rate.Percent(c.Count, total, rate.RatePlaces),
		})
	}
	return dist, nil
}

// Numeric computes descriptive statistics for a column whose non-empty values
// all parse as numbers. The standard deviation is the sample deviation.
func Numeric(table *population.Table, column string) (*NumericDistribution, error) {
	if !table.HasColumn(column) {
		return nil, &core.FieldNotFoundError{Field: column, Available: table.Columns()}
	}

	data := make([]float64, 0, table.Len())
	for _, p := range table.Rows() {
		raw, ok := p.Field(column)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s has value %q", core.ErrNotNumeric, column, raw)
		}
		data = append(data, v)
	}

	dist := &NumericDistribution{Column: column, Total: len(data)}
	if len(data) == 0 {
		return dist, nil
	}

	summary, err := summarize(data)
	if err != nil {
		return nil, err
	}
	dist.Summary = summary
	return dist, nil
}

func summarize(data []float64) (NumericSummary, error) {
	var s NumericSummary
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Q1, err = stats.Percentile(data, 25); err != nil {
		return s, err
	}
	if s.Q3, err = stats.Percentile(data, 75); err != nil {
		return s, err
	}

	s.Skewness = calculateSkewness(data, s.Mean, s.StdDev)
	s.Outliers = detectOutliers(data, s.Q1, s.Q3)
	return s.rounded(), nil
}

func (s NumericSummary) rounded() NumericSummary {
	for _, v := range []*float64{&s.Mean, &s.Median, &s.StdDev, &s.Min, &s.Max, &s.Q1, &s.Q3, &s.Skewness} {
		*v = rate.Round(*v, rate.StatPlaces)
	}
	return s
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	n := 0
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
