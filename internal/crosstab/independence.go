package crosstab

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"socialgap/internal/rate"
)

// Independence is a Pearson chi-square test of the table's inner cells
type Independence struct {
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	CramersV         float64 `json:"cramers_v"`
	Signal           string  `json:"signal"`
}

// ChiSquare returns nil when either axis has fewer than two categories
// or the table is empty. The signal is classified before rounding.
func ChiSquare(t *Table) *Independence {
	r, c := len(t.Rows)-1, len(t.Columns)-1
	n := t.GrandTotal()
	if r < 2 || c < 2 || n == 0 {
		return nil
	}

	chiSquare := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			expected := float64(t.Counts[i][c]) * float64(t.Counts[r][j]) / float64(n)
			if expected == 0 {
				continue
			}
			diff := float64(t.Counts[i][j]) - expected
			chiSquare += diff * diff / expected
		}
	}

	df := (r - 1) * (c - 1)
	chiDist := distuv.ChiSquared{K: float64(df)}
	pValue := 1 - chiDist.CDF(chiSquare)
	cramersV := math.Sqrt(chiSquare / (float64(n) * float64(min(r-1, c-1))))

	return &Independence{
		ChiSquare:        rate.Round(chiSquare, rate.TestPlaces),
		DegreesOfFreedom: df,
		PValue:           rate.Round(pValue, rate.TestPlaces),
		CramersV:         rate.Round(cramersV, rate.TestPlaces),
		Signal:           classifySignal(cramersV, pValue),
	}
}

func classifySignal(cramersV, pValue float64) string {
	if pValue > 0.05 {
		return "weak"
	}
	if cramersV > 0.5 {
		return "very_strong"
	}
	if cramersV > 0.3 {
		return "strong"
	}
	if cramersV > 0.1 {
		return "moderate"
	}
	return "weak"
}
