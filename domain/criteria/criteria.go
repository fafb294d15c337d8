package criteria

import (
	"fmt"
	"sort"

	"socialgap/domain/core"
	"socialgap/domain/population"
)

// AgeRange is an inclusive age interval
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NewAgeRange validates and builds an age range
func NewAgeRange(min, max int) (*AgeRange, error) {
	if min > max {
		return nil, core.NewInvalidArgumentError("age_range", fmt.Sprintf("min %d greater than max %d", min, max))
	}
	if min < 0 {
		return nil, core.NewInvalidArgumentError("age_range", "min must not be negative")
	}
	return &AgeRange{Min: min, Max: max}, nil
}

// Contains reports whether age lies within the range, both bounds inclusive
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Marker is the conceptual field token for this range, e.g. rango_edad_65_100
func (r AgeRange) Marker() string {
	return fmt.Sprintf("rango_edad_%d_%d", r.Min, r.Max)
}

// Order is a ranking direction
type Order string

const (
	OrderDescending Order = "desc"
	OrderAscending  Order = "asc"
)

// ParseOrder accepts the English and Spanish spellings of both directions
func ParseOrder(value string) (Order, bool) {
	switch value {
	case "desc", "descending", "descendente":
		return OrderDescending, true
	case "asc", "ascending", "ascendente":
		return OrderAscending, true
	}
	return "", false
}

// Criteria is a typed filter set. The zero value matches every row.
type Criteria struct {
	AgeRange     *AgeRange                `json:"age_range,omitempty"`
	Sex          string                   `json:"sex,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Deprivations []population.Deprivation `json:"deprivations,omitempty"`
	Program      string                   `json:"program,omitempty"`
	MinIntensity int                      `json:"min_intensity,omitempty"`
	Geography    string                   `json:"geography,omitempty"`
	Order        Order                    `json:"order,omitempty"`
}

// IsEmpty reports whether no dimension at all is set
func (c Criteria) IsEmpty() bool {
	return !c.Filters() && c.Geography == "" && c.Order == ""
}

// Filters reports whether any row-narrowing dimension is set
func (c Criteria) Filters() bool {
	return c.AgeRange != nil || c.Sex != "" || c.Location != "" ||
		len(c.Deprivations) > 0 || c.Program != "" || c.MinIntensity > 0
}

// HasDeprivation reports whether d is requested
func (c Criteria) HasDeprivation(d population.Deprivation) bool {
	for _, existing := range c.Deprivations {
		if existing == d {
			return true
		}
	}
	return false
}

// WithDeprivation returns a copy with d added to the deprivation set, kept in
// canonical category order.
func (c Criteria) WithDeprivation(d population.Deprivation) Criteria {
	if c.HasDeprivation(d) {
		return c
	}
	next := c
	next.Deprivations = append(append([]population.Deprivation(nil), c.Deprivations...), d)
	rank := make(map[population.Deprivation]int, len(population.Deprivations))
	for i, known := range population.Deprivations {
		rank[known] = i
	}
	sort.SliceStable(next.Deprivations, func(i, j int) bool {
		return rank[next.Deprivations[i]] < rank[next.Deprivations[j]]
	})
	return next
}

// WithoutLocation returns a copy with the location cleared
func (c Criteria) WithoutLocation() Criteria {
	next := c
	next.Location = ""
	return next
}

// Fingerprint is a stable digest of the criteria, identical for equal criteria
func (c Criteria) Fingerprint() core.Fingerprint {
	fp, err := core.FingerprintOf(c)
	if err != nil {
		return ""
	}
	return fp
}
