// Package filter narrows a population table by a criteria set.
package filter

import (
	"fmt"
	"strings"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

// Predicate reports whether a person satisfies a compiled criteria set
type Predicate func(population.Person) bool

// Compile validates c against the table schema and returns the AND of one
// mask per requested dimension.
func Compile(table *population.Table, c criteria.Criteria) (Predicate, error) {
	var masks []Predicate

	if r := c.AgeRange; r != nil {
		if r.Min > r.Max {
			return nil, core.NewInvalidArgumentError("age_range", fmt.Sprintf("min %d greater than max %d", r.Min, r.Max))
		}
		ageRange := *r
		masks = append(masks, func(p population.Person) bool {
			return ageRange.Contains(p.Age)
		})
	}

	if c.Sex != "" {
		sex, ok := population.ParseSex(c.Sex)
		if !ok {
			return nil, core.NewInvalidArgumentError("sex", fmt.Sprintf("'%s' is not a recognized sex value", c.Sex))
		}
		masks = append(masks, func(p population.Person) bool {
			return p.Sex == sex
		})
	}

	if needle := strings.ToLower(strings.TrimSpace(c.Location)); needle != "" {
		masks = append(masks, func(p population.Person) bool {
			return strings.Contains(strings.ToLower(p.Neighborhood), needle) ||
				strings.Contains(strings.ToLower(p.CensusBlock), needle) ||
				strings.Contains(strings.ToLower(p.Zone), needle)
		})
	}

	for _, d := range c.Deprivations {
		if !table.HasColumn(d.Column()) {
			return nil, &core.MissingColumnError{Column: d.Column(), Analysis: "deprivation filter"}
		}
		deprivation := d
		masks = append(masks, func(p population.Person) bool {
			return p.HasDeprivation(deprivation)
		})
	}

	if c.Program != "" {
		if !table.HasProgram(c.Program) {
			return nil, &core.ProgramNotFoundError{Program: c.Program, Available: table.Programs()}
		}
		program := c.Program
		masks = append(masks, func(p population.Person) bool {
			return p.IsEligible(program)
		})
	}

	if c.MinIntensity != 0 {
		if c.MinIntensity < 0 || c.MinIntensity > len(population.Deprivations) {
			return nil, core.NewInvalidArgumentError("min_intensity", fmt.Sprintf("must be between 1 and %d", len(population.Deprivations)))
		}
		min := c.MinIntensity
		masks = append(masks, func(p population.Person) bool {
			return p.Intensity() >= min
		})
	}

	return func(p population.Person) bool {
		for _, mask := range masks {
			if !mask(p) {
				return false
			}
		}
		return true
	}, nil
}

// Apply returns the subset of table matching c. Criteria without any
// row-narrowing dimension return the table unchanged; an empty result is a
// valid empty table.
func Apply(table *population.Table, c criteria.Criteria) (*population.Table, error) {
	if !c.Filters() {
		return table, nil
	}
	match, err := Compile(table, c)
	if err != nil {
		return nil, err
	}
	return table.Where(match), nil
}
