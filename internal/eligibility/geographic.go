package eligibility

import (
	"sort"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/filter"
	"socialgap/internal/profiling"
	"socialgap/internal/rate"
)

const (
	defaultCoverageTopN = 10
	defaultSegmentLimit = 3
)

// GeographicCoverageResult groups the eligible people of a program by area
type GeographicCoverageResult struct {
	Program       string                    `json:"program"`
	ProgramName   string                    `json:"program_name"`
	Level         string                    `json:"level"`
	TotalEligible int                       `json:"total_eligible"`
	AreasAffected int                       `json:"areas_affected"`
	TopAreas      []profiling.CategoryShare `json:"top_areas"`
}

// GeographicCoverage distributes the eligible people of program across the
// values of a geographic column
func (a *Analyzer) GeographicCoverage(program, level string, topN int, c criteria.Criteria) (*GeographicCoverageResult, error) {
	if err := a.requireProgram(program); err != nil {
		return nil, err
	}
	if level == "" {
		level = population.ColumnCensusBlock
	}
	if !population.IsGeographicColumn(level) || !a.table.HasColumn(level) {
		return nil, &core.FieldNotFoundError{Field: level, Available: availableGeography(a.table)}
	}
	if topN <= 0 {
		topN = defaultCoverageTopN
	}

	base := baseCriteria(c)
	base.Program = program
	eligible, err := filter.Apply(a.table, base)
	if err != nil {
		return nil, err
	}
	dist := profiling.Geographic(eligible, level, topN)

	return &GeographicCoverageResult{
		Program:       program,
		ProgramName:   population.DisplayName(program),
		Level:         level,
		TotalEligible: eligible.Len(),
		AreasAffected: dist.AreasAffected,
		TopAreas:      dist.TopAreas,
	}, nil
}

// SegmentResult is a filtered population with its profile and its areas
type SegmentResult struct {
	Criteria     criteria.Criteria                `json:"criteria"`
	Profile      profiling.DemographicProfile     `json:"profile"`
	ShareOfTotal float64                          `json:"share_of_total"`
	Distribution profiling.GeographicDistribution `json:"geographic_distribution"`
}

// Segment filters by every dimension of c and ranks the result by the
// geography of c (colonia by default). Ascending order lists the least
// concentrated areas first.
func (a *Analyzer) Segment(c criteria.Criteria, limit int) (*SegmentResult, error) {
	column := c.Geography
	if column == "" {
		column = population.ColumnNeighborhood
	}
	if !population.IsGeographicColumn(column) || !a.table.HasColumn(column) {
		return nil, &core.FieldNotFoundError{Field: column, Available: availableGeography(a.table)}
	}
	if limit <= 0 {
		limit = defaultSegmentLimit
	}

	segment, err := filter.Apply(a.table, c)
	if err != nil {
		return nil, err
	}

	dist := profiling.Geographic(segment, column, 0)
	if c.Order == criteria.OrderAscending {
		sort.SliceStable(dist.TopAreas, func(i, j int) bool {
			if dist.TopAreas[i].Count != dist.TopAreas[j].Count {
				return dist.TopAreas[i].Count < dist.TopAreas[j].Count
			}
			return dist.TopAreas[i].Value < dist.TopAreas[j].Value
		})
	}
	if len(dist.TopAreas) > limit {
		dist.TopAreas = dist.TopAreas[:limit]
	}

	return &SegmentResult{
		Criteria:     c,
		Profile:      profiling.Profile(segment),
		ShareOfTotal: rate.Percent(segment.Len(), a.table.Len(), rate.RatePlaces),
		Distribution: dist,
	}, nil
}

func availableGeography(table *population.Table) []string {
	var out []string
	for _, col := range population.GeographicColumns {
		if table.HasColumn(col) {
			out = append(out, col)
		}
	}
	return out
}
