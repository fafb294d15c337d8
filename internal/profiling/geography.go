package profiling

import (
	"strings"

	"socialgap/domain/population"
	"socialgap/internal/rate"
)

// DefaultExplorerTopN is the number of areas listed per level when unset
const DefaultExplorerTopN = 20

// GeographicDistribution lists the areas where a subset concentrates
type GeographicDistribution struct {
	Column        string          `json:"column"`
	TopAreas      []CategoryShare `json:"top_areas"`
	AreasAffected int             `json:"areas_affected"`
}

// Geographic returns the topN values of column in table with their share of
// the subset. An empty subset yields an empty distribution.
func Geographic(table *population.Table, column string, topN int) GeographicDistribution {
	dist := GeographicDistribution{Column: column, TopAreas: []CategoryShare{}}
	counts := nonEmpty(table.ValueCounts(column))
	dist.AreasAffected = len(counts)
	for i, c := range counts {
		if topN > 0 && i >= topN {
			break
		}
		dist.TopAreas = append(dist.TopAreas, CategoryShare{
			Value:   c.Value,
			Count:   c.Count,
			Percent: rate.Percent(c.Count, table.Len(), rate.RatePlaces),
		})
	}
	return dist
}

// AreaLevel is the ranking of one geographic column
type AreaLevel struct {
	Column   string             `json:"column"`
	Distinct int                `json:"distinct"`
	Top      []population.Count `json:"top"`
}

// GeographyOverview lists the areas available in the dataset
type GeographyOverview struct {
	Neighborhoods AreaLevel `json:"colonias"`
	CensusBlocks  AreaLevel `json:"agebs"`
	Zones         AreaLevel `json:"ubicaciones"`
}

// ExploreGeography ranks the most populated colonias and agebs, keeping topN
// of each, and the full zone distribution.
func ExploreGeography(table *population.Table, topN int) GeographyOverview {
	if topN <= 0 {
		topN = DefaultExplorerTopN
	}
	return GeographyOverview{
		Neighborhoods: level(table, population.ColumnNeighborhood, topN),
		CensusBlocks:  level(table, population.ColumnCensusBlock, topN),
		Zones:         level(table, population.ColumnZone, 0),
	}
}

func level(table *population.Table, column string, topN int) AreaLevel {
	counts := nonEmpty(table.ValueCounts(column))
	l := AreaLevel{Column: column, Distinct: len(counts), Top: counts}
	if topN > 0 && len(counts) > topN {
		l.Top = counts[:topN]
	}
	return l
}

func nonEmpty(counts []population.Count) []population.Count {
	out := make([]population.Count, 0, len(counts))
	for _, c := range counts {
		if strings.TrimSpace(c.Value) != "" {
			out = append(out, c)
		}
	}
	return out
}
