package app

import (
	"context"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/crosstab"
	"socialgap/internal/filter"
	"socialgap/internal/profiling"
)

// Function names of the catalog
const (
	FnEligibilityByProgram       = "eligibility-by-program"
	FnCoverageGapByProgram       = "coverage-gap-by-program"
	FnDeprivationWithoutCoverage = "deprivation-without-coverage"
	FnMultiDeprivationIntensity  = "multi-deprivation-intensity"
	FnMultiProgramComparison     = "multi-program-comparison"
	FnCrossTabulation            = "cross-tabulation"
	FnCategoricalDistribution    = "categorical-distribution"
	FnNumericDistribution        = "numeric-distribution"
	FnGeographyExplorer          = "geography-explorer"
	FnGeographicCoverage         = "geographic-coverage"
	FnPopulationSegment          = "population-segment"
	FnTranslateQuery             = "translate-query"
)

// Argument describes one named argument of a function
type Argument struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Function is one callable analysis
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Arguments   []Argument `json:"arguments"`

	run func(ctx context.Context, s *Service, args Args) (any, error)
}

var (
	argProgram     = Argument{Name: "program", Type: "string", Description: "program id, e.g. pension_adultos_mayores", Required: true}
	argAgeRange    = Argument{Name: "age_range", Type: "array", Description: "inclusive [min, max] ages"}
	argSex         = Argument{Name: "sex", Type: "string", Description: "Mujer or Hombre; m, f, h are accepted"}
	argLocation    = Argument{Name: "location", Type: "string", Description: "substring of colonia, ageb or ubicacion"}
	argDeprivation = Argument{Name: "deprivation", Type: "string", Description: "salud, educacion or seguridad_social"}
	argFilters     = Argument{Name: "filters", Type: "object", Description: "criteria object: age_range, sex, location, deprivations, program, min_intensity"}
	argTopN        = Argument{Name: "top_n", Type: "integer", Description: "number of entries to keep"}

	baseFilters = []Argument{argAgeRange, argSex, argLocation, argDeprivation}
)

func withBase(args ...Argument) []Argument {
	return append(args, baseFilters...)
}

var catalog = []Function{
	{
		Name:        FnEligibilityByProgram,
		Description: "Eligible population of a program with its profile, deprivations, area context and area comparison",
		Arguments:   withBase(argProgram),
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			program, c, err := programAndCriteria(args)
			if err != nil {
				return nil, err
			}
			return s.analyzer.Eligibility(program, c)
		},
	},
	{
		Name:        FnCoverageGapByProgram,
		Description: "Eligible people of a program who receive no social support",
		Arguments:   withBase(argProgram),
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			program, c, err := programAndCriteria(args)
			if err != nil {
				return nil, err
			}
			return s.analyzer.CoverageGap(program, c)
		},
	},
	{
		Name:        FnDeprivationWithoutCoverage,
		Description: "People with a deprivation who are eligible for none of its related programs",
		Arguments: []Argument{
			{Name: "deprivation", Type: "string", Description: "salud, educacion or seguridad_social", Required: true},
			argAgeRange, argSex, argLocation,
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			deprivation, err := args.RequireString("deprivation")
			if err != nil {
				return nil, err
			}
			c, err := args.Criteria(false)
			if err != nil {
				return nil, err
			}
			return s.analyzer.DeprivationWithoutCoverage(deprivation, c)
		},
	},
	{
		Name:        FnMultiDeprivationIntensity,
		Description: "Distribution of simultaneous deprivations (0-3) and the extreme vulnerability cohort",
		Arguments:   baseFilters,
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			if args.Has("program") {
				return nil, core.NewInvalidArgumentError("program", "intensity does not filter by program")
			}
			c, err := args.Criteria(false)
			if err != nil {
				return nil, err
			}
			return s.analyzer.Intensity(c)
		},
	},
	{
		Name:        FnMultiProgramComparison,
		Description: "Ranks several programs by eligible population under the same filters",
		Arguments: withBase(Argument{
			Name: "programs", Type: "array", Description: "program ids to compare", Required: true,
		}),
		run: func(ctx context.Context, s *Service, args Args) (any, error) {
			c, err := args.Criteria(false)
			if err != nil {
				return nil, err
			}
			return s.analyzer.CompareProgram(ctx, args.Strings("programs"), c)
		},
	},
	{
		Name:        FnCrossTabulation,
		Description: "Frequency table of two fields with totals and an independence test",
		Arguments: []Argument{
			{Name: "row_field", Type: "string", Description: "column for the rows", Required: true},
			{Name: "column_field", Type: "string", Description: "column for the columns", Required: true},
			argFilters,
			{Name: "bin_ages", Type: "boolean", Description: "replace edad_persona by age bins (default true)"},
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			row, err := args.RequireString("row_field")
			if err != nil {
				return nil, err
			}
			col, err := args.RequireString("column_field")
			if err != nil {
				return nil, err
			}
			c, err := args.Object("filters").Criteria(true)
			if err != nil {
				return nil, err
			}
			return crosstab.Build(s.table, row, col, c, args.Bool("bin_ages", true))
		},
	},
	{
		Name:        FnCategoricalDistribution,
		Description: "Frequency of each value of a column",
		Arguments: []Argument{
			{Name: "column", Type: "string", Description: "column to count", Required: true},
			argTopN, argFilters,
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			column, err := args.RequireString("column")
			if err != nil {
				return nil, err
			}
			topN, err := args.Int("top_n", 0)
			if err != nil {
				return nil, err
			}
			subset, err := s.filtered(args)
			if err != nil {
				return nil, err
			}
			return profiling.Categorical(subset, column, topN)
		},
	},
	{
		Name:        FnNumericDistribution,
		Description: "Descriptive statistics of a numeric column",
		Arguments: []Argument{
			{Name: "column", Type: "string", Description: "numeric column", Required: true},
			argFilters,
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			column, err := args.RequireString("column")
			if err != nil {
				return nil, err
			}
			subset, err := s.filtered(args)
			if err != nil {
				return nil, err
			}
			return profiling.Numeric(subset, column)
		},
	},
	{
		Name:        FnGeographyExplorer,
		Description: "Most populated colonias and agebs and the zone distribution",
		Arguments:   []Argument{argTopN, argFilters},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			topN, err := args.Int("top_n", profiling.DefaultExplorerTopN)
			if err != nil {
				return nil, err
			}
			subset, err := s.filtered(args)
			if err != nil {
				return nil, err
			}
			return profiling.ExploreGeography(subset, topN), nil
		},
	},
	{
		Name:        FnGeographicCoverage,
		Description: "Eligible people of a program distributed across a geographic level",
		Arguments: withBase(argProgram,
			Argument{Name: "level", Type: "string", Description: "colonia, ageb, manzana or ubicacion (default ageb)"},
			argTopN,
		),
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			program, c, err := programAndCriteria(args)
			if err != nil {
				return nil, err
			}
			topN, err := args.Int("top_n", s.options.DefaultTopN)
			if err != nil {
				return nil, err
			}
			return s.analyzer.GeographicCoverage(program, args.String("level"), topN, c)
		},
	},
	{
		Name:        FnPopulationSegment,
		Description: "Profile of the people matching a criteria set and their top areas",
		Arguments: []Argument{
			{Name: "criteria", Type: "object", Description: "criteria object; top-level filters are used when absent"},
			{Name: "geography", Type: "string", Description: "ranking column (default colonia)"},
			{Name: "order", Type: "string", Description: "desc (default) or asc"},
			{Name: "limit", Type: "integer", Description: "areas to list (default 3)"},
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			c, err := segmentCriteria(args)
			if err != nil {
				return nil, err
			}
			limit, err := args.Int("limit", 0)
			if err != nil {
				return nil, err
			}
			return s.analyzer.Segment(c, limit)
		},
	},
	{
		Name:        FnTranslateQuery,
		Description: "Maps a Spanish free-text query to criteria and validates it against the dataset",
		Arguments: []Argument{
			{Name: "query", Type: "string", Description: "free-text question", Required: true},
		},
		run: func(_ context.Context, s *Service, args Args) (any, error) {
			query, err := args.RequireString("query")
			if err != nil {
				return nil, err
			}
			return s.Translate(query), nil
		},
	},
}

// Catalog returns every callable function in a stable order
func Catalog() []Function {
	out := make([]Function, len(catalog))
	copy(out, catalog)
	return out
}

// FunctionNames lists the catalog names
func FunctionNames() []string {
	names := make([]string, len(catalog))
	for i, fn := range catalog {
		names[i] = fn.Name
	}
	return names
}

// Lookup finds a function by name
func Lookup(name string) (Function, bool) {
	for _, fn := range catalog {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

func programAndCriteria(args Args) (string, criteria.Criteria, error) {
	program, err := args.RequireString("program")
	if err != nil {
		return "", criteria.Criteria{}, err
	}
	c, err := args.Criteria(false)
	return program, c, err
}

// segmentCriteria reads the nested criteria object when present, letting
// top-level geography and order override it
func segmentCriteria(args Args) (criteria.Criteria, error) {
	if !args.Has("criteria") {
		return args.Criteria(true)
	}
	c, err := args.Object("criteria").Criteria(true)
	if err != nil {
		return c, err
	}
	top, err := args.Criteria(false)
	if err != nil {
		return c, err
	}
	if top.Geography != "" {
		c.Geography = top.Geography
	}
	if top.Order != "" {
		c.Order = top.Order
	}
	return c, nil
}

func (s *Service) filtered(args Args) (*population.Table, error) {
	c, err := args.Object("filters").Criteria(true)
	if err != nil {
		return nil, err
	}
	return filter.Apply(s.table, c)
}
