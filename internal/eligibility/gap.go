package eligibility

import (
	"strings"

	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/filter"
	"socialgap/internal/profiling"
	"socialgap/internal/rate"
)

// GapProfile describes the people inside a coverage gap
type GapProfile struct {
	Age             profiling.AgeStats `json:"age"`
	SexDistribution map[string]int     `json:"sex_distribution"`
	Households      int                `json:"households"`
}

func gapProfile(gap *population.Table) GapProfile {
	return GapProfile{
		Age:             profiling.Ages(gap),
		SexDistribution: profiling.SexDistribution(gap),
		Households:      gap.Households(),
	}
}

// CoverageGapResult is the eligible population of a program that receives no
// social support
type CoverageGapResult struct {
	Program     string            `json:"program"`
	ProgramName string            `json:"program_name"`
	Criteria    criteria.Criteria `json:"criteria"`
	Eligible    int               `json:"eligible"`
	Supported   int               `json:"supported"`
	Gap         int               `json:"gap"`
	GapRate     float64           `json:"gap_rate"`
	GapProfile  GapProfile        `json:"gap_profile"`
}

// CoverageGap partitions the eligible people of program by the support flag.
// The support column is a hard dependency of this analysis.
func (a *Analyzer) CoverageGap(program string, c criteria.Criteria) (*CoverageGapResult, error) {
	if err := a.requireProgram(program); err != nil {
		return nil, err
	}
	if !a.table.HasColumn(population.ColumnReceivesSupport) {
		return nil, &core.MissingColumnError{Column: population.ColumnReceivesSupport, Analysis: "coverage gap"}
	}

	base := baseCriteria(c)
	filtered, err := filter.Apply(a.table, base)
	if err != nil {
		return nil, err
	}
	eligible := filtered.Where(func(p population.Person) bool {
		return p.IsEligible(program)
	})
	gap, supported := eligible.Partition(func(p population.Person) bool {
		return !p.ReceivesSupport
	})

	result := &CoverageGapResult{
		Program:     program,
		ProgramName: population.DisplayName(program),
		Criteria:    base,
		Eligible:    eligible.Len(),
		Supported:   supported.Len(),
		Gap:         gap.Len(),
		GapRate:     rate.Percent(gap.Len(), eligible.Len(), rate.RatePlaces),
		GapProfile:  gapProfile(gap),
	}

	a.logger.Debug("coverage gap analyzed",
		zap.String("program", program),
		zap.Int("eligible", result.Eligible),
		zap.Int("gap", result.Gap))

	return result, nil
}

// DeprivationGapResult is the people with a deprivation who are eligible for
// none of the programs addressing it
type DeprivationGapResult struct {
	Deprivation      population.Deprivation `json:"deprivation"`
	Label            string                 `json:"label"`
	Criteria         criteria.Criteria      `json:"criteria"`
	WithDeprivation  int                    `json:"with_deprivation"`
	WithoutCoverage  int                    `json:"without_coverage"`
	GapRate          float64                `json:"gap_rate"`
	ProgramsAnalyzed []string               `json:"programs_analyzed"`
	ProgramsMissing  []string               `json:"programs_missing,omitempty"`
	GapProfile       GapProfile             `json:"gap_profile"`
}

// DeprivationWithoutCoverage finds the gap population of a deprivation. Age,
// sex and location filters of c apply; its program and deprivations do not.
// Mapped programs absent from the schema are skipped and reported; when none
// of them is present the analysis fails with a missing column error.
func (a *Analyzer) DeprivationWithoutCoverage(deprivation string, c criteria.Criteria) (*DeprivationGapResult, error) {
	d, ok := population.ParseDeprivation(deprivation)
	if !ok {
		return nil, core.NewUnknownDeprivationError(deprivation, population.DeprivationKeys())
	}
	programs := population.ProgramsFor(d)
	if len(programs) == 0 {
		return nil, core.NewNoMappedProgramsError(string(d))
	}

	base := baseCriteria(c)
	base.Deprivations = nil
	base = base.WithDeprivation(d)

	withDeprivation, err := filter.Apply(a.table, base)
	if err != nil {
		return nil, err
	}

	var analyzed, missing []string
	for _, program := range programs {
		if a.table.HasProgram(program) {
			analyzed = append(analyzed, program)
		} else {
			missing = append(missing, program)
		}
	}

	if len(analyzed) == 0 {
		columns := make([]string, len(missing))
		for i, program := range missing {
			columns[i] = population.EligibilityColumn(program)
		}
		return nil, &core.MissingColumnError{Column: strings.Join(columns, ", "), Analysis: "deprivation without coverage"}
	}

	gap := withDeprivation.Where(func(p population.Person) bool {
		for _, program := range analyzed {
			if p.IsEligible(program) {
				return false
			}
		}
		return true
	})

	if len(missing) > 0 {
		a.logger.Warn("mapped programs absent from dataset",
			zap.String("deprivation", string(d)),
			zap.Strings("programs", missing))
	}

	return &DeprivationGapResult{
		Deprivation:      d,
		Label:            d.Label(),
		Criteria:         base,
		WithDeprivation:  withDeprivation.Len(),
		WithoutCoverage:  gap.Len(),
		GapRate:          rate.Percent(gap.Len(), withDeprivation.Len(), rate.RatePlaces),
		ProgramsAnalyzed: nonNil(analyzed),
		ProgramsMissing:  missing,
		GapProfile:       gapProfile(gap),
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
