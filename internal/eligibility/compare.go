package eligibility

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

// ProgramRank is one program of a comparison ranking
type ProgramRank struct {
	Rank            int     `json:"rank"`
	Program         string  `json:"program"`
	ProgramName     string  `json:"program_name"`
	Eligible        int     `json:"eligible"`
	EligibilityRate float64 `json:"eligibility_rate"`
}

// ComparisonResult ranks several programs under the same base filters
type ComparisonResult struct {
	Criteria        criteria.Criteria             `json:"criteria"`
	TopProgram      string                        `json:"top_program"`
	Ranking         []ProgramRank                 `json:"ranking"`
	Results         map[string]*EligibilityResult `json:"results"`
	UnknownPrograms []string                      `json:"unknown_programs,omitempty"`
	TotalEligible   int                           `json:"total_eligible"`
}

// CompareProgram runs the per-program analysis for every program
// concurrently and ranks them by eligible count, ties by program id. Unknown
// programs are reported; the call fails only when none is known.
func (a *Analyzer) CompareProgram(ctx context.Context, programs []string, c criteria.Criteria) (*ComparisonResult, error) {
	if len(programs) == 0 {
		return nil, core.NewInvalidArgumentError("programs", "at least one program is required")
	}

	var known, unknown []string
	seen := make(map[string]struct{}, len(programs))
	for _, program := range programs {
		if _, dup := seen[program]; dup {
			continue
		}
		seen[program] = struct{}{}
		if a.table.HasProgram(program) {
			known = append(known, program)
		} else {
			unknown = append(unknown, program)
		}
	}
	if len(known) == 0 {
		return nil, &core.ProgramNotFoundError{Program: unknown[0], Available: a.table.Programs()}
	}

	results := make([]*EligibilityResult, len(known))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, program := range known {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := a.Eligibility(program, c)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comparison := &ComparisonResult{
		Criteria:        baseCriteria(c),
		Ranking:         make([]ProgramRank, 0, len(results)),
		Results:         make(map[string]*EligibilityResult, len(results)),
		UnknownPrograms: unknown,
	}
	for _, r := range results {
		comparison.Results[r.Program] = r
		comparison.TotalEligible += r.Population.Eligible
		comparison.Ranking = append(comparison.Ranking, ProgramRank{
			Program:         r.Program,
			ProgramName:     population.DisplayName(r.Program),
			Eligible:        r.Population.Eligible,
			EligibilityRate: r.Population.EligibilityRate,
		})
	}
	sort.Slice(comparison.Ranking, func(i, j int) bool {
		if comparison.Ranking[i].Eligible != comparison.Ranking[j].Eligible {
			return comparison.Ranking[i].Eligible > comparison.Ranking[j].Eligible
		}
		return comparison.Ranking[i].Program < comparison.Ranking[j].Program
	})
	for i := range comparison.Ranking {
		comparison.Ranking[i].Rank = i + 1
	}
	comparison.TopProgram = comparison.Ranking[0].Program

	a.logger.Info("programs compared",
		zap.Int("programs", len(known)),
		zap.Strings("unknown", unknown),
		zap.String("top", comparison.TopProgram))

	return comparison, nil
}
