// Package eligibility computes program eligibility, coverage gaps, deprivation
// intensity and area comparisons over the population table.
package eligibility

import (
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/filter"
	"socialgap/internal/profiling"
	"socialgap/internal/rate"
)

const (
	comparisonTopN = 5

	defaultWorkers    = 4
	defaultRankingTTL = 30 * time.Minute

	neighborhoodRankingKey = "ranking:colonia"
)

// Vulnerability bands of an area
const (
	VulnerabilityVeryHigh = "very high"
	VulnerabilityHigh     = "high"
	VulnerabilityModerate = "moderate"
	VulnerabilityLow      = "low"
	VulnerabilityNoData   = "no data"
)

// Options tunes an Analyzer
type Options struct {
	// Workers bounds the concurrent per-program analyses of a comparison
	Workers int
	// RankingTTL is how long area rankings stay memoized
	RankingTTL time.Duration
}

// Analyzer runs eligibility analyses against one immutable table
type Analyzer struct {
	table   *population.Table
	workers int
	ranking *cache.Cache
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer over table
func NewAnalyzer(table *population.Table, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.RankingTTL <= 0 {
		opts.RankingTTL = defaultRankingTTL
	}
	return &Analyzer{
		table:   table,
		workers: opts.Workers,
		ranking: cache.New(opts.RankingTTL, 2*opts.RankingTTL),
		logger:  logger.Named("eligibility"),
	}
}

// Table returns the analyzed table
func (a *Analyzer) Table() *population.Table {
	return a.table
}

// EligiblePopulation is section one: counts and rates
type EligiblePopulation struct {
	Filtered        int     `json:"filtered"`
	Eligible        int     `json:"eligible"`
	NotEligible     int     `json:"not_eligible"`
	EligibilityRate float64 `json:"eligibility_rate"`
	ShareOfDataset  float64 `json:"share_of_dataset"`
	Households      int     `json:"households"`
}

// EligibleProfile is section two: who the eligible people are
type EligibleProfile struct {
	Age             profiling.AgeStats `json:"age"`
	SexDistribution map[string]int     `json:"sex_distribution"`
	SexPercent      map[string]float64 `json:"sex_percent"`
}

// AreaRank is the population rank of a colonia among all colonias
type AreaRank struct {
	Position   int `json:"position"`
	Of         int `json:"of"`
	Population int `json:"population"`
}

// AreaContext is section four, present only when a location is given
type AreaContext struct {
	Location          string         `json:"location"`
	Population        int            `json:"population"`
	Households        int            `json:"households"`
	MeanAge           float64        `json:"mean_age"`
	Rank              *AreaRank      `json:"rank"`
	Vulnerability     string         `json:"vulnerability"`
	DeprivationCounts map[string]int `json:"deprivation_counts"`
}

// AreaEligibility is one colonia of the inter-area comparison
type AreaEligibility struct {
	Area     string  `json:"area"`
	Eligible int     `json:"eligible"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// AreaComparison is section five. Position is null when the queried location
// is not one of the compared colonias.
type AreaComparison struct {
	Top      []AreaEligibility `json:"top_areas"`
	Position *int              `json:"position"`
	Compared int               `json:"compared_areas"`
}

// EligibilityResult is the full per-program analysis
type EligibilityResult struct {
	Program      string                            `json:"program"`
	ProgramName  string                            `json:"program_name"`
	Criteria     criteria.Criteria                 `json:"criteria"`
	Population   EligiblePopulation                `json:"eligible_population"`
	Profile      EligibleProfile                   `json:"eligible_profile"`
	Deprivations []profiling.DeprivationPrevalence `json:"deprivations"`
	AreaContext  *AreaContext                      `json:"area_context,omitempty"`
	Comparison   *AreaComparison                   `json:"area_comparison,omitempty"`
}

// Eligibility analyzes one program under the base filters of c
func (a *Analyzer) Eligibility(program string, c criteria.Criteria) (*EligibilityResult, error) {
	if err := a.requireProgram(program); err != nil {
		return nil, err
	}

	base := baseCriteria(c)
	filtered, err := filter.Apply(a.table, base)
	if err != nil {
		return nil, err
	}
	eligible, _ := filtered.Partition(func(p population.Person) bool {
		return p.IsEligible(program)
	})

	result := &EligibilityResult{
		Program:     program,
		ProgramName: population.DisplayName(program),
		Criteria:    base,
		Population: EligiblePopulation{
			Filtered:        filtered.Len(),
			Eligible:        eligible.Len(),
			NotEligible:     filtered.Len() - eligible.Len(),
			EligibilityRate: rate.Percent(eligible.Len(), filtered.Len(), rate.RatePlaces),
			ShareOfDataset:  rate.Percent(eligible.Len(), a.table.Len(), rate.RatePlaces),
			Households:      eligible.Households(),
		},
		Profile:      eligibleProfile(eligible),
		Deprivations: profiling.Prevalence(eligible),
	}

	if strings.TrimSpace(base.Location) != "" {
		result.AreaContext = a.areaContext(base.Location)
		comparison, err := a.compareAreas(program, base)
		if err != nil {
			return nil, err
		}
		result.Comparison = comparison
	}

	a.logger.Debug("eligibility analyzed",
		zap.String("program", program),
		zap.Int("filtered", result.Population.Filtered),
		zap.Int("eligible", result.Population.Eligible))

	return result, nil
}

func (a *Analyzer) requireProgram(program string) error {
	if !a.table.HasProgram(program) {
		return &core.ProgramNotFoundError{Program: program, Available: a.table.Programs()}
	}
	return nil
}

// baseCriteria keeps the row filters that apply before the program partition
func baseCriteria(c criteria.Criteria) criteria.Criteria {
	base := c
	base.Program = ""
	base.Geography = ""
	base.Order = ""
	return base
}

func eligibleProfile(eligible *population.Table) EligibleProfile {
	sex := profiling.SexDistribution(eligible)
	return EligibleProfile{
		Age:             profiling.Ages(eligible),
		SexDistribution: sex,
		SexPercent:      profiling.SexPercentages(sex, eligible.Len()),
	}
}

// areaContext describes every person of the whole table living in the
// location, regardless of the other filters
func (a *Analyzer) areaContext(location string) *AreaContext {
	area, _ := filter.Apply(a.table, criteria.Criteria{Location: location})

	counts := make(map[string]int, len(population.Deprivations))
	for _, d := range population.Deprivations {
		counts[string(d)] = 0
	}
	for _, p := range area.Rows() {
		for _, d := range population.Deprivations {
			if p.HasDeprivation(d) {
				counts[string(d)]++
			}
		}
	}

	return &AreaContext{
		Location:          location,
		Population:        area.Len(),
		Households:        area.Households(),
		MeanAge:           profiling.Ages(area).Mean,
		Rank:              a.populationRank(location),
		Vulnerability:     ClassifyVulnerability(counts, area.Len()),
		DeprivationCounts: counts,
	}
}

// ClassifyVulnerability bands the mean deprivation prevalence of an area
func ClassifyVulnerability(counts map[string]int, total int) string {
	if total == 0 || len(counts) == 0 {
		return VulnerabilityNoData
	}
	sum := 0
	for _, n := range counts {
		sum += n
	}
	mean := float64(sum) / float64(len(counts)) / float64(total) * 100

	switch {
	case mean > 60:
		return VulnerabilityVeryHigh
	case mean > 45:
		return VulnerabilityHigh
	case mean > 30:
		return VulnerabilityModerate
	default:
		return VulnerabilityLow
	}
}

// populationRank finds location among colonias ranked by population. The
// match is exact and case-insensitive; substrings do not rank.
func (a *Analyzer) populationRank(location string) *AreaRank {
	ranking := a.neighborhoodRanking()
	for i, c := range ranking {
		if strings.EqualFold(c.Value, strings.TrimSpace(location)) {
			return &AreaRank{Position: i + 1, Of: len(ranking), Population: c.Count}
		}
	}
	return nil
}

func (a *Analyzer) neighborhoodRanking() []population.Count {
	if cached, ok := a.ranking.Get(neighborhoodRankingKey); ok {
		return cached.([]population.Count)
	}
	ranking := a.table.ValueCounts(population.ColumnNeighborhood)
	a.ranking.SetDefault(neighborhoodRankingKey, ranking)
	return ranking
}

// compareAreas ranks every colonia by eligible count under the base filters
// without the location, then locates the queried area in that ranking
func (a *Analyzer) compareAreas(program string, base criteria.Criteria) (*AreaComparison, error) {
	areas, err := a.areaEligibility(program, base.WithoutLocation())
	if err != nil {
		return nil, err
	}

	comparison := &AreaComparison{Compared: len(areas)}
	location := strings.TrimSpace(base.Location)
	for i, area := range areas {
		if strings.EqualFold(area.Area, location) {
			position := i + 1
			comparison.Position = &position
			break
		}
	}
	top := areas
	if len(top) > comparisonTopN {
		top = top[:comparisonTopN]
	}
	comparison.Top = append([]AreaEligibility{}, top...)
	return comparison, nil
}

func (a *Analyzer) areaEligibility(program string, c criteria.Criteria) ([]AreaEligibility, error) {
	key := "comparison:" + program + ":" + c.Fingerprint().String()
	if cached, ok := a.ranking.Get(key); ok {
		return cached.([]AreaEligibility), nil
	}

	filtered, err := filter.Apply(a.table, c)
	if err != nil {
		return nil, err
	}
	byArea := make(map[string]*AreaEligibility)
	for _, p := range filtered.Rows() {
		entry, ok := byArea[p.Neighborhood]
		if !ok {
			entry = &AreaEligibility{Area: p.Neighborhood}
			byArea[p.Neighborhood] = entry
		}
		entry.Total++
		if p.IsEligible(program) {
			entry.Eligible++
		}
	}

	areas := make([]AreaEligibility, 0, len(byArea))
	for _, entry := range byArea {
		entry.Rate = rate.Percent(entry.Eligible, entry.Total, rate.ComparisonPlaces)
		areas = append(areas, *entry)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Eligible != areas[j].Eligible {
			return areas[i].Eligible > areas[j].Eligible
		}
		return areas[i].Area < areas[j].Area
	})

	a.ranking.SetDefault(key, areas)
	return areas, nil
}
