package terms

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

// Status of a translation
type Status string

const (
	StatusTranslated Status = "translated"
	StatusNoCriteria Status = "no-criteria-detected"
)

// MultipleDeprivationsField is the conceptual field emitted for intensity phrases
const MultipleDeprivationsField = "multiple_carencias"

// Match is one dictionary phrase found in the query
type Match struct {
	Phrase string        `json:"phrase"`
	Kind   DirectiveKind `json:"kind"`
}

// IgnoredMatch is a phrase that matched but lost to an earlier, longer phrase
// of the same category
type IgnoredMatch struct {
	Phrase string        `json:"phrase"`
	Kind   DirectiveKind `json:"kind"`
	Reason string        `json:"reason"`
}

// Translation is the result of mapping a free-text query onto criteria
type Translation struct {
	Query    string            `json:"query"`
	Criteria criteria.Criteria `json:"criteria"`
	Matches  []Match           `json:"matches"`
	Fields   []string          `json:"fields"`
	Ignored  []IgnoredMatch    `json:"ignored,omitempty"`
	Status   Status            `json:"status"`
}

// MatchedPhrases returns the matched phrases in evaluation order
func (t Translation) MatchedPhrases() []string {
	out := make([]string, len(t.Matches))
	for i, m := range t.Matches {
		out[i] = m.Phrase
	}
	return out
}

// Translator maps queries to criteria with a fixed rule list. It holds no
// per-call state and is safe for concurrent use.
type Translator struct {
	rules    []Rule
	patterns []Pattern
	logger   *zap.Logger
}

// NewTranslator creates a translator over dict
func NewTranslator(dict *Dictionary, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		rules:    dict.Rules(),
		patterns: dict.Patterns(),
		logger:   logger.Named("terms"),
	}
}

// Translate scans query against every rule, longest phrase first. The first
// match in each single-valued category wins; later conflicting matches are
// recorded in Ignored and never merged.
func (t *Translator) Translate(query string) Translation {
	text := strings.ToLower(query)
	acc := newAccumulator()

	for _, rule := range t.rules {
		if !rule.Matches(text) {
			continue
		}
		acc.matches = append(acc.matches, Match{Phrase: rule.Phrase, Kind: rule.Kind})
		if reason := acc.apply(rule); reason != "" {
			acc.ignored = append(acc.ignored, IgnoredMatch{Phrase: rule.Phrase, Kind: rule.Kind, Reason: reason})
			t.logger.Debug("ignored conflicting phrase",
				zap.String("phrase", rule.Phrase),
				zap.String("kind", string(rule.Kind)),
				zap.String("reason", reason))
		}
	}

	result := Translation{
		Query:    query,
		Criteria: acc.criteria,
		Matches:  acc.matches,
		Fields:   acc.sortedFields(),
		Ignored:  acc.ignored,
		Status:   StatusTranslated,
	}
	if result.Criteria.IsEmpty() {
		result.Status = StatusNoCriteria
	}

	t.logger.Debug("query translated",
		zap.String("query", query),
		zap.String("status", string(result.Status)),
		zap.Strings("phrases", result.MatchedPhrases()),
		zap.Strings("fields", result.Fields))

	return result
}

type accumulator struct {
	criteria criteria.Criteria
	matches  []Match
	ignored  []IgnoredMatch
	fields   map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{fields: make(map[string]struct{})}
}

func (a *accumulator) field(name string) {
	a.fields[name] = struct{}{}
}

// apply folds rule into the criteria and returns a non-empty reason when the
// rule conflicts with an earlier match.
func (a *accumulator) apply(rule Rule) string {
	c := &a.criteria
	switch rule.Kind {
	case KindAgeRange:
		if c.AgeRange != nil {
			if *c.AgeRange == *rule.AgeRange {
				return ""
			}
			return fmt.Sprintf("age range already set to [%d,%d]", c.AgeRange.Min, c.AgeRange.Max)
		}
		r := *rule.AgeRange
		c.AgeRange = &r
		a.field(r.Marker())
	case KindSex:
		if c.Sex != "" {
			if c.Sex == string(rule.Sex) {
				return ""
			}
			return "sex already set to " + c.Sex
		}
		c.Sex = string(rule.Sex)
		a.field(population.ColumnSex)
	case KindDeprivation:
		a.criteria = c.WithDeprivation(rule.Deprivation)
		a.field(rule.Deprivation.Column())
	case KindProgram:
		if c.Program != "" {
			if c.Program == rule.Program {
				return ""
			}
			return "program already set to " + c.Program
		}
		c.Program = rule.Program
		a.field(population.EligibilityColumn(rule.Program))
	case KindIntensity:
		if c.MinIntensity != 0 {
			return ""
		}
		c.MinIntensity = rule.Intensity
		a.field(fmt.Sprintf("%s_%d", MultipleDeprivationsField, rule.Intensity))
	case KindColumn:
		a.field(rule.Column)
	case KindGeography:
		if c.Geography != "" {
			if c.Geography == rule.Column {
				return ""
			}
			return "geography already set to " + c.Geography
		}
		c.Geography = rule.Column
		a.field(rule.Column)
	case KindOrder:
		if c.Order != "" {
			if c.Order == rule.Order {
				return ""
			}
			return "order already set to " + string(c.Order)
		}
		c.Order = rule.Order
	case KindEligibility:
		// concept marker only
	}
	return ""
}

func (a *accumulator) sortedFields() []string {
	out := make([]string, 0, len(a.fields))
	for f := range a.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
