package terms

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// DirectiveKind names the category a phrase contributes to
type DirectiveKind string

const (
	KindAgeRange    DirectiveKind = "age_range"
	KindSex         DirectiveKind = "sex"
	KindDeprivation DirectiveKind = "deprivation"
	KindProgram     DirectiveKind = "program"
	KindColumn      DirectiveKind = "column"
	KindGeography   DirectiveKind = "geography"
	KindOrder       DirectiveKind = "order"
	KindIntensity   DirectiveKind = "intensity"
	KindEligibility DirectiveKind = "eligibility"
)

// Rule maps one phrase to a typed directive. Only the field matching Kind is set.
type Rule struct {
	Phrase      string                 `json:"phrase"`
	Kind        DirectiveKind          `json:"kind"`
	AgeRange    *criteria.AgeRange     `json:"age_range,omitempty"`
	Sex         population.Sex         `json:"sex,omitempty"`
	Deprivation population.Deprivation `json:"deprivation,omitempty"`
	Program     string                 `json:"program,omitempty"`
	Column      string                 `json:"column,omitempty"`
	Order       criteria.Order         `json:"order,omitempty"`
	Intensity   int                    `json:"intensity,omitempty"`

	match string
	// whole restricts the match to whole words
	whole bool
}

// Matches reports whether the rule's phrase occurs in text, which must
// already be lowercase
func (r Rule) Matches(text string) bool {
	if !r.whole {
		return strings.Contains(text, r.match)
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], r.match)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(r.match)
		if wordBoundary(text, start, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		if before, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(before) {
			return false
		}
	}
	if end < len(text) {
		if after, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(after) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Pattern is a vague term that warrants a clarification question
type Pattern struct {
	Term     string   `yaml:"term" json:"term"`
	Question string   `yaml:"question" json:"question"`
	Options  []string `yaml:"options" json:"options"`
}

// Dictionary is the full rule list in evaluation order plus ambiguity patterns
type Dictionary struct {
	rules    []Rule
	patterns []Pattern
}

type dictionaryFile struct {
	AgeRanges []struct {
		Phrases []string `yaml:"phrases"`
		Min     int      `yaml:"min"`
		Max     int      `yaml:"max"`
	} `yaml:"age_ranges"`
	Sex []struct {
		Phrases []string `yaml:"phrases"`
		Value   string   `yaml:"value"`
	} `yaml:"sex"`
	Deprivations []struct {
		Deprivation string   `yaml:"deprivation"`
		Phrases     []string `yaml:"phrases"`
	} `yaml:"deprivations"`
	MultipleDeprivations struct {
		Intensity int      `yaml:"intensity"`
		Phrases   []string `yaml:"phrases"`
	} `yaml:"multiple_deprivations"`
	Columns []struct {
		Column  string   `yaml:"column"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"columns"`
	Programs []struct {
		Program string   `yaml:"program"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"programs"`
	Geography []struct {
		Column  string   `yaml:"column"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"geography"`
	Order []struct {
		Order   string   `yaml:"order"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"order"`
	Eligibility struct {
		Phrases []string `yaml:"phrases"`
	} `yaml:"eligibility"`
	Ambiguities []Pattern `yaml:"ambiguities"`
}

// DefaultDictionary parses the embedded dictionary. The embedded file is part
// of the build, so a parse failure is a programming error.
func DefaultDictionary() *Dictionary {
	dict, err := LoadDictionary(defaultDictionary)
	if err != nil {
		panic(fmt.Sprintf("terms: embedded dictionary is invalid: %v", err))
	}
	return dict
}

// LoadDictionary parses and validates a YAML dictionary
func LoadDictionary(data []byte) (*Dictionary, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}

	var rules []Rule
	add := func(phrases []string, rule Rule) {
		for _, phrase := range phrases {
			r := rule
			r.Phrase = phrase
			r.match = strings.ToLower(strings.TrimSpace(phrase))
			rules = append(rules, r)
		}
	}

	for _, entry := range file.AgeRanges {
		ageRange, err := criteria.NewAgeRange(entry.Min, entry.Max)
		if err != nil {
			return nil, fmt.Errorf("age range %v: %w", entry.Phrases, err)
		}
		add(entry.Phrases, Rule{Kind: KindAgeRange, AgeRange: ageRange})
	}
	for _, entry := range file.Sex {
		sex, ok := population.ParseSex(entry.Value)
		if !ok {
			return nil, fmt.Errorf("sex %v: unknown value %q", entry.Phrases, entry.Value)
		}
		add(entry.Phrases, Rule{Kind: KindSex, Sex: sex})
	}
	for _, entry := range file.Deprivations {
		d, ok := population.ParseDeprivation(entry.Deprivation)
		if !ok {
			return nil, fmt.Errorf("unknown deprivation %q", entry.Deprivation)
		}
		add(entry.Phrases, Rule{Kind: KindDeprivation, Deprivation: d})
	}
	if md := file.MultipleDeprivations; len(md.Phrases) > 0 {
		if md.Intensity < 1 || md.Intensity > len(population.Deprivations) {
			return nil, fmt.Errorf("multiple deprivations: intensity %d out of range", md.Intensity)
		}
		add(md.Phrases, Rule{Kind: KindIntensity, Intensity: md.Intensity})
	}
	for _, entry := range file.Columns {
		if entry.Column == "" {
			return nil, fmt.Errorf("column %v: empty column name", entry.Phrases)
		}
		add(entry.Phrases, Rule{Kind: KindColumn, Column: entry.Column})
	}
	for _, entry := range file.Programs {
		if entry.Program == "" {
			return nil, fmt.Errorf("program %v: empty program id", entry.Phrases)
		}
		add(entry.Phrases, Rule{Kind: KindProgram, Program: entry.Program})
	}
	for _, entry := range file.Geography {
		if !population.IsGeographicColumn(entry.Column) {
			return nil, fmt.Errorf("geography %v: %q is not a geographic column", entry.Phrases, entry.Column)
		}
		add(entry.Phrases, Rule{Kind: KindGeography, Column: entry.Column})
	}
	for _, entry := range file.Order {
		order, ok := criteria.ParseOrder(entry.Order)
		if !ok {
			return nil, fmt.Errorf("order %v: unknown direction %q", entry.Phrases, entry.Order)
		}
		// order words match whole words only
		add(entry.Phrases, Rule{Kind: KindOrder, Order: order, whole: true})
	}
	add(file.Eligibility.Phrases, Rule{Kind: KindEligibility})

	seen := make(map[string]DirectiveKind, len(rules))
	for _, r := range rules {
		if r.match == "" {
			return nil, fmt.Errorf("%s: empty phrase", r.Kind)
		}
		if prev, dup := seen[r.match]; dup {
			return nil, fmt.Errorf("phrase %q defined twice (%s, %s)", r.Phrase, prev, r.Kind)
		}
		seen[r.match] = r.Kind
	}

	sortRules(rules)

	return &Dictionary{rules: rules, patterns: file.Ambiguities}, nil
}

// sortRules orders rules longest phrase first; equal lengths sort alphabetically
// so evaluation never depends on declaration order.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(rules[i].match), utf8.RuneCountInString(rules[j].match)
		if li != lj {
			return li > lj
		}
		return rules[i].match < rules[j].match
	})
}

// Rules returns the rules in evaluation order
func (d *Dictionary) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Patterns returns the ambiguity patterns
func (d *Dictionary) Patterns() []Pattern {
	out := make([]Pattern, len(d.patterns))
	copy(out, d.patterns)
	return out
}
