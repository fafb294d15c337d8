// Package coercer turns raw tabular records into a population table. It is
// the only place where the source's string conventions are interpreted.
package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/population"
)

// Drop reasons reported in IngestStats
const (
	DropAgeMissing    = "age_missing"
	DropAgeNotNumeric = "age_not_numeric"
	DropAgeOutOfRange = "age_out_of_range"
)

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	MinAge           int  `json:"min_age"`
	MaxAge           int  `json:"max_age"`
	NormalizeStrings bool `json:"normalize_strings"` // collapse whitespace in text columns
}

// DefaultCoercionConfig returns the dataset defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MinAge:           0,
		MaxAge:           120,
		NormalizeStrings: true,
	}
}

// IngestStats summarizes one coercion pass
type IngestStats struct {
	RowsRead     int            `json:"rows_read"`
	RowsKept     int            `json:"rows_kept"`
	Dropped      map[string]int `json:"dropped"`
	UnknownSex   int            `json:"unknown_sex"`
	InvalidFlags int            `json:"invalid_flags"`
	Programs     []string       `json:"programs"`
	ExtraColumns []string       `json:"extra_columns"`
}

// TypeCoercer converts header + records into a Table
type TypeCoercer struct {
	config CoercionConfig
	logger *zap.Logger
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig, logger *zap.Logger) *TypeCoercer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAge <= config.MinAge {
		config.MaxAge = DefaultCoercionConfig().MaxAge
	}
	return &TypeCoercer{config: config, logger: logger.Named("coercer")}
}

var whitespace = regexp.MustCompile(`\s+`)

// CoerceRecords builds a table from a header row and string records. The age
// column is required; rows whose age is missing, non-numeric or outside the
// configured range are dropped and counted.
func (c *TypeCoercer) CoerceRecords(header []string, records [][]string) (*population.Table, IngestStats, error) {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	position := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := position[col]; dup {
			return nil, IngestStats{}, core.NewInvalidArgumentError("header", fmt.Sprintf("column %q appears twice", col))
		}
		position[col] = i
	}
	if _, ok := position[population.ColumnAge]; !ok {
		return nil, IngestStats{}, &core.MissingColumnError{Column: population.ColumnAge, Analysis: "ingestion"}
	}

	stats := IngestStats{Dropped: make(map[string]int)}
	for _, col := range columns {
		if program, ok := population.ProgramFromColumn(col); ok {
			stats.Programs = append(stats.Programs, program)
		} else if !isKnownColumn(col) {
			stats.ExtraColumns = append(stats.ExtraColumns, col)
		}
	}

	rows := make([]population.Person, 0, len(records))
	for _, record := range records {
		stats.RowsRead++
		raw := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				raw[col] = record[i]
			}
		}

		person, reason := c.coercePerson(raw, &stats)
		if reason != "" {
			stats.Dropped[reason]++
			continue
		}
		rows = append(rows, person)
	}
	stats.RowsKept = len(rows)

	c.logger.Info("records coerced",
		zap.Int("read", stats.RowsRead),
		zap.Int("kept", stats.RowsKept),
		zap.Int("programs", len(stats.Programs)),
		zap.Any("dropped", stats.Dropped))

	return population.NewTable(columns, rows), stats, nil
}

// CoerceMaps builds a table from rows keyed by column, such as database
// results. Values of any scalar type are accepted.
func (c *TypeCoercer) CoerceMaps(columns []string, rows []map[string]any) (*population.Table, IngestStats, error) {
	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = toString(row[col])
		}
		records[i] = record
	}
	return c.CoerceRecords(columns, records)
}

func (c *TypeCoercer) coercePerson(raw map[string]string, stats *IngestStats) (population.Person, string) {
	age, reason := c.parseAge(raw[population.ColumnAge])
	if reason != "" {
		return population.Person{}, reason
	}

	p := population.Person{
		HouseholdID:  c.text(raw[population.ColumnHouseholdID]),
		PersonID:     c.text(raw[population.ColumnPersonID]),
		Age:          age,
		Kinship:      c.text(raw[population.ColumnKinship]),
		PersonType:   c.text(raw[population.ColumnPersonType]),
		Neighborhood: c.text(raw[population.ColumnNeighborhood]),
		CensusBlock:  c.text(raw[population.ColumnCensusBlock]),
		Block:        c.text(raw[population.ColumnBlock]),
		Zone:         c.text(raw[population.ColumnZone]),
		Eligible:     make(map[string]bool, len(stats.Programs)),
	}

	if value := c.text(raw[population.ColumnSex]); value != "" {
		if sex, ok := population.ParseSex(value); ok {
			p.Sex = sex
		} else {
			p.Sex = population.Sex(value)
			stats.UnknownSex++
		}
	}

	flag := func(column string) bool {
		b, ok := ParseFlag(raw[column])
		if !ok {
			stats.InvalidFlags++
		}
		return b
	}
	p.HealthLack = flag(population.ColumnHealthLack)
	p.EducationLag = flag(population.ColumnEducationLag)
	p.SocialSecurityLack = flag(population.ColumnSocialSecurityLack)
	p.ReceivesSupport = flag(population.ColumnReceivesSupport)
	for _, program := range stats.Programs {
		p.Eligible[program] = flag(population.EligibilityColumn(program))
	}

	for _, col := range stats.ExtraColumns {
		if p.Attributes == nil {
			p.Attributes = make(map[string]string, len(stats.ExtraColumns))
		}
		p.Attributes[col] = c.text(raw[col])
	}
	return p, ""
}

// parseAge accepts integral values, including "34.0" as written by spreadsheets
func (c *TypeCoercer) parseAge(value string) (int, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, DropAgeMissing
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, DropAgeNotNumeric
	}
	age := int(f)
	if age < c.config.MinAge || age > c.config.MaxAge {
		return 0, DropAgeOutOfRange
	}
	return age, ""
}

func (c *TypeCoercer) text(s string) string {
	s = strings.TrimSpace(s)
	if c.config.NormalizeStrings {
		s = whitespace.ReplaceAllString(s, " ")
	}
	return s
}

// ParseFlag interprets a yes/no cell. Empty cells are false. The second
// return is false for values that are not a recognized flag.
func ParseFlag(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "si", "sí", "true", "1", "y", "s":
		return true, true
	case "no", "false", "0", "n", "":
		return false, true
	}
	return false, false
}

func isKnownColumn(col string) bool {
	switch col {
	case population.ColumnHouseholdID, population.ColumnPersonID, population.ColumnAge,
		population.ColumnSex, population.ColumnKinship, population.ColumnPersonType,
		population.ColumnNeighborhood, population.ColumnCensusBlock, population.ColumnBlock,
		population.ColumnZone, population.ColumnHealthLack, population.ColumnEducationLag,
		population.ColumnSocialSecurityLack, population.ColumnReceivesSupport:
		return true
	}
	return false
}

// toString converts a scalar to its cell string
func toString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
