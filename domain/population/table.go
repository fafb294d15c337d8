package population

import (
	"sort"
)

// Table is an immutable set of person rows with its schema. All derived
// subsets are new Tables; a Table is never modified after NewTable returns.
type Table struct {
	columns  []string
	index    map[string]struct{}
	programs []string
	rows     []Person
}

// NewTable builds a table from an ordered column list and its rows.
// Programs are discovered from the eligibility columns.
func NewTable(columns []string, rows []Person) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]struct{}, len(cols))
	var programs []string
	for _, c := range cols {
		index[c] = struct{}{}
		if program, ok := ProgramFromColumn(c); ok {
			programs = append(programs, program)
		}
	}

	return &Table{
		columns:  cols,
		index:    index,
		programs: programs,
		rows:     rows,
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows. The slice is shared and must be treated as read-only.
func (t *Table) Rows() []Person {
	return t.rows
}

// Columns returns a copy of the schema in source order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether column is part of the schema
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Programs returns the program ids available in this table, in schema order
func (t *Table) Programs() []string {
	out := make([]string, len(t.programs))
	copy(out, t.programs)
	return out
}

// HasProgram reports whether the table carries an eligibility column for program
func (t *Table) HasProgram(program string) bool {
	return t.HasColumn(EligibilityColumn(program))
}

// Where returns a new table with the rows matching keep. The schema is shared.
func (t *Table) Where(keep func(Person) bool) *Table {
	rows := make([]Person, 0, len(t.rows))
	for _, p := range t.rows {
		if keep(p) {
			rows = append(rows, p)
		}
	}
	return t.withRows(rows)
}

// Partition splits the table into matching and non-matching subsets
func (t *Table) Partition(match func(Person) bool) (*Table, *Table) {
	var in, out []Person
	for _, p := range t.rows {
		if match(p) {
			in = append(in, p)
		} else {
			out = append(out, p)
		}
	}
	return t.withRows(in), t.withRows(out)
}

// Clone returns a table with its own copy of the row slice
func (t *Table) Clone() *Table {
	rows := make([]Person, len(t.rows))
	copy(rows, t.rows)
	return t.withRows(rows)
}

func (t *Table) withRows(rows []Person) *Table {
	return &Table{
		columns:  t.columns,
		index:    t.index,
		programs: t.programs,
		rows:     rows,
	}
}

// Count is one category and its frequency
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts every distinct value of column, sorted by frequency
// descending then value ascending. Rows without the column are skipped.
func (t *Table) ValueCounts(column string) []Count {
	counts := make(map[string]int)
	for _, p := range t.rows {
		if v, ok := p.Field(column); ok {
			counts[v]++
		}
	}
	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Households counts distinct household ids
func (t *Table) Households() int {
	seen := make(map[string]struct{})
	for _, p := range t.rows {
		seen[p.HouseholdID] = struct{}{}
	}
	return len(seen)
}
