// Package crosstab builds two-way frequency tables over the population.
package crosstab

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
	"socialgap/internal/filter"
)

// TotalLabel names the margin row and column
const TotalLabel = "Total"

// Table is a frequency table. Rows and Columns end with the Total margin and
// Counts is indexed [row][column] in the same order.
type Table struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Counts  [][]int  `json:"counts"`
}

// Count returns the cell for a row and column label, margins included
func (t *Table) Count(row, column string) int {
	r, c := indexOf(t.Rows, row), indexOf(t.Columns, column)
	if r < 0 || c < 0 {
		return 0
	}
	return t.Counts[r][c]
}

// GrandTotal is the bottom-right cell
func (t *Table) GrandTotal() int {
	return t.Counts[len(t.Rows)-1][len(t.Columns)-1]
}

// Summary counts the categories on each axis, margins excluded
type Summary struct {
	RowCategories    int `json:"row_categories"`
	ColumnCategories int `json:"column_categories"`
	GrandTotal       int `json:"grand_total"`
}

// Result is a cross tabulation with its text rendering
type Result struct {
	RowField     string            `json:"row_field"`
	ColumnField  string            `json:"column_field"`
	Criteria     criteria.Criteria `json:"criteria"`
	AgeBinned    bool              `json:"age_binned"`
	Table        *Table            `json:"table"`
	Text         string            `json:"text"`
	Summary      Summary           `json:"summary"`
	Independence *Independence     `json:"independence,omitempty"`
}

// Build tabulates rowField against columnField over the rows matching c.
// When binAges is set, the age field is replaced by its bin label.
func Build(table *population.Table, rowField, columnField string, c criteria.Criteria, binAges bool) (*Result, error) {
	for _, field := range []string{rowField, columnField} {
		if !table.HasColumn(field) {
			return nil, &core.FieldNotFoundError{Field: field, Available: table.Columns()}
		}
	}

	subset, err := filter.Apply(table, c)
	if err != nil {
		return nil, err
	}

	rowValue := valueFunc(rowField, binAges)
	colValue := valueFunc(columnField, binAges)

	cells := make(map[string]map[string]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for _, p := range subset.Rows() {
		r, ok := rowValue(p)
		if !ok {
			continue
		}
		col, ok := colValue(p)
		if !ok {
			continue
		}
		if cells[r] == nil {
			cells[r] = make(map[string]int)
		}
		cells[r][col]++
		rowSet[r] = struct{}{}
		colSet[col] = struct{}{}
	}

	rows := orderCategories(rowSet, binAges && rowField == population.ColumnAge)
	cols := orderCategories(colSet, binAges && columnField == population.ColumnAge)
	t := assemble(rows, cols, cells)

	result := &Result{
		RowField:    rowField,
		ColumnField: columnField,
		Criteria:    c,
		AgeBinned:   binAges && (rowField == population.ColumnAge || columnField == population.ColumnAge),
		Table:       t,
		Summary: Summary{
			RowCategories:    len(rows),
			ColumnCategories: len(cols),
			GrandTotal:       t.GrandTotal(),
		},
	}
	result.Text = Render(result)
	result.Independence = ChiSquare(t)
	return result, nil
}

func valueFunc(field string, binAges bool) func(population.Person) (string, bool) {
	if binAges && field == population.ColumnAge {
		return func(p population.Person) (string, bool) {
			return BinAge(p.Age)
		}
	}
	return func(p population.Person) (string, bool) {
		v, ok := p.Field(field)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}
}

// orderCategories sorts bins in interval order, numeric categories by value
// and everything else lexically
func orderCategories(set map[string]struct{}, bins bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}

	if bins {
		order := binOrder()
		sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
		return out
	}

	numbers := make(map[string]float64, len(out))
	numeric := true
	for _, v := range out {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		numbers[v] = n
	}
	if numeric {
		sort.Slice(out, func(i, j int) bool { return numbers[out[i]] < numbers[out[j]] })
	} else {
		sort.Strings(out)
	}
	return out
}

func assemble(rows, cols []string, cells map[string]map[string]int) *Table {
	t := &Table{
		Rows:    append(append([]string{}, rows...), TotalLabel),
		Columns: append(append([]string{}, cols...), TotalLabel),
		Counts:  make([][]int, len(rows)+1),
	}
	for i := range t.Counts {
		t.Counts[i] = make([]int, len(cols)+1)
	}

	totalRow, totalCol := len(rows), len(cols)
	for i, r := range rows {
		for j, c := range cols {
			n := cells[r][c]
			t.Counts[i][j] = n
			t.Counts[i][totalCol] += n
			t.Counts[totalRow][j] += n
			t.Counts[totalRow][totalCol] += n
		}
	}
	return t
}

// Render formats the table as aligned plain text
func Render(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CROSS TABULATION: %s x %s\n", r.RowField, r.ColumnField)

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t\n", r.RowField, strings.Join(r.Table.Columns, "\t"))
	for i, row := range r.Table.Rows {
		values := make([]string, len(r.Table.Columns))
		for j := range r.Table.Columns {
			values[j] = strconv.Itoa(r.Table.Counts[i][j])
		}
		fmt.Fprintf(w, "%s\t%s\t\n", row, strings.Join(values, "\t"))
	}
	w.Flush()

	return b.String()
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
