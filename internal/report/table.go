// Package report renders analysis results as markdown tables and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// FormatMarkdown selects the markdown rendering of a result
const FormatMarkdown = "markdown"

// Table is one titled markdown table
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends a row, formatting each value with %v
func (t *Table) AddRow(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = cell(v)
	}
	t.Rows = append(t.Rows, row)
}

// Markdown renders the table in GitHub table syntax
func (t Table) Markdown() string {
	var b strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", t.Title)
	}
	if len(t.Rows) == 0 {
		b.WriteString("_no data_\n")
		return b.String()
	}

	b.WriteString("| " + strings.Join(escape(t.Headers), " | ") + " |\n")
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range t.Rows {
		b.WriteString("| " + strings.Join(escape(row), " | ") + " |\n")
	}
	return b.String()
}

// Document is a titled sequence of tables
type Document struct {
	Title  string
	Tables []Table
}

// Markdown renders the whole document
func (d Document) Markdown() string {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", d.Title)
	}
	for i, t := range d.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Markdown())
	}
	return b.String()
}

// HTML converts markdown to an HTML fragment
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func cell(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%g", x)
	case *int:
		if x == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func escape(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(v, "\n", " "), "|", "/")
	}
	return out
}

func percent(p float64) string {
	return fmt.Sprintf("%g%%", p)
}
