package preview

import (
	"strings"

	"verisure/domain/credential"
)

// DefaultLimit is how many records the upload preview shows.
const DefaultLimit = 50

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape makes a value safe to place in HTML text or attribute context.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Table is the escaped, bounded projection of a record set.
type Table struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Shown     int        `json:"shown"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

// Render projects at most limit records in their original order. Cells are
// aligned with header; a record missing a column renders an empty cell.
// A non-positive limit means DefaultLimit.
func Render(header []string, records []credential.Record, limit int) Table {
	if limit <= 0 {
		limit = DefaultLimit
	}
	n := len(records)
	if n > limit {
		n = limit
	}

	t := Table{
		Headers:   make([]string, len(header)),
		Rows:      make([][]string, n),
		Shown:     n,
		Total:     len(records),
		Truncated: len(records) > n,
	}
	for i, h := range header {
		t.Headers[i] = Escape(h)
	}
	for i, rec := range records[:n] {
		row := make([]string, len(header))
		for j, h := range header {
			row[j] = Escape(rec[h])
		}
		t.Rows[i] = row
	}
	return t
}

// HTML returns the thead and tbody markup for the table.
func (t Table) HTML() string {
	var b strings.Builder
	b.WriteString("<thead><tr>")
	for _, h := range t.Headers {
		b.WriteString("<th>")
		b.WriteString(h)
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(cell)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody>")
	return b.String()
}
