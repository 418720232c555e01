package sheet

import (
	"strings"
)

const utf8BOM = "\ufeff"

// Parse splits delimited text into rows of trimmed fields.
//
// A doubled quote always yields a literal quote; a single quote toggles the
// quoted state. Outside quotes a comma ends the field and \n, \r or \r\n ends
// the row. Rows whose fields are all empty are dropped. An unterminated quote
// swallows the rest of the input instead of failing.
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, utf8BOM)

	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '"' && i+1 < len(text) && text[i+1] == '"' {
			field.WriteByte('"')
			i++
			continue
		}
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}

		if !inQuotes {
			switch c {
			case ',':
				endField()
				continue
			case '\r':
				if i+1 < len(text) && text[i+1] == '\n' {
					i++
				}
				endField()
				endRow()
				continue
			case '\n':
				endField()
				endRow()
				continue
			}
		}

		field.WriteByte(c)
	}

	endField()
	endRow()

	return rows
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
