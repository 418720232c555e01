package schema

import (
	"strings"

	"verisure/domain/credential"
	"verisure/internal/errors"
)

// User-facing validation messages.
const (
	MsgInsufficientData = "CSV must include a header row and at least one data row."
	MsgNoValidRows      = "No valid rows found."
)

// NormalizeHeader lowercases and trims a header cell and collapses internal
// whitespace runs to one underscore. Unicode spaces such as NBSP count as
// whitespace.
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}

// Validate turns raw rows (header first) into the accepted record set.
// Rows missing any required value are dropped silently; the result keeps
// the original row order.
func Validate(rows [][]string) (*credential.RecordSet, error) {
	if len(rows) < 2 {
		return nil, errors.InsufficientData(MsgInsufficientData)
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]bool, len(header))
	for i, h := range rows[0] {
		header[i] = NormalizeHeader(h)
		present[header[i]] = true
	}

	var missing []string
	for _, col := range credential.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.MissingColumns(missing, "Missing required columns: "+strings.Join(missing, ", "))
	}

	records := make([]credential.Record, 0, len(rows)-1)
	for _, cols := range rows[1:] {
		rec := make(credential.Record, len(header))
		for i, h := range header {
			var v string
			if i < len(cols) {
				v = strings.TrimSpace(cols[i])
			}
			rec[h] = v
		}
		if rec.Complete() {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, errors.NoValidRows(MsgNoValidRows)
	}

	return &credential.RecordSet{Header: header, Records: records}, nil
}
