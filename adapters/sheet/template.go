package sheet

import (
	"bytes"
	"strings"

	"verisure/domain/credential"
	"verisure/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Template file names offered for download.
const (
	TemplateName     = "verisure_issuance_template.csv"
	TemplateNameXLSX = "verisure_issuance_template.xlsx"
)

// TemplateExample is the sample data row shipped in the template.
var TemplateExample = []string{
	"Ada Lovelace",
	"ada@example.com",
	"Degree",
	"B.Sc. Economics",
	"MAT/2020/1234",
	"2028-12-31",
	"Graduated with honors",
}

// TemplateCSV returns the header line and example row, each newline-terminated.
func TemplateCSV() []byte {
	var b strings.Builder
	b.WriteString(strings.Join(credential.TemplateColumns(), ","))
	b.WriteString("\n")
	b.WriteString(strings.Join(TemplateExample, ","))
	b.WriteString("\n")
	return []byte(b.String())
}

// TemplateXLSX returns the same template as a single-sheet workbook.
func TemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := credential.TemplateColumns()
	for i, v := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build template header")
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return nil, errors.Wrap(err, "failed to write template header")
		}
	}
	for i, v := range TemplateExample {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build template row")
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return nil, errors.Wrap(err, "failed to write template row")
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode template workbook")
	}
	return buf.Bytes(), nil
}
