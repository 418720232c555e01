package sheet

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"verisure/internal/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// File types accepted for issuance uploads.
const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
)

// DetectType maps an upload file name to the reader used for it. Anything
// that is not a workbook is read as delimited text.
func DetectType(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".xlsx" {
		return TypeXLSX
	}
	return TypeCSV
}

// Reader turns uploaded file bytes into raw rows.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a reader; a nil logger disables logging.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger.Named("sheet")}
}

// ReadRows reads an upload. Blank rows are dropped and cells trimmed for both
// file types so the validator sees the same shape.
func (r *Reader) ReadRows(name string, data []byte) ([][]string, error) {
	start := time.Now()
	fileType := DetectType(name)

	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case TypeXLSX:
		rows, err = readWorkbook(data)
	default:
		rows = Parse(string(data))
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("upload read",
		zap.String("file", name),
		zap.String("type", fileType),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))
	return rows, nil
}

// readWorkbook reads the first worksheet of an xlsx file.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no worksheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeInvalidInput, err), "failed to read %s", sheets[0])
	}

	rows := make([][]string, 0, len(raw))
	for _, cells := range raw {
		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = strings.TrimSpace(cell)
		}
		if !blank(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
