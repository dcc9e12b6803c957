// Package upload turns user-supplied spreadsheets into intake and BOM lines:
// it parses the file, suggests which upload column feeds each schema field and
// projects the rows through the chosen mapping.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository/localfile"
)

var (
	// ErrUnsupportedFormat indicates the upload is neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported upload format")

	// ErrEmptySheet indicates the upload has no header row.
	ErrEmptySheet = errors.New("uploaded sheet is empty")
)

// Sheet is a parsed upload: its header and data rows, padded to the header width.
type Sheet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"-"`
}

// Parse reads an .xlsx (first worksheet) or .csv upload. The first row is
// the header; rows with no content are dropped.
func Parse(filename string, r io.Reader) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	case ".csv":
		records, err = localfile.ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	sheet := &Sheet{Columns: make([]string, len(records[0]))}
	for i, h := range records[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}
		sheet.Columns[i] = name
	}

	for _, raw := range records[1:] {
		row := make([]string, len(sheet.Columns))
		blank := true
		for i := range row {
			if i < len(raw) {
				row[i] = models.NormalizeCell(raw[i])
			}
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	return sheet, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	return localfile.FirstSheetRows(f)
}

// column returns the position of a header, or -1.
func (s *Sheet) column(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
