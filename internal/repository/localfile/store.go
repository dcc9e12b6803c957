package localfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
)

// Format selects the on-disk encoding of the inventory files.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// utf8BOM is written by spreadsheet programs at the start of CSV exports.
const utf8BOM = "\ufeff"

// Store keeps one spreadsheet file per inventory kind inside a directory.
type Store struct {
	dir    string
	format Format
	logger *zap.Logger
}

// NewStore creates the data directory when needed and returns a file store.
func NewStore(dir string, format Format, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("unsupported local file format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, format: format, logger: logger}, nil
}

// Path returns the file backing a kind.
func (s *Store) Path(kind models.Kind) string {
	return filepath.Join(s.dir, string(kind)+"."+string(s.format))
}

// Load reads the file for the schema, creating an empty one when missing.
func (s *Store) Load(ctx context.Context, schema models.Schema) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(schema.Kind)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		table := models.NewTable(schema)
		if err := s.Save(ctx, table); err != nil {
			return nil, err
		}
		s.logger.Info("created empty inventory file", zap.String("path", path))
		return table, nil
	}

	var (
		records [][]string
		err     error
	)
	switch s.format {
	case FormatCSV:
		records, err = readCSV(path)
	default:
		records, err = readXLSX(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", repository.ErrStoreUnavailable, path, err)
	}

	if len(records) == 0 {
		return models.NewTable(schema), nil
	}
	return repository.Decode(schema, records[0], records[1:]), nil
}

// Save writes the table to a temporary file next to the target and renames it
// into place, so readers see either the old or the new contents.
func (s *Store) Save(ctx context.Context, table *models.Table) error {
	kind := table.Schema.Kind
	if err := ctx.Err(); err != nil {
		return repository.NewSaveError(kind, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"-*.tmp")
	if err != nil {
		return repository.NewSaveError(kind, classify(err))
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	header, rows := repository.Encode(table)
	switch s.format {
	case FormatCSV:
		err = writeCSV(tmp, header, rows)
	default:
		err = writeXLSX(tmp, string(kind), header, rows)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return repository.NewSaveError(kind, classify(err))
	}

	target := s.Path(kind)
	if err := os.Rename(tmpPath, target); err != nil {
		s.logger.Error("inventory file could not be replaced", zap.String("path", target), zap.Error(err))
		return repository.NewSaveError(kind, fmt.Errorf("%w: %s is open elsewhere: %w", repository.ErrStoreLocked, filepath.Base(target), err))
	}

	s.logger.Debug("inventory file saved", zap.String("path", target), zap.Int("rows", len(rows)))
	return nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", repository.ErrStoreLocked, err)
	}
	return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses CSV content, tolerating a UTF-8 BOM and ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return FirstSheetRows(f)
}

// FirstSheetRows returns the cell text of the first worksheet of a workbook.
func FirstSheetRows(f *excelize.File) ([][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no worksheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", sheet, err)
	}
	return rows, nil
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	qtyCol := -1
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
		if h == models.QuantityField {
			qtyCol = i
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			if i == qtyCol {
				cells[i] = models.CoerceQuantity(v)
				continue
			}
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	return f.Write(w)
}
