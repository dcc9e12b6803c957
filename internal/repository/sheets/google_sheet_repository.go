package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/labstock/internal/config"
	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
)

// GoogleSheetRepository stores each inventory kind in its own worksheet of a
// single spreadsheet. The first row of a worksheet is the header.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed store from service
// account credentials.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	return NewGoogleSheetRepositoryWithOptions(ctx, cfg.SpreadsheetID, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

// NewGoogleSheetRepositoryWithOptions builds the store with explicit client
// options, such as a custom endpoint.
func NewGoogleSheetRepositoryWithOptions(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// Load reads the worksheet of the schema's kind, creating it with a header row
// when it does not exist.
func (r *GoogleSheetRepository) Load(ctx context.Context, schema models.Schema) (*models.Table, error) {
	title := worksheetTitle(schema.Kind)

	exists, err := r.worksheetExists(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
	}
	if !exists {
		table := models.NewTable(schema)
		if err := r.addWorksheet(ctx, title); err != nil {
			return nil, fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
		}
		if err := r.Save(ctx, table); err != nil {
			return nil, err
		}
		r.logger.Info("worksheet created", zap.String("worksheet", title))
		return table, nil
	}

	values, err := r.readRange(ctx, quoteRange(title))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
	}
	if len(values) == 0 {
		return models.NewTable(schema), nil
	}

	header := stringifyRow(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		rows = append(rows, stringifyRow(raw))
	}
	return repository.Decode(schema, header, rows), nil
}

// Save rewrites the worksheet in a single values update. The written block is
// padded with empty cells to cover whatever the previous contents spanned, so
// no stale rows or columns survive and a failed call changes nothing.
func (r *GoogleSheetRepository) Save(ctx context.Context, table *models.Table) error {
	kind := table.Schema.Kind
	title := worksheetTitle(kind)

	current, err := r.readRange(ctx, quoteRange(title))
	if err != nil {
		return repository.NewSaveError(kind, fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err))
	}
	oldRows, oldCols := len(current), 0
	for _, row := range current {
		oldCols = max(oldCols, len(row))
	}

	header, rows := repository.Encode(table)
	width := max(len(header), oldCols)
	height := max(len(rows)+1, oldRows)

	grid := make([][]interface{}, height)
	for i := range grid {
		line := make([]interface{}, width)
		for j := range line {
			line[j] = ""
		}
		switch {
		case i == 0:
			for j, h := range header {
				line[j] = h
			}
		case i <= len(rows):
			for j, cell := range rows[i-1] {
				if header[j] == models.QuantityField {
					line[j] = models.CoerceQuantity(cell)
					continue
				}
				line[j] = cell
			}
		}
		grid[i] = line
	}

	payload := &sheetsapi.ValueRange{Values: grid}
	_, err = r.service.Spreadsheets.Values.Update(r.spreadsheetID, quoteRange(title)+"!A1", payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		r.logger.Error("worksheet update failed", zap.String("worksheet", title), zap.Error(err))
		return repository.NewSaveError(kind, classify(err))
	}

	r.logger.Debug("worksheet saved",
		zap.String("worksheet", title),
		zap.Int("rows", len(rows)),
		zap.Int("cleared_rows", height-len(rows)-1),
	)
	return nil
}

func (r *GoogleSheetRepository) worksheetExists(ctx context.Context, title string) (bool, error) {
	resp, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("get spreadsheet %s: %w", r.spreadsheetID, err)
	}
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *GoogleSheetRepository) addWorksheet(ctx context.Context, title string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add worksheet %s: %w", title, err)
	}
	return nil
}

// readRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 409 || apiErr.Code == 423) {
		return fmt.Errorf("%w: %w", repository.ErrStoreLocked, err)
	}
	return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
}

func worksheetTitle(kind models.Kind) string {
	return string(kind)
}

func quoteRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func stringifyRow(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = repository.Stringify(v)
	}
	return out
}
