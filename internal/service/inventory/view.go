package inventory

import (
	"context"
	"fmt"

	"github.com/mamadbah2/labstock/internal/domain/models"
	engine "github.com/mamadbah2/labstock/internal/inventory"
)

// ViewQuery narrows and orders a table view.
type ViewQuery struct {
	Sort       string
	Categories []string
	Packages   []string
	Search     string
}

// ViewRow is one displayed row. Index addresses the row for edits.
type ViewRow struct {
	Index    int               `json:"index"`
	Fields   map[string]string `json:"fields"`
	Quantity int               `json:"quantity"`
	ImageURL string            `json:"image_url,omitempty"`
	LowStock bool              `json:"low_stock"`
}

// View is a sorted, filtered projection of a table.
type View struct {
	Kind       models.Kind `json:"kind"`
	Columns    []string    `json:"columns"`
	Sort       string      `json:"sort"`
	Total      int         `json:"total"`
	Rows       []ViewRow   `json:"rows"`
	Categories []string    `json:"categories"`
	Packages   []string    `json:"packages"`
}

// View returns the rows of a kind in presentation order. The stored table is
// never reordered.
func (s *Service) View(ctx context.Context, kind string, query ViewQuery) (*View, error) {
	mode, ok := engine.ParseSortMode(query.Sort)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort mode %q", ErrInvalidRequest, query.Sort)
	}

	table, err := s.read(ctx, kind)
	if err != nil {
		return nil, err
	}
	schema := table.Schema
	threshold := s.Threshold(schema)

	filter := engine.Filter{Categories: query.Categories, Packages: query.Packages, Search: query.Search}
	order := filter.Apply(table, engine.Sort(table, mode))

	view := &View{
		Kind:       schema.Kind,
		Columns:    table.Columns,
		Sort:       string(mode),
		Total:      table.Len(),
		Rows:       make([]ViewRow, 0, len(order)),
		Categories: engine.DistinctValues(table, schema.CategoryField),
		Packages:   engine.DistinctValues(table, schema.PackageField),
	}
	for _, idx := range order {
		row := table.Rows[idx]
		view.Rows = append(view.Rows, ViewRow{
			Index:    idx,
			Fields:   row.Fields,
			Quantity: row.Quantity,
			ImageURL: row.ImageURL(),
			LowStock: row.Quantity < threshold,
		})
	}
	return view, nil
}
