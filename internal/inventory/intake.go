package inventory

import "github.com/mamadbah2/labstock/internal/domain/models"

// Merge folds a batch of incoming lines into a copy of the table. Each line is
// matched against the table as mutated so far: a hit adds its quantity and
// fills identity or category fields the row left empty, a miss appends a new
// row. The returned count covers hits and misses; skipped lines are not
// counted. The input table is left untouched and nothing is persisted.
func Merge(table *models.Table, incoming []models.IntakeLine) (*models.Table, int) {
	out := table.Clone()
	schema := out.Schema
	backfill := backfillFields(schema)
	applied := 0

	for _, line := range incoming {
		if models.NormalizeCell(line.Fields[schema.NameField]) == "" {
			continue
		}

		qty := models.CoerceQuantity(line.Quantity)

		if idx, ok := Find(out, line.Fields, schema.Identity); ok {
			row := &out.Rows[idx]
			row.Quantity = models.AddQuantity(row.Quantity, qty)
			for _, f := range backfill {
				incomingValue := models.NormalizeCell(line.Fields[f])
				if incomingValue != "" && row.Get(f) == "" {
					row.Set(f, incomingValue)
				}
			}
		} else {
			out.Rows = append(out.Rows, newRow(out.Columns, line.Fields, qty))
		}
		applied++
	}

	return out, applied
}

func backfillFields(schema models.Schema) []string {
	fields := append([]string{}, schema.Identity...)
	if schema.CategoryField != "" && !schema.IsIdentity(schema.CategoryField) {
		fields = append(fields, schema.CategoryField)
	}
	return fields
}

// newRow lays out a record over every table column, defaulting to "".
func newRow(columns []string, fields map[string]string, qty int) models.Record {
	values := make(map[string]string, len(columns))
	for _, c := range columns {
		if c == models.QuantityField {
			continue
		}
		values[c] = fields[c]
	}
	return models.NewRecord(values, qty)
}
