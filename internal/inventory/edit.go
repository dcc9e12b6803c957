package inventory

import (
	"fmt"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// RowEdit carries a partial update of one row. Nil Quantity leaves it as is.
type RowEdit struct {
	Fields   map[string]string
	Quantity *int
}

// AppendRow returns a copy of the table with the record added at the end.
func AppendRow(table *models.Table, edit RowEdit) *models.Table {
	out := table.Clone()
	qty := 0
	if edit.Quantity != nil {
		qty = *edit.Quantity
	}
	out.Rows = append(out.Rows, newRow(out.Columns, knownFields(out, edit.Fields), qty))
	return out
}

// UpdateRow returns a copy of the table with the given fields of one row replaced.
func UpdateRow(table *models.Table, index int, edit RowEdit) (*models.Table, error) {
	if index < 0 || index >= table.Len() {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	out := table.Clone()
	row := &out.Rows[index]
	for f, v := range knownFields(out, edit.Fields) {
		row.Set(f, v)
	}
	if edit.Quantity != nil {
		row.Quantity = min(max(*edit.Quantity, 0), models.MaxQuantity)
	}
	return out, nil
}

// DeleteRow returns a copy of the table without the row at index.
func DeleteRow(table *models.Table, index int) (*models.Table, error) {
	if index < 0 || index >= table.Len() {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	out := table.Clone()
	out.Rows = append(out.Rows[:index], out.Rows[index+1:]...)
	return out, nil
}

// QuickAdd adds stock for an item identified by all of its identity fields,
// empty ones included. A new row receives the schema defaults for the fields
// the caller left blank. The boolean reports whether a new row was created.
func QuickAdd(table *models.Table, fields map[string]string, qty int) (*models.Table, int, bool) {
	out := table.Clone()
	schema := out.Schema
	qty = max(qty, 0)

	if idx, ok := FindExact(out, fields, schema.Identity); ok {
		out.Rows[idx].Quantity = models.AddQuantity(out.Rows[idx].Quantity, qty)
		return out, idx, false
	}

	values := knownFields(out, fields)
	for f, def := range schema.Defaults {
		if models.NormalizeCell(values[f]) == "" {
			values[f] = def
		}
	}
	out.Rows = append(out.Rows, newRow(out.Columns, values, qty))
	return out, len(out.Rows) - 1, true
}

// Take removes qty units from one row, refusing to go below zero.
func Take(table *models.Table, index, qty int) (*models.Table, error) {
	if index < 0 || index >= table.Len() {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	current := table.Rows[index].Quantity
	if current < qty {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, qty, current)
	}

	out := table.Clone()
	out.Rows[index].Quantity -= qty
	return out, nil
}

func knownFields(table *models.Table, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, c := range table.Columns {
		if c == models.QuantityField {
			continue
		}
		if v, ok := fields[c]; ok {
			out[c] = v
		}
	}
	return out
}
