package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// transientColumns are computed for display and must never reach storage.
var transientColumns = map[string]struct{}{
	"sort_key": {},
	"sort_val": {},
	"数值权重":     {},
}

// IsTransient reports whether a column is a display-only computed column.
func IsTransient(column string) bool {
	_, ok := transientColumns[strings.TrimSpace(column)]
	return ok
}

// Decode normalizes a raw header and rows into a table. Declared columns the
// header lacks are added empty, extra columns are kept after the declared
// ones, text cells are trimmed and quantity is coerced to a non-negative int.
// Rows with no content at all are dropped.
func Decode(schema models.Schema, header []string, rows [][]string) *models.Table {
	table := models.NewTable(schema)

	position := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || IsTransient(name) {
			continue
		}
		if _, dup := position[name]; dup {
			continue
		}
		position[name] = i
		if !schema.HasColumn(name) {
			table.Columns = append(table.Columns, name)
		}
	}

	for _, raw := range rows {
		if blankRow(raw) {
			continue
		}

		fields := make(map[string]string, len(table.Columns))
		quantity := 0
		for _, col := range table.Columns {
			cell := ""
			if pos, ok := position[col]; ok && pos < len(raw) {
				cell = raw[pos]
			}
			if col == models.QuantityField {
				quantity = models.CoerceQuantity(cell)
				continue
			}
			fields[col] = cell
		}
		table.Rows = append(table.Rows, models.NewRecord(fields, quantity))
	}

	return table
}

// Encode flattens a table into a header and string rows, dropping transient
// columns.
func Encode(table *models.Table) ([]string, [][]string) {
	header := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		if !IsTransient(col) {
			header = append(header, col)
		}
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		row := make([]string, len(header))
		for i, col := range header {
			if col == models.QuantityField {
				row[i] = strconv.Itoa(record.Quantity)
				continue
			}
			row[i] = record.Get(col)
		}
		rows = append(rows, row)
	}

	return header, rows
}

// Stringify renders an arbitrary cell value the way the sheet displays it.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func blankRow(raw []string) bool {
	for _, cell := range raw {
		if models.NormalizeCell(cell) != "" {
			return false
		}
	}
	return true
}
