package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

func schemaFor(t *testing.T, kind models.Kind) models.Schema {
	t.Helper()
	s, err := models.LookupSchema(string(kind))
	require.NoError(t, err)
	return s
}

// elecRow builds an electronics row: name, parameter, category, package, qty.
func elecRow(name, param, category, pkg string, qty int) models.Record {
	return models.NewRecord(map[string]string{
		"name":      name,
		"parameter": param,
		"category":  category,
		"package":   pkg,
		"location":  "",
		"note":      "",
	}, qty)
}

func elecTable(t *testing.T, rows ...models.Record) *models.Table {
	t.Helper()
	table := models.NewTable(schemaFor(t, models.KindElectronics))
	table.Rows = append(table.Rows, rows...)
	return table
}

func quantities(table *models.Table) []int {
	out := make([]int, len(table.Rows))
	for i, r := range table.Rows {
		out[i] = r.Quantity
	}
	return out
}
