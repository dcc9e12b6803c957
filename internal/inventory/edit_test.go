package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/inventory"
)

func intPtr(v int) *int { return &v }

func TestUpdateRow(t *testing.T) {
	table := elecTable(t, elecRow("R", "10K", "resistor", "0603", 3))

	out, err := inventory.UpdateRow(table, 0, inventory.RowEdit{
		Fields:   map[string]string{"location": " drawer A2 ", "unknown": "x"},
		Quantity: intPtr(-4),
	})

	require.NoError(t, err)
	assert.Equal(t, "drawer A2", out.Rows[0].Get("location"))
	assert.NotContains(t, out.Rows[0].Fields, "unknown")
	assert.Equal(t, 0, out.Rows[0].Quantity)
	assert.Equal(t, "", table.Rows[0].Get("location"))

	_, err = inventory.UpdateRow(table, 5, inventory.RowEdit{})
	assert.ErrorIs(t, err, inventory.ErrRowOutOfRange)
}

func TestAppendAndDeleteRow(t *testing.T) {
	table := elecTable(t, elecRow("R", "10K", "resistor", "0603", 3))

	out := inventory.AppendRow(table, inventory.RowEdit{Fields: map[string]string{"name": "C"}, Quantity: intPtr(7)})
	require.Len(t, out.Rows, 2)
	assert.Equal(t, 7, out.Rows[1].Quantity)

	out, err := inventory.DeleteRow(out, 0)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "C", out.Rows[0].Get("name"))

	_, err = inventory.DeleteRow(out, -1)
	assert.ErrorIs(t, err, inventory.ErrRowOutOfRange)
}

func TestQuickAdd_Fasteners(t *testing.T) {
	table := models.NewTable(schemaFor(t, models.KindFasteners))

	out, idx, created := inventory.QuickAdd(table, map[string]string{"spec": "M3", "length": "10mm", "category": "pan head"}, 50)
	assert.True(t, created)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "stainless steel", out.Rows[0].Get("material"))

	out, idx, created = inventory.QuickAdd(out, map[string]string{"spec": "M3", "length": "10mm", "category": "pan head"}, 30)
	assert.False(t, created)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 80, out.Rows[0].Quantity)

	out, _, created = inventory.QuickAdd(out, map[string]string{"spec": "M3", "length": "10mm"}, 5)
	assert.True(t, created, "blank identity fields must match exactly")
	assert.Len(t, out.Rows, 2)
}

func TestTake(t *testing.T) {
	table := elecTable(t, elecRow("R", "10K", "resistor", "0603", 3))

	out, err := inventory.Take(table, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Rows[0].Quantity)

	_, err = inventory.Take(out, 0, 2)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	_, err = inventory.Take(out, 0, 0)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = inventory.Take(out, 3, 1)
	assert.ErrorIs(t, err, inventory.ErrRowOutOfRange)
}
