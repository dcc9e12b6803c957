package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/inventory"
)

func TestSort_SmartOrdersByCategoryNameMagnitude(t *testing.T) {
	table := elecTable(t,
		elecRow("R", "10K", "resistor", "0603", 1),
		elecRow("C", "1U", "capacitor", "0603", 1),
		elecRow("R", "4.7K", "resistor", "0603", 1),
		elecRow("C", "100N", "capacitor", "0603", 1),
		elecRow("R", "jumper", "resistor", "0603", 1),
		elecRow("R", "100R", "resistor", "0603", 1),
	)

	order := inventory.Sort(table, inventory.SortSmart)

	assert.Equal(t, []int{3, 1, 5, 2, 0, 4}, order)
}

func TestSort_SmartIsStable(t *testing.T) {
	table := elecTable(t,
		elecRow("R", "10K", "resistor", "0603", 1),
		elecRow("R", "10K", "resistor", "0402", 2),
		elecRow("R", "1K", "resistor", "0402", 3),
		elecRow("R", "10K", "resistor", "0805", 4),
	)

	order := inventory.Sort(table, inventory.SortSmart)

	assert.Equal(t, []int{2, 0, 1, 3}, order)
}

func TestSort_QuantityAndRecency(t *testing.T) {
	table := elecTable(t,
		elecRow("A", "", "", "", 5),
		elecRow("B", "", "", "", 1),
		elecRow("C", "", "", "", 5),
		elecRow("D", "", "", "", 9),
	)

	assert.Equal(t, []int{3, 0, 2, 1}, inventory.Sort(table, inventory.SortQtyDesc))
	assert.Equal(t, []int{1, 0, 2, 3}, inventory.Sort(table, inventory.SortQtyAsc))
	assert.Equal(t, []int{3, 2, 1, 0}, inventory.Sort(table, inventory.SortRecencyDesc))
}

func TestSort_DoesNotReorderTable(t *testing.T) {
	table := elecTable(t,
		elecRow("B", "", "", "", 1),
		elecRow("A", "", "", "", 2),
	)

	inventory.Sort(table, inventory.SortSmart)

	assert.Equal(t, "B", table.Rows[0].Get("name"))
}

func TestSort_FastenersUseLength(t *testing.T) {
	table := models.NewTable(schemaFor(t, models.KindFasteners))
	for _, length := range []string{"20mm", "6mm", "10mm"} {
		table.Rows = append(table.Rows, models.NewRecord(map[string]string{"spec": "M3", "category": "pan", "length": length}, 1))
	}

	assert.Equal(t, []int{1, 2, 0}, inventory.Sort(table, inventory.SortSmart))
}

func TestParseSortMode(t *testing.T) {
	mode, ok := inventory.ParseSortMode("")
	assert.True(t, ok)
	assert.Equal(t, inventory.SortSmart, mode)

	mode, ok = inventory.ParseSortMode("QTY_DESC")
	assert.True(t, ok)
	assert.Equal(t, inventory.SortQtyDesc, mode)

	_, ok = inventory.ParseSortMode("random")
	assert.False(t, ok)
}
