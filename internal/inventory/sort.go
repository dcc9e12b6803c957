package inventory

import (
	"sort"
	"strings"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// SortMode selects how a table view is ordered.
type SortMode string

const (
	SortSmart       SortMode = "smart"
	SortQtyDesc     SortMode = "qty_desc"
	SortQtyAsc      SortMode = "qty_asc"
	SortRecencyDesc SortMode = "recency_desc"
)

// ParseSortMode maps a query value onto a SortMode; empty means smart.
func ParseSortMode(value string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortSmart:
		return SortSmart, true
	case SortQtyDesc:
		return SortQtyDesc, true
	case SortQtyAsc:
		return SortQtyAsc, true
	case SortRecencyDesc:
		return SortRecencyDesc, true
	default:
		return "", false
	}
}

// Sort returns row indices of the table in presentation order. The table
// itself is not reordered, so the indices stay valid for edits. Equal rows
// keep their table order.
func Sort(table *models.Table, mode SortMode) []int {
	order := make([]int, len(table.Rows))
	for i := range order {
		order[i] = i
	}

	rows := table.Rows
	switch mode {
	case SortQtyDesc:
		sort.SliceStable(order, func(a, b int) bool {
			return rows[order[a]].Quantity > rows[order[b]].Quantity
		})
	case SortQtyAsc:
		sort.SliceStable(order, func(a, b int) bool {
			return rows[order[a]].Quantity < rows[order[b]].Quantity
		})
	case SortRecencyDesc:
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	default:
		smartSort(table.Schema, rows, order)
	}

	return order
}

func smartSort(schema models.Schema, rows []models.Record, order []int) {
	weights := make([]float64, len(rows))
	for i, row := range rows {
		weights[i] = ParseMagnitude(row.Get(schema.SortMagnitude))
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := rows[order[a]], rows[order[b]]
		for _, f := range schema.SortText {
			if va, vb := ra.Get(f), rb.Get(f); va != vb {
				return va < vb
			}
		}
		return weights[order[a]] < weights[order[b]]
	})
}
