package inventory

import "github.com/mamadbah2/labstock/internal/domain/models"

// Stats summarizes a table for the dashboard.
type Stats struct {
	Kind          models.Kind `json:"kind"`
	SKUs          int         `json:"skus"`
	TotalQuantity int         `json:"total_quantity"`
	Threshold     int         `json:"low_stock_threshold"`
	LowStock      []int       `json:"low_stock_rows"`
}

// Summarize counts SKUs and quantities and lists rows strictly below threshold.
func Summarize(table *models.Table, threshold int) Stats {
	stats := Stats{
		Kind:          table.Schema.Kind,
		SKUs:          table.Len(),
		TotalQuantity: table.TotalQuantity(),
		Threshold:     threshold,
		LowStock:      []int{},
	}
	for i, row := range table.Rows {
		if row.Quantity < threshold {
			stats.LowStock = append(stats.LowStock, i)
		}
	}
	return stats
}

// DistinctValues lists the non-empty values of a field in first-seen order,
// used to offer filter choices.
func DistinctValues(table *models.Table, field string) []string {
	if field == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range table.Rows {
		v := row.Get(field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
