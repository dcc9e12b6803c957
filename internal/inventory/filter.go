package inventory

import (
	"strconv"
	"strings"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// Filter narrows a table view. Empty criteria match everything.
type Filter struct {
	Categories []string
	Packages   []string
	Search     string
}

// Apply keeps the indices whose rows satisfy the filter, preserving order.
func (f Filter) Apply(table *models.Table, order []int) []int {
	categories := toSet(f.Categories)
	packages := toSet(f.Packages)
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	schema := table.Schema

	out := make([]int, 0, len(order))
	for _, idx := range order {
		row := table.Rows[idx]
		if len(categories) > 0 && schema.CategoryField != "" {
			if _, ok := categories[row.Get(schema.CategoryField)]; !ok {
				continue
			}
		}
		if len(packages) > 0 && schema.PackageField != "" {
			if _, ok := packages[row.Get(schema.PackageField)]; !ok {
				continue
			}
		}
		if needle != "" && !rowContains(table.Columns, row, needle) {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func rowContains(columns []string, row models.Record, needle string) bool {
	for _, c := range columns {
		value := row.Get(c)
		if c == models.QuantityField {
			value = strconv.Itoa(row.Quantity)
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
