package inventory

import "github.com/mamadbah2/labstock/internal/domain/models"

// Find returns the index of the first row whose values equal the candidate on
// every key field the candidate actually fills in. Empty candidate fields do
// not constrain the match, so a name-only candidate matches loosely.
func Find(table *models.Table, candidate map[string]string, keys []string) (int, bool) {
	active := make([]string, 0, len(keys))
	for _, k := range keys {
		if models.NormalizeCell(candidate[k]) != "" {
			active = append(active, k)
		}
	}

	return firstMatch(table, candidate, active)
}

// FindExact is like Find but also requires empty candidate fields to be empty
// on the row.
func FindExact(table *models.Table, candidate map[string]string, keys []string) (int, bool) {
	return firstMatch(table, candidate, keys)
}

func firstMatch(table *models.Table, candidate map[string]string, fields []string) (int, bool) {
	if table == nil {
		return -1, false
	}

	for i, row := range table.Rows {
		matched := true
		for _, f := range fields {
			if row.Get(f) != models.NormalizeCell(candidate[f]) {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}
	return -1, false
}
