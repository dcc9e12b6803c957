package inventory

import (
	"strings"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// DefaultNoStockMarker flags BOM lines the sourcing sheet marks as "no stock".
const DefaultNoStockMarker = "无货"

// Validate checks every BOM line against the table without changing it.
// Lines with an empty name or carrying a no-stock marker are skipped. A
// missing or unparsable required quantity counts as 1.
func Validate(table *models.Table, lines []models.BOMLine, noStockMarkers []string) models.ValidationReport {
	schema := table.Schema
	paramField := schema.ParameterField()
	report := models.ValidationReport{
		Satisfiable: []models.SatisfiableLine{},
		Problems:    []models.Problem{},
	}

	for _, line := range lines {
		name := models.NormalizeCell(line.Fields[schema.NameField])
		if name == "" || hasMarker(name, noStockMarkers) {
			report.Skipped++
			continue
		}

		required, ok := models.ParseQuantity(line.Quantity)
		if !ok || required < 0 {
			required = 1
		}

		param := models.NormalizeCell(line.Fields[paramField])

		idx, found := Find(table, line.Fields, schema.Identity)
		if !found {
			report.Problems = append(report.Problems, models.Problem{
				Kind:      models.ProblemNotFound,
				Line:      line.Line,
				Name:      name,
				Parameter: param,
				Required:  required,
			})
			continue
		}

		row := table.Rows[idx]
		if row.Quantity < required {
			report.Problems = append(report.Problems, models.Problem{
				Kind:      models.ProblemInsufficient,
				Line:      line.Line,
				Name:      name,
				Parameter: param,
				Required:  required,
				Available: row.Quantity,
			})
			continue
		}

		report.Satisfiable = append(report.Satisfiable, models.SatisfiableLine{
			Line:     line.Line,
			RowIndex: idx,
			Quantity: required,
			Key:      row.Key(schema.Identity),
		})
	}

	return report
}

// Deduct subtracts each line's quantity from its row, in list order, on a copy
// of the table. Every line is re-checked against the current rows: when the
// row at RowIndex no longer carries the validated identity it is looked up
// again, and a line whose stock dropped below the requirement is reported
// instead of being applied, so quantities never go negative.
func Deduct(table *models.Table, lines []models.SatisfiableLine) (*models.Table, []models.Problem) {
	out := table.Clone()
	schema := out.Schema
	paramField := schema.ParameterField()
	var problems []models.Problem

	for _, line := range lines {
		idx, ok := resolveRow(out, line)
		if !ok {
			problems = append(problems, models.Problem{
				Kind:      models.ProblemNotFound,
				Line:      line.Line,
				Name:      line.Key[schema.NameField],
				Parameter: line.Key[paramField],
				Required:  line.Quantity,
			})
			continue
		}

		row := &out.Rows[idx]
		if line.Quantity < 0 || row.Quantity < line.Quantity {
			problems = append(problems, models.Problem{
				Kind:      models.ProblemInsufficient,
				Line:      line.Line,
				Name:      row.Get(schema.NameField),
				Parameter: row.Get(paramField),
				Required:  line.Quantity,
				Available: row.Quantity,
			})
			continue
		}

		row.Quantity -= line.Quantity
	}

	return out, problems
}

func resolveRow(table *models.Table, line models.SatisfiableLine) (int, bool) {
	inRange := line.RowIndex >= 0 && line.RowIndex < len(table.Rows)
	if len(line.Key) == 0 {
		return line.RowIndex, inRange
	}

	keys := make([]string, 0, len(line.Key))
	for _, f := range table.Schema.Identity {
		if _, ok := line.Key[f]; ok {
			keys = append(keys, f)
		}
	}

	if inRange && sameKey(table.Rows[line.RowIndex], line.Key, keys) {
		return line.RowIndex, true
	}
	return FindExact(table, line.Key, keys)
}

func sameKey(row models.Record, key map[string]string, fields []string) bool {
	for _, f := range fields {
		if row.Get(f) != key[f] {
			return false
		}
	}
	return true
}

func hasMarker(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}
