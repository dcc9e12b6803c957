package upload

import "github.com/mamadbah2/labstock/internal/domain/models"

// IntakeLines projects a validated sheet onto intake lines. Line numbers are
// 1-based and count the header as line 1.
func IntakeLines(schema models.Schema, sheet *Sheet, mapping Mapping) ([]models.IntakeLine, error) {
	if err := mapping.Validate(schema, PurposeIntake, sheet); err != nil {
		return nil, err
	}

	lines := make([]models.IntakeLine, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		fields, qty := project(schema, PurposeIntake, sheet, mapping, row)
		lines = append(lines, models.IntakeLine{Line: i + 2, Fields: fields, Quantity: qty})
	}
	return lines, nil
}

// BOMLines projects a validated sheet onto BOM lines.
func BOMLines(schema models.Schema, sheet *Sheet, mapping Mapping) ([]models.BOMLine, error) {
	if err := mapping.Validate(schema, PurposeBOM, sheet); err != nil {
		return nil, err
	}

	lines := make([]models.BOMLine, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		fields, qty := project(schema, PurposeBOM, sheet, mapping, row)
		lines = append(lines, models.BOMLine{Line: i + 2, Fields: fields, Quantity: qty})
	}
	return lines, nil
}

func project(schema models.Schema, purpose Purpose, sheet *Sheet, mapping Mapping, row []string) (map[string]string, string) {
	fields := make(map[string]string)
	qty := ""
	for _, target := range Targets(schema, purpose) {
		value := ""
		if source := mapping.source(target); source != "" {
			value = row[sheet.column(source)]
		}
		if target == models.QuantityField {
			qty = value
			continue
		}
		fields[target] = value
	}
	return fields, qty
}
