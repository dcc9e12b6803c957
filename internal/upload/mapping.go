package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// NoColumn is the mapping value for a target the upload does not provide.
const NoColumn = "(none)"

// ErrMissingMapping indicates a mandatory target has no usable source column.
var ErrMissingMapping = errors.New("column mapping is incomplete")

// Purpose selects which set of target fields an upload is mapped onto.
type Purpose string

const (
	PurposeIntake Purpose = "intake"
	PurposeBOM    Purpose = "bom"
)

// Mapping assigns an upload column to each target field.
type Mapping map[string]string

// keywords are matched as substrings of upload headers, in order.
var keywords = map[string][]string{
	models.QuantityField: {"数量", "qty", "quantity"},

	"name":      {"名称", "name", "model", "型号"},
	"parameter": {"参数", "值", "value"},
	"package":   {"封装", "package", "footprint"},
	"category":  {"类型", "category", "type"},
	"spec":      {"规格", "spec"},
	"length":    {"长度", "length"},
	"size":      {"尺寸", "size"},
}

// ParsePurpose resolves a purpose name; empty means intake.
func ParsePurpose(value string) (Purpose, bool) {
	switch Purpose(strings.ToLower(strings.TrimSpace(value))) {
	case "", PurposeIntake:
		return PurposeIntake, true
	case PurposeBOM:
		return PurposeBOM, true
	default:
		return "", false
	}
}

// Targets lists the schema fields an upload for the purpose maps onto.
func Targets(schema models.Schema, purpose Purpose) []string {
	if purpose == PurposeBOM {
		return schema.BOMTargets()
	}
	return schema.IntakeTargets()
}

// SuggestMapping picks, per target, the first column whose header contains one
// of the target's keywords. Unmatched mandatory targets fall back to the first
// column, optional ones to NoColumn.
func SuggestMapping(schema models.Schema, purpose Purpose, columns []string) Mapping {
	mapping := make(Mapping)
	for _, target := range Targets(schema, purpose) {
		mapping[target] = suggest(target, columns, schema.Mandatory(target))
	}
	return mapping
}

func suggest(target string, columns []string, mandatory bool) string {
	for _, col := range columns {
		header := strings.ToLower(col)
		for _, kw := range keywords[target] {
			if strings.Contains(header, kw) {
				return col
			}
		}
	}
	if mandatory && len(columns) > 0 {
		return columns[0]
	}
	return NoColumn
}

// Validate checks that every mandatory target is mapped and that every mapped
// column exists in the sheet.
func (m Mapping) Validate(schema models.Schema, purpose Purpose, sheet *Sheet) error {
	for _, target := range Targets(schema, purpose) {
		source := m.source(target)
		if source == "" {
			if schema.Mandatory(target) {
				return fmt.Errorf("%w: %s is required", ErrMissingMapping, target)
			}
			continue
		}
		if sheet.column(source) < 0 {
			return fmt.Errorf("%w: column %q mapped to %s is not in the upload", ErrMissingMapping, source, target)
		}
	}
	return nil
}

func (m Mapping) source(target string) string {
	source := strings.TrimSpace(m[target])
	if source == NoColumn {
		return ""
	}
	return source
}
