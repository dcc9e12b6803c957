package models

import (
	"math"
	"strconv"
	"strings"
)

// nullSentinels are cell renderings that spreadsheet exports use for "no value".
var nullSentinels = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"<na>": {},
}

// imageColumns are the header names scanned for a row picture link.
var imageColumns = []string{"图片", "图片链接", "image", "img"}

// Record is one inventory row. Quantity is kept apart from the text fields and
// is never negative.
type Record struct {
	Fields   map[string]string `json:"fields"`
	Quantity int               `json:"quantity"`
}

// NewRecord builds a record with normalized field values.
func NewRecord(fields map[string]string, quantity int) Record {
	r := Record{Fields: make(map[string]string, len(fields)), Quantity: quantity}
	for k, v := range fields {
		r.Fields[k] = NormalizeCell(v)
	}
	r.Quantity = min(max(r.Quantity, 0), MaxQuantity)
	return r
}

// Get returns the trimmed value of a field, or "" when absent.
func (r Record) Get(field string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}

// Set stores a normalized value for a field.
func (r *Record) Set(field, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[field] = NormalizeCell(value)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{Fields: make(map[string]string, len(r.Fields)), Quantity: r.Quantity}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Key projects the record onto the given fields.
func (r Record) Key(fields []string) map[string]string {
	key := make(map[string]string, len(fields))
	for _, f := range fields {
		key[f] = r.Get(f)
	}
	return key
}

// ImageURL returns the first http(s) link stored in a picture column.
func (r Record) ImageURL() string {
	for _, col := range imageColumns {
		for field, value := range r.Fields {
			if !strings.EqualFold(field, col) {
				continue
			}
			if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
				return value
			}
		}
	}
	return ""
}

// Table is an ordered set of records sharing the columns of one schema. Columns
// starts with the schema columns and keeps any extra columns found in the
// backing store so they survive a round-trip.
type Table struct {
	Schema  Schema   `json:"-"`
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// NewTable returns an empty table laid out with the schema columns.
func NewTable(schema Schema) *Table {
	return &Table{
		Schema:  schema,
		Columns: append([]string{}, schema.Columns...),
		Rows:    []Record{},
	}
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (t *Table) Clone() *Table {
	out := &Table{
		Schema:  t.Schema,
		Columns: append([]string{}, t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// TotalQuantity sums the quantity of every row.
func (t *Table) TotalQuantity() int {
	total := 0
	for _, row := range t.Rows {
		total += row.Quantity
	}
	return total
}

// NormalizeCell trims a value and folds null sentinels to the empty string.
func NormalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if IsNullSentinel(value) {
		return ""
	}
	return value
}

// IsNullSentinel reports whether the value is an export artefact meaning "empty".
func IsNullSentinel(value string) bool {
	_, ok := nullSentinels[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// MaxQuantity caps any stored or parsed quantity.
const MaxQuantity = 1_000_000_000

// ParseQuantity coerces a cell to an integer. Decimal renderings such as "5.0"
// are truncated and magnitudes beyond MaxQuantity are clamped. The boolean is
// false when the value is not numeric.
func ParseQuantity(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return clampQuantity(float64(n)), true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampQuantity(f), true
}

func clampQuantity(f float64) int {
	switch {
	case f > MaxQuantity:
		return MaxQuantity
	case f < -MaxQuantity:
		return -MaxQuantity
	}
	return int(f)
}

// AddQuantity adds two stock counts, saturating at MaxQuantity.
func AddQuantity(a, b int) int {
	if b > MaxQuantity-a {
		return MaxQuantity
	}
	return a + b
}

// CoerceQuantity parses a stored quantity: unparsable or negative becomes 0.
func CoerceQuantity(value string) int {
	n, ok := ParseQuantity(value)
	if !ok || n < 0 {
		return 0
	}
	return n
}
