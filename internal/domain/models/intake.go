package models

// IntakeLine is one incoming row of an uploaded stock-intake sheet, already
// projected onto schema fields. Quantity keeps the raw cell.
type IntakeLine struct {
	Line     int               `json:"line"`
	Fields   map[string]string `json:"fields"`
	Quantity string            `json:"quantity"`
}
