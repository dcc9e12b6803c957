package models

// BOMLine is one required part parsed from an uploaded bill of materials.
// Quantity keeps the raw cell so validation can apply its own default.
type BOMLine struct {
	Line     int               `json:"line"`
	Fields   map[string]string `json:"fields"`
	Quantity string            `json:"quantity"`
}

// ProblemKind classifies a BOM line that cannot be deducted.
type ProblemKind string

const (
	ProblemNotFound     ProblemKind = "NOT_FOUND"
	ProblemInsufficient ProblemKind = "INSUFFICIENT"
)

// Problem describes a BOM line that failed validation or deduction.
type Problem struct {
	Kind      ProblemKind `json:"kind"`
	Line      int         `json:"line"`
	Name      string      `json:"name"`
	Parameter string      `json:"parameter,omitempty"`
	Required  int         `json:"required"`
	Available int         `json:"available"`
}

// SatisfiableLine is a BOM line that matched a row with enough stock. Key holds
// the identity of the matched row so a later deduction can detect that the
// table moved underneath it.
type SatisfiableLine struct {
	Line     int               `json:"line"`
	RowIndex int               `json:"row_index"`
	Quantity int               `json:"quantity"`
	Key      map[string]string `json:"key"`
}

// ValidationReport is the outcome of checking a BOM against stock.
type ValidationReport struct {
	Satisfiable []SatisfiableLine `json:"satisfiable"`
	Problems    []Problem         `json:"problems"`
	Skipped     int               `json:"skipped"`
}

// Complete reports whether every considered line can be deducted.
func (r ValidationReport) Complete() bool {
	return len(r.Problems) == 0
}
