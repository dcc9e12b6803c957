package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind indicates the requested inventory kind has no schema.
var ErrUnknownKind = errors.New("unknown inventory kind")

// Kind enumerates the inventory tables the lab keeps.
type Kind string

const (
	KindElectronics Kind = "electronics"
	KindFasteners   Kind = "fasteners"
	KindPCBs        Kind = "pcbs"
)

// QuantityField is the only numeric column shared by every kind.
const QuantityField = "quantity"

// Schema declares the column layout of one inventory kind and which of its
// columns identify a physical stock item.
type Schema struct {
	Kind          Kind              `json:"kind"`
	Title         string            `json:"title"`
	Columns       []string          `json:"columns"`
	Identity      []string          `json:"identity"`
	NameField     string            `json:"name_field"`
	CategoryField string            `json:"category_field,omitempty"`
	PackageField  string            `json:"package_field,omitempty"`
	SortText      []string          `json:"sort_text"`
	SortMagnitude string            `json:"sort_magnitude,omitempty"`
	LowStock      int               `json:"low_stock"`
	Defaults      map[string]string `json:"defaults,omitempty"`
}

var schemas = []Schema{
	{
		Kind:          KindElectronics,
		Title:         "Electronic components",
		Columns:       []string{"name", "parameter", "category", "package", QuantityField, "location", "note"},
		Identity:      []string{"name", "parameter", "package"},
		NameField:     "name",
		CategoryField: "category",
		PackageField:  "package",
		SortText:      []string{"category", "name"},
		SortMagnitude: "parameter",
		LowStock:      10,
	},
	{
		Kind:          KindFasteners,
		Title:         "Fasteners",
		Columns:       []string{"spec", "category", "length", "material", QuantityField, "note"},
		Identity:      []string{"spec", "length", "category"},
		NameField:     "spec",
		CategoryField: "category",
		SortText:      []string{"category", "spec"},
		SortMagnitude: "length",
		LowStock:      20,
		Defaults:      map[string]string{"material": "stainless steel"},
	},
	{
		Kind:          KindPCBs,
		Title:         "PCBs",
		Columns:       []string{"name", "size", QuantityField, "location", "note"},
		Identity:      []string{"name", "size"},
		NameField:     "name",
		SortText:      []string{"name"},
		SortMagnitude: "size",
		LowStock:      5,
	},
}

// Schemas returns a copy of every registered schema in declaration order.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// LookupSchema resolves a schema by its kind name.
func LookupSchema(kind string) (Schema, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(kind)))
	for _, s := range schemas {
		if s.Kind == normalized {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// HasColumn reports whether the field is declared by the schema.
func (s Schema) HasColumn(field string) bool {
	for _, c := range s.Columns {
		if c == field {
			return true
		}
	}
	return false
}

// IsIdentity reports whether the field takes part in the identity key.
func (s Schema) IsIdentity(field string) bool {
	for _, c := range s.Identity {
		if c == field {
			return true
		}
	}
	return false
}

// IntakeTargets lists the fields an uploaded intake sheet can be mapped onto.
func (s Schema) IntakeTargets() []string {
	targets := append([]string{}, s.Identity...)
	if s.CategoryField != "" && !s.IsIdentity(s.CategoryField) {
		targets = append(targets, s.CategoryField)
	}
	return append(targets, QuantityField)
}

// BOMTargets lists the fields an uploaded BOM sheet can be mapped onto.
func (s Schema) BOMTargets() []string {
	return append(append([]string{}, s.Identity...), QuantityField)
}

// Mandatory reports whether an upload mapping must provide the target.
func (s Schema) Mandatory(target string) bool {
	return target == s.NameField || target == QuantityField
}

// ParameterField is the column quoted next to the name in diagnostics.
func (s Schema) ParameterField() string {
	return s.SortMagnitude
}
