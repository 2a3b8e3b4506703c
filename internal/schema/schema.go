// Package schema defines the per-entity field schemas. A schema is an ordered
// set of named fields, each with a semantic type, an extraction hint, and a
// scoring weight. Schemas are configuration: loaded at startup, immutable at
// request time.
package schema

import (
	"fmt"

	"github.com/entitylens/entitylens-api/internal/models"
)

// FieldType is the semantic type of a field. The validator selects its
// cleaning and coercion rules based on this.
type FieldType string

const (
	// TypeName is a company/person/business name (2-200 chars, suffix noise stripped).
	TypeName FieldType = "name"

	// TypeText is free text such as a description or bio (10-2000 chars).
	TypeText FieldType = "text"

	// TypeCount is a numeric count, possibly with a K/M/B suffix ("1.2K" = 1200).
	TypeCount FieldType = "count"

	// TypeDecimal is a small decimal value such as a review rating ("4.5").
	TypeDecimal FieldType = "decimal"

	// TypeRange is a numeric range such as an employee band ("120-450"),
	// normalized to the integer midpoint.
	TypeRange FieldType = "range"

	// TypeYear is a 4-digit year within the accepted 1800-2024 window.
	TypeYear FieldType = "year"

	// TypeURL is an absolute URL; CDN/image-resource URLs are rejected.
	TypeURL FieldType = "url"

	// TypeCategory is a short enum-like label (industry, listing category).
	TypeCategory FieldType = "category"

	// TypeList is a comma-separated list of short strings.
	TypeList FieldType = "list"

	// TypeLocation is a free-form place string (city, address, headquarters).
	TypeLocation FieldType = "location"

	// TypeCountry is a country name, mapped to an ISO-3166 alpha-2 code.
	TypeCountry FieldType = "country"

	// TypePhone is a phone number, normalized to digits with a leading +.
	TypePhone FieldType = "phone"
)

// Field describes one attribute to extract.
type Field struct {
	// Name is the field key used in partial results and consolidated records.
	Name string

	// Type selects the validator rules for this field.
	Type FieldType

	// Hint is a human-readable description, passed to remote structured
	// extraction as guidance.
	Hint string

	// Weight is the field's share of the coverage score. Weights across a
	// schema sum to at most 1.0; zero-weight fields are extracted but do not
	// contribute to confidence.
	Weight float64
}

// Schema is the ordered field set for one entity type.
type Schema struct {
	Entity models.EntityType
	Fields []Field

	byName map[string]int
}

// New builds a schema and indexes its fields.
func New(entity models.EntityType, fields []Field) Schema {
	s := Schema{Entity: entity, Fields: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

// Field returns the definition of a named field.
func (s Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Weight returns the scoring weight for a named field, 0 if unknown.
func (s Schema) Weight(name string) float64 {
	f, _ := s.Field(name)
	return f.Weight
}

// FieldNames returns the field names in schema order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// ForEntity returns the schema for an entity type.
func ForEntity(entity models.EntityType) (Schema, error) {
	switch entity {
	case models.EntityCompany:
		return Company(), nil
	case models.EntityProfile:
		return Profile(), nil
	case models.EntityListing:
		return Listing(), nil
	}
	return Schema{}, fmt.Errorf("unknown entity type %q", entity)
}
