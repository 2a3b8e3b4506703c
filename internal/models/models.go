// Package models contains the domain types shared across the extraction engine.
package models

import (
	"strings"
	"time"
)

// EntityType selects the field schema and acquisition backend order for an
// extraction request.
type EntityType string

const (
	EntityCompany EntityType = "company"
	EntityProfile EntityType = "profile"
	EntityListing EntityType = "listing"
)

// ParseEntityType converts a string to an EntityType, returning false for
// unknown values.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityCompany:
		return EntityCompany, true
	case EntityProfile:
		return EntityProfile, true
	case EntityListing:
		return EntityListing, true
	}
	return "", false
}

// StrategyName identifies one extraction strategy for provenance tracking.
type StrategyName string

const (
	// StrategyJSONLD parses embedded machine-readable metadata blocks.
	StrategyJSONLD StrategyName = "jsonld"

	// StrategySelector matches ordered DOM-path candidates per field.
	StrategySelector StrategyName = "selector"

	// StrategyMetaTag reads social/meta tags (og:, twitter:, description).
	StrategyMetaTag StrategyName = "metatag"

	// StrategyPattern applies text patterns against the raw document.
	StrategyPattern StrategyName = "pattern"

	// StrategyContext scans tag-stripped text for sentence-level cues.
	// Least trusted source.
	StrategyContext StrategyName = "context"

	// StrategyRemote marks values returned by a backend's server-side
	// structured extraction endpoint.
	StrategyRemote StrategyName = "remote"
)

// PartialResult maps field name to a single raw candidate value, as produced
// by exactly one strategy for one document. Values are unvalidated.
type PartialResult map[string]string

// Set stores a candidate value, ignoring empty strings.
func (p PartialResult) Set(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	p[field] = value
}

// FieldValue is one consolidated field value together with the strategy that
// supplied it.
type FieldValue struct {
	Value  string       `json:"value"`
	Source StrategyName `json:"source"`
}

// ConsolidatedRecord maps field name to its winning validated value. Fields
// no strategy could validate are absent, never null-filled.
type ConsolidatedRecord map[string]FieldValue

// Get returns the value for a field, or "" if absent.
func (r ConsolidatedRecord) Get(field string) string {
	return r[field].Value
}

// Has reports whether a field is present in the record.
func (r ConsolidatedRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Sources returns the distinct strategies that contributed at least one field.
func (r ConsolidatedRecord) Sources() []StrategyName {
	seen := make(map[StrategyName]bool)
	var out []StrategyName
	for _, fv := range r {
		if !seen[fv.Source] {
			seen[fv.Source] = true
			out = append(out, fv.Source)
		}
	}
	return out
}

// ExtractionResult is the immutable outcome of one top-level extract call.
// Callers always receive a result, never a hard error: degraded data is
// preferred over no data.
type ExtractionResult struct {
	ID         string             `json:"id"`
	EntityType EntityType         `json:"entity_type"`
	Target     string             `json:"target"`
	Fields     ConsolidatedRecord `json:"fields"`
	Contacts   *ContactBundle     `json:"contacts,omitempty"`

	// Confidence is a 0-100 completeness estimate for Fields.
	Confidence float64 `json:"confidence"`

	// Strategies lists the strategies that contributed at least one field.
	Strategies []StrategyName `json:"strategies"`

	// Method is the acquisition backend that produced the winning document.
	Method string `json:"method"`

	// MethodsAttempted lists every backend tried, in order.
	MethodsAttempted []string `json:"methods_attempted"`

	Success   bool      `json:"success"`
	FetchedAt time.Time `json:"fetched_at"`

	FetchDurationMs   int `json:"fetch_duration_ms"`
	ExtractDurationMs int `json:"extract_duration_ms"`
}
