// Package consolidate merges the partial results of all strategies into one
// consolidated record by fixed priority, validating every candidate on the
// way in.
package consolidate

import (
	"log/slog"
	"strings"

	"github.com/entitylens/entitylens-api/internal/models"
	"github.com/entitylens/entitylens-api/internal/schema"
	"github.com/entitylens/entitylens-api/internal/validate"
)

// Engine merges partial results for one entity schema.
type Engine struct {
	schema   schema.Schema
	priority []models.StrategyName
	logger   *slog.Logger
}

// New creates a consolidation engine. priority is the strategy order, most
// trusted first; strategies absent from it are never consulted.
func New(sch schema.Schema, priority []models.StrategyName, logger *slog.Logger) *Engine {
	return &Engine{schema: sch, priority: priority, logger: logger}
}

// Consolidate merges partials by field: fields iterate in schema order, and
// per field the strategies are consulted in priority order. The first value
// that is present and passes the field's validator wins, with the supplying
// strategy recorded as provenance. Fields no strategy could validate are
// omitted entirely.
func (e *Engine) Consolidate(partials map[models.StrategyName]models.PartialResult) models.ConsolidatedRecord {
	record := models.ConsolidatedRecord{}

	for _, field := range e.schema.Fields {
		for _, name := range e.priority {
			partial, ok := partials[name]
			if !ok {
				continue
			}
			raw, ok := partial[field.Name]
			if !ok {
				continue
			}

			value, ok := validate.Field(field, raw)
			if !ok {
				e.logger.Debug("candidate rejected by validator",
					"field", field.Name,
					"strategy", name,
					"raw", raw,
				)
				continue
			}

			record[field.Name] = models.FieldValue{Value: value, Source: name}
			break
		}
	}

	e.splitHeadquarters(record)

	return record
}

// splitHeadquarters backfills discrete city/region/country fields from a
// composite headquarters string when the discrete fields are missing. Splits
// on commas: last segment is the country, first the city, and the middle of
// exactly three parts the region. A best-effort heuristic, not authoritative.
func (e *Engine) splitHeadquarters(record models.ConsolidatedRecord) {
	hq, ok := record[schema.FieldHeadquarters]
	if !ok {
		return
	}
	if _, hasSchema := e.schema.Field(schema.FieldCountry); !hasSchema {
		return
	}
	if record.Has(schema.FieldCity) && record.Has(schema.FieldCountry) {
		return
	}

	parts := strings.Split(hq.Value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return
	}

	if !record.Has(schema.FieldCountry) {
		if code := validate.CountryCode(parts[len(parts)-1]); code != "" {
			record[schema.FieldCountry] = models.FieldValue{Value: code, Source: hq.Source}
		}
	}
	if !record.Has(schema.FieldCity) && parts[0] != "" {
		record[schema.FieldCity] = models.FieldValue{Value: parts[0], Source: hq.Source}
	}
	if len(parts) == 3 && !record.Has(schema.FieldRegion) && parts[1] != "" {
		record[schema.FieldRegion] = models.FieldValue{Value: parts[1], Source: hq.Source}
	}
}
