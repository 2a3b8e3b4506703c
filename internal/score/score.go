// Package score computes the 0-100 confidence score for a consolidated
// record. The score is the only signal the backend fallback chain uses to
// decide whether to keep trying other acquisition backends.
package score

import (
	"github.com/entitylens/entitylens-api/internal/models"
	"github.com/entitylens/entitylens-api/internal/schema"
)

// Bonuses applied on top of weighted field coverage.
const (
	// diversityStep is added per distinct contributing strategy.
	diversityStep = 0.1

	// diversityCap bounds the method-diversity bonus.
	diversityCap = 0.3

	// jsonldBonus rewards records with embedded-metadata provenance, the
	// most reliable source.
	jsonldBonus = 15.0

	// selectorBonus rewards selector-based provenance.
	selectorBonus = 10.0
)

// Confidence rates a consolidated record against its schema. Weighted field
// coverage forms the base: the weights of present fields sum and scale to
// 100. A method-diversity bonus of min(0.1 x strategies, 0.3) x 100 and
// reliability bonuses (+15 embedded metadata, +10 selector) are added, and
// the total clamps to 100.
func Confidence(record models.ConsolidatedRecord, sch schema.Schema, strategies []models.StrategyName) float64 {
	var coverage float64
	for _, field := range sch.Fields {
		if record.Has(field.Name) {
			coverage += field.Weight
		}
	}
	total := coverage * 100

	distinct := distinctStrategies(strategies)

	diversity := diversityStep * float64(len(distinct))
	if diversity > diversityCap {
		diversity = diversityCap
	}
	total += diversity * 100

	if _, ok := distinct[models.StrategyJSONLD]; ok {
		total += jsonldBonus
	}
	if _, ok := distinct[models.StrategySelector]; ok {
		total += selectorBonus
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

func distinctStrategies(strategies []models.StrategyName) map[models.StrategyName]struct{} {
	seen := make(map[models.StrategyName]struct{}, len(strategies))
	for _, s := range strategies {
		seen[s] = struct{}{}
	}
	return seen
}
