// Package strategy implements the independent extraction strategies. Each
// strategy scans one document and returns a partial field map using a
// distinct technique; strategies never fail on malformed input, they return
// an empty partial instead. They are read-only over the document and
// order-independent, so the runner executes them concurrently.
package strategy

import (
	"sync"

	"github.com/entitylens/entitylens-api/internal/models"
)

// Strategy extracts a partial result from one raw document.
type Strategy interface {
	// Name identifies the strategy for provenance and priority ordering.
	Name() models.StrategyName

	// Extract scans the document and returns candidate values. Must not
	// panic on malformed input; internal failure yields an empty partial.
	Extract(doc string) models.PartialResult
}

// DefaultPriority is the consolidation order, most trusted first. Embedded
// metadata is authored by the site itself; contextual text matching is the
// loosest signal.
func DefaultPriority() []models.StrategyName {
	return []models.StrategyName{
		models.StrategyJSONLD,
		models.StrategySelector,
		models.StrategyMetaTag,
		models.StrategyPattern,
		models.StrategyContext,
	}
}

// RunAll executes every strategy over the same document concurrently and
// returns each partial keyed by strategy name. A panicking strategy
// contributes an empty partial rather than taking the extraction down.
func RunAll(strategies []Strategy, doc string) map[models.StrategyName]models.PartialResult {
	results := make(map[models.StrategyName]models.PartialResult, len(strategies))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, s := range strategies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial := safeExtract(s, doc)
			mu.Lock()
			results[s.Name()] = partial
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

func safeExtract(s Strategy, doc string) (partial models.PartialResult) {
	defer func() {
		if r := recover(); r != nil {
			partial = models.PartialResult{}
		}
	}()
	return s.Extract(doc)
}
