package strategy

import (
	"regexp"
	"strings"

	"github.com/entitylens/entitylens-api/internal/models"
)

// PatternRule lists the ordered text patterns for one field. The first
// pattern that matches wins; composite captures (e.g. an employee range) are
// joined with a hyphen.
type PatternRule struct {
	Field    string
	Patterns []*regexp.Regexp
}

// Pattern extracts fields by applying regular expressions to the raw
// document.
type Pattern struct {
	rules []PatternRule
	name  models.StrategyName
}

// NewPattern creates the raw-document pattern strategy.
func NewPattern(rules []PatternRule) *Pattern {
	return &Pattern{rules: rules, name: models.StrategyPattern}
}

// Name implements Strategy.
func (s *Pattern) Name() models.StrategyName { return s.name }

// Extract implements Strategy.
func (s *Pattern) Extract(doc string) models.PartialResult {
	return applyPatternRules(s.rules, doc)
}

// applyPatternRules is shared with the contextual-text strategy, which runs
// the same matching over tag-stripped text.
func applyPatternRules(rules []PatternRule, text string) models.PartialResult {
	partial := models.PartialResult{}

	for _, rule := range rules {
		for _, re := range rule.Patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}

			value := joinCaptures(m)
			if value != "" {
				partial.Set(rule.Field, value)
				break
			}
		}
	}

	return partial
}

// joinCaptures returns the single capture, or composite captures joined with
// a hyphen ("120", "450" becomes "120-450"). Without captures the full match
// is used.
func joinCaptures(m []string) string {
	if len(m) == 1 {
		return strings.TrimSpace(m[0])
	}

	var parts []string
	for _, g := range m[1:] {
		g = strings.TrimSpace(g)
		if g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, "-")
}
