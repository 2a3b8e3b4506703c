package strategy

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entitylens/entitylens-api/internal/models"
)

// SelectorRule lists the ordered DOM-path candidates for one field, most
// specific first. The first candidate matching non-empty text wins.
type SelectorRule struct {
	Field string

	// Selectors are CSS selectors tried in order.
	Selectors []string

	// Attr, when set, takes this attribute instead of the element text
	// (e.g. href for link-valued fields).
	Attr string

	// StripLabel removes a leading "Label:" prefix from the matched text,
	// for elements that render label and value together
	// ("Industry: Software").
	StripLabel string
}

// Selector extracts fields by matching DOM-path candidates with goquery.
type Selector struct {
	rules []SelectorRule
}

// NewSelector creates the DOM-selector strategy.
func NewSelector(rules []SelectorRule) *Selector {
	return &Selector{rules: rules}
}

// Name implements Strategy.
func (s *Selector) Name() models.StrategyName { return models.StrategySelector }

// Extract implements Strategy.
func (s *Selector) Extract(doc string) models.PartialResult {
	partial := models.PartialResult{}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return partial
	}

	for _, rule := range s.rules {
		for _, css := range rule.Selectors {
			sel := gq.Find(css).First()
			if sel.Length() == 0 {
				continue
			}

			var value string
			if rule.Attr != "" {
				value, _ = sel.Attr(rule.Attr)
			} else {
				value = sel.Text()
			}
			value = strings.TrimSpace(value)
			if rule.StripLabel != "" {
				value = stripLabel(value, rule.StripLabel)
			}

			// Very short matches are selector noise, not values.
			if len(value) > 2 {
				partial.Set(rule.Field, value)
				break
			}
		}
	}

	return partial
}

// stripLabel removes a leading case-insensitive "label" optionally followed
// by ":" or "-" from text.
func stripLabel(text, label string) string {
	lower := strings.ToLower(text)
	prefix := strings.ToLower(label)
	if !strings.HasPrefix(lower, prefix) {
		return text
	}
	rest := text[len(label):]
	rest = strings.TrimLeft(rest, " \t:–-")
	return strings.TrimSpace(rest)
}
