package strategy

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entitylens/entitylens-api/internal/models"
)

// MetaRule maps social/meta tag names to one field. Tags are tried in order;
// the first occurrence wins.
type MetaRule struct {
	Field string
	Tags  []string
}

// MetaTag extracts fields from meta tags, checking both the property and
// name attribute forms (og:/twitter: tags use property, classic meta uses
// name).
type MetaTag struct {
	rules []MetaRule
}

// NewMetaTag creates the meta-tag strategy.
func NewMetaTag(rules []MetaRule) *MetaTag {
	return &MetaTag{rules: rules}
}

// Name implements Strategy.
func (s *MetaTag) Name() models.StrategyName { return models.StrategyMetaTag }

// Extract implements Strategy.
func (s *MetaTag) Extract(doc string) models.PartialResult {
	partial := models.PartialResult{}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return partial
	}

	// Index every meta tag once; first occurrence per tag name wins.
	content := make(map[string]string)
	gq.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("property")
		if !ok || key == "" {
			key, _ = sel.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, seen := content[key]; seen {
			return
		}
		if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
			content[key] = strings.TrimSpace(v)
		}
	})

	// Page title is a meta-level signal too; expose it under "title".
	if _, ok := content["title"]; !ok {
		if title := strings.TrimSpace(gq.Find("title").First().Text()); title != "" {
			content["title"] = title
		}
	}

	for _, rule := range s.rules {
		for _, tag := range rule.Tags {
			if v, ok := content[strings.ToLower(tag)]; ok {
				partial.Set(rule.Field, v)
				break
			}
		}
	}

	return partial
}
