package strategy

import (
	"regexp"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/entitylens/entitylens-api/internal/models"
)

// Context scans plain extracted text for sentence-level cues ("Founded in",
// "Headquartered in", "We have N employees"). Its patterns are looser than
// the raw-document pattern strategy, which is why it sits last in the
// priority order.
type Context struct {
	rules []PatternRule
}

// NewContext creates the contextual-text strategy.
func NewContext(rules []PatternRule) *Context {
	return &Context{rules: rules}
}

// Name implements Strategy.
func (s *Context) Name() models.StrategyName { return models.StrategyContext }

// Extract implements Strategy.
func (s *Context) Extract(doc string) models.PartialResult {
	return applyPatternRules(s.rules, PlainText(doc))
}

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
)

// PlainText converts an HTML document to readable text via markdown
// conversion. When conversion fails the tags are stripped directly; a noisy
// text pass is still better than none.
func PlainText(doc string) string {
	md, err := htmltomarkdown.ConvertString(doc)
	if err == nil && md != "" {
		return md
	}
	return tagRe.ReplaceAllString(scriptRe.ReplaceAllString(doc, " "), " ")
}
