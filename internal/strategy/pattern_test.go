package strategy

import (
	"regexp"
	"testing"

	"github.com/entitylens/entitylens-api/internal/models"
)

func TestPatternCompositeCapturesJoinedWithHyphen(t *testing.T) {
	s := NewPattern([]PatternRule{
		{Field: "company_size", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d[\d,]*)\s*-\s*(\d[\d,]*)\s+employees`),
		}},
	})

	partial := s.Extract("We are proud to have 120 - 450 employees worldwide.")
	if partial["company_size"] != "120-450" {
		t.Errorf("company_size = %q, want 120-450", partial["company_size"])
	}
}

func TestPatternFirstMatchWins(t *testing.T) {
	s := NewPattern([]PatternRule{
		{Field: "founded", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)founded[^0-9]{0,20}(\d{4})`),
			regexp.MustCompile(`(\d{4})`),
		}},
	})

	partial := s.Extract("Since 2020. Founded in 1998.")
	if partial["founded"] != "1998" {
		t.Errorf("founded = %q, want 1998 (first pattern should win)", partial["founded"])
	}
}

func TestPatternNoMatchLeavesFieldAbsent(t *testing.T) {
	s := NewPattern([]PatternRule{
		{Field: "founded", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)founded in (\d{4})`),
		}},
	})

	partial := s.Extract("nothing useful here")
	if _, ok := partial["founded"]; ok {
		t.Errorf("expected founded absent, got %q", partial["founded"])
	}
}

func TestPatternName(t *testing.T) {
	s := NewPattern(nil)
	if s.Name() != models.StrategyPattern {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestContextFoundedCue(t *testing.T) {
	strategies := companyStrategies()
	var ctx *Context
	for _, s := range strategies {
		if c, ok := s.(*Context); ok {
			ctx = c
		}
	}

	doc := `<html><body><p>Acme was founded in 1998 and is headquartered in
	Portland, Oregon.</p></body></html>`

	partial := ctx.Extract(doc)
	if partial["founded"] != "1998" {
		t.Errorf("founded = %q, want 1998", partial["founded"])
	}
	if partial["headquarters"] == "" {
		t.Error("headquarters cue not matched")
	}
}

func TestPlainTextStripsTags(t *testing.T) {
	text := PlainText(`<html><body><p>Hello <b>world</b></p><script>var x = 1;</script></body></html>`)
	if text == "" {
		t.Fatal("empty plain text")
	}
	if regexp.MustCompile(`<[a-z]`).MatchString(text) {
		t.Errorf("tags survived stripping: %q", text)
	}
}
