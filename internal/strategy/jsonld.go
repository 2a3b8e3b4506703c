package strategy

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kaptinlin/jsonrepair"

	"github.com/entitylens/entitylens-api/internal/models"
)

// PathSpec names one field and the ordered metadata paths that can supply it.
// Paths are evaluated generically against the decoded block; the first path
// that resolves to a non-empty value wins.
type PathSpec struct {
	Field string
	Paths [][]string
}

// AddressSpec describes how to synthesize a composite location string from a
// nested address object.
type AddressSpec struct {
	// Field receives the composite string.
	Field string

	// Parts are the address sub-keys joined with ", ", in order.
	Parts []string
}

// JSONLD extracts fields from embedded JSON-LD/schema.org blocks. Blocks that
// fail to decode are run through jsonrepair once before being skipped:
// hand-edited templates routinely ship trailing commas and bare keys.
type JSONLD struct {
	types   map[string]bool
	specs   []PathSpec
	address *AddressSpec
}

// NewJSONLD creates the embedded-metadata strategy. acceptedTypes filters
// blocks by @type; an empty list accepts every block.
func NewJSONLD(acceptedTypes []string, specs []PathSpec, address *AddressSpec) *JSONLD {
	types := make(map[string]bool, len(acceptedTypes))
	for _, t := range acceptedTypes {
		types[strings.ToLower(t)] = true
	}
	return &JSONLD{types: types, specs: specs, address: address}
}

// Name implements Strategy.
func (s *JSONLD) Name() models.StrategyName { return models.StrategyJSONLD }

// Extract implements Strategy.
func (s *JSONLD) Extract(doc string) models.PartialResult {
	partial := models.PartialResult{}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return partial
	}

	gq.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		for _, node := range decodeBlocks(sel.Text()) {
			if !s.acceptType(node) {
				continue
			}
			s.extractNode(node, partial)
		}
	})

	return partial
}

// decodeBlocks decodes a script body into the individual metadata nodes it
// contains, flattening top-level arrays and @graph containers.
func decodeBlocks(body string) []map[string]any {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(body)
		if repairErr != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
			return nil
		}
	}

	var nodes []map[string]any
	var collect func(v any)
	collect = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				collect(item)
			}
		case map[string]any:
			if graph, ok := t["@graph"].([]any); ok {
				for _, item := range graph {
					collect(item)
				}
				return
			}
			nodes = append(nodes, t)
		}
	}
	collect(decoded)

	return nodes
}

func (s *JSONLD) acceptType(node map[string]any) bool {
	if len(s.types) == 0 {
		return true
	}
	switch t := node["@type"].(type) {
	case string:
		return s.types[strings.ToLower(t)]
	case []any:
		for _, item := range t {
			if str, ok := item.(string); ok && s.types[strings.ToLower(str)] {
				return true
			}
		}
	}
	return false
}

func (s *JSONLD) extractNode(node map[string]any, partial models.PartialResult) {
	for _, spec := range s.specs {
		if _, ok := partial[spec.Field]; ok {
			continue
		}
		for _, path := range spec.Paths {
			if v := stringifyValue(walkPath(node, path)); v != "" {
				partial.Set(spec.Field, v)
				break
			}
		}
	}

	if s.address != nil {
		if _, ok := partial[s.address.Field]; !ok {
			if composite := s.synthesizeAddress(node); composite != "" {
				partial.Set(s.address.Field, composite)
			}
		}
	}
}

// synthesizeAddress joins the configured address parts into one composite
// location string, e.g. "San Francisco, CA, US".
func (s *JSONLD) synthesizeAddress(node map[string]any) string {
	addrVal := node["address"]
	if arr, ok := addrVal.([]any); ok {
		if len(arr) == 0 {
			return ""
		}
		addrVal = arr[0]
	}
	addr, ok := addrVal.(map[string]any)
	if !ok {
		return ""
	}

	var parts []string
	for _, key := range s.address.Parts {
		if v := stringifyValue(walkPath(addr, []string{key})); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// walkPath descends nested maps by key. Arrays resolve to their first
// element; a {name: ...} object resolves through its name.
func walkPath(node any, path []string) any {
	current := node
	for _, key := range path {
		if arr, ok := current.([]any); ok {
			if len(arr) == 0 {
				return nil
			}
			current = arr[0]
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[key]
	}
	if arr, ok := current.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		current = arr[0]
	}
	if m, ok := current.(map[string]any); ok {
		if name, ok := m["name"]; ok {
			return name
		}
		if value, ok := m["value"]; ok {
			return value
		}
		return nil
	}
	return current
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}
