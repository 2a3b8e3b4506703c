package strategy

import (
	"testing"

	"github.com/entitylens/entitylens-api/internal/models"
)

func companyJSONLD() *JSONLD {
	for _, s := range companyStrategies() {
		if j, ok := s.(*JSONLD); ok {
			return j
		}
	}
	return nil
}

func TestJSONLDExtractOrganization(t *testing.T) {
	doc := `<html><head>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Organization",
		"name": "Acme Corp",
		"description": "Acme builds rocket-powered tooling for coyotes.",
		"foundingDate": "2005-04-01",
		"url": "https://acme.example.com",
		"numberOfEmployees": {"@type": "QuantitativeValue", "value": 250},
		"address": {
			"@type": "PostalAddress",
			"addressLocality": "San Francisco",
			"addressRegion": "CA",
			"addressCountry": "US"
		}
	}
	</script>
	</head><body></body></html>`

	partial := companyJSONLD().Extract(doc)

	want := map[string]string{
		"company_name": "Acme Corp",
		"founded":      "2005-04-01",
		"website":      "https://acme.example.com",
		"company_size": "250",
		"headquarters": "San Francisco, CA, US",
		"city":         "San Francisco",
		"region":       "CA",
		"country":      "US",
	}
	for field, value := range want {
		if partial[field] != value {
			t.Errorf("partial[%q] = %q, want %q", field, partial[field], value)
		}
	}
}

func TestJSONLDGraphContainer(t *testing.T) {
	doc := `<script type="application/ld+json">
	{"@graph": [
		{"@type": "WebSite", "name": "ignored"},
		{"@type": "Corporation", "name": "Graph Co", "foundingDate": "1998"}
	]}
	</script>`

	partial := companyJSONLD().Extract(doc)
	if partial["company_name"] != "Graph Co" {
		t.Errorf("company_name = %q, want Graph Co", partial["company_name"])
	}
	if partial["founded"] != "1998" {
		t.Errorf("founded = %q, want 1998", partial["founded"])
	}
}

func TestJSONLDRepairsMalformedBlock(t *testing.T) {
	// Trailing comma: invalid JSON that jsonrepair can recover.
	doc := `<script type="application/ld+json">
	{"@type": "Organization", "name": "Trailing Comma Inc",}
	</script>`

	partial := companyJSONLD().Extract(doc)
	if partial["company_name"] != "Trailing Comma Inc" {
		t.Errorf("company_name = %q, want Trailing Comma Inc", partial["company_name"])
	}
}

func TestJSONLDUnacceptedTypeIgnored(t *testing.T) {
	doc := `<script type="application/ld+json">
	{"@type": "BreadcrumbList", "name": "Home"}
	</script>`

	partial := companyJSONLD().Extract(doc)
	if len(partial) != 0 {
		t.Errorf("expected empty partial, got %v", partial)
	}
}

func TestJSONLDGarbageNeverPanics(t *testing.T) {
	docs := []string{
		"",
		"<script type=\"application/ld+json\">not json at all {{{{</script>",
		"<html><body>no metadata here</body></html>",
		"<script type=\"application/ld+json\">[1, 2, 3]</script>",
	}
	for _, doc := range docs {
		partial := safeExtract(companyJSONLD(), doc)
		if partial == nil {
			t.Error("nil partial from garbage input")
		}
	}
}

func TestJSONLDCountryObjectResolvesThroughName(t *testing.T) {
	doc := `<script type="application/ld+json">
	{"@type": "Organization", "name": "Namecheck",
	 "address": {"addressLocality": "Berlin", "addressCountry": {"@type": "Country", "name": "Germany"}}}
	</script>`

	partial := companyJSONLD().Extract(doc)
	if partial["country"] != "Germany" {
		t.Errorf("country = %q, want Germany", partial["country"])
	}
	if partial["headquarters"] != "Berlin, Germany" {
		t.Errorf("headquarters = %q, want Berlin, Germany", partial["headquarters"])
	}
}

func TestJSONLDName(t *testing.T) {
	if got := companyJSONLD().Name(); got != models.StrategyJSONLD {
		t.Errorf("Name() = %q", got)
	}
}
