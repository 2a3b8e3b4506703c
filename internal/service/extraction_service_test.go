package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/entitylens/entitylens-api/internal/acquire"
	"github.com/entitylens/entitylens-api/internal/config"
	"github.com/entitylens/entitylens-api/internal/models"
)

const acmeDoc = `<html>
<head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Organization",
  "name": "Acme Corp",
  "foundingDate": "2005"
}
</script>
</head>
<body>
<h1>Acme Corp</h1>
<dl><dd data-test-id="about-us__industry">Industry: Software</dd></dl>
<p>Reach us at sales@acme.example or call +1 (415) 555-0101.</p>
</body>
</html>`

const weakDoc = `<html><body>
<h1>Acme Corp</h1>
<p>Questions? Email sales@acme.example.</p>
</body></html>`

type stubBackend struct {
	name  string
	html  string
	err   error
	calls int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Acquire(ctx context.Context, target string, opts acquire.Options) (acquire.Content, error) {
	s.calls++
	if s.err != nil {
		return acquire.Content{}, s.err
	}
	return acquire.Content{URL: target, HTML: s.html, StatusCode: 200}, nil
}

func (s *stubBackend) Close() error { return nil }

type stubStructuredBackend struct {
	stubBackend
	partial models.PartialResult
}

func (s *stubStructuredBackend) ExtractStructured(ctx context.Context, target string, fields []string, hints map[string]string) (models.PartialResult, error) {
	return s.partial, nil
}

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HOSTED_API_URL", "HOSTED_API_KEY", "BROWSER_SERVICE_URL",
		"CHAIN_ORDER_COMPANY", "CHAIN_ORDER_PROFILE", "CHAIN_ORDER_LISTING",
		"CONFIDENCE_ACCEPTABLE", "CONFIDENCE_STOP_EARLY", "DEFAULT_PHONE_PREFIX"} {
		t.Setenv(key, "")
	}
}

// newTestService builds a service whose company chain is replaced with the
// given stub backends.
func newTestService(t *testing.T, backends ...acquire.Backend) *ExtractionService {
	t.Helper()
	clearServiceEnv(t)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	svc, err := NewExtractionService(cfg, slog.Default())
	if err != nil {
		t.Fatalf("NewExtractionService() error: %v", err)
	}
	if len(backends) > 0 {
		replaceCompanyChain(svc, cfg, backends)
	}
	return svc
}

// replaceCompanyChain swaps in stub backends while keeping the configured
// thresholds, the same wiring NewExtractionService does.
func replaceCompanyChain(svc *ExtractionService, cfg *config.Config, backends []acquire.Backend) {
	svc.pipelines[models.EntityCompany].chain = acquire.NewChain(backends, acquire.ChainConfig{
		Acceptable: cfg.ConfidenceAcceptable,
		StopEarly:  cfg.ConfidenceStopEarly,
	}, slog.Default())
}

func TestExtractConsolidatesAcrossStrategies(t *testing.T) {
	svc := newTestService(t, &stubBackend{name: "crawler", html: acmeDoc})

	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if got := result.Fields.Get("company_name"); got != "Acme Corp" {
		t.Errorf("company_name = %q, want Acme Corp", got)
	}
	if src := result.Fields["company_name"].Source; src != models.StrategyJSONLD {
		t.Errorf("company_name source = %q, want jsonld", src)
	}
	if got := result.Fields.Get("industry"); got != "Software" {
		t.Errorf("industry = %q, want Software", got)
	}
	if src := result.Fields["industry"].Source; src != models.StrategySelector {
		t.Errorf("industry source = %q, want selector", src)
	}
	if result.Confidence < 45 {
		t.Errorf("confidence = %v, want >= 45", result.Confidence)
	}
	if result.ID == "" {
		t.Error("expected a result ID")
	}
}

func TestExtractFallsBackAcrossBackends(t *testing.T) {
	broken := &stubBackend{name: "hosted_api", err: errors.New("backend down")}
	weak := &stubBackend{name: "browser_render", html: weakDoc}
	strong := &stubBackend{name: "crawler", html: acmeDoc}

	svc := newTestService(t, broken, weak, strong)
	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if !result.Success {
		t.Fatalf("expected success from third backend, got %+v", result)
	}
	if result.Method != "crawler" {
		t.Errorf("method = %q, want crawler", result.Method)
	}
	want := []string{"hosted_api", "browser_render", "crawler"}
	if len(result.MethodsAttempted) != len(want) {
		t.Fatalf("methods_attempted = %v, want %v", result.MethodsAttempted, want)
	}
	for i := range want {
		if result.MethodsAttempted[i] != want[i] {
			t.Errorf("methods_attempted[%d] = %q, want %q", i, result.MethodsAttempted[i], want[i])
		}
	}

	// Contacts union across attempts: the same email in both documents
	// lands once, the phone only present in the strong document is kept.
	if len(result.Contacts.Emails) != 1 || result.Contacts.Emails[0] != "sales@acme.example" {
		t.Errorf("emails = %v, want exactly sales@acme.example", result.Contacts.Emails)
	}
	if len(result.Contacts.Phones) != 1 {
		t.Errorf("phones = %v, want the one from the strong document", result.Contacts.Phones)
	}
}

func TestExtractConfiguredThresholdRaisesBar(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("CONFIDENCE_ACCEPTABLE", "99")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	svc, err := NewExtractionService(cfg, slog.Default())
	if err != nil {
		t.Fatalf("NewExtractionService() error: %v", err)
	}

	first := &stubBackend{name: "crawler", html: acmeDoc}
	second := &stubBackend{name: "browser_render", html: acmeDoc}
	replaceCompanyChain(svc, cfg, []acquire.Backend{first, second})

	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if result.Success {
		t.Fatalf("score %v is below the configured threshold, got success", result.Confidence)
	}
	if len(result.MethodsAttempted) != 2 {
		t.Errorf("methods_attempted = %v, want both backends tried", result.MethodsAttempted)
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %v, want the best partial's score kept", result.Confidence)
	}
}

func TestExtractExhaustedReturnsBestPartial(t *testing.T) {
	svc := newTestService(t, &stubBackend{name: "crawler", html: weakDoc})

	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if result.Success {
		t.Fatal("expected success=false for below-threshold result")
	}
	if got := result.Fields.Get("company_name"); got != "Acme Corp" {
		t.Errorf("partial data should be kept, company_name = %q", got)
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %v, want the partial's score", result.Confidence)
	}
}

func TestExtractTotalFailure(t *testing.T) {
	svc := newTestService(t,
		&stubBackend{name: "hosted_api", err: errors.New("down")},
		&stubBackend{name: "crawler", err: errors.New("blocked")},
	)

	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if result.Success {
		t.Fatal("expected success=false")
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", result.Confidence)
	}
	if len(result.Fields) != 0 {
		t.Errorf("fields = %v, want empty record, never fabricated data", result.Fields)
	}
	if len(result.MethodsAttempted) != 2 {
		t.Errorf("methods_attempted = %v, want both backends", result.MethodsAttempted)
	}
}

func TestExtractStructuredFastPath(t *testing.T) {
	structured := &stubStructuredBackend{
		stubBackend: stubBackend{name: "hosted_api"},
		partial: models.PartialResult{
			"company_name": "Acme Corp",
			"description":  "Acme builds industrial widgets for the aerospace sector.",
			"industry":     "Software",
			"company_size": "200-500",
			"founded":      "2005",
			"website":      "https://acme.example",
			"specialties":  "Widgets, Gears",
			"headquarters": "San Francisco, CA, US",
		},
	}
	fallback := &stubBackend{name: "crawler", html: acmeDoc}

	svc := newTestService(t, structured, fallback)
	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Method != "hosted_api" {
		t.Errorf("method = %q, want hosted_api fast path", result.Method)
	}
	if structured.calls != 0 || fallback.calls != 0 {
		t.Errorf("content acquisition should be skipped, calls = %d/%d", structured.calls, fallback.calls)
	}
	if got := result.Fields.Get("company_size"); got != "350" {
		t.Errorf("company_size = %q, want range midpoint 350", got)
	}
	if src := result.Fields["company_name"].Source; src != models.StrategyRemote {
		t.Errorf("source = %q, want remote", src)
	}
}

func TestExtractStructuredResultStillValidated(t *testing.T) {
	structured := &stubStructuredBackend{
		stubBackend: stubBackend{name: "hosted_api"},
		partial: models.PartialResult{
			"company_name": "Acme Corp",
			"description":  "Acme builds industrial widgets for the aerospace sector.",
			"industry":     "Software",
			"company_size": "200-500",
			"founded":      "2005",
			"website":      "https://cdn.shopify.com/assets/logo.png",
			"specialties":  "Widgets, Gears",
			"headquarters": "San Francisco, CA, US",
		},
	}

	svc := newTestService(t, structured)
	result := svc.Extract(context.Background(), models.EntityCompany, "https://example.com/acme")

	if result.Fields.Has("website") {
		t.Errorf("CDN asset URL must be rejected, got %q", result.Fields.Get("website"))
	}
	if got := result.Fields.Get("company_name"); got != "Acme Corp" {
		t.Errorf("company_name = %q", got)
	}
}
