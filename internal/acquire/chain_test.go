package acquire

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/models"
)

type fakeBackend struct {
	name    string
	content Content
	err     error
	calls   int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Acquire(ctx context.Context, target string, opts Options) (Content, error) {
	f.calls++
	if f.err != nil {
		return Content{}, f.err
	}
	return f.content, nil
}

func (f *fakeBackend) Close() error { return nil }

type fakeStructuredBackend struct {
	fakeBackend
	partial         models.PartialResult
	structuredErr   error
	structuredCalls int
}

func (f *fakeStructuredBackend) ExtractStructured(ctx context.Context, target string, fields []string, hints map[string]string) (models.PartialResult, error) {
	f.structuredCalls++
	if f.structuredErr != nil {
		return nil, f.structuredErr
	}
	return f.partial, nil
}

// confidenceByBackend builds an evaluator returning a fixed confidence per
// backend name.
func confidenceByBackend(scores map[string]float64) ContentEvaluator {
	return func(_ context.Context, backend string, _ Content) *models.ExtractionResult {
		score, ok := scores[backend]
		if !ok {
			return nil
		}
		return &models.ExtractionResult{Method: backend, Confidence: score}
	}
}

func newTestChain(t *testing.T, backends ...Backend) *Chain {
	t.Helper()
	chain := NewChain(backends, ChainConfig{}, slog.Default())
	chain.fallbackDelay = time.Millisecond
	return chain
}

func TestChainFallsBackUntilAcceptable(t *testing.T) {
	failing := &fakeBackend{name: "hosted_api", err: newError("hosted_api", constants.ErrorCategoryAuth, errors.New("bad key"))}
	weak := &fakeBackend{name: "browser_render", content: Content{HTML: "<html>thin</html>"}}
	strong := &fakeBackend{name: "crawler", content: Content{HTML: "<html>rich</html>"}}

	chain := newTestChain(t, failing, weak, strong)
	run := chain.Run(context.Background(), Request{Target: "https://example.com/acme"}, nil,
		confidenceByBackend(map[string]float64{"browser_render": 40, "crawler": 85}))

	if !run.Satisfied {
		t.Fatal("expected chain to be satisfied by third backend")
	}
	if run.Best == nil || run.Best.Confidence != 85 {
		t.Fatalf("best = %+v, want confidence 85", run.Best)
	}
	want := []string{"hosted_api", "browser_render", "crawler"}
	if len(run.Attempted) != len(want) {
		t.Fatalf("attempted = %v, want %v", run.Attempted, want)
	}
	for i := range want {
		if run.Attempted[i] != want[i] {
			t.Errorf("attempted[%d] = %q, want %q", i, run.Attempted[i], want[i])
		}
	}
	if len(run.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", run.Errors)
	}
}

func TestChainStopsAtFirstAcceptable(t *testing.T) {
	first := &fakeBackend{name: "crawler", content: Content{HTML: "<html>ok</html>"}}
	second := &fakeBackend{name: "browser_render", content: Content{HTML: "<html>unused</html>"}}

	chain := newTestChain(t, first, second)
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(map[string]float64{"crawler": 60, "browser_render": 90}))

	if !run.Satisfied || run.Best.Confidence != 60 {
		t.Fatalf("run = %+v, want satisfied at 60", run)
	}
	if second.calls != 0 {
		t.Error("second backend should not have been tried")
	}
}

func TestChainRaisedAcceptableKeepsAdvancing(t *testing.T) {
	first := &fakeBackend{name: "crawler", content: Content{HTML: "<html>a</html>"}}
	second := &fakeBackend{name: "browser_render", content: Content{HTML: "<html>b</html>"}}

	chain := NewChain([]Backend{first, second}, ChainConfig{Acceptable: 99}, slog.Default())
	chain.fallbackDelay = time.Millisecond
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(map[string]float64{"crawler": 93, "browser_render": 95}))

	if run.Satisfied {
		t.Fatal("93 and 95 are below the configured threshold, chain must not report success")
	}
	if second.calls == 0 {
		t.Error("second backend should have been tried")
	}
	if run.Best == nil || run.Best.Confidence != 95 {
		t.Fatalf("best = %+v, want best partial at 95", run.Best)
	}
}

func TestChainLoweredAcceptableStopsEarlier(t *testing.T) {
	first := &fakeBackend{name: "crawler", content: Content{HTML: "<html>a</html>"}}
	second := &fakeBackend{name: "browser_render", content: Content{HTML: "<html>b</html>"}}

	chain := NewChain([]Backend{first, second}, ChainConfig{Acceptable: 30}, slog.Default())
	chain.fallbackDelay = time.Millisecond
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(map[string]float64{"crawler": 35, "browser_render": 90}))

	if !run.Satisfied || run.Best.Confidence != 35 {
		t.Fatalf("run = %+v, want satisfied at 35", run)
	}
	if second.calls != 0 {
		t.Error("second backend should not have been tried")
	}
}

func TestChainRaisedStopEarlyDisablesFastPath(t *testing.T) {
	structured := &fakeStructuredBackend{
		fakeBackend: fakeBackend{
			name:    "hosted_api",
			content: Content{HTML: "<html>full page</html>"},
		},
		partial: models.PartialResult{"company_name": "Acme Corp"},
	}

	chain := NewChain([]Backend{structured}, ChainConfig{StopEarly: 95}, slog.Default())
	chain.fallbackDelay = time.Millisecond
	evalStructured := func(_ context.Context, backend string, partial models.PartialResult) *models.ExtractionResult {
		return &models.ExtractionResult{Method: backend, Confidence: 90}
	}

	run := chain.Run(context.Background(),
		Request{Target: "https://example.com", StructuredFields: []string{"company_name"}},
		evalStructured, confidenceByBackend(map[string]float64{"hosted_api": 60}))

	if structured.calls == 0 {
		t.Error("90 is below the configured stop-early threshold, content acquisition should run")
	}
	if !run.Satisfied || run.Best.Confidence != 90 {
		t.Fatalf("run = %+v, want structured partial kept as best at 90", run)
	}
}

func TestChainExhaustedKeepsBestPartial(t *testing.T) {
	a := &fakeBackend{name: "crawler", content: Content{HTML: "<html>a</html>"}}
	b := &fakeBackend{name: "browser_render", content: Content{HTML: "<html>b</html>"}}

	chain := newTestChain(t, a, b)
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(map[string]float64{"crawler": 20, "browser_render": 35}))

	if run.Satisfied {
		t.Fatal("expected exhausted chain")
	}
	if run.Best == nil || run.Best.Confidence != 35 {
		t.Fatalf("best = %+v, want best partial at 35", run.Best)
	}
}

func TestChainAllBackendsFail(t *testing.T) {
	a := &fakeBackend{name: "crawler", err: newError("crawler", constants.ErrorCategoryBlocked, errors.New("captcha"))}
	b := &fakeBackend{name: "browser_render", err: newError("browser_render", constants.ErrorCategoryBackendError, errors.New("render crash"))}

	chain := newTestChain(t, a, b)
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(nil))

	if run.Satisfied || run.Best != nil {
		t.Fatalf("run = %+v, want no result", run)
	}
	if len(run.Errors) != 2 {
		t.Errorf("errors = %v, want 2", run.Errors)
	}
}

func TestChainStructuredFastPath(t *testing.T) {
	structured := &fakeStructuredBackend{
		fakeBackend: fakeBackend{name: "hosted_api"},
		partial:     models.PartialResult{"company_name": "Acme Corp"},
	}
	fallback := &fakeBackend{name: "crawler"}

	chain := newTestChain(t, structured, fallback)
	evalStructured := func(_ context.Context, backend string, partial models.PartialResult) *models.ExtractionResult {
		return &models.ExtractionResult{Method: backend, Confidence: 90}
	}

	run := chain.Run(context.Background(),
		Request{Target: "https://example.com", StructuredFields: []string{"company_name"}},
		evalStructured, confidenceByBackend(nil))

	if !run.Satisfied || run.Best.Confidence != 90 {
		t.Fatalf("run = %+v, want structured fast path at 90", run)
	}
	if structured.calls != 0 {
		t.Error("content acquisition should have been skipped")
	}
	if fallback.calls != 0 {
		t.Error("fallback backend should not have been tried")
	}
}

func TestChainWeakStructuredFallsThrough(t *testing.T) {
	structured := &fakeStructuredBackend{
		fakeBackend: fakeBackend{
			name:    "hosted_api",
			content: Content{HTML: "<html>full page</html>"},
		},
		partial: models.PartialResult{"company_name": "Acme Corp"},
	}

	chain := newTestChain(t, structured)
	evalStructured := func(_ context.Context, backend string, partial models.PartialResult) *models.ExtractionResult {
		return &models.ExtractionResult{Method: backend, Confidence: 30}
	}

	run := chain.Run(context.Background(),
		Request{Target: "https://example.com", StructuredFields: []string{"company_name"}},
		evalStructured, confidenceByBackend(map[string]float64{"hosted_api": 70}))

	if !run.Satisfied || run.Best.Confidence != 70 {
		t.Fatalf("run = %+v, want content evaluation at 70 after weak structured result", run)
	}
	if structured.structuredCalls != 1 || structured.calls == 0 {
		t.Errorf("structured calls = %d, acquire calls = %d", structured.structuredCalls, structured.calls)
	}
}

func TestChainRetriesTransientFailures(t *testing.T) {
	flaky := &fakeBackend{name: "crawler", err: newError("crawler", constants.ErrorCategoryBackendError, errors.New("connection reset"))}

	chain := newTestChain(t, flaky)
	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil,
		confidenceByBackend(nil))

	if flaky.calls != constants.MaxRetryAttempts {
		t.Errorf("calls = %d, want %d retries for transient failure", flaky.calls, constants.MaxRetryAttempts)
	}
	if run.Satisfied {
		t.Error("expected unsatisfied run")
	}
}

func TestChainDoesNotRetryBlocked(t *testing.T) {
	blocked := &fakeBackend{name: "crawler", err: newError("crawler", constants.ErrorCategoryBlocked, errors.New("login wall"))}

	chain := newTestChain(t, blocked)
	chain.Run(context.Background(), Request{Target: "https://example.com"}, nil, confidenceByBackend(nil))

	if blocked.calls != 1 {
		t.Errorf("calls = %d, blocked failures must not be retried on the same backend", blocked.calls)
	}
}

func TestChainOpenBreakerAdvances(t *testing.T) {
	failing := &fakeBackend{name: "hosted_api", err: newError("hosted_api", constants.ErrorCategoryBackendError, errors.New("down"))}
	healthy := &fakeBackend{name: "crawler", content: Content{HTML: "<html>ok</html>"}}

	chain := newTestChain(t, failing, healthy)
	eval := confidenceByBackend(map[string]float64{"crawler": 75})

	// Trip the breaker on the first backend.
	for range constants.BreakerConsecutiveFailures {
		chain.Run(context.Background(), Request{Target: "https://example.com"}, nil, eval)
	}
	callsBefore := failing.calls

	run := chain.Run(context.Background(), Request{Target: "https://example.com"}, nil, eval)
	if !run.Satisfied || run.Best.Confidence != 75 {
		t.Fatalf("run = %+v, want healthy backend result", run)
	}
	if failing.calls != callsBefore {
		t.Error("open breaker should have skipped the failing backend entirely")
	}
	if len(run.Attempted) != 2 || run.Attempted[0] != "hosted_api" {
		t.Errorf("attempted = %v, want skipped backend still listed", run.Attempted)
	}
}

func TestChainHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{name: "crawler", content: Content{HTML: "<html>ok</html>"}}
	chain := newTestChain(t, backend)
	run := chain.Run(ctx, Request{Target: "https://example.com"}, nil,
		confidenceByBackend(map[string]float64{"crawler": 99}))

	if run.Satisfied || backend.calls != 0 {
		t.Errorf("cancelled context should prevent attempts, run = %+v calls = %d", run, backend.calls)
	}
}
