package acquire

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/models"
)

// ContentEvaluator turns acquired page content into a scored extraction
// result. The chain owns the order of attempts; the caller owns what a
// result is worth.
type ContentEvaluator func(ctx context.Context, backend string, content Content) *models.ExtractionResult

// StructuredEvaluator scores a server-side structured extraction.
type StructuredEvaluator func(ctx context.Context, backend string, partial models.PartialResult) *models.ExtractionResult

// RunResult is the outcome of walking the chain.
type RunResult struct {
	// Best is the highest-confidence result seen, nil when every backend
	// failed outright.
	Best *models.ExtractionResult

	// Attempted lists backend names in the order they were tried,
	// including backends skipped by an open breaker.
	Attempted []string

	// Satisfied is true when Best met a confidence threshold. False
	// means the chain was exhausted and Best is a partial.
	Satisfied bool

	// Errors collects per-backend failures for diagnostics.
	Errors []error
}

// Chain walks acquisition backends in order until one produces a good
// enough result. Each backend sits behind a circuit breaker so a failing
// backend gets skipped for a cooldown instead of taxing every extraction.
type Chain struct {
	backends      []Backend
	breakers      map[string]*gobreaker.CircuitBreaker[any]
	acceptable    float64
	stopEarly     float64
	fallbackDelay time.Duration
	logger        *slog.Logger
}

// ChainConfig carries the chain's confidence thresholds. Zero values fall
// back to the compiled defaults.
type ChainConfig struct {
	// Acceptable is the confidence at which the chain stops and reports
	// success.
	Acceptable float64

	// StopEarly is the confidence at which a structured result returns
	// without fetching page content.
	StopEarly float64
}

// NewChain creates a fallback chain over the given backends, tried in slice
// order.
func NewChain(backends []Backend, cfg ChainConfig, logger *slog.Logger) *Chain {
	if cfg.Acceptable == 0 {
		cfg.Acceptable = constants.ConfidenceAcceptable
	}
	if cfg.StopEarly == 0 {
		cfg.StopEarly = constants.ConfidenceStopEarly
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker[any], len(backends))
	for _, b := range backends {
		breakers[b.Name()] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:     b.Name(),
			Interval: constants.BreakerInterval,
			Timeout:  constants.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= constants.BreakerConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !constants.CountsAgainstBreaker(CategoryOf(err))
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("backend breaker state changed",
					"backend", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return &Chain{
		backends:      backends,
		breakers:      breakers,
		acceptable:    cfg.Acceptable,
		stopEarly:     cfg.StopEarly,
		fallbackDelay: constants.BackendFallbackDelay,
		logger:        logger,
	}
}

// Close closes every backend in the chain.
func (c *Chain) Close() error {
	var first error
	for _, b := range c.backends {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Request describes one extraction target for the chain.
type Request struct {
	// Target is the canonical page URL.
	Target string

	// Opts tunes each backend attempt.
	Opts Options

	// StructuredFields names the fields to ask structured-extraction
	// backends for. Empty disables the fast path.
	StructuredFields []string

	// StructuredHints maps field names to short descriptions for the
	// structured endpoint.
	StructuredHints map[string]string
}

// Run tries each backend in order until a result clears the acceptable
// confidence threshold, keeping the best partial along the way. Backends
// with a structured extraction endpoint get a fast-path attempt first; a
// structured result at or above the stop-early threshold returns without
// fetching page content at all.
func (c *Chain) Run(ctx context.Context, req Request, evalStructured StructuredEvaluator, evalContent ContentEvaluator) RunResult {
	var run RunResult

	for i, backend := range c.backends {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			select {
			case <-time.After(c.fallbackDelay):
			case <-ctx.Done():
				return run
			}
		}

		name := backend.Name()
		run.Attempted = append(run.Attempted, name)
		breaker := c.breakers[name]

		if se, ok := backend.(StructuredExtractor); ok && evalStructured != nil && len(req.StructuredFields) > 0 {
			if done := c.tryStructured(ctx, se, breaker, name, req, &run, evalStructured); done {
				return run
			}
		}
		if ctx.Err() != nil {
			break
		}

		content, err := c.acquireWithRetry(ctx, backend, breaker, req.Target, req.Opts)
		if err != nil {
			c.logger.Info("backend failed, falling back",
				"backend", name, "target", req.Target, "error", err)
			run.Errors = append(run.Errors, err)
			continue
		}

		result := evalContent(ctx, name, content)
		if result == nil {
			continue
		}
		c.keepBest(&run, result)
		if result.Confidence >= c.acceptable {
			run.Satisfied = true
			return run
		}
		c.logger.Debug("result below acceptable confidence, falling back",
			"backend", name, "confidence", result.Confidence)
	}

	return run
}

// tryStructured runs the backend's server-side extraction. Returns true when
// the chain should stop because the structured result is strong enough.
func (c *Chain) tryStructured(ctx context.Context, se StructuredExtractor, breaker *gobreaker.CircuitBreaker[any], name string, req Request, run *RunResult, eval StructuredEvaluator) bool {
	raw, err := breaker.Execute(func() (any, error) {
		return se.ExtractStructured(ctx, req.Target, req.StructuredFields, req.StructuredHints)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Info("backend breaker open, skipping structured extraction", "backend", name)
		} else {
			run.Errors = append(run.Errors, err)
		}
		return false
	}

	partial, ok := raw.(models.PartialResult)
	if !ok || len(partial) == 0 {
		return false
	}

	result := eval(ctx, name, partial)
	if result == nil {
		return false
	}
	c.keepBest(run, result)
	if result.Confidence >= c.stopEarly {
		c.logger.Debug("structured extraction cleared stop-early threshold",
			"backend", name, "confidence", result.Confidence)
		run.Satisfied = true
		return true
	}
	return false
}

// acquireWithRetry runs one backend with bounded retries for transient
// failure categories, all through the backend's breaker.
func (c *Chain) acquireWithRetry(ctx context.Context, backend Backend, breaker *gobreaker.CircuitBreaker[any], target string, opts Options) (Content, error) {
	var lastErr error
	for attempt := 1; attempt <= constants.MaxRetryAttempts; attempt++ {
		raw, err := breaker.Execute(func() (any, error) {
			return backend.Acquire(ctx, target, opts)
		})
		if err == nil {
			return raw.(Content), nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Content{}, newError(backend.Name(), constants.ErrorCategoryBackendError, err)
		}
		if !constants.IsRetryableCategory(CategoryOf(err)) || attempt == constants.MaxRetryAttempts {
			break
		}

		select {
		case <-time.After(c.fallbackDelay):
		case <-ctx.Done():
			return Content{}, newError(backend.Name(), constants.ErrorCategoryTimeout, ctx.Err())
		}
	}
	return Content{}, lastErr
}

func (c *Chain) keepBest(run *RunResult, result *models.ExtractionResult) {
	if run.Best == nil || result.Confidence > run.Best.Confidence {
		run.Best = result
	}
}
