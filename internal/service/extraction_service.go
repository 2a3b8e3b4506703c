// Package service contains the business logic layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/entitylens/entitylens-api/internal/acquire"
	"github.com/entitylens/entitylens-api/internal/config"
	"github.com/entitylens/entitylens-api/internal/consolidate"
	"github.com/entitylens/entitylens-api/internal/contact"
	"github.com/entitylens/entitylens-api/internal/logging"
	"github.com/entitylens/entitylens-api/internal/models"
	"github.com/entitylens/entitylens-api/internal/schema"
	"github.com/entitylens/entitylens-api/internal/score"
	"github.com/entitylens/entitylens-api/internal/strategy"
)

// entityPipeline holds everything one entity type needs: its schema, its
// strategy set, consolidation engines, and the acquisition chain.
type entityPipeline struct {
	schema       schema.Schema
	strategies   []strategy.Strategy
	engine       *consolidate.Engine
	remoteEngine *consolidate.Engine
	chain        *acquire.Chain
	hints        map[string]string
}

// ExtractionService is the extraction facade. One Extract call acquires the
// target page through the entity's backend chain, runs every strategy,
// consolidates and scores the result, and accumulates contact channels
// across all attempts. Callers always get a result back, never an error.
type ExtractionService struct {
	cfg       *config.Config
	pipelines map[models.EntityType]*entityPipeline
	contacts  *contact.Accumulator
	logger    *slog.Logger
}

// NewExtractionService wires the per-entity pipelines from configuration.
func NewExtractionService(cfg *config.Config, logger *slog.Logger) (*ExtractionService, error) {
	svc := &ExtractionService{
		cfg:       cfg,
		pipelines: make(map[models.EntityType]*entityPipeline),
		contacts:  contact.NewAccumulator(cfg.DefaultPhonePrefix, logging.Component(logger, "contact")),
		logger:    logger,
	}

	backends := buildBackends(cfg, logger)

	for _, entity := range []models.EntityType{models.EntityCompany, models.EntityProfile, models.EntityListing} {
		sch, err := schema.ForEntity(entity)
		if err != nil {
			return nil, err
		}
		strategies, err := strategy.ForEntity(entity)
		if err != nil {
			return nil, err
		}

		hints := make(map[string]string, len(sch.Fields))
		for _, f := range sch.Fields {
			if f.Hint != "" {
				hints[f.Name] = f.Hint
			}
		}

		ordered := make([]acquire.Backend, 0, len(backends))
		for _, name := range cfg.ChainOrder(entity) {
			if b, ok := backends[name]; ok {
				ordered = append(ordered, b)
			}
		}
		if len(ordered) == 0 {
			return nil, fmt.Errorf("no acquisition backends available for %s", entity)
		}

		consolidateLogger := logging.Component(logger, "consolidate")
		svc.pipelines[entity] = &entityPipeline{
			schema:       sch,
			strategies:   strategies,
			engine:       consolidate.New(sch, strategy.DefaultPriority(), consolidateLogger),
			remoteEngine: consolidate.New(sch, []models.StrategyName{models.StrategyRemote}, consolidateLogger),
			chain: acquire.NewChain(ordered, acquire.ChainConfig{
				Acceptable: cfg.ConfidenceAcceptable,
				StopEarly:  cfg.ConfidenceStopEarly,
			}, logging.Component(logger, "chain")),
			hints: hints,
		}
	}

	return svc, nil
}

// buildBackends constructs each configured backend once; chains share them.
func buildBackends(cfg *config.Config, logger *slog.Logger) map[string]acquire.Backend {
	backends := map[string]acquire.Backend{
		"crawler": acquire.NewCrawler(acquire.CrawlerConfig{
			Logger: logging.Component(logger, "crawler"),
		}),
	}
	if cfg.HostedAPIEnabled() {
		backends["hosted_api"] = acquire.NewHostedAPI(acquire.HostedAPIConfig{
			BaseURL: cfg.HostedAPIURL,
			APIKey:  cfg.HostedAPIKey,
			Timeout: cfg.BackendTimeout,
			Logger:  logging.Component(logger, "hosted_api"),
		})
	}
	if cfg.BrowserEnabled() {
		backends["browser_render"] = acquire.NewBrowser(acquire.BrowserConfig{
			ServiceURL: cfg.BrowserServiceURL,
			Timeout:    cfg.BackendTimeout,
			Logger:     logging.Component(logger, "browser_render"),
		})
	}
	return backends
}

// Close shuts down every acquisition chain.
func (s *ExtractionService) Close() error {
	var first error
	for _, p := range s.pipelines {
		if err := p.chain.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Extract runs one extraction. target may be a full URL, a bare domain, or a
// bare username; it is canonicalized before acquisition. The returned result
// always has Success and Confidence set; on total failure the record is
// empty and confidence is zero.
func (s *ExtractionService) Extract(ctx context.Context, entity models.EntityType, target string) *models.ExtractionResult {
	start := time.Now()
	result := &models.ExtractionResult{
		ID:         ulid.Make().String(),
		EntityType: entity,
		Target:     target,
		Fields:     models.ConsolidatedRecord{},
		Contacts:   models.NewContactBundle(),
	}

	pipeline, ok := s.pipelines[entity]
	if !ok {
		s.logger.Warn("extract called with unknown entity type", "entity", entity)
		return result
	}

	canonical := NormalizeTarget(entity, target)
	result.Target = canonical
	bundle := result.Contacts

	s.logger.Info("extraction started",
		"id", result.ID, "entity", entity, "target", canonical)

	var extractMs int64

	evalContent := func(_ context.Context, backend string, content acquire.Content) *models.ExtractionResult {
		extractStart := time.Now()

		doc := content.HTML
		if doc == "" {
			doc = content.Markdown
		}
		partials := strategy.RunAll(pipeline.strategies, doc)
		record := pipeline.engine.Consolidate(partials)
		contributed := record.Sources()
		confidence := score.Confidence(record, pipeline.schema, contributed)

		if content.HTML != "" {
			s.contacts.AccumulateHTML(content.HTML, bundle)
		}
		if content.Markdown != "" {
			s.contacts.Accumulate(content.Markdown, bundle)
		}

		extractMs += time.Since(extractStart).Milliseconds()
		return &models.ExtractionResult{
			Fields:     record,
			Confidence: confidence,
			Strategies: contributed,
			Method:     backend,
			FetchedAt:  content.FetchedAt,
		}
	}

	evalStructured := func(_ context.Context, backend string, partial models.PartialResult) *models.ExtractionResult {
		extractStart := time.Now()

		record := pipeline.remoteEngine.Consolidate(map[models.StrategyName]models.PartialResult{
			models.StrategyRemote: partial,
		})
		contributed := record.Sources()
		confidence := score.Confidence(record, pipeline.schema, contributed)

		extractMs += time.Since(extractStart).Milliseconds()
		return &models.ExtractionResult{
			Fields:     record,
			Confidence: confidence,
			Strategies: contributed,
			Method:     backend,
			FetchedAt:  time.Now(),
		}
	}

	run := pipeline.chain.Run(ctx, acquire.Request{
		Target: canonical,
		Opts: acquire.Options{
			Timeout:   s.cfg.BackendTimeout,
			UserAgent: s.cfg.UserAgent,
		},
		StructuredFields: pipeline.schema.FieldNames(),
		StructuredHints:  pipeline.hints,
	}, evalStructured, evalContent)

	if run.Best != nil {
		result.Fields = run.Best.Fields
		result.Confidence = run.Best.Confidence
		result.Strategies = run.Best.Strategies
		result.Method = run.Best.Method
		result.FetchedAt = run.Best.FetchedAt
		result.Success = run.Satisfied
	}
	result.MethodsAttempted = run.Attempted
	result.ExtractDurationMs = int(extractMs)
	if totalMs := time.Since(start).Milliseconds(); totalMs > extractMs {
		result.FetchDurationMs = int(totalMs - extractMs)
	}

	s.logger.Info("extraction finished",
		"id", result.ID,
		"entity", entity,
		"target", canonical,
		"success", result.Success,
		"confidence", result.Confidence,
		"method", result.Method,
		"methods_attempted", result.MethodsAttempted,
		"contacts", bundle.Size(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result
}
