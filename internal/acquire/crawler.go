package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/protection"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Crawler acquires pages with a plain HTTP crawl. Free and fast, but the
// first backend to get blocked, so every response is run through the
// protection detector before it is trusted.
type Crawler struct {
	detector *protection.Detector
	logger   *slog.Logger
}

// CrawlerConfig holds configuration for the crawler backend.
type CrawlerConfig struct {
	Logger *slog.Logger
}

// NewCrawler creates the direct crawler backend.
func NewCrawler(cfg CrawlerConfig) *Crawler {
	return &Crawler{
		detector: protection.NewDetector(),
		logger:   cfg.Logger,
	}
}

func (c *Crawler) Name() string { return "crawler" }

func (c *Crawler) Close() error { return nil }

// Acquire fetches the target directly and checks the response for blocking
// signals. A blocked response returns an *Error so the chain can move to a
// rendering backend.
func (c *Crawler) Acquire(ctx context.Context, target string, opts Options) (Content, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	// ParseHTTPErrorResponse keeps 4xx/5xx bodies flowing to OnResponse so
	// the detector can classify the block instead of seeing a bare error.
	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = constants.DefaultBackendTimeout
	}
	collector.SetRequestTimeout(timeout)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      constants.DefaultCrawlDelay,
	}); err != nil {
		c.logger.Warn("crawler limit rule rejected", "error", err)
	}

	var content Content
	var statusCode int
	var rawBody []byte

	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		rawBody = r.Body
		content = Content{
			URL:         r.Request.URL.String(),
			HTML:        string(r.Body),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			FetchedAt:   time.Now(),
		}
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
			rawBody = r.Body
		}
		fetchErr = err
	})

	if err := collector.Visit(target); err != nil {
		return Content{}, newError(c.Name(), categoryForTransport(ctx, err), err)
	}
	collector.Wait()

	det := c.detector.Inspect(statusCode, nil, rawBody)
	if det.Blocked {
		return Content{}, &Error{
			Backend:    c.Name(),
			Category:   blockCategory(det),
			Signal:     string(det.Signal),
			StatusCode: statusCode,
			Err:        fmt.Errorf("fetch blocked: %s", det.Reason),
		}
	}
	if fetchErr != nil {
		return Content{}, newError(c.Name(), categoryForTransport(ctx, fetchErr), fetchErr)
	}

	return content, nil
}

// blockCategory keeps rate limits classified as retryable rather than as a
// blanket block.
func blockCategory(det protection.Detection) constants.ErrorCategory {
	if det.Signal == protection.SignalRateLimit {
		return constants.ErrorCategoryRateLimit
	}
	return constants.ErrorCategoryBlocked
}
