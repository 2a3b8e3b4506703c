// Package acquire fetches entity pages through a chain of backends. Each
// backend is a different way of getting page content (hosted scrape API,
// browser rendering service, direct crawler) with different cost and
// different odds against bot protection.
package acquire

import (
	"context"
	"time"

	"github.com/entitylens/entitylens-api/internal/models"
)

// Content is the result of one successful acquisition.
type Content struct {
	// URL is the final URL after redirects.
	URL string

	// HTML is the raw page markup.
	HTML string

	// Markdown is a text rendition of the page when the backend provides
	// one. Empty otherwise.
	Markdown string

	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Options tunes a single acquisition attempt.
type Options struct {
	// Timeout bounds the attempt. Zero means the backend default.
	Timeout time.Duration

	// UserAgent overrides the backend's default user agent.
	UserAgent string

	// WaitMs asks rendering backends to pause after load before capture.
	WaitMs int

	// ReadySelector asks rendering backends to wait until the selector
	// matches before capture.
	ReadySelector string

	// ScrollScript is a script rendering backends run to trigger
	// lazy-loaded content.
	ScrollScript string
}

// Backend fetches page content for a target URL.
type Backend interface {
	// Name identifies the backend in logs and result metadata.
	Name() string

	// Acquire fetches the target. An *Error return carries the failure
	// category the chain uses for retry and breaker decisions.
	Acquire(ctx context.Context, target string, opts Options) (Content, error)

	// Close releases backend resources.
	Close() error
}

// StructuredExtractor is implemented by backends that can extract entity
// fields server-side, skipping local strategy runs entirely when the result
// is strong enough.
type StructuredExtractor interface {
	// ExtractStructured asks the backend for the named fields directly.
	// hints maps field names to short natural-language descriptions.
	ExtractStructured(ctx context.Context, target string, fields []string, hints map[string]string) (models.PartialResult, error)
}
