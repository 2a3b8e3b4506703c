package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/models"
)

// HostedAPI acquires pages through a managed scraping API. The provider runs
// its own proxy pool and headless browsers, so this backend has the best
// odds against protected sites. It also exposes a structured extraction
// endpoint, making it the chain's fast path.
type HostedAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// HostedAPIConfig holds configuration for the hosted API backend.
type HostedAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewHostedAPI creates the hosted API backend.
func NewHostedAPI(cfg HostedAPIConfig) *HostedAPI {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = constants.DefaultBackendTimeout
	}
	return &HostedAPI{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

func (h *HostedAPI) Name() string { return "hosted_api" }

func (h *HostedAPI) Close() error { return nil }

type scrapeRequest struct {
	URL       string   `json:"url"`
	Formats   []string `json:"formats"`
	WaitFor   int      `json:"waitFor,omitempty"`
	TimeoutMs int      `json:"timeout,omitempty"`
}

type scrapeResponse struct {
	Success     bool            `json:"success"`
	Error       string          `json:"error,omitempty"`
	CreditsUsed models.FlexInt  `json:"creditsUsed,omitempty"`
	Data        *scrapedPayload `json:"data,omitempty"`
}

type scrapedPayload struct {
	HTML     string         `json:"html,omitempty"`
	Markdown string         `json:"markdown,omitempty"`
	Metadata scrapeMetadata `json:"metadata"`
}

type scrapeMetadata struct {
	SourceURL   string         `json:"sourceURL,omitempty"`
	StatusCode  models.FlexInt `json:"statusCode,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
}

// Acquire fetches the target through the provider's scrape endpoint.
func (h *HostedAPI) Acquire(ctx context.Context, target string, opts Options) (Content, error) {
	req := scrapeRequest{
		URL:     target,
		Formats: []string{"html", "markdown"},
		WaitFor: opts.WaitMs,
	}
	if opts.Timeout > 0 {
		req.TimeoutMs = int(opts.Timeout.Milliseconds())
	}

	start := time.Now()
	var resp scrapeResponse
	status, err := h.post(ctx, "/v1/scrape", req, &resp)
	if err != nil {
		return Content{}, newError(h.Name(), categoryForTransport(ctx, err), err)
	}
	if status != http.StatusOK {
		return Content{}, &Error{
			Backend:    h.Name(),
			Category:   categoryForStatus(status),
			StatusCode: status,
			Err:        fmt.Errorf("scrape returned status %d: %s", status, resp.Error),
		}
	}
	if !resp.Success || resp.Data == nil {
		return Content{}, newError(h.Name(), constants.ErrorCategoryBackendError,
			fmt.Errorf("scrape unsuccessful: %s", resp.Error))
	}

	h.logger.Debug("hosted api scrape completed",
		"url", target,
		"credits_used", int(resp.CreditsUsed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	content := Content{
		URL:         resp.Data.Metadata.SourceURL,
		HTML:        resp.Data.HTML,
		Markdown:    resp.Data.Markdown,
		StatusCode:  int(resp.Data.Metadata.StatusCode),
		ContentType: resp.Data.Metadata.ContentType,
		FetchedAt:   time.Now(),
	}
	if content.URL == "" {
		content.URL = target
	}
	if content.HTML == "" && content.Markdown == "" {
		return Content{}, newError(h.Name(), constants.ErrorCategoryUnusableContent,
			fmt.Errorf("scrape returned no content"))
	}
	return content, nil
}

type extractRequest struct {
	URL    string            `json:"url"`
	Fields []string          `json:"fields"`
	Hints  map[string]string `json:"hints,omitempty"`
}

type extractResponse struct {
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	CreditsUsed models.FlexInt `json:"creditsUsed,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// ExtractStructured asks the provider to pull the named fields server-side.
func (h *HostedAPI) ExtractStructured(ctx context.Context, target string, fields []string, hints map[string]string) (models.PartialResult, error) {
	req := extractRequest{URL: target, Fields: fields, Hints: hints}

	var resp extractResponse
	status, err := h.post(ctx, "/v1/extract", req, &resp)
	if err != nil {
		return nil, newError(h.Name(), categoryForTransport(ctx, err), err)
	}
	if status != http.StatusOK {
		return nil, &Error{
			Backend:    h.Name(),
			Category:   categoryForStatus(status),
			StatusCode: status,
			Err:        fmt.Errorf("extract returned status %d: %s", status, resp.Error),
		}
	}
	if !resp.Success {
		return nil, newError(h.Name(), constants.ErrorCategoryBackendError,
			fmt.Errorf("extract unsuccessful: %s", resp.Error))
	}

	partial := models.PartialResult{}
	for key, value := range resp.Data {
		switch v := value.(type) {
		case string:
			partial.Set(key, v)
		case float64:
			partial.Set(key, formatNumber(v))
		case bool:
			partial.Set(key, fmt.Sprintf("%t", v))
		}
	}
	return partial, nil
}

// post sends a JSON request and decodes the response, repairing truncated or
// malformed JSON bodies before giving up.
func (h *HostedAPI) post(ctx context.Context, path string, payload any, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	httpResp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			repaired, rerr := jsonrepair.JSONRepair(string(raw))
			if rerr != nil || json.Unmarshal([]byte(repaired), out) != nil {
				return httpResp.StatusCode, fmt.Errorf("decode response: %w", err)
			}
		}
	}
	return httpResp.StatusCode, nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func categoryForTransport(ctx context.Context, err error) constants.ErrorCategory {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return constants.ErrorCategoryTimeout
	}
	return constants.ErrorCategoryBackendError
}
