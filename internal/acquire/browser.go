package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/protection"
)

// Browser acquires pages through an internal headless rendering service.
// The service loads the page in a real browser, executes its scripts,
// optionally waits for a selector and runs a scroll script, then returns the
// rendered DOM. Slower than a plain fetch but gets past client-rendered
// pages and most soft challenges.
type Browser struct {
	serviceURL string
	httpClient *http.Client
	detector   *protection.Detector
	logger     *slog.Logger
}

// BrowserConfig holds configuration for the rendering backend.
type BrowserConfig struct {
	ServiceURL string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewBrowser creates the browser rendering backend.
func NewBrowser(cfg BrowserConfig) *Browser {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = constants.DefaultBackendTimeout
	}
	return &Browser{
		serviceURL: cfg.ServiceURL,
		httpClient: &http.Client{Timeout: timeout},
		detector:   protection.NewDetector(),
		logger:     cfg.Logger,
	}
}

func (b *Browser) Name() string { return "browser_render" }

func (b *Browser) Close() error { return nil }

type renderRequest struct {
	URL           string `json:"url"`
	WaitMs        int    `json:"waitMs,omitempty"`
	ReadySelector string `json:"readySelector,omitempty"`
	ScrollScript  string `json:"scrollScript,omitempty"`
	MaxTimeoutMs  int    `json:"maxTimeout,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
}

type renderResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Solution *renderSolution `json:"solution,omitempty"`
}

type renderSolution struct {
	URL      string `json:"url"`
	Status   int    `json:"status"`
	Response string `json:"response"`
}

// Acquire renders the target in a browser and returns the settled DOM.
func (b *Browser) Acquire(ctx context.Context, target string, opts Options) (Content, error) {
	waitMs := opts.WaitMs
	if waitMs == 0 && opts.ReadySelector == "" {
		waitMs = int(constants.DefaultRenderWait.Milliseconds())
	}

	req := renderRequest{
		URL:           target,
		WaitMs:        waitMs,
		ReadySelector: opts.ReadySelector,
		ScrollScript:  opts.ScrollScript,
		UserAgent:     opts.UserAgent,
	}
	if opts.Timeout > 0 {
		req.MaxTimeoutMs = int(opts.Timeout.Milliseconds())
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Content{}, newError(b.Name(), constants.ErrorCategoryBackendError, err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.serviceURL+"/v1/render", bytes.NewReader(body))
	if err != nil {
		return Content{}, newError(b.Name(), constants.ErrorCategoryBackendError, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return Content{}, newError(b.Name(), categoryForTransport(ctx, err), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Content{}, newError(b.Name(), constants.ErrorCategoryBackendError, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return Content{}, &Error{
			Backend:    b.Name(),
			Category:   categoryForStatus(httpResp.StatusCode),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("render service returned status %d", httpResp.StatusCode),
		}
	}

	var resp renderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Content{}, newError(b.Name(), constants.ErrorCategoryBackendError,
			fmt.Errorf("decode render response: %w", err))
	}
	if resp.Status != "ok" || resp.Solution == nil {
		return Content{}, newError(b.Name(), constants.ErrorCategoryBackendError,
			fmt.Errorf("render failed: %s", resp.Message))
	}

	b.logger.Debug("browser render completed",
		"url", target,
		"status", resp.Solution.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// A rendered page can still be a login wall or a captcha the browser
	// could not get past.
	det := b.detector.InspectContent(resp.Solution.Status, resp.Solution.Response)
	if det.Blocked {
		return Content{}, &Error{
			Backend:  b.Name(),
			Category: constants.ErrorCategoryBlocked,
			Signal:   string(det.Signal),
			Err:      fmt.Errorf("rendered page blocked: %s", det.Reason),
		}
	}

	return Content{
		URL:         resp.Solution.URL,
		HTML:        resp.Solution.Response,
		StatusCode:  resp.Solution.Status,
		ContentType: "text/html",
		FetchedAt:   time.Now(),
	}, nil
}
