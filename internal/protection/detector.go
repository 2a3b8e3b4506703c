// Package protection classifies blocked or degraded page acquisitions.
// Platforms that host entity pages are aggressive about automation: a fetch
// can come back as a Cloudflare interstitial, a captcha, a login wall, or an
// empty SPA shell. The detector turns those shapes into signals the fallback
// chain uses to decide whether a rendering backend is worth trying.
package protection

import (
	"net/http"
	"regexp"
	"strings"
)

// Signal identifies the kind of blocking detected on an acquired page.
type Signal string

const (
	SignalNone       Signal = ""
	SignalChallenge  Signal = "challenge"
	SignalCaptcha    Signal = "captcha"
	SignalDenied     Signal = "access_denied"
	SignalRateLimit  Signal = "rate_limited"
	SignalLoginWall  Signal = "login_wall"
	SignalEmptyShell Signal = "empty_shell"
	SignalNeedsJS    Signal = "javascript_required"
)

// Detection is the outcome of inspecting one acquisition.
type Detection struct {
	Blocked    bool
	Signal     Signal
	Confidence int
	Reason     string

	// RenderMayHelp is true when a headless-browser backend has a real
	// chance of getting past the block. Rate limits do not qualify.
	RenderMayHelp bool
}

// bodyRule maps content needles to a signal. Needles are matched
// case-insensitively; the first rule with a hit wins.
type bodyRule struct {
	signal     Signal
	confidence int
	reason     string
	render     bool
	needles    []string
}

var bodyRules = []bodyRule{
	{
		signal:     SignalChallenge,
		confidence: 90,
		reason:     "interstitial challenge page",
		render:     true,
		needles: []string{
			"cf-browser-verification",
			"challenge-platform",
			"_cf_chl",
			"checking your browser",
			"just a moment...",
			"attention required! | cloudflare",
		},
	},
	{
		signal:     SignalCaptcha,
		confidence: 95,
		reason:     "captcha widget present",
		render:     true,
		needles: []string{
			"g-recaptcha",
			"grecaptcha",
			"h-captcha",
			"data-sitekey",
			"cf-turnstile",
			"captcha-container",
		},
	},
	{
		signal:     SignalLoginWall,
		confidence: 85,
		reason:     "page gated behind authentication",
		render:     true,
		needles: []string{
			"log in to continue",
			"log in to see",
			"sign up to see",
			"join linkedin",
			"you must log in",
			"login • instagram",
		},
	},
	{
		signal:     SignalDenied,
		confidence: 85,
		reason:     "access denied message in body",
		render:     true,
		needles: []string{
			"access denied",
			"request blocked",
			"you don't have permission",
			"automated access",
			"verify you are human",
			"are you a robot",
		},
	},
	{
		signal:     SignalNeedsJS,
		confidence: 80,
		reason:     "page states javascript is required",
		render:     true,
		needles: []string{
			"enable javascript",
			"javascript is required",
			"requires javascript",
		},
	},
}

var (
	// Empty mount points left by client-rendered frameworks.
	emptyShellPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<div\s+id=["'](?:root|app|__next|__nuxt|react-root)["'][^>]*>\s*</div>`),
		regexp.MustCompile(`<app-root[^>]*>\s*</app-root>`),
	}

	realPageRegex = regexp.MustCompile(`<(article|main|section)[^>]*>`)

	tagStripRegex    = regexp.MustCompile(`<[^>]+>`)
	scriptBlockRegex = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	collapseRegex    = regexp.MustCompile(`\s+`)
)

// Detector inspects acquired pages for blocking signals.
type Detector struct {
	// MinBodyBytes is the size below which a response without real page
	// structure is treated as a shell.
	MinBodyBytes int
}

func NewDetector() *Detector {
	return &Detector{MinBodyBytes: 500}
}

// Inspect classifies a full HTTP acquisition. headers may be nil when the
// transport does not expose them.
func (d *Detector) Inspect(statusCode int, headers http.Header, body []byte) Detection {
	if det := d.fromStatus(statusCode); det.Blocked {
		return det
	}
	if det := d.fromHeaders(headers); det.Blocked {
		return det
	}
	return d.fromBody(body)
}

// InspectContent classifies page content when only the body is available.
func (d *Detector) InspectContent(statusCode int, content string) Detection {
	return d.Inspect(statusCode, nil, []byte(content))
}

func (d *Detector) fromStatus(statusCode int) Detection {
	switch statusCode {
	case http.StatusForbidden:
		return Detection{
			Blocked: true, Signal: SignalDenied, Confidence: 90,
			Reason: "http 403", RenderMayHelp: true,
		}
	case http.StatusTooManyRequests:
		return Detection{
			Blocked: true, Signal: SignalRateLimit, Confidence: 95,
			Reason: "http 429", RenderMayHelp: false,
		}
	case http.StatusServiceUnavailable:
		return Detection{
			Blocked: true, Signal: SignalChallenge, Confidence: 70,
			Reason: "http 503", RenderMayHelp: true,
		}
	}
	return Detection{}
}

func (d *Detector) fromHeaders(headers http.Header) Detection {
	if headers == nil {
		return Detection{}
	}
	if headers.Get("cf-ray") != "" && headers.Get("cf-mitigated") == "challenge" {
		return Detection{
			Blocked: true, Signal: SignalChallenge, Confidence: 95,
			Reason: "cf-mitigated challenge header", RenderMayHelp: true,
		}
	}
	return Detection{}
}

func (d *Detector) fromBody(body []byte) Detection {
	if len(body) == 0 {
		return Detection{
			Blocked: true, Signal: SignalEmptyShell, Confidence: 80,
			Reason: "empty response body", RenderMayHelp: true,
		}
	}

	content := string(body)
	lower := strings.ToLower(content)

	for _, rule := range bodyRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return Detection{
					Blocked: true, Signal: rule.signal,
					Confidence: rule.confidence, Reason: rule.reason,
					RenderMayHelp: rule.render,
				}
			}
		}
	}

	for _, pattern := range emptyShellPatterns {
		if pattern.MatchString(content) {
			return Detection{
				Blocked: true, Signal: SignalNeedsJS, Confidence: 90,
				Reason: "framework mount point is empty", RenderMayHelp: true,
			}
		}
	}

	if det := d.fromTextRatio(content); det.Blocked {
		return det
	}

	if len(body) < d.MinBodyBytes && !realPageRegex.MatchString(content) {
		return Detection{
			Blocked: true, Signal: SignalEmptyShell, Confidence: 60,
			Reason: "response too small to be a page", RenderMayHelp: true,
		}
	}

	return Detection{}
}

// fromTextRatio flags documents whose visible text is a sliver of the markup.
// A large HTML payload that renders almost nothing is a client-side page and
// its entity fields are not in the static source.
func (d *Detector) fromTextRatio(content string) Detection {
	cleaned := scriptBlockRegex.ReplaceAllString(content, "")
	visible := tagStripRegex.ReplaceAllString(cleaned, " ")
	visible = strings.TrimSpace(collapseRegex.ReplaceAllString(visible, " "))

	textLen := len(visible)
	htmlLen := len(content)

	if textLen < 300 && strings.Count(strings.ToLower(content), "<a ") > 5 {
		return Detection{
			Blocked: true, Signal: SignalNeedsJS, Confidence: 75,
			Reason: "only navigation text in static html", RenderMayHelp: true,
		}
	}
	if htmlLen > 1000 && float64(textLen)/float64(htmlLen) < 0.02 {
		return Detection{
			Blocked: true, Signal: SignalNeedsJS, Confidence: 70,
			Reason: "visible text under 2% of markup", RenderMayHelp: true,
		}
	}
	return Detection{}
}
