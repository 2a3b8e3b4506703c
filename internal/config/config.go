// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/entitylens/entitylens-api/internal/constants"
	"github.com/entitylens/entitylens-api/internal/models"
)

// Config holds all application configuration.
type Config struct {
	// Hosted scraping API backend
	HostedAPIURL string
	HostedAPIKey string

	// Internal browser rendering service
	BrowserServiceURL string

	// Acquisition tuning
	BackendTimeout time.Duration
	UserAgent      string

	// Confidence thresholds. Defaults come from constants; env overrides
	// exist for tuning in staging without a rebuild.
	ConfidenceAcceptable float64
	ConfidenceStopEarly  float64

	// DefaultPhonePrefix completes national-format phone numbers, e.g. "+1".
	DefaultPhonePrefix string

	// Per-entity backend order overrides, comma-separated backend names.
	chainOrders map[models.EntityType][]string
}

// Default backend orders per entity type. Company and listing pages tend to
// have server-rendered structured data, so the hosted API leads; profile
// pages are almost always client-rendered, so rendering leads there.
var defaultChainOrders = map[models.EntityType][]string{
	models.EntityCompany: {"hosted_api", "browser_render", "crawler"},
	models.EntityProfile: {"browser_render", "hosted_api", "crawler"},
	models.EntityListing: {"hosted_api", "crawler", "browser_render"},
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HostedAPIURL:      getEnv("HOSTED_API_URL", ""),
		HostedAPIKey:      getEnv("HOSTED_API_KEY", ""),
		BrowserServiceURL: getEnv("BROWSER_SERVICE_URL", ""),

		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", constants.DefaultBackendTimeout),
		UserAgent:      getEnv("USER_AGENT", ""),

		ConfidenceAcceptable: getEnvFloat("CONFIDENCE_ACCEPTABLE", constants.ConfidenceAcceptable),
		ConfidenceStopEarly:  getEnvFloat("CONFIDENCE_STOP_EARLY", constants.ConfidenceStopEarly),

		DefaultPhonePrefix: getEnv("DEFAULT_PHONE_PREFIX", "+1"),
	}

	if cfg.HostedAPIURL != "" && cfg.HostedAPIKey == "" {
		return nil, fmt.Errorf("HOSTED_API_KEY is required when HOSTED_API_URL is set")
	}
	if cfg.ConfidenceAcceptable > cfg.ConfidenceStopEarly {
		return nil, fmt.Errorf("CONFIDENCE_ACCEPTABLE (%v) must not exceed CONFIDENCE_STOP_EARLY (%v)",
			cfg.ConfidenceAcceptable, cfg.ConfidenceStopEarly)
	}

	cfg.chainOrders = map[models.EntityType][]string{
		models.EntityCompany: getEnvSlice("CHAIN_ORDER_COMPANY", defaultChainOrders[models.EntityCompany]),
		models.EntityProfile: getEnvSlice("CHAIN_ORDER_PROFILE", defaultChainOrders[models.EntityProfile]),
		models.EntityListing: getEnvSlice("CHAIN_ORDER_LISTING", defaultChainOrders[models.EntityListing]),
	}
	for entity, order := range cfg.chainOrders {
		for _, name := range order {
			switch name {
			case "hosted_api", "browser_render", "crawler":
			default:
				return nil, fmt.Errorf("unknown backend %q in chain order for %s", name, entity)
			}
		}
	}

	return cfg, nil
}

// HostedAPIEnabled reports whether the hosted scraping backend is configured.
func (c *Config) HostedAPIEnabled() bool {
	return c.HostedAPIURL != "" && c.HostedAPIKey != ""
}

// BrowserEnabled reports whether the rendering backend is configured.
func (c *Config) BrowserEnabled() bool {
	return c.BrowserServiceURL != ""
}

// ChainOrder returns the backend order for an entity type, filtered to
// backends that are actually configured. The crawler needs no configuration
// and is always available.
func (c *Config) ChainOrder(entity models.EntityType) []string {
	order, ok := c.chainOrders[entity]
	if !ok {
		order = defaultChainOrders[models.EntityCompany]
	}

	available := make([]string, 0, len(order))
	for _, name := range order {
		switch name {
		case "hosted_api":
			if c.HostedAPIEnabled() {
				available = append(available, name)
			}
		case "browser_render":
			if c.BrowserEnabled() {
				available = append(available, name)
			}
		default:
			available = append(available, name)
		}
	}
	return available
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
