package translator

import (
	"time"
)

const (
	DefaultBaseURL        = "https://api.sarvam.ai/v1"
	DefaultEndpoint       = "/translate"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultRateLimitDelay = 500 * time.Millisecond
	DefaultFormality      = "formal"
	DefaultModel          = "mayura:v1"
	DefaultMaxRetryAfter  = 60 * time.Second
)

// Config for the translation provider client.
type Config struct {
	BaseURL  string // default https://api.sarvam.ai/v1
	Endpoint string // appended to BaseURL, default /translate
	APIKey   string

	Timeout        time.Duration // per request
	MaxAttempts    int           // total attempts per chunk, including the first
	BaseDelay      time.Duration // first backoff; doubles per attempt
	RateLimitDelay time.Duration // minimum spacing between requests; negative disables
	MaxRetryAfter  time.Duration // cap on provider supplied Retry-After

	Formality string
	Model     string
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.RateLimitDelay == 0 {
		c.RateLimitDelay = DefaultRateLimitDelay
	}
	if c.MaxRetryAfter <= 0 {
		c.MaxRetryAfter = DefaultMaxRetryAfter
	}
	if c.Formality == "" {
		c.Formality = DefaultFormality
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return c
}
