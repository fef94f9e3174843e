// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed talks to the NCBI E-utilities: esearch turns a query into
// PubMed identifiers and efetch returns the XML records for a group of them.
package pubmed

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperscraper/pkg/types"
)

const (
	// DefaultBaseURL is the E-utilities base URL.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTimeout bounds each HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the tool to NCBI.
	DefaultUserAgent = "paperscraper/0.1"

	// DefaultTool is sent as the tool parameter.
	DefaultTool = "paperscraper"

	// DefaultMaxResults caps the identifiers a search returns.
	DefaultMaxResults = 10000

	// DefaultBatchSize is the number of identifiers per efetch call.
	DefaultBatchSize = 200

	// MaxBatchSize is the largest group efetch accepts over GET.
	MaxBatchSize = 500

	// DefaultMaxRetries is the retry budget per call.
	DefaultMaxRetries = 3

	// FetchWorkers is the number of efetch calls in flight.
	FetchWorkers = 3

	// RateLimit is the NCBI budget without an API key, in requests per second.
	RateLimit = 3.0

	// RateLimitWithKey is the NCBI budget with an API key.
	RateLimitWithKey = 10.0

	maxBodyBytes = 64 << 20
)

// Client is a rate-limited E-utilities client. It owns its connection pool;
// call Close when done.
type Client struct {
	cfg        types.PubMedConfig
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	paced      pacedClient
	closeOnce  sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client whose transport carries the calls.
// Calls are still paced by the rate limiter.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter replaces the default NCBI rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a client from cfg. Zero config values take the package
// defaults, except MaxRetries: 0 disables retries and a negative value
// selects DefaultMaxRetries.
func NewClient(cfg types.PubMedConfig, opts ...Option) *Client {
	cfg = withDefaults(cfg)

	limit := RateLimit
	if cfg.APIKey != "" {
		limit = RateLimitWithKey
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	var base http.RoundTripper
	timeout := cfg.Timeout
	if c.httpClient != nil {
		base = c.httpClient.Transport
		if c.httpClient.Timeout > 0 {
			timeout = c.httpClient.Timeout
		}
	}
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	c.httpClient = &http.Client{
		Timeout:   timeout,
		Transport: base,
	}
	c.paced = pacedClient{hc: c.httpClient, limiter: c.limiter}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() types.PubMedConfig { return c.cfg }

// Close releases the idle connections of the pool. It is safe to call more
// than once.
func (c *Client) Close() {
	c.closeOnce.Do(c.httpClient.CloseIdleConnections)
}

func withDefaults(cfg types.PubMedConfig) types.PubMedConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return cfg
}

// params returns the query parameters every E-utilities call carries.
func (c *Client) params() url.Values {
	v := url.Values{"db": {"pubmed"}}
	if c.cfg.APIKey != "" {
		v.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Email != "" {
		v.Set("email", c.cfg.Email)
	}
	if c.cfg.Tool != "" {
		v.Set("tool", c.cfg.Tool)
	}
	return v
}

func (c *Client) newRequest(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return req
}

// pacedClient waits on the limiter before every call, retries included.
// The wait happens before http.Client starts its timeout, so queueing for
// the NCBI budget never counts against an attempt.
type pacedClient struct {
	hc      *http.Client
	limiter *rate.Limiter
}

func (p pacedClient) Do(req *http.Request) (*http.Response, error) {
	if err := p.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return p.hc.Do(req)
}
