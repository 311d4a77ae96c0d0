package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/httpclient"
	"github.com/amsot/twfcode/internal/logger"
)

const componentName = "cms"

// Config holds configuration for the CMS client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	CacheTTL     time.Duration // 0 disables caching
	PerPage      int
	RateLimit    float64 // requests per second, 0 disables limiting
	Burst        int
	UserAgent    string
	MaxRetries   int
	RetryBackoff time.Duration // multiplied by the attempt number

	// Transport replaces the pooled HTTP transport; tests pass a mock here.
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      conf.DefaultCMSBaseURL,
		Timeout:      10 * time.Second,
		CacheTTL:     5 * time.Minute,
		PerPage:      conf.DefaultPerPage,
		RateLimit:    5,
		Burst:        10,
		UserAgent:    "twfcode/1.0",
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// ConfigFromSettings maps the cms configuration section onto a Config.
func ConfigFromSettings(s *conf.CMSSettings) Config {
	cfg := DefaultConfig()
	if s == nil {
		return cfg
	}
	cfg.BaseURL = s.BaseURL
	cfg.Timeout = s.Timeout
	cfg.CacheTTL = s.CacheTTL
	cfg.PerPage = s.PerPage
	cfg.RateLimit = s.RateLimit
	cfg.Burst = s.Burst
	cfg.UserAgent = s.UserAgent
	cfg.MaxRetries = s.MaxRetries
	return cfg
}

// Observer receives request and cache outcomes, e.g. for metrics.
type Observer interface {
	RequestCompleted(endpoint, status string, duration time.Duration)
	CacheHit(endpoint string)
	CacheMiss(endpoint string)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver registers an observer for request outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client talks to the content API. It is safe for concurrent use.
type Client struct {
	cfg      Config
	baseURL  string
	http     *httpclient.Client
	cache    *cache.Cache
	limiter  *rate.Limiter
	group    singleflight.Group
	mu       sync.Mutex
	flights  map[string]*flight
	log      logger.Logger
	observer Observer
}

// NewClient creates a CMS client. Zero config fields fall back to DefaultConfig.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf("invalid CMS base URL %q", cfg.BaseURL).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = def.PerPage
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: cfg.Timeout,
			UserAgent:      cfg.UserAgent,
			Transport:      cfg.Transport,
		}),
		limiter: rate.NewLimiter(rate.Inf, 0),
		flights: make(map[string]*flight),
		log:     logger.Global().Module(componentName),
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.Info("CMS client initialized",
		logger.String("base_url", c.baseURL),
		logger.Duration("cache_ttl", cfg.CacheTTL),
		logger.Float64("rate_limit", cfg.RateLimit),
		logger.Int("max_retries", cfg.MaxRetries))
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
	c.log.Info("CMS cache cleared")
}

// CacheSize returns the number of cached responses.
func (c *Client) CacheSize() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// get fetches endpoint with params and decodes the JSON body into dst.
// Identical concurrent requests share one round trip.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	target := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	body, err := c.body(ctx, endpoint, target)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New(fmt.Errorf("failed to parse response: %w", err)).
			Component(componentName).
			Category(errors.CategoryFileParsing).
			Context("endpoint", endpoint).
			Context("response_size", len(body)).
			Build()
	}
	return nil
}

func (c *Client) body(ctx context.Context, endpoint, target string) ([]byte, error) {
	if c.cache != nil {
		if cached, found := c.cache.Get(target); found {
			if body, ok := cached.([]byte); ok {
				if c.observer != nil {
					c.observer.CacheHit(endpoint)
				}
				c.log.Trace("cache hit", logger.String("endpoint", endpoint))
				return body, nil
			}
		}
		if c.observer != nil {
			c.observer.CacheMiss(endpoint)
		}
	}

	f := c.join(ctx, target)
	defer c.leave(target, f)

	ch := c.group.DoChan(target, func() (any, error) {
		body, err := c.fetchWithRetry(f.ctx, endpoint, target)
		if err != nil {
			return nil, err
		}
		if c.cache != nil && json.Valid(body) {
			c.cache.Set(target, body, cache.DefaultExpiration)
		}
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Trace("request shared", logger.String("endpoint", endpoint))
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, errors.New(ctx.Err()).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Context("endpoint", endpoint).
			Build()
	}
}

// flight is the fetch shared by callers of one URL. Its context is detached
// from any single caller and cancelled once the last waiting caller leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (c *Client) join(ctx context.Context, target string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.flights[target]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[target] = f
	}
	f.waiters++
	return f
}

func (c *Client) leave(target string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[target] == f {
		delete(c.flights, target)
		// Later callers must not attach to a fetch running on the cancelled context.
		c.group.Forget(target)
	}
}

// fetchWithRetry retries transient failures with linear backoff.
func (c *Client) fetchWithRetry(ctx context.Context, endpoint, target string) ([]byte, error) {
	var lastErr error
	for attempt := range c.cfg.MaxRetries {
		body, err := c.fetch(ctx, endpoint, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		delay := time.Duration(attempt+1) * c.cfg.RetryBackoff
		c.log.Warn("CMS request failed, retrying",
			logger.String("endpoint", endpoint),
			logger.Int("attempt", attempt+1),
			logger.Int("max_retries", c.cfg.MaxRetries),
			logger.Duration("delay", delay),
			logger.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.New(ctx.Err()).
				Component(componentName).
				Category(errors.CategoryCancellation).
				Context("endpoint", endpoint).
				Build()
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, endpoint, target string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Context("endpoint", endpoint).
			Build()
	}

	start := time.Now()
	resp, err := c.http.Get(ctx, target)
	if err != nil {
		c.observe(endpoint, "error", start)
		return nil, errors.New(err).
			Component(componentName).
			Category(transportCategory(ctx, err)).
			NetworkContext(target, c.cfg.Timeout).
			Context("endpoint", endpoint).
			Build()
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, httpclient.MaxResponseBytes))
	if err != nil {
		c.observe(endpoint, "error", start)
		return nil, errors.New(fmt.Errorf("failed to read response body: %w", err)).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("endpoint", endpoint).
			Context("status_code", resp.StatusCode).
			Build()
	}
	c.observe(endpoint, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode >= http.StatusBadRequest {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.log.Warn("CMS error response",
			logger.String("endpoint", endpoint),
			logger.Int("status_code", resp.StatusCode),
			logger.String("response_preview", preview))
		return nil, errors.Newf("CMS returned status %d", resp.StatusCode).
			Component(componentName).
			Category(statusCategory(resp.StatusCode)).
			Context("endpoint", endpoint).
			Context("status_code", resp.StatusCode).
			Build()
	}

	c.log.Debug("CMS request completed",
		logger.String("endpoint", endpoint),
		logger.Int("status_code", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.observer != nil {
		c.observer.RequestCompleted(endpoint, status, time.Since(start))
	}
}

// statusCategory maps an HTTP error status to an error category.
func statusCategory(code int) errors.ErrorCategory {
	switch {
	case code == http.StatusNotFound:
		return errors.CategoryNotFound
	case code == http.StatusTooManyRequests:
		return errors.CategoryLimit
	case code >= http.StatusInternalServerError:
		return errors.CategoryNetwork
	default:
		return errors.CategoryHTTP
	}
}

func transportCategory(ctx context.Context, err error) errors.ErrorCategory {
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return errors.CategoryCancellation
	case errors.Is(err, context.DeadlineExceeded):
		return errors.CategoryTimeout
	default:
		return errors.CategoryNetwork
	}
}

// retryable reports whether err is worth another attempt: transport and
// server failures, timeouts and rate limiting.
func retryable(err error) bool {
	switch errors.CategoryOf(err) {
	case errors.CategoryNetwork, errors.CategoryTimeout, errors.CategoryLimit:
		return true
	}
	return false
}
