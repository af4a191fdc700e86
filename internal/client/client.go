// Package client calls the safety index HTTP API. A Client serves the same
// search, taxonomy and detail contracts as the in-process search service, so
// a session can run against either.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/safety-index/internal/api"
	"github.com/sells-group/safety-index/internal/apperr"
	"github.com/sells-group/safety-index/internal/resilience"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRatePerSec = 10
	defaultUserAgent  = "safety-index-client/1.0"
	maxErrorBody      = 64 << 10
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(p resilience.Policy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client is an HTTP client of the API.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	retry     resilience.Policy
	userAgent string
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, eris.Wrapf(err, "client: parse base url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, eris.Errorf("client: base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultRatePerSec), 1),
		retry:     resilience.DefaultPolicy(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// get fetches path with query q and decodes the JSON body into out. Error
// responses come back classified: 400 as validation, 404 as not found, other
// statuses as upstream and transport failures as network errors.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) (http.Header, error) {
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()
	target := u.String()
	reqID := uuid.NewString()

	hdr, err := resilience.Retry(ctx, c.retry, "client.get", func(ctx context.Context) (http.Header, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "client: rate limiter wait")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, eris.Wrap(err, "client: create request")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", reqID)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "client: get %s", path)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp, path)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, apperr.Upstream(err, "client: decode "+path)
		}
		return resp.Header, nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			return nil, apperr.Network(err, "client: request failed")
		}
		return nil, err
	}
	return hdr, nil
}

func statusError(resp *http.Response, path string) error {
	var body api.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperr.Validation(body.Error)
	case http.StatusNotFound:
		return apperr.NotFound(body.Error)
	}

	detail := body.Details
	if detail == "" {
		detail = body.Error
	}
	err := apperr.Upstream(eris.Errorf("client: %s returned %d: %s", path, resp.StatusCode, detail), "client: upstream error")
	if resilience.IsTransientStatus(resp.StatusCode) {
		return resilience.Transient(err, resp.StatusCode)
	}
	return err
}

func headerInt(h http.Header, key string) int {
	n, _ := strconv.Atoi(h.Get(key))
	return n
}
