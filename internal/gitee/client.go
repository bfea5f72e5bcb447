// Package gitee is a thin client for the Gitee REST API v5. Every operation
// validates its path arguments locally, issues exactly one HTTP request per
// logical call and surfaces failures as classified apierrors.
package gitee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/metrics"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
	"github.com/developer-mesh/gitee-mcp/internal/tracing"
)

// Version is reported in the default User-Agent
var Version = "dev"

// Client issues authenticated requests against the Gitee API
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     observability.Logger
	metrics    *metrics.Metrics
	tracer     *tracing.TracerProvider
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the diagnostic logger
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables request metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer enables request spans
func WithTracer(tp *tracing.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp }
}

// WithClock overrides the clock used for rate limit reset times
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client from the gateway configuration.
func NewClient(cfg config.GiteeConfig, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = fmt.Sprintf("gitee-mcp/%s (+go)", Version)
	}

	c := &Client{
		baseURL:   base,
		token:     cfg.Token,
		userAgent: ua,
		// zero timeout waits for as long as the context allows
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     observability.NewNoopLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root every relative path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one HTTP call. path is either absolute (starts with
// "http") or relative to the base URL. A nil body sends no payload. Caller
// headers override the defaults. On 2xx the parsed body is returned: a JSON
// value when the response is JSON, otherwise the raw text. Any other status
// is returned as a classified *apierrors.Error.
func (c *Client) Request(ctx context.Context, path, method string, body interface{}, headers map[string]string) (interface{}, error) {
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
	}

	reqHeaders := c.headers(headers)

	ctx, span := c.tracer.StartGiteeRequestSpan(ctx, method, c.redact(target))
	defer span.End()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request", method)
	}
	for k, v := range reqHeaders {
		req.Header.Set(k, v)
	}

	c.logRequest(method, target, reqHeaders, payload)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.redact(urlErr.URL)
		}
		c.recordMetrics(method, 0, start)
		tracing.RecordError(span, err)
		c.logger.Debug("Gitee API request failed", map[string]interface{}{
			"method": method,
			"url":    c.redact(target),
			"error":  err.Error(),
		})
		return nil, errors.Wrapf(err, "gitee request %s %s failed", method, c.redact(target))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	c.recordMetrics(method, resp.StatusCode, start)
	tracing.RecordHTTPStatus(span, resp.StatusCode)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, errors.Wrap(err, "failed to read response body")
	}

	c.logger.Debug("Gitee API response", map[string]interface{}{
		"status": resp.StatusCode,
		"body":   string(raw),
	})

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	parsed, parseErr := parseBody(resp.Header.Get("Content-Type"), raw)
	if parseErr != nil {
		if ok {
			tracing.RecordError(span, parseErr)
			return nil, parseErr
		}
		parsed = string(raw)
	}

	if !ok {
		classified := apierrors.ClassifyAt(resp.StatusCode, parsed, c.now())
		if classified.Kind == apierrors.KindRateLimit {
			if reset, found := rateLimitReset(resp.Header); found {
				classified.ResetAt = &reset
			}
		}
		tracing.RecordError(span, classified)
		return nil, classified
	}

	return parsed, nil
}

// Do performs a request and decodes the successful response into out,
// which rejects responses whose shape does not match the expected type.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	result, err := c.Request(ctx, path, method, body, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeInto(result, out)
}

func decodeInto(result, out interface{}) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to re-encode response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

func parseBody(contentType string, raw []byte) (interface{}, error) {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return string(raw), nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON response")
	}
	return v, nil
}

// rateLimitReset reads the provider's reset hint when it sends one
func rateLimitReset(h http.Header) (time.Time, bool) {
	v := h.Get("X-RateLimit-Reset")
	if v == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

func (c *Client) resolveURL(path string) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http") {
		raw = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid request URL %q", raw)
	}
	if c.token != "" {
		q := u.Query()
		q.Set("access_token", c.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) headers(extra map[string]string) map[string]string {
	h := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
		"User-Agent":   c.userAgent,
	}
	if c.token != "" {
		h["Authorization"] = "token " + c.token
	}
	for k, v := range extra {
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}

func (c *Client) recordMetrics(method string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordGiteeRequest(method, status, time.Since(start))
	}
}

// redact masks the token everywhere it could appear in logged text
func (c *Client) redact(s string) string {
	if c.token == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(c.token), config.MaskToken(c.token))
	return strings.ReplaceAll(s, c.token, config.MaskToken(c.token))
}

func (c *Client) logRequest(method, target string, headers map[string]string, payload []byte) {
	logged := make(map[string]string, len(headers))
	for k, v := range headers {
		logged[k] = c.redact(v)
	}

	c.logger.Debug("Gitee API request", map[string]interface{}{
		"method":  method,
		"url":     c.redact(target),
		"headers": logged,
		"body":    string(payload),
		"token":   config.MaskToken(c.token),
		"curl":    curlCommand(method, c.redact(target), logged, payload),
	})
}

// curlCommand renders an equivalent curl invocation for debugging
func curlCommand(method, target string, headers map[string]string, payload []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s '%s'", method, target)

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " -H '%s: %s'", k, headers[k])
	}
	if len(payload) > 0 {
		fmt.Fprintf(&b, " -d '%s'", strings.ReplaceAll(string(payload), "'", `'\''`))
	}
	return b.String()
}
