package twitter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"feedscraper/pkg/errors"
	"feedscraper/pkg/logger"

	"github.com/tidwall/gjson"
	"h12.io/socks"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client holds transport settings shared by every session it opens
type Client struct {
	transport  http.RoundTripper
	timeout    time.Duration
	apiURL     string
	graphqlURL string
	bearer     string
	userAgent  string
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client) error

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithProxy routes all connections through a SOCKS proxy,
// e.g. "socks5://127.0.0.1:9050?timeout=30s".
func WithProxy(uri string) Option {
	return func(c *Client) error {
		if uri == "" {
			return nil
		}
		if !strings.HasPrefix(uri, "socks") {
			return errors.New(errors.ErrorTypeConfig, "unsupported proxy scheme: %s", uri)
		}
		dial := socks.Dial(uri)
		c.transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dial(network, addr)
			},
			TLSHandshakeTimeout: 15 * time.Second,
			MaxIdleConns:        10,
		}
		return nil
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l logger.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithBaseURLs points the client at alternative REST and GraphQL hosts
func WithBaseURLs(api, graphql string) Option {
	return func(c *Client) error {
		c.apiURL = strings.TrimRight(api, "/")
		c.graphqlURL = strings.TrimRight(graphql, "/")
		return nil
	}
}

// NewClient creates a new platform client
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		transport:  http.DefaultTransport,
		timeout:    30 * time.Second,
		apiURL:     APIBaseURL,
		graphqlURL: GraphQLBaseURL,
		bearer:     PublicBearerToken,
		userAgent:  defaultUserAgent,
		logger:     logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// doRequest sends req with the given headers, checks the status and returns the body.
// The response body is always closed before returning.
func (c *Client) doRequest(hc *http.Client, req *http.Request, headers map[string]string) ([]byte, error) {
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.Path,
	})

	resp, err := hc.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrorTypeNetwork, ctxErr, "request cancelled")
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.Path,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "network error")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "failed to read response body").WithCode(resp.StatusCode)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.Path,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode < 400 {
		return nil
	}

	detail := gjson.GetBytes(body, "errors.0.message").String()
	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.Path,
	}
	if detail != "" {
		fields["detail"] = detail
	}

	var e *errors.Error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		e = errors.New(errors.ErrorTypeAuth, "authentication required")
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		e = errors.New(errors.ErrorTypeNotFound, "resource not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", fields)
		e = errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", fields)
		e = errors.New(errors.ErrorTypeServerError, "server error")
	default:
		c.logger.ErrorWithFields("unexpected API error", fields)
		e = errors.New(errors.ErrorTypeUnknown, "unexpected status code: %d", resp.StatusCode)
	}
	if detail != "" {
		e.Message = fmt.Sprintf("%s: %s", e.Message, detail)
	}
	return e.WithCode(resp.StatusCode)
}
