package sw360

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
)

// Client talks to the SW360 REST API
type Client struct {
	url        string
	headers    http.Header
	httpClient *http.Client
	token      string
	oauth2     bool
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A nil client makes New
// fail.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the HTTP
// client, so a client given by WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			return
		}
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithOAuth2 marks the token as an OAuth2 bearer token instead of a SW360 REST token
func WithOAuth2(enabled bool) Option {
	return func(c *Client) {
		c.oauth2 = enabled
	}
}

// New creates a new SW360 client. baseURL is the server root, e.g.
// "https://sw360.example.com/"; a missing trailing slash is added.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &Error{Message: "SW360 URL is required"}
	}
	if token == "" {
		return nil, &Error{Message: "SW360 token is required"}
	}

	c := &Client{
		url:   strings.TrimRight(baseURL, "/") + "/",
		token: token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, &Error{Message: "HTTP client must not be nil"}
	}

	scheme := "Token "
	if c.oauth2 {
		scheme = "Bearer "
	}
	c.headers = http.Header{}
	c.headers.Set("Authorization", scheme+c.token)

	return c, nil
}

// URL returns the normalized base URL, always ending with "/"
func (c *Client) URL() string {
	return c.url
}

// Headers returns a copy of the headers sent with every request
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

func (c *Client) endpoint(path string) string {
	return c.url + path
}

// do performs one JSON request. The response body is fully read and closed;
// non-2xx responses are returned as *Error.
func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, wrapError(err, url, "failed to marshal request body")
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	return c.send(ctx, method, url, bodyReader, contentType, "application/hal+json")
}

// send performs one request with a raw body. contentType is only set when not
// empty.
func (c *Client) send(ctx context.Context, method, url string, bodyReader io.Reader, contentType, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, wrapError(err, url, "failed to create request")
	}

	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", accept)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger := logging.From(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("SW360 request failed",
			"method", method,
			"url", url,
			"request_id", requestID,
			"error", err,
		)
		return nil, 0, wrapError(err, url, "request to "+url+" failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, wrapError(err, url, "failed to read response body")
	}

	logger.Debug("SW360 request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, newResponseError(resp, data, url)
	}

	return data, resp.StatusCode, nil
}

// APIGet issues a GET to a full URL. It returns nil without error when the
// server answers 204 or with an empty body.
func (c *Client) APIGet(ctx context.Context, url string) ([]byte, error) {
	data, status, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// APIGetRaw issues a GET to a full URL and returns the body as text
func (c *Client) APIGetRaw(ctx context.Context, url string) (string, error) {
	data, _, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Login checks that the API is reachable with the configured token
func (c *Client) Login(ctx context.Context) error {
	url := c.endpoint("resource/api/")
	if _, _, err := c.do(ctx, http.MethodGet, url, nil); err != nil {
		e := &Error{Message: "unable to login", URL: url, cause: err}
		var respErr *Error
		if errors.As(err, &respErr) {
			e.Response = respErr.Response
			e.Body = respErr.Body
			e.Details = respErr.Details
		}
		return e
	}
	return nil
}

func (c *Client) getDocument(ctx context.Context, url string) (map[string]any, error) {
	data, err := c.APIGet(ctx, url)
	if err != nil || data == nil {
		return nil, err
	}
	return decodeObject(data, url)
}

func decodeObject(data []byte, url string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, wrapError(err, url, "failed to decode response from "+url)
	}
	return obj, nil
}
