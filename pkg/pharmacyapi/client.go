// Package pharmacyapi is a typed client for the pharmacy REST API. Every
// response body is normalized to camelCase keys before it is decoded.
package pharmacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/casing"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/config"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
)

const (
	DefaultBaseURL     = "https://pharmacy-web-server.onrender.com"
	DefaultTokenHeader = "x-access-token"
	IdempotencyHeader  = "Idempotency-Key"

	defaultTimeout              = 15 * time.Second
	errorBodyReadLimit    int64 = 4 << 10
	responseBodyReadLimit int64 = 16 << 20
)

// TokenSource supplies the access token attached to every request. An empty
// token sends the request anonymously.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

// Client talks to the pharmacy API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokenHeader    string
	tokens         TokenSource
	logg           *logger.Logger
	metrics        *metrics.APIMetrics
	maxUploadBytes int64
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTokenHeader overrides the header carrying the access token.
func WithTokenHeader(header string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(header)
		if trimmed != "" {
			c.tokenHeader = trimmed
		}
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics instruments the HTTP transport.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithMaxUploadBytes caps the size of uploaded files. Zero disables the cap.
func WithMaxUploadBytes(limit int64) Option {
	return func(c *Client) {
		c.maxUploadBytes = limit
	}
}

// NewClient builds a client with the defaults of the hosted API.
func NewClient(opts ...Option) (*Client, error) {
	client := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		baseURL:        DefaultBaseURL,
		tokenHeader:    DefaultTokenHeader,
		maxUploadBytes: 5 << 20,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if _, err := url.ParseRequestURI(client.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", client.baseURL, err)
	}
	if client.metrics != nil {
		instrumented := *client.httpClient
		instrumented.Transport = client.metrics.InstrumentTransport(client.httpClient.Transport)
		client.httpClient = &instrumented
	}
	if client.logg == nil {
		client.logg = logger.Nop()
	}

	return client, nil
}

// NewClientFromConfig builds a client from the API configuration section.
func NewClientFromConfig(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithBaseURL(cfg.BaseURL),
		WithTokenHeader(cfg.TokenHeader),
		WithMaxUploadBytes(cfg.MaxUploadBytes()),
	}
	return NewClient(append(base, opts...)...)
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    io.Reader
	headers http.Header
	// envelopeOptional accepts bodies that are not wrapped in {"data": ...}.
	envelopeOptional bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path, headers: http.Header{}}
	if payload == nil {
		return req, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "marshal request body")
	}
	req.body = bytes.NewReader(encoded)
	req.headers.Set("Content-Type", "application/json")
	return req, nil
}

// call sends req and decodes the data member of the response into out.
func (c *Client) call(ctx context.Context, req request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "pharmacy api client not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), req.body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	for key, values := range req.headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "load access token")
		}
		if token != "" {
			httpReq.Header.Set(c.tokenHeader, token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, fmt.Sprintf("%s %s", req.method, req.path))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s %s", req.method, req.path))
	}
	defer func() { _ = resp.Body.Close() }()

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"method":      req.method,
		"path":        req.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	c.logg.Debug(logCtx, "pharmacy api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Remote(resp.StatusCode, serverMessage(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body").WithStatus(resp.StatusCode)
	}
	if err := decodeData(raw, out, req.envelopeOptional); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s %s response", req.method, req.path)).WithStatus(resp.StatusCode)
	}
	return nil
}

// decodeData normalizes raw to camelCase and unpacks {"data": ...} into out.
func decodeData(raw []byte, out any, envelopeOptional bool) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	normalized, err := casing.Normalize(raw)
	if err != nil {
		return err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(normalized, &envelope); err != nil {
		if envelopeOptional {
			return json.Unmarshal(normalized, out)
		}
		return fmt.Errorf("response is not an object: %w", err)
	}
	data, ok := envelope["data"]
	if !ok {
		if envelopeOptional {
			return json.Unmarshal(normalized, out)
		}
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, out)
}

func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

func (c *Client) buildURL(path string, query url.Values) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	target := fmt.Sprintf("%s/%s", trimmed, path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func resourcePath(resource string, id int64) string {
	return fmt.Sprintf("/%s/%d", resource, id)
}
