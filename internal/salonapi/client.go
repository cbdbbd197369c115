// Package salonapi is the HTTP client for the salon's REST backend.
package salonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salonbook/internal/metrics"
)

var tracer = otel.Tracer("salonbook/salonapi")

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Is maps status codes to package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

const defaultAvailabilityPath = "/availability/{id}"

// Client calls the scheduling, catalog, customer, appointment and stylist endpoints.
type Client struct {
	baseURL          string
	apiKey           string
	availabilityPath string
	httpClient       *http.Client
	logger           zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAvailabilityPath overrides the availability endpoint. "{id}" is replaced by the stylist id.
func WithAvailabilityPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.availabilityPath = path
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.With().Str("component", "salonapi").Logger()
		}
	}
}

// NewClient constructs a client with baseURL and an optional API key.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		apiKey:           apiKey,
		availabilityPath: defaultAvailabilityPath,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// HealthCheck checks if the backend is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.doGet(ctx, "health", c.baseURL+"/health", nil)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) dropCache(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	_ = c.redis.Del(ctx, keys...).Err()
}

// getCached serves GET requests through the redis cache.
func (c *Client) getCached(ctx context.Context, name, endpoint, cacheKey string, out any) error {
	if c.readCache(ctx, cacheKey, out) {
		return nil
	}
	if err := c.doGet(ctx, name, endpoint, out); err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

func (c *Client) doGet(ctx context.Context, name, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(name, req, out)
}

func (c *Client) doPost(ctx context.Context, name, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, name, endpoint, body, out)
}

func (c *Client) doPut(ctx context.Context, name, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, name, endpoint, body, out)
}

func (c *Client) doDelete(ctx context.Context, name, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(name, req, nil)
}

func (c *Client) doJSON(ctx context.Context, method, name, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(name, req, out)
}

func (c *Client) do(name string, req *http.Request, out any) (err error) {
	ctx, span := tracer.Start(req.Context(), "salonapi."+name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.String()),
	)

	start := time.Now()
	defer func() {
		metrics.ObserveBackendRequest(name, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	req = req.WithContext(ctx)
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wrap struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &wrap) == nil {
		if wrap.Message != "" {
			return wrap.Message
		}
		if wrap.Error != "" {
			return wrap.Error
		}
	}
	return strings.TrimSpace(string(data))
}
