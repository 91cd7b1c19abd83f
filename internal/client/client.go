// Package client talks to the brokerage REST API and owns the session token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/tradedesk/internal/cache"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/config"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
)

// SessionKey is the storage key holding the persisted bearer token.
const SessionKey = "session_token"

// maxResponseSize caps response bodies read from the backend.
const maxResponseSize = 10 << 20 // 10MB

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds every request. Zero disables the client-side deadline.
	Timeout    time.Duration
	Store      interfaces.KeyValueStorage
	Logger     *common.Logger
	Cache      *cache.ResponseCache
	HTTPClient *http.Client
	// OnSessionExpired is called once per expiry when a request is rejected with 401.
	OnSessionExpired func()
}

// Client carries the session state and dispatches calls to the backend.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	store      interfaces.KeyValueStorage
	logger     *common.Logger
	cache      *cache.ResponseCache

	mu              sync.Mutex
	token           string
	expiredNotified bool
	onExpired       func()
}

// RequestOptions describes one call made through Request.
type RequestOptions struct {
	Query   url.Values
	Headers http.Header
	// Body is JSON-encoded unless it is url.Values, which is sent form-encoded.
	Body interface{}
	// Cacheable GETs are served from the response cache when present.
	Cacheable bool

	login    bool
	noExpiry bool
}

// New creates a Client and restores any persisted session token.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: httpClient,
		store:      opts.Store,
		logger:     logger,
		cache:      opts.Cache,
		onExpired:  opts.OnSessionExpired,
	}
	c.restoreSession()
	return c
}

// restoreSession loads a persisted token. Unreadable state means no session.
func (c *Client) restoreSession() {
	if c.store == nil {
		return
	}
	token, err := c.store.Get(context.Background(), SessionKey)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			c.logger.Warn().Str("error", err.Error()).Msg("Failed to read persisted session, starting logged out")
		}
		return
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.logger.Debug().Msg("Restored persisted session")
}

// SetOnSessionExpired replaces the session-expired callback.
func (c *Client) SetOnSessionExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticated reports whether a session token is held.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setSession(ctx context.Context, token string) {
	c.mu.Lock()
	c.token = token
	c.expiredNotified = false
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Clear()
	}
	if c.store != nil {
		if err := c.store.Set(ctx, SessionKey, token); err != nil {
			c.logger.Warn().Str("error", err.Error()).Msg("Failed to persist session token")
		}
	}
}

func (c *Client) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Clear()
	}
	c.forgetPersisted(ctx)
}

func (c *Client) forgetPersisted(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, SessionKey); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		c.logger.Warn().Str("error", err.Error()).Msg("Failed to remove persisted session token")
	}
}

// expireSession clears the session a 401 was received for. A token installed by a login that
// raced the failing request is left alone. The callback fires once until the next login.
func (c *Client) expireSession(ctx context.Context, sentToken string) {
	c.mu.Lock()
	if c.token != sentToken {
		c.mu.Unlock()
		return
	}
	cleared := c.token != ""
	c.token = ""
	fire := !c.expiredNotified
	c.expiredNotified = true
	cb := c.onExpired
	c.mu.Unlock()

	if cleared {
		if c.cache != nil {
			c.cache.Clear()
		}
		c.forgetPersisted(context.WithoutCancel(ctx))
	}
	if fire {
		c.logger.Warn().Msg("Session expired")
		if cb != nil {
			cb()
		}
	}
}

// Request dispatches one call and decodes a JSON success body into out (which may be nil).
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions, out interface{}) error {
	body, err := c.do(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Message: fmt.Sprintf("failed to parse response from %s: %v", path, err), cause: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions) ([]byte, error) {
	target := path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	cacheKey := cache.MakeKey(method, target)
	if opts.Cacheable && method == http.MethodGet && c.cache != nil {
		if body, ok := c.cache.Get(cacheKey); ok {
			c.logger.Debug().Str("method", method).Str("path", target).Msg("cache hit")
			return body, nil
		}
	}

	var bodyReader io.Reader
	contentType := ""
	switch b := opts.Body.(type) {
	case nil:
	case url.Values:
		bodyReader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+target, bodyReader)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, vals := range opts.Headers {
		req.Header.Del(key)
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	token := c.currentToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.WithCorrelationId(requestID)
	logger.Debug().Str("method", method).Str("path", target).Msg("api request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Error().Str("method", method).Str("path", target).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("api request failed")
		return nil, transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, transportError(ctx, reqCtx, fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug().Str("method", method).Str("path", target).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("api response")

	if resp.StatusCode == http.StatusUnauthorized {
		if opts.login {
			return nil, ErrAuthenticationFailed
		}
		if !opts.noExpiry {
			c.expireSession(ctx, token)
		}
		return nil, ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := parseErrorResponse(resp.StatusCode, body)
		logger.Warn().Str("method", method).Str("path", target).Int("status", resp.StatusCode).Str("error", reqErr.Message).Msg("api request rejected")
		return nil, reqErr
	}

	if opts.Cacheable && method == http.MethodGet && c.cache != nil {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// transportError classifies a failure that produced no HTTP response.
func transportError(parent, reqCtx context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("request cancelled: %w", parent.Err())
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &RequestError{Message: ErrTimeout.Error(), cause: ErrTimeout}
	}
	return &RequestError{Message: fmt.Sprintf("server request failed: %v", err), cause: err}
}
