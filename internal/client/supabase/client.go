// Package supabase is a small client for the hosted Supabase project the
// Balance Buddy data lives in: PostgREST tables and RPC functions, GoTrue
// authentication, and Realtime postgres_changes subscriptions.
//
// A Client holds the signed-in session. Requests carry the session's access
// token and refresh it once, transparently, when it has expired or the
// backend answers "JWT expired".
package supabase

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

	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Config holds client configuration.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client is a Supabase REST client bound to one project.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logging.Logger
	now     func() time.Time

	mu        sync.RWMutex
	session   *Session
	onSession func(*Session)

	refreshMu sync.Mutex
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase url is required", common.ErrInvalidInput)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase anon key is required", common.ErrInvalidInput)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
		log:     log,
		now:     time.Now,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Session returns a copy of the current session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// SetSession replaces the current session; nil signs the client out locally.
func (c *Client) SetSession(s *Session) {
	c.mu.Lock()
	if s != nil {
		cp := *s
		s = &cp
	}
	c.session = s
	fn := c.onSession
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// OnSessionChange registers fn to be called after every session change,
// including token refreshes.
func (c *Client) OnSessionChange(fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSession = fn
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.AccessToken == "" {
		return c.apiKey
	}
	return c.session.AccessToken
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
	// public requests go out with the anon key and never trigger a refresh
	public bool
}

// send performs r, refreshing the session before it when the access token
// has expired and once more after a "JWT expired" rejection.
func (c *Client) send(ctx context.Context, r request) (*Response, error) {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	if !r.public {
		if s := c.Session(); s != nil && s.RefreshToken != "" && s.Expired(c.now()) {
			if err := c.refresh(ctx, s.RefreshToken); err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.roundTrip(ctx, r, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !r.public && jwtExpired(resp.Body) {
		s := c.Session()
		if s == nil || s.RefreshToken == "" {
			return nil, fmt.Errorf("%w: %s", common.ErrTokenExpired, parseAPIError(resp.StatusCode, resp.Body).Message)
		}
		if err := c.refresh(ctx, s.RefreshToken); err != nil {
			return nil, err
		}
		if resp, err = c.roundTrip(ctx, r, payload); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseAPIError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, r request, payload []byte) (*Response, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	token := c.apiKey
	if !r.public {
		token = c.accessToken()
	}
	reqID := uuid.NewString()

	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(common.ClientInfoHeaderName, common.ClientName)
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn(ctx, "supabase request failed", "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", common.ErrUnavailable, err)
	}

	c.log.Debug(ctx, "supabase request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)

	return &Response{StatusCode: resp.StatusCode, Body: data, Header: resp.Header}, nil
}

// refresh exchanges stale for a new session. Concurrent callers holding the
// same stale token refresh once.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if s := c.Session(); s != nil && s.RefreshToken != stale && !s.Expired(c.now()) {
		return nil
	}

	c.log.Debug(ctx, "refreshing session")
	if _, err := c.Auth().RefreshSession(ctx, stale); err != nil {
		if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrInvalidInput) {
			c.SetSession(nil)
			return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

func jwtExpired(body []byte) bool {
	return strings.Contains(strings.ToLower(string(body)), "jwt expired")
}

// RPC calls a Postgres function through PostgREST and decodes its result
// into out, which may be nil.
func (c *Client) RPC(ctx context.Context, fn string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	resp, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + fn,
		body:   args,
	})
	if err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	if out == nil {
		return nil
	}
	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("rpc %s: decode: %w", fn, err)
	}
	return nil
}
