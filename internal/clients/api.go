package clients

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

	"go.uber.org/zap"
)

const loginPath = "/auth/login"

// TokenSource yields the bearer token for protected calls. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// API speaks the remote REST API's envelope protocol on top of Client.
type API struct {
	c              *Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

type Option func(*API)

func WithTokenSource(ts TokenSource) Option {
	return func(a *API) { a.tokens = ts }
}

// WithUnauthorizedHandler registers fn to run when a call other than login
// answers 401. fn is expected to drop the cached credentials.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(a *API) { a.onUnauthorized = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *API) { a.logger = l }
}

func NewAPI(c *Client, opts ...Option) *API {
	a := &API{c: c, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Client() *Client { return a.c }

type request struct {
	method string
	path   string
	query  url.Values
	auth   bool

	// exactly one of body (JSON encoded) or raw is used
	body        any
	raw         io.Reader
	contentType string
}

// call performs req and decodes the envelope. Data is decoded into T only on
// success.
func call[T any](ctx context.Context, a *API, req request) (*Response[T], error) {
	body, headers, err := a.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	var rawQuery string
	if len(req.query) > 0 {
		rawQuery = req.query.Encode()
	}

	resp, err := a.c.Do(ctx, req.method, req.path, rawQuery, body, headers)
	if err != nil {
		a.logger.Warn("api request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !strings.HasSuffix(req.path, loginPath) && a.onUnauthorized != nil {
		a.onUnauthorized(ctx)
	}

	var env rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("%w: %s %s: decode response (status %d): %w", ErrNetwork, req.method, req.path, resp.StatusCode, err)
	}

	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Detail: env.Error}
	}

	out := &Response[T]{Success: true, Message: env.Message}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &out.Data); err != nil {
			return nil, fmt.Errorf("%w: %s %s: decode data: %w", ErrNetwork, req.method, req.path, err)
		}
	}
	return out, nil
}

func (a *API) prepare(ctx context.Context, req request) (io.Reader, http.Header, error) {
	headers := http.Header{}
	var body io.Reader

	switch {
	case req.raw != nil:
		body = req.raw
		headers.Set("Content-Type", req.contentType)
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s body: %w", req.path, err)
		}
		body = bytes.NewReader(b)
		headers.Set("Content-Type", "application/json")
	default:
		headers.Set("Content-Type", "application/json")
	}
	headers.Set("Accept", "application/json")

	if req.auth && a.tokens != nil {
		token, err := a.tokens.Token(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}
	return body, headers, nil
}

// fetch is call for callers that only need the data.
func fetch[T any](ctx context.Context, a *API, req request) (T, error) {
	resp, err := call[T](ctx, a, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Data, nil
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// pathSegment escapes s as a single path segment. Dots are escaped too when
// s is "." or "..", so a slug can never climb out of its route.
func pathSegment(s string) string {
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return url.PathEscape(s)
}
