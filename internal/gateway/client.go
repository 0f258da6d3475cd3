package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SessionAccessor supplies and persists the bearer token of one browser session.
type SessionAccessor interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
}

// Options configures the shared backend client.
type Options struct {
	BaseURL string
	Timeout time.Duration // zero leaves the transport's own limits in place
	Metrics *Metrics
}

// Client holds the shared resty client. It is safe for concurrent use;
// bind it to a session with For before calling the backend.
type Client struct {
	http    *resty.Client
	metrics *Metrics
}

// NewClient builds a single-attempt REST client against opts.BaseURL.
func NewClient(opts Options) *Client {
	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return &Client{http: rc, metrics: opts.Metrics}
}

// For binds the client to a session. The returned Gateway is cheap and
// meant to live as long as one view.
func (c *Client) For(session SessionAccessor) *Gateway {
	return &Gateway{client: c, session: session}
}

// Gateway performs the backend operations on behalf of one session.
type Gateway struct {
	client  *Client
	session SessionAccessor
}

// authorized prepares a request carrying the session's bearer token. It fails
// with *AuthenticationError before any I/O when the token is missing.
func (g *Gateway) authorized(ctx context.Context, op string) (*resty.Request, error) {
	if g.session == nil {
		g.client.metrics.observe(op, outcomeUnauthenticated, 0)
		return nil, &AuthenticationError{Op: op}
	}
	token, err := g.session.Token(ctx)
	if err != nil || token == "" {
		g.client.metrics.observe(op, outcomeUnauthenticated, 0)
		return nil, &AuthenticationError{Op: op, Err: err}
	}
	return g.client.http.R().SetContext(ctx).SetAuthToken(token), nil
}

// anonymous prepares a request without credentials.
func (g *Gateway) anonymous(ctx context.Context) *resty.Request {
	return g.client.http.R().SetContext(ctx)
}

// send executes exactly one round trip and maps failures onto *TransportError.
func (g *Gateway) send(op, method, path string, req *resty.Request) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		g.client.metrics.observe(op, outcomeTransportError, time.Since(start))
		return nil, &TransportError{Op: op, Method: method, Path: path, Err: err}
	}
	if resp.IsError() {
		g.client.metrics.observe(op, outcomeHTTPError, time.Since(start))
		return nil, &TransportError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}
	g.client.metrics.observe(op, outcomeOK, time.Since(start))
	return resp, nil
}

// decode unmarshals a successful response body into dst.
func decode(op string, resp *resty.Response, dst any) error {
	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
