// Package client is the Go SDK for the Krishi REST API.
//
// A Client owns a SessionStore. Every authenticated call carries the
// session's bearer token, mutating calls are checked with access.Authorize
// before anything is sent, and a 401 from the server ends the session.
// Errors are *apperr.Error values of kind Network, Auth, Forbidden,
// Validation, NotFound, Conflict or Server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	gohttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	khttp "github.com/shashiranjanraj/krishi/pkg/http"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// APIPrefix is where the server mounts the REST routes.
const APIPrefix = "/api"

type Client struct {
	base    string
	http    *gohttp.Client
	timeout time.Duration
	session *SessionStore
	cart    *cartSnapshot
}

type Option func(*options)

type options struct {
	http    *gohttp.Client
	file    *TokenFile
	now     func() time.Time
	timeout time.Duration
}

// WithHTTPClient sends requests through hc, e.g. an httptest server's client.
func WithHTTPClient(hc *gohttp.Client) Option { return func(o *options) { o.http = hc } }

// WithTokenFile persists the session token to f.
func WithTokenFile(f *TokenFile) Option { return func(o *options) { o.file = f } }

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// New returns a Client for the server at baseURL (scheme and host).
func New(baseURL string, opts ...Option) *Client {
	o := options{http: khttp.DefaultClient, now: time.Now, timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    o.http,
		timeout: o.timeout,
		cart:    &cartSnapshot{},
	}
	c.session = newSessionStore(c, o.file, o.now)
	c.session.Hold(c.cart)
	return c
}

func (c *Client) Session() *SessionStore { return c.session }

// LastCart is the cart as of the most recent cart call; nil after logout.
func (c *Client) LastCart() *Cart { return c.cart.get() }

// ── transport ────────────────────────────────────────────────────────────────

type envelope struct {
	Status   int             `json:"status"`
	Message  string          `json:"message"`
	Code     string          `json:"code"`
	Redirect string          `json:"redirect"`
	Data     json.RawMessage `json:"data"`
	Errors   json.RawMessage `json:"errors"`
}

// send performs one request and decodes the envelope's data into out.
// Transport failures are not retried.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var req *khttp.Request
	url := c.base + APIPrefix + path
	switch method {
	case gohttp.MethodPost:
		req = khttp.Post(url)
	case gohttp.MethodPut:
		req = khttp.Put(url)
	case gohttp.MethodDelete:
		req = khttp.Delete(url)
	default:
		req = khttp.Get(url)
	}
	req = req.WithContext(ctx).Using(c.http).Timeout(c.timeout).Retry(1, 0)
	if token != "" {
		req = req.Bearer(token)
	}
	if body != nil {
		req = req.Body(body)
	}

	resp, err := req.Send()
	if err != nil {
		var te *khttp.TransportError
		if errors.As(err, &te) {
			return apperr.Network(err)
		}
		return apperr.Server(err)
	}

	var env envelope
	decodeErr := resp.JSON(&env)
	if !resp.OK() {
		return responseError(resp, env, decodeErr == nil)
	}
	if decodeErr != nil {
		return apperr.Server(decodeErr)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperr.Server(err)
		}
	}
	return nil
}

// responseError maps a non-2xx response onto the taxonomy. A body that is not
// an envelope, such as a proxy's plain-text page, becomes the message.
func responseError(resp *khttp.Response, env envelope, decoded bool) *apperr.Error {
	status := resp.StatusCode
	msg := env.Message
	if !decoded {
		msg = strings.TrimSpace(resp.Text())
		if len(msg) > 200 || strings.HasPrefix(msg, "<") {
			msg = ""
		}
	}
	if msg == "" {
		msg = gohttp.StatusText(status)
	}
	if status == gohttp.StatusTooManyRequests {
		if after := resp.Header("Retry-After"); after != "" {
			msg += ", retry after " + after + "s"
		}
	}
	e := apperr.FromStatus(status, apperr.Code(env.Code), msg)
	e.Redirect = env.Redirect
	if len(env.Errors) > 0 {
		var fields map[string]string
		if json.Unmarshal(env.Errors, &fields) == nil {
			e.Fields = fields
		}
	}
	return e
}

// do is send with the session token. A 401 ends the session that sent it.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token := c.session.Token()
	err := c.send(ctx, method, path, token, body, out)
	if apperr.KindOf(err) == apperr.KindAuth && c.session.revoke(token) {
		logger.WithCtx(ctx).Info("client: server rejected session", "path", path)
	}
	return err
}

// authorize runs the access gate locally so a call the server would refuse
// is never sent. A restored session is validated first to learn its role.
func (c *Client) authorize(ctx context.Context, active bool, roles ...access.Role) error {
	sess := c.session.Session()
	if sess == nil && c.session.Token() != "" {
		if _, err := c.session.Validate(ctx); err != nil {
			return err
		}
		sess = c.session.Session()
	}
	if sess != nil && !sess.ExpiresAt.After(c.session.now()) {
		c.session.Logout()
		return apperr.ErrInvalidOrExpiredToken
	}

	d := access.Authorize(sess, roles...)
	if !d.Allowed {
		return apperr.NotAuthorized(d.Redirect, d.NeedsLogin())
	}
	if active {
		if d := access.RequireActive(sess, roles...); !d.Allowed {
			return apperr.Inactive(d.Redirect)
		}
	}
	return nil
}

// ── cart snapshot ────────────────────────────────────────────────────────────

type cartSnapshot struct {
	mu   sync.Mutex
	cart *Cart
}

func (s *cartSnapshot) set(c *Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *cartSnapshot) get() *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *cartSnapshot) Clear() { s.set(nil) }
