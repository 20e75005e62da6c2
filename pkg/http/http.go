// Package http is the fluent outbound HTTP client used by the API client.
//
//	resp, err := http.Post(base + "/cart/items").
//	    Bearer(token).
//	    Body(map[string]any{"product_id": 4, "quantity": 2}).
//	    WithContext(ctx).
//	    Send()
//
// A failure to reach the server is returned as *TransportError; any HTTP
// response, whatever its status, is returned as *Response.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/reqid"
)

// TransportError means no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is the shared client. Requests may override it with Using.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
	client    *gohttp.Client
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

// Post starts a POST request.
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

// Put starts a PUT request.
func Put(url string) *Request { return newRequest(gohttp.MethodPut, url) }

// Delete starts a DELETE request.
func Delete(url string) *Request { return newRequest(gohttp.MethodDelete, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Content-Type": "application/json", "Accept": "application/json"},
		timeout:   30 * time.Second,
		retries:   1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
		client:    DefaultClient,
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body. v is marshalled to JSON automatically.
// Pass a string or []byte to send raw bodies.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry configures retries of transport failures. n is total attempts
// (default 1, no retry); wait is the initial backoff, doubled per attempt.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	r.retries = n
	r.retryWait = wait
	return r
}

// WithContext sets a custom context. Its request ID, if any, is forwarded.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	if id := reqid.FromCtx(ctx); id != "" {
		r.headers[reqid.Header] = id
	}
	return r
}

// Using sends through c instead of DefaultClient.
func (r *Request) Using(c *gohttp.Client) *Request {
	if c != nil {
		r.client = c
	}
	return r
}

// ------------------- Send -------------------

// Send executes the request. Only transport failures are retried.
func (r *Request) Send() (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		var te *TransportError
		if !errors.As(err, &te) || r.ctx.Err() != nil {
			return nil, err
		}
		if attempt < r.retries {
			// Exponential backoff: wait * 2^(attempt-1)
			backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.Warn("http: request failed, retrying",
				"url", r.url, "attempt", attempt, "backoff", backoff, "error", err)
			time.Sleep(backoff)
		}
	}

	return nil, lastErr
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: r.method, URL: r.url, Err: err}
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Method: r.method, URL: r.url, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Header returns a single response header value.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}
