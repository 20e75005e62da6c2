// Package ctx gives handlers a single request context with helpers for
// params, binding, the session and the response envelope.
//
//	func (h *OrderController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    if !ok {
//	        return // 404 already sent
//	    }
//	    order, err := h.orders.Get(c.Context(), c.Session(), id)
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(order)
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/bind"
	"github.com/shashiranjanraj/krishi/pkg/orm"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/session"
	"github.com/shashiranjanraj/krishi/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc into an http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps one request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path parameter. On failure it sends 404 and
// returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.NotFound()
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Page reads ?page= and ?per_page=.
func (c *Context) Page() orm.Page {
	return orm.ParsePage(c.Query("page"), c.Query("per_page"))
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Session returns the authenticated session, or nil.
func (c *Context) Session() *access.Session {
	return session.FromContext(c.R.Context())
}

// Token returns the raw bearer token of the request.
func (c *Context) Token() string {
	return session.TokenFromContext(c.R.Context())
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On failure the 400 or
// 422 response is already written and false is returned.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) write(status int, body response.Envelope) {
	response.Write(c.W, status, body)
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.write(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 envelope with data.
func (c *Context) Created(data any) {
	c.write(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 envelope with only a message.
func (c *Context) Message(msg string) {
	c.write(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: msg})
}

// Paginated sends items with pagination metadata.
func (c *Context) Paginated(items any, p orm.Pagination) {
	response.Paginated(c.W, items, p)
}

// Error sends an error envelope.
func (c *Context) Error(code int, message string) {
	c.write(code, response.Envelope{Status: code, Message: message})
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	response.ValidationError(c.W, errs)
}

// Fail maps a service error onto the response.
func (c *Context) Fail(err error) {
	response.Fail(c.W, c.R, err)
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}
