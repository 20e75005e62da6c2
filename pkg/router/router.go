// Package router is a thin chi wrapper that adds named routes, prefix groups
// with their own middleware, and a route table for the route:list command.
package router

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/krishi/pkg/response"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux   chi.Router
	table []RouteInfo
	mu    sync.RWMutex
}

type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return &Router{mux: mux}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodPost, path, name, handler, middlewares...)
}

func (r *Router) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodPut, path, name, handler, middlewares...)
}

func (r *Router) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodDelete, path, name, handler, middlewares...)
}

// Handle mounts a plain http.Handler (e.g. the metrics endpoint).
func (r *Router) Handle(method, path, name string, handler http.Handler) {
	r.record(method, normalizePath(path), name)
	r.mux.Method(method, normalizePath(path), handler)
}

// Routes returns every registered route sorted by path then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := append([]RouteInfo(nil), r.table...)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := normalizePath(path)
	h := chain(handler, middlewares...)
	r.mux.Method(method, fullPath, h)
	r.record(method, fullPath, name)
}

func (r *Router) record(method, fullPath, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, RouteInfo{Method: method, Path: fullPath, Name: name})
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	joined := joinPath(g.prefix, prefix)
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)

	return &Group{
		router:      g.router,
		prefix:      joined,
		middlewares: combined,
	}
}

func (g *Group) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (g *Group) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodPost, path, name, handler, middlewares...)
}

func (g *Group) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodPut, path, name, handler, middlewares...)
}

func (g *Group) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodDelete, path, name, handler, middlewares...)
}

func (g *Group) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := joinPath(g.prefix, path)
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)
	h := chain(handler, combined...)

	g.router.mux.Method(method, fullPath, h)
	g.router.record(method, fullPath, name)
}

func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func joinPath(parts ...string) string {
	if len(parts) == 0 {
		return "/"
	}

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, "/")
		if trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return joinPath(path)
}
