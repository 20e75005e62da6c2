// Package event is a small in-process event bus. Services fire domain events
// after a successful commit; listeners registered at boot react to them.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Domain event names.
const (
	UserRegistered      = "user.registered"
	FarmerStatusChanged = "farmer.status_changed"
	ListingModerated    = "listing.moderated"
	OrderPlaced         = "order.placed"
	OrderStatusChanged  = "order.status_changed"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Bus routes events to listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Fire dispatches synchronously. A panicking listener is logged and does not
// stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	for _, h := range b.snapshot(name) {
		call(ctx, name, h, payload)
	}
}

// FireAsync dispatches each listener on its own goroutine. The request
// context's cancellation is dropped so listeners outlive the response.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range b.snapshot(name) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			call(ctx, name, h, payload)
		}(h)
	}
}

// Wait blocks until every async listener has returned.
func (b *Bus) Wait() { b.wg.Wait() }

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", rec)
		}
	}()
	h(ctx, payload)
}
