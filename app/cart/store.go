package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/cache"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 7 * 24 * time.Hour

// Store keeps carts in the cache, one key per customer.
type Store struct {
	cache cache.Store
	ttl   time.Duration
}

// NewStore keeps carts in c for ttl after the last write.
func NewStore(c cache.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, ttl: ttl}
}

func key(customerID uint) string { return fmt.Sprintf("krishi:cart:%d", customerID) }

// Load returns the customer's cart, empty when there is none.
func (s *Store) Load(ctx context.Context, customerID uint) (*Cart, error) {
	c := New(customerID)
	err := s.cache.Get(ctx, key(customerID), c)
	if errors.Is(err, cache.ErrMiss) {
		return New(customerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return c, nil
}

// Save writes c, deleting the key when c is empty.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	if c.Empty() {
		return s.Clear(ctx, c.CustomerID)
	}
	if err := s.cache.Set(ctx, key(c.CustomerID), c, s.ttl); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear removes the customer's cart. Clearing a missing cart succeeds.
func (s *Store) Clear(ctx context.Context, customerID uint) error {
	if err := s.cache.Del(ctx, key(customerID)); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
