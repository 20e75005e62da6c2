package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Store. Expired keys are invisible to readers and
// reclaimed by Sweep.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

// SetClock replaces the time source. Tests only.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) Get(_ context.Context, key string, dest any) error {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || e.expired(m.now()) {
		return ErrMiss
	}
	return decode(e.value, dest)
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := encode(value)
	if err != nil {
		return err
	}
	e := entry{value: b}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	return ok && !e.expired(m.now()), nil
}

func (m *Memory) DelPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len is the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
