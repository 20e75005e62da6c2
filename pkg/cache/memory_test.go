package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.SetClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "cart:7", map[string]int{"3": 2}, time.Minute))

	var got map[string]int
	require.NoError(t, m.Get(ctx, "cart:7", &got))
	assert.Equal(t, 2, got["3"])

	now = now.Add(time.Minute)
	assert.True(t, errors.Is(m.Get(ctx, "cart:7", &got), ErrMiss))
	ok, _ := m.Exists(ctx, "cart:7")
	assert.False(t, ok)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", "v", 0))
	m.SetClock(func() time.Time { return time.Now().Add(1000 * time.Hour) })
	ok, _ := m.Exists(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryDelPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "catalogue:all", 1, 0)
	_ = m.Set(ctx, "catalogue:5", 1, 0)
	_ = m.Set(ctx, "cart:5", 1, 0)

	require.NoError(t, m.DelPrefix(ctx, "catalogue:"))
	assert.Equal(t, 1, m.Len())
	ok, _ := m.Exists(ctx, "cart:5")
	assert.True(t, ok)
}

func TestRememberLoadsOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	load := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"wheat", "rice"}
			return nil
		}
	}

	var first, second []string
	require.NoError(t, Remember(ctx, m, "catalogue:all", time.Minute, &first, load(&first)))
	require.NoError(t, Remember(ctx, m, "catalogue:all", time.Minute, &second, load(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"wheat", "rice"}, second)
}
