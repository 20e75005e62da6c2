package workerpool_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), func() {
		close(started)
		<-blocker
	}))
	<-started

	// buffer is 2× workers
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(blocker)
	pool.Shutdown()
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(context.Background(), func() {}), workerpool.ErrPoolClosed)
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	_ = pool.SubmitWait(context.Background(), func() { panic("bad task") })

	done := make(chan struct{})
	_ = pool.SubmitWait(context.Background(), func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestForEach_IsolatesFailures(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Shutdown()

	ids := []uint{1, 2, 3, 4, 5, 6}
	var ran atomic.Int32
	errs := workerpool.ForEach(context.Background(), pool, ids, func(_ context.Context, id uint) error {
		ran.Add(1)
		switch id {
		case 2:
			return errors.New("deleted")
		case 5:
			panic("corrupt row")
		}
		return nil
	})

	assert.Equal(t, int32(6), ran.Load())
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[2], "deleted")
	assert.Contains(t, errs[5].Error(), "corrupt row")
}

func TestForEach_CancelledContext(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = pool.SubmitWait(context.Background(), func() {
		close(started)
		<-block
	})
	<-started
	// fill the buffer so further submits must wait
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errs := workerpool.ForEach(ctx, pool, []string{"a", "b"}, func(context.Context, string) error { return nil })
	close(block)

	for _, k := range []string{"a", "b"} {
		assert.ErrorIs(t, errs[k], context.Canceled, fmt.Sprint(k))
	}
}
