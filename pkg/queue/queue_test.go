package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/pkg/queue"
)

var handled atomic.Int32

type echoJob struct {
	Val string `json:"val"`
}

func (*echoJob) Name() string { return "test.echo" }

func (j *echoJob) Handle(context.Context) error {
	if j.Val == "" {
		return errors.New("empty payload")
	}
	handled.Add(1)
	return nil
}

type failJob struct{}

func (failJob) Name() string                 { return "test.fail" }
func (failJob) Handle(context.Context) error { return errors.New("always fails") }

func newManager() (*queue.Manager, *queue.MemoryDriver) {
	d := queue.NewMemoryDriver()
	m := queue.New(d)
	m.SetRetry(2, 0)
	m.Register("test.echo", func() queue.Job { return &echoJob{} })
	m.Register("test.fail", func() queue.Job { return &failJob{} })
	return m, d
}

func TestDispatchAndWork(t *testing.T) {
	handled.Store(0)
	m, _ := newManager()
	ctx, cancel := context.WithCancel(context.Background())
	m.Work(ctx, 2)

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Dispatch(ctx, &echoJob{Val: "hi"}))
	}
	assert.Eventually(t, func() bool { return handled.Load() == 10 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	m.Wait()
	assert.Empty(t, m.FailedJobs())
}

func TestFailedJobIsPersisted(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:queue_failed?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&queue.FailedJobRecord{}))

	m, d := newManager()
	m.UseFailedStore(queue.NewGormFailedStore(db))

	ctx := context.Background()
	require.NoError(t, m.Dispatch(ctx, failJob{}))
	raw, err := d.Pop(ctx)
	require.NoError(t, err)
	m.Process(ctx, raw)

	failed := m.FailedJobs()
	require.Len(t, failed, 1)
	assert.Equal(t, "test.fail", failed[0].Type)
	assert.Equal(t, 2, failed[0].Attempts)

	var rec queue.FailedJobRecord
	require.NoError(t, db.First(&rec).Error)
	assert.Equal(t, "always fails", rec.Error)
}

func TestUnregisteredJobIsDropped(t *testing.T) {
	m := queue.New(queue.NewMemoryDriver())
	m.Process(context.Background(), []byte(`{"type":"nope","payload":{}}`))
	assert.Empty(t, m.FailedJobs())
}
