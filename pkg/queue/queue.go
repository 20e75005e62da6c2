// Package queue runs background jobs through a pluggable driver (memory or
// Redis) with retries and a failed-jobs table.
//
//	q := queue.New(queue.NewMemoryDriver())
//	q.Register(jobs.NotificationName, func() queue.Job { return &jobs.Notification{} })
//	q.Dispatch(ctx, &jobs.Notification{Recipients: []uint{7}, Subject: "New order"})
//	q.Work(ctx, 2)
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
)

// Job is one unit of background work. Name must match the name it was
// registered under.
type Job interface {
	Name() string
	Handle(ctx context.Context) error
}

// Driver is the queue storage backend. Pop returns (nil, nil) when it timed
// out without a job.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// FailedJob is a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

// FailedStore persists failed jobs. See GormFailedStore.
type FailedStore interface {
	Save(ctx context.Context, f FailedJob) error
}

// Manager dispatches and runs jobs.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	store    FailedStore
	maxTries int
	backoff  time.Duration
	wg       sync.WaitGroup
}

// New returns a manager over driver with 3 attempts and a 1s linear backoff.
func New(driver Driver) *Manager {
	return &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxTries: 3,
		backoff:  time.Second,
	}
}

// SetRetry configures attempts per job and the linear backoff step.
func (m *Manager) SetRetry(attempts int, backoff time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxTries = max(attempts, 1)
	m.backoff = backoff
}

// UseFailedStore persists exhausted jobs to s in addition to memory.
func (m *Manager) UseFailedStore(s FailedStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// Register makes a job type available for decoding by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// ------------------- Dispatch -------------------

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}
	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	if err := m.driver.Push(ctx, env); err != nil {
		return fmt.Errorf("queue: push %s: %w", job.Name(), err)
	}
	return nil
}

// ------------------- Worker -------------------

// Work starts n workers that run until ctx is cancelled. Wait blocks until
// they have stopped.
func (m *Manager) Work(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
}

// Wait blocks until all workers have returned.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw != nil {
			m.Process(ctx, raw)
		}
	}
}

// Process decodes and runs one raw envelope. Exposed for synchronous use in
// tests and the queue:work --once flag.
func (m *Manager) Process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}
	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	m.mu.RLock()
	tries, backoff := m.maxTries, m.backoff
	m.mu.RUnlock()

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		lastErr = job.Handle(ctx)
		if lastErr == nil {
			metrics.RecordQueueJob(env.Type, "success", start)
			logger.Debug("queue: job processed", "type", env.Type)
			return
		}
		if errors.Is(lastErr, context.Canceled) {
			break
		}
		logger.Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < tries {
			sleep(ctx, time.Duration(attempt)*backoff)
		}
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	m.persistFailed(ctx, FailedJob{
		Type: env.Type, Payload: env.Payload, Err: lastErr, FailedAt: time.Now(), Attempts: tries,
	})
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

func (m *Manager) persistFailed(ctx context.Context, f FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, f)
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}
	if err := store.Save(context.WithoutCancel(ctx), f); err != nil {
		logger.Error("queue: persist failed job", "type", f.Type, "error", err)
	}
}

// FailedJobs returns a snapshot of the jobs that failed in this process.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
