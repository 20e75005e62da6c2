// Package schedule runs periodic maintenance tasks on robfig/cron.
//
//	s := schedule.New()
//	s.Add("carts:sweep", "@every 5m", sweeper.Run)
//	s.Start(ctx) // stops when ctx is cancelled
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Task is a scheduled unit of work.
type Task func(ctx context.Context) error

// cronLogger adapts pkg/logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) { logger.Debug("schedule: "+msg, kv...) }
func (cronLogger) Error(err error, msg string, kv ...any) {
	logger.Error("schedule: "+msg, append(kv, "error", err)...)
}

// Scheduler owns a cron instance and the names of its entries.
type Scheduler struct {
	c     *cron.Cron
	mu    sync.Mutex
	names map[string]string // name → spec
	ctx   context.Context
}

// New returns a scheduler that skips a run while the previous one is still
// going and recovers panicking tasks.
func New() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		names: map[string]string{},
		ctx:   context.Background(),
	}
}

// Add registers task under name with a cron spec ("*/5 * * * *",
// "@every 1m", "@hourly").
func (s *Scheduler) Add(name, spec string, task Task) error {
	_, err := s.c.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if err := task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule: add %s (%s): %w", name, spec, err)
	}
	s.mu.Lock()
	s.names[name] = spec
	s.mu.Unlock()
	return nil
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// tasks to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.c.Start()
	logger.Info("schedule: started", "tasks", len(s.List()))
	go func() {
		<-ctx.Done()
		<-s.c.Stop().Done()
		logger.Info("schedule: stopped")
	}()
}

// List returns "name [spec]" for every registered task, sorted by name.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.names))
	for name, spec := range s.names {
		out = append(out, fmt.Sprintf("%s  [%s]", name, spec))
	}
	sort.Strings(out)
	return out
}
