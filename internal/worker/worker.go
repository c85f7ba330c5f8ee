// Package worker runs the service's background housekeeping: periodic jobs
// such as list cache refresh and rate limiter cleanup.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type JobFunc func(ctx context.Context) error

type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run; zero means 30s.
	Timeout time.Duration
	// RunAtStart runs the job once before the first tick.
	RunAtStart bool
	Run        JobFunc
}

// Scheduler runs each registered job on its own goroutine until Stop. A
// failing run is logged and retried on the next tick.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	logger  *slog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger.With("component", "worker")}
}

func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job requires a name and a run func")
	}
	if job.Interval <= 0 && !job.RunAtStart {
		return fmt.Errorf("job %s has neither an interval nor RunAtStart", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("cannot register job %s after start", job.Name)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("starting scheduler", "jobs", len(s.jobs))

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
}

// Stop cancels every job and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunAtStart {
		s.execute(ctx, job)
	}
	if job.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Warn("job failed", "job", job.Name, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Debug("job completed", "job", job.Name, "duration", time.Since(start))
}
