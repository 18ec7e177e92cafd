// Package scheduler runs recurring and ad-hoc sync jobs. One execution
// slot per job: an overdue tick firing while the previous run is still
// executing is dropped, different jobs run concurrently.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/platform/resilience"
)

// Job is one registered unit of recurring work. Every <= 0 registers an
// on-demand job that only runs through RunNow.
type Job struct {
	Name       string
	Every      time.Duration
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Timeout    time.Duration
	Run        func(ctx context.Context) error
}

type registeredJob struct {
	job     Job
	running atomic.Bool
}

type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*registeredJob
	order   []string
	logger  *logging.Logger
	started atomic.Bool
	cancel  context.CancelFunc
	done    conc.WaitGroup
}

func New(logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		jobs:   make(map[string]*registeredJob),
		logger: logger,
	}
}

func (s *Scheduler) Register(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	if job.MaxRetries < 0 {
		job.MaxRetries = 0
	}
	if job.Backoff == nil {
		job.Backoff = resilience.LinearBackoff(time.Second)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return fmt.Errorf("scheduler already started")
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	s.jobs[job.Name] = &registeredJob{job: job}
	s.order = append(s.order, job.Name)

	return nil
}

// Start launches one ticker goroutine per recurring job. It returns
// immediately; Stop waits for in-flight runs.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("scheduler already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.order {
		reg := s.jobs[name]
		if reg.job.Every <= 0 {
			continue
		}
		s.done.Go(func() { s.runLoop(ctx, reg) })
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.done.Wait()
}

// RunNow triggers one job immediately. It returns without waiting for
// the run when the job is already executing.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	reg, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s is not registered", name)
	}

	if !reg.running.CompareAndSwap(false, true) {
		return fmt.Errorf("job %s is already running", name)
	}
	defer reg.running.Store(false)

	s.execute(ctx, reg.job)
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context, reg *registeredJob) {
	ticker := time.NewTicker(reg.job.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !reg.running.CompareAndSwap(false, true) {
				s.logger.Warn("job tick dropped, previous run still executing", "job", reg.job.Name)
				continue
			}
			s.execute(ctx, reg.job)
			reg.running.Store(false)
		}
	}
}

// execute runs one job invocation inside its time budget, retrying
// whole-run failures up to MaxRetries with backoff.
func (s *Scheduler) execute(ctx context.Context, job Job) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := s.runOnce(ctx, job)
		if err == nil {
			s.logger.Info("job run complete",
				"job", job.Name, "attempt", attempt, "duration_ms", time.Since(start).Milliseconds())
			return
		}

		s.logger.Error("job run failed",
			"job", job.Name, "attempt", attempt, "max_retries", job.MaxRetries, "error", err)
		if attempt > job.MaxRetries || ctx.Err() != nil {
			return
		}

		timer := time.NewTimer(job.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) (err error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return job.Run(ctx)
}
