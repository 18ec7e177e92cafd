package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scorelinehq/scoreline/internal/platform/logging"
)

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	s := New(logging.NewNop())
	if err := s.Register(Job{Name: "", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := s.Register(Job{Name: "no-run"}); err == nil {
		t.Fatal("expected error for missing run function")
	}
	if err := s.Register(Job{Name: "dup", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Register(Job{Name: "dup", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestRunNow_ExecutesOnDemandJob(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name: "on-demand",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.RunNow(context.Background(), "on-demand"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("unexpected run count: got=%d want=1", got)
	}

	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unregistered job")
	}
}

func TestRunNow_RejectsOverlappingRun(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name: "slow",
		Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background(), "slow") }()
	<-started

	if err := s.RunNow(context.Background(), "slow"); err == nil {
		t.Fatal("expected overlap rejection while job is running")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestExecute_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name:       "flaky",
		MaxRetries: 3,
		Backoff:    func(int) time.Duration { return time.Millisecond },
		Run: func(context.Context) error {
			if runs.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.RunNow(context.Background(), "flaky"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := runs.Load(); got != 3 {
		t.Fatalf("unexpected attempt count: got=%d want=3", got)
	}
}

func TestExecute_StopsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name:       "doomed",
		MaxRetries: 2,
		Backoff:    func(int) time.Duration { return time.Millisecond },
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("permanent")
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.RunNow(context.Background(), "doomed"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := runs.Load(); got != 3 {
		t.Fatalf("expected initial run plus two retries: got=%d", got)
	}
}

func TestRunOnce_TimeoutCancelsJobContext(t *testing.T) {
	t.Parallel()

	s := New(logging.NewNop())
	err := s.Register(Job{
		Name:    "budgeted",
		Timeout: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
				return fmt.Errorf("timeout never fired")
			}
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background(), "budgeted") }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run now: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe its timeout")
	}
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name: "panicky",
		Run: func(context.Context) error {
			runs.Add(1)
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// A panic is converted to a run failure, never a crash.
	if err := s.RunNow(context.Background(), "panicky"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("unexpected run count: got=%d", got)
	}
}

func TestStartAndStop_RecurringJobTicks(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := New(logging.NewNop())
	err := s.Register(Job{
		Name:  "ticker",
		Every: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected second start to fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if got := runs.Load(); got < 2 {
		t.Fatalf("recurring job should have ticked at least twice, got=%d", got)
	}

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != after {
		t.Fatal("job kept running after Stop")
	}
}

func TestRegister_AfterStartFails(t *testing.T) {
	t.Parallel()

	s := New(logging.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	err := s.Register(Job{Name: "late", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected registration after start to fail")
	}
}
