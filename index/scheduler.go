package index

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs named tasks after a delay. Scheduling a task under a name
// that already has one pending replaces the pending task. Each task is
// independently cancellable; Shutdown cancels all of them.
type Scheduler struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	tasks  map[string]*scheduledTask
	wg     sync.WaitGroup
	logger *slog.Logger
}

type scheduledTask struct {
	cancel context.CancelFunc
}

// NewScheduler returns a Scheduler whose tasks run until Shutdown.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*scheduledTask),
		logger: logger,
	}
}

// ScheduleLater runs task after delay under the given name.
func (s *Scheduler) ScheduleLater(delay time.Duration, name string, task func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tasks[name]; ok {
		prev.cancel()
	}

	tctx, cancel := context.WithCancel(s.ctx)
	st := &scheduledTask{cancel: cancel}
	s.tasks[name] = st

	s.logger.Debug("scheduled task", "name", name, "delay", delay)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-tctx.Done():
			s.remove(name, st)
			return
		case <-timer.C:
		}

		// The entry stays in the map while the task runs so Cancel and
		// CancelAll reach the in-flight context.
		task(tctx)
		s.remove(name, st)
	}()
}

// Contains reports whether a task is pending or running under the given
// name.
func (s *Scheduler) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Cancel stops the pending or running task under the given name, if any.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[name]; ok {
		st.cancel()
		delete(s.tasks, name)
	}
}

// CancelAll stops every pending and running task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, st := range s.tasks {
		st.cancel()
		delete(s.tasks, name)
	}
}

// Shutdown cancels every pending and running task and waits for their
// goroutines to exit.
func (s *Scheduler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// remove deletes the task entry if it still belongs to st. A newer task
// scheduled under the same name is left in place.
func (s *Scheduler) remove(name string, st *scheduledTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[name]; ok && cur == st {
		delete(s.tasks, name)
	}
}
