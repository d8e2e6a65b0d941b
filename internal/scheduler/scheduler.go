// Package scheduler is an in-process implementation of host.Scheduler used
// when the extension runs outside a host.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
)

// ErrStopped is returned by Schedule after Stop.
var ErrStopped = errors.New("scheduler stopped")

// entry is a pending job and the timer that fires it.
type entry struct {
	job   host.Job
	timer *time.Timer
}

// Scheduler runs one-shot jobs on timers. Scheduling an id that is already
// pending replaces the earlier job. Fired jobs are forgotten.
type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	jobs      map[string]*entry
	listeners map[int]host.FireFunc
	nextID    int
	stopped   bool
	inflight  sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used to detect misfires.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler.
func New(logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		logger:    logger.Named("scheduler"),
		now:       time.Now,
		jobs:      make(map[string]*entry),
		listeners: make(map[int]host.FireFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms job, replacing any pending job with the same id. A job
// whose fire time has passed runs immediately when its misfire policy is
// run_once and is dropped otherwise.
func (s *Scheduler) Schedule(_ context.Context, job host.Job) error {
	if job.ID == "" {
		return fmt.Errorf("scheduling job: empty id")
	}
	if job.MisfirePolicy == "" {
		job.MisfirePolicy = host.MisfireRunOnce
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if prev, ok := s.jobs[job.ID]; ok {
		prev.timer.Stop()
		delete(s.jobs, job.ID)
	}

	delay := job.FireAt.Sub(s.now())
	if delay < 0 {
		if job.MisfirePolicy != host.MisfireRunOnce {
			s.logger.Warn("dropping overdue job",
				zap.String("job_id", job.ID),
				zap.String("misfire_policy", string(job.MisfirePolicy)))
			return nil
		}
		delay = 0
	}

	e := &entry{job: job}
	e.timer = time.AfterFunc(delay, func() { s.fire(e) })
	s.jobs[job.ID] = e

	s.logger.Debug("job scheduled",
		zap.String("job_id", job.ID),
		zap.Time("fire_at", job.FireAt))
	return nil
}

// Cancel removes a pending job. Cancelling an unknown id is not an error.
func (s *Scheduler) Cancel(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.jobs[jobID]; ok {
		e.timer.Stop()
		delete(s.jobs, jobID)
		s.logger.Debug("job cancelled", zap.String("job_id", jobID))
	}
	return nil
}

// OnFire registers fn to receive every fired job.
func (s *Scheduler) OnFire(fn host.FireFunc) host.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return host.SubscriptionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	})
}

// Pending returns the pending jobs ordered by fire time.
func (s *Scheduler) Pending() []host.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]host.Job, 0, len(s.jobs))
	for _, e := range s.jobs {
		jobs = append(jobs, e.job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].FireAt.Equal(jobs[j].FireAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].FireAt.Before(jobs[j].FireAt)
	})
	return jobs
}

// Stop cancels every pending job and waits for running callbacks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, e := range s.jobs {
		e.timer.Stop()
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	// A replaced or cancelled job may still see its timer fire.
	if current, ok := s.jobs[e.job.ID]; !ok || current != e || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, e.job.ID)
	listeners := make([]host.FireFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ec := host.ExecutionContext{
		JobID:       e.job.ID,
		UserID:      e.job.UserID,
		ScheduledAt: e.job.FireAt,
		FiredAt:     s.now(),
	}
	ctx := context.Background()
	if e.job.UserID != "" {
		ctx = host.WithUserID(ctx, e.job.UserID)
	}

	s.logger.Debug("job fired", zap.String("job_id", e.job.ID))
	for _, fn := range listeners {
		s.invoke(ctx, fn, e.job.Payload, ec)
	}
}

func (s *Scheduler) invoke(ctx context.Context, fn host.FireFunc, payload host.FirePayload, ec host.ExecutionContext) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("fire listener panicked",
				zap.String("job_id", ec.JobID),
				zap.Any("panic", r))
		}
	}()
	fn(ctx, payload, ec)
}
