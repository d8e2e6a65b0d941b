package extension

import (
	"context"
	"errors"
	"sync"

	"github.com/nhle/todo-extension/internal/host"
)

type fakeScheduler struct {
	mu        sync.Mutex
	jobs      map[string]host.Job
	cancelled []string
	listener  host.FireFunc
	err       error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]host.Job{}}
}

func (s *fakeScheduler) Schedule(_ context.Context, job host.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeScheduler) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *fakeScheduler) OnFire(fn host.FireFunc) host.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
	return host.SubscriptionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listener = nil
	})
}

func (s *fakeScheduler) job(id string) (host.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// fire runs the listener for a pending job the way a scheduler would.
func (s *fakeScheduler) fire(ctx context.Context, id string, ec host.ExecutionContext) bool {
	s.mu.Lock()
	job, ok := s.jobs[id]
	fn := s.listener
	delete(s.jobs, id)
	s.mu.Unlock()
	if !ok || fn == nil {
		return false
	}
	ec.JobID = id
	ec.UserID = job.UserID
	ec.ScheduledAt = job.FireAt
	fn(ctx, job.Payload, ec)
	return true
}

type fakeChat struct {
	mu   sync.Mutex
	sent []host.Instruction
	err  error
}

func (c *fakeChat) AppendInstruction(_ context.Context, in host.Instruction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, in)
	return nil
}

type emitted struct {
	name    string
	payload any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (e *fakeEvents) Emit(_ context.Context, name string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{name: name, payload: payload})
	return e.err
}

func (e *fakeEvents) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.name)
	}
	return out
}

type fakeProfiles map[string]host.UserProfile

func (p fakeProfiles) Profile(_ context.Context, userID string) (host.UserProfile, error) {
	profile, ok := p[userID]
	if !ok {
		return host.UserProfile{}, errors.New("no profile")
	}
	return profile, nil
}

type fakeRegistrar struct {
	mu       sync.Mutex
	tools    map[string]host.Descriptor
	actions  map[string]host.Descriptor
	failOn   string
	disposed int
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{tools: map[string]host.Descriptor{}, actions: map[string]host.Descriptor{}}
}

type disposeFunc func() error

func (f disposeFunc) Dispose() error { return f() }

func (r *fakeRegistrar) add(into map[string]host.Descriptor, d host.Descriptor) (host.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == r.failOn {
		return nil, errors.New("registry full")
	}
	into[d.ID] = d
	return disposeFunc(func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(into, d.ID)
		r.disposed++
		return nil
	}), nil
}

func (r *fakeRegistrar) Register(d host.Descriptor) (host.Registration, error) {
	return r.add(r.tools, d)
}

func (r *fakeRegistrar) RegisterAction(d host.Descriptor) (host.Registration, error) {
	return r.add(r.actions, d)
}

// toolsOnly hides RegisterAction.
type toolsOnly struct{ r *fakeRegistrar }

func (t toolsOnly) Register(d host.Descriptor) (host.Registration, error) { return t.r.Register(d) }
