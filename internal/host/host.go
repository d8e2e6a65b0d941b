// Package host declares the capabilities a host application lends to the
// extension. Every capability except the query executor is optional.
package host

import (
	"context"
	"time"
)

// MisfirePolicy tells a scheduler what to do with a job whose fire time
// passed before it could run.
type MisfirePolicy string

// MisfireRunOnce runs an overdue job a single time, immediately.
const MisfireRunOnce MisfirePolicy = "run_once"

// FirePayload is attached to every reminder job and handed back on fire.
type FirePayload struct {
	TodoID      string    `json:"todoId"`
	UserID      string    `json:"userId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// Job is a one-shot scheduled callback. Scheduling a Job whose ID is
// already pending replaces it.
type Job struct {
	ID            string
	FireAt        time.Time
	Payload       FirePayload
	MisfirePolicy MisfirePolicy
	UserID        string
}

// ExecutionContext describes one firing of a job.
type ExecutionContext struct {
	JobID       string
	UserID      string
	ScheduledAt time.Time
	FiredAt     time.Time
}

// FireFunc receives fired jobs.
type FireFunc func(ctx context.Context, payload FirePayload, ec ExecutionContext)

// Subscription is returned by listener registrations.
type Subscription interface {
	Dispose()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Dispose() { f() }

// Scheduler runs jobs at their fire time.
type Scheduler interface {
	Schedule(ctx context.Context, job Job) error
	Cancel(ctx context.Context, jobID string) error
	OnFire(fn FireFunc) Subscription
}

// Instruction is a message appended to the host's conversational surface.
type Instruction struct {
	Text           string
	ConversationID string
	UserID         string
}

// Chat delivers instructions to the conversational surface.
type Chat interface {
	AppendInstruction(ctx context.Context, in Instruction) error
}

// UserProfile holds what the host knows about a user. Every field may be
// empty.
type UserProfile struct {
	FirstName string `json:"firstName,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// DisplayName returns the nickname, else the first name.
func (p UserProfile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.FirstName
}

// Profiles looks up user profiles.
type Profiles interface {
	Profile(ctx context.Context, userID string) (UserProfile, error)
}

// Events broadcasts best-effort notifications.
type Events interface {
	Emit(ctx context.Context, name string, payload any) error
}
