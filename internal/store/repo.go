package store

import (
	"context"
	"time"

	"github.com/aischool/aischool/internal/progression"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	After   int64  // sequence > After
	Purpose string // exact purpose match, LLM events only
}

// UserRepo persists learner records keyed by ID.
type UserRepo interface {
	// Get returns the record with id. Missing records return ErrNotFound.
	// Undecodable ones return ErrCorrupt together with a default record
	// that keeps the stored id and e-mail.
	Get(ctx context.Context, id string) (progression.Progress, error)

	// GetByEmail looks a record up by e-mail, case-insensitively.
	GetByEmail(ctx context.Context, email string) (progression.Progress, error)

	// Save inserts or replaces the record.
	Save(ctx context.Context, p progression.Progress) error

	// List returns all decodable records ordered by ID.
	List(ctx context.Context) ([]progression.Progress, error)

	Count(ctx context.Context) (int, error)
}

// SessionRepo tracks which user is signed in on this machine.
type SessionRepo interface {
	SetActive(ctx context.Context, userID string) error
	// ActiveID returns ErrNotFound when nobody is signed in.
	ActiveID(ctx context.Context) (string, error)
	ClearActive(ctx context.Context) error
}

// EventKind names a learner event.
type EventKind string

const (
	EventQuizCompleted     EventKind = "quiz_completed"
	EventAssistantQuestion EventKind = "assistant_question"
	EventBadgeAwarded      EventKind = "badge_awarded"
	EventRecommendation    EventKind = "recommendation"
	EventProgressReset     EventKind = "progress_reset"
)

// Event is one append-only entry in a learner's activity log.
type Event struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	UserID    string
	Kind      EventKind
	// Ref is the assignment ID, badge key or subject the event refers to.
	Ref    string
	Score  int
	Total  int
	Detail string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to learner and LLM events.
type EventRepo interface {
	// Append stores e with the next global sequence. A zero timestamp is
	// replaced with the current time. The stored event is returned.
	Append(ctx context.Context, e Event) (Event, error)

	// History returns the user's events after their most recent
	// progress_reset, oldest first.
	History(ctx context.Context, userID string) ([]Event, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
