package model

import (
	"context"
	"time"
)

// Sender identifies which side of the conversation authored a message.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one chat turn. Immutable once stored, except assistant
// messages whose text may be corrected in place.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Tags      []string  `json:"tags,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Goal record types.
const (
	GoalTypeGoal  = "goal"
	GoalTypeHabit = "habit"
)

// Goal mirrors goals rows. Append-only, never mutated.
type Goal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder statuses.
const (
	ReminderActive = "active"
	ReminderDone   = "done"
)

// Reminder mirrors reminders rows. Never deleted, only status-flipped.
type Reminder struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Content  string    `json:"content"`
	RemindAt time.Time `json:"remind_at"`
	Status   string    `json:"status"`
}

// MemorySummary is one immutable consolidation snapshot. Every summarizer
// run inserts a new row; the latest per user is the current summary.
type MemorySummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Summary   string    `json:"summary"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// ManualMemory is a user-authored entry managed outside the chat flow.
type ManualMemory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence collaborator. Every row is scoped by user_id;
// no operation crosses users.
type Store interface {
	InsertMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, userID string) ([]Message, error)
	RecentMessages(ctx context.Context, userID string, limit int) ([]Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	UpdateMessageText(ctx context.Context, id, text string) error

	InsertGoal(ctx context.Context, g Goal) error
	ListGoals(ctx context.Context, userID string) ([]Goal, error)

	InsertReminder(ctx context.Context, r Reminder) error
	ListReminders(ctx context.Context, userID string) ([]Reminder, error)
	DueReminders(ctx context.Context, userID string, now time.Time) ([]Reminder, error)
	MarkReminderDone(ctx context.Context, id string) error

	InsertSummary(ctx context.Context, s MemorySummary) error
	LatestSummary(ctx context.Context, userID string) (*MemorySummary, error)
	ListSummaries(ctx context.Context, userID string) ([]MemorySummary, error)

	InsertManualMemory(ctx context.Context, m ManualMemory) error
	ListManualMemories(ctx context.Context, userID string, limit int) ([]ManualMemory, error)
	UpdateManualMemory(ctx context.Context, id, content string, tags []string) error
	DeleteManualMemory(ctx context.Context, id string) error
}

// CompletionRequest carries a prompt and sampling parameters to the
// text-completion service.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Completer is the text-completion collaborator. Implementations return the
// completion's entire content as a single string.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
