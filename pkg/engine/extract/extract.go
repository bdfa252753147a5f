// Package extract turns intent-labeled messages into structured records.
//
// Every completion response crosses a single strict parse-or-fail boundary:
// the response must be a bare JSON object with the expected fields. A prose
// wrapper or markdown fencing is an extraction failure, logged and swallowed.
// The user never sees an error; the turn just carries no record.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mindkeep/mindkeep/pkg/model"
)

const goalPrompt = `You are a helpful assistant detecting goals or habits in messages.

If the message expresses a habit or goal the user wants to track (e.g. "Remind me to exercise" or "My goal is to sleep more"), return a JSON object like:
{ "type": "goal", "content": "sleep more" }

If the message is about a repeated behavior (e.g. "drink more water", "study every day"), use type "habit".

If it's not a goal or habit, return: { "type": null, "content": "" }

Message: %q`

const reminderPrompt = `You are a helper that extracts reminder instructions from user messages.
If the user asks for a reminder, return a JSON object like:
{ "remind_at": "2025-05-24T08:00:00Z", "content": "submit the form" }

If no reminder is found, return:
{ "remind_at": null, "content": "" }

User message: %q`

// GoalResult is a parsed goal/habit detection. Type is always "goal" or
// "habit"; the extractor's own type wins over the classifier's label.
type GoalResult struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ReminderResult is a parsed reminder instruction.
type ReminderResult struct {
	RemindAt time.Time
	Content  string
}

// Extractor runs completion-backed extraction and persists what it finds.
type Extractor struct {
	store     model.Store
	completer model.Completer
	logger    *slog.Logger
}

func New(store model.Store, completer model.Completer, logger *slog.Logger) *Extractor {
	return &Extractor{store: store, completer: completer, logger: logger}
}

// GoalOrHabit extracts and persists a goal/habit record. A nil result means
// nothing was extracted; the caller composes no confirmation for it.
func (e *Extractor) GoalOrHabit(ctx context.Context, userID, text string) *GoalResult {
	raw, err := e.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(goalPrompt, text),
		Temperature: 0.3,
	})
	if err != nil {
		e.logger.Warn("goal detection call failed", "err", err)
		return nil
	}

	var parsed struct {
		Type    *string `json:"type"`
		Content string  `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Warn("goal detection returned malformed JSON", "err", err)
		return nil
	}
	if parsed.Type == nil || parsed.Content == "" {
		return nil
	}
	if *parsed.Type != model.GoalTypeGoal && *parsed.Type != model.GoalTypeHabit {
		e.logger.Warn("goal detection returned unknown type", "type", *parsed.Type)
		return nil
	}

	goal := model.Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      *parsed.Type,
		Content:   parsed.Content,
		CreatedAt: time.Now(),
	}
	if err := e.store.InsertGoal(ctx, goal); err != nil {
		e.logger.Error("persist goal failed", "err", err)
		return nil
	}
	return &GoalResult{Type: goal.Type, Content: goal.Content}
}

// Reminder extracts and persists a reminder record. Extracted reminders are
// armed immediately: they are created with status active and flip to done
// only through explicit acknowledgment.
func (e *Extractor) Reminder(ctx context.Context, userID, text string) *ReminderResult {
	raw, err := e.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(reminderPrompt, text),
		Temperature: 0.3,
	})
	if err != nil {
		e.logger.Warn("reminder extraction call failed", "err", err)
		return nil
	}

	var parsed struct {
		RemindAt *string `json:"remind_at"`
		Content  string  `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Warn("reminder extraction returned malformed JSON", "err", err)
		return nil
	}
	if parsed.RemindAt == nil || parsed.Content == "" {
		return nil
	}
	at, err := time.Parse(time.RFC3339, *parsed.RemindAt)
	if err != nil {
		e.logger.Warn("reminder extraction returned bad timestamp", "remind_at", *parsed.RemindAt, "err", err)
		return nil
	}

	reminder := model.Reminder{
		ID:       uuid.NewString(),
		UserID:   userID,
		Content:  parsed.Content,
		RemindAt: at,
		Status:   model.ReminderActive,
	}
	if err := e.store.InsertReminder(ctx, reminder); err != nil {
		e.logger.Error("persist reminder failed", "err", err)
		return nil
	}
	return &ReminderResult{RemindAt: at, Content: parsed.Content}
}
