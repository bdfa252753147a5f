package extract

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindkeep/mindkeep/pkg/model"
	"github.com/mindkeep/mindkeep/pkg/store/sqlite"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ model.CompletionRequest) (string, error) {
	return f.response, f.err
}

func newExtractor(t *testing.T, response string, err error) (*Extractor, *sqlite.Database) {
	t.Helper()
	db, dbErr := sqlite.New(context.Background(), sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, dbErr)
	t.Cleanup(func() { db.Close() })
	return New(db, &fakeCompleter{response: response, err: err}, slog.Default()), db
}

func TestGoalOrHabitPersistsRecord(t *testing.T) {
	ctx := context.Background()
	e, db := newExtractor(t, `{ "type": "goal", "content": "sleep more" }`, nil)

	got := e.GoalOrHabit(ctx, "u1", "My goal is to sleep more")
	require.NotNil(t, got)
	assert.Equal(t, "goal", got.Type)
	assert.Equal(t, "sleep more", got.Content)

	goals, err := db.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, model.GoalTypeGoal, goals[0].Type)
	assert.Equal(t, "sleep more", goals[0].Content)
}

func TestGoalOrHabitExtractorTypeWins(t *testing.T) {
	// The classifier may have said "goal"; the extractor's own type decides
	// what is stored and how the confirmation reads.
	ctx := context.Background()
	e, db := newExtractor(t, `{ "type": "habit", "content": "drink more water" }`, nil)

	got := e.GoalOrHabit(ctx, "u1", "I should drink more water")
	require.NotNil(t, got)
	assert.Equal(t, "habit", got.Type)

	goals, err := db.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, model.GoalTypeHabit, goals[0].Type)
}

func TestGoalOrHabitFailuresAreSilent(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "transport failure", err: errors.New("boom")},
		{name: "malformed JSON", response: "not json"},
		{name: "markdown fencing is not stripped", response: "```json\n{\"type\":\"goal\",\"content\":\"x\"}\n```"},
		{name: "null type", response: `{ "type": null, "content": "" }`},
		{name: "empty content", response: `{ "type": "goal", "content": "" }`},
		{name: "unknown type", response: `{ "type": "dream", "content": "fly" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, db := newExtractor(t, tt.response, tt.err)
			assert.Nil(t, e.GoalOrHabit(ctx, "u1", "whatever"))
			goals, err := db.ListGoals(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, goals)
		})
	}
}

func TestReminderPersistsActiveRecord(t *testing.T) {
	ctx := context.Background()
	e, db := newExtractor(t, `{ "remind_at": "2025-05-24T08:00:00Z", "content": "submit the form" }`, nil)

	got := e.Reminder(ctx, "u1", "Remind me to submit the form tomorrow at 8am")
	require.NotNil(t, got)
	assert.Equal(t, "submit the form", got.Content)
	assert.True(t, got.RemindAt.Equal(time.Date(2025, 5, 24, 8, 0, 0, 0, time.UTC)))

	reminders, err := db.ListReminders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, model.ReminderActive, reminders[0].Status, "extracted reminders are armed immediately")
}

func TestReminderFailuresAreSilent(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "transport failure", err: errors.New("boom")},
		{name: "malformed JSON", response: "sure, here you go"},
		{name: "null remind_at", response: `{ "remind_at": null, "content": "" }`},
		{name: "empty content", response: `{ "remind_at": "2025-05-24T08:00:00Z", "content": "" }`},
		{name: "bad timestamp", response: `{ "remind_at": "tomorrow", "content": "submit" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, db := newExtractor(t, tt.response, tt.err)
			assert.Nil(t, e.Reminder(ctx, "u1", "whatever"))
			reminders, err := db.ListReminders(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, reminders)
		})
	}
}
