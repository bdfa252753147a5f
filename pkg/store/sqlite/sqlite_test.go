package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindkeep/mindkeep/pkg/model"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertMessage(t *testing.T, db *Database, userID, sender, text string, at time.Time) model.Message {
	t.Helper()
	m := model.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		Timestamp: at,
	}
	require.NoError(t, db.InsertMessage(context.Background(), m))
	return m
}

func TestMessagesOrderedByTimestamp(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	insertMessage(t, db, "u1", model.SenderUser, "second", base.Add(time.Minute))
	insertMessage(t, db, "u1", model.SenderAssistant, "third", base.Add(2*time.Minute))
	insertMessage(t, db, "u1", model.SenderUser, "first", base)
	insertMessage(t, db, "u2", model.SenderUser, "other user", base)

	msgs, err := db.ListMessages(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, "third", msgs[2].Text)

	recent, err := db.RecentMessages(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Text)
	assert.Equal(t, "second", recent[1].Text)
}

func TestMessageTagsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	m := model.Message{
		ID:        uuid.NewString(),
		UserID:    "u1",
		Sender:    model.SenderUser,
		Text:      "call mom",
		Tags:      []string{"task", "family"},
		Timestamp: time.Now(),
	}
	require.NoError(t, db.InsertMessage(ctx, m))

	got, err := db.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"task", "family"}, got.Tags)
}

func TestUpdateMessageTextKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	m := insertMessage(t, db, "u1", model.SenderAssistant, "original", at)

	require.NoError(t, db.UpdateMessageText(ctx, m.ID, "corrected"))

	got, err := db.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "corrected", got.Text)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, model.SenderAssistant, got.Sender)
	assert.True(t, got.Timestamp.Equal(at))

	assert.Error(t, db.UpdateMessageText(ctx, "missing", "text"))
}

func TestGetMessageMissing(t *testing.T) {
	db := newTestDB(t)
	got, err := db.GetMessage(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGoalsCreationOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertGoal(ctx, model.Goal{ID: uuid.NewString(), UserID: "u1", Type: model.GoalTypeGoal, Content: "sleep more", CreatedAt: base}))
	require.NoError(t, db.InsertGoal(ctx, model.Goal{ID: uuid.NewString(), UserID: "u1", Type: model.GoalTypeHabit, Content: "drink water", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, db.InsertGoal(ctx, model.Goal{ID: uuid.NewString(), UserID: "u2", Type: model.GoalTypeGoal, Content: "not yours", CreatedAt: base}))

	goals, err := db.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "sleep more", goals[0].Content)
	assert.Equal(t, model.GoalTypeHabit, goals[1].Type)
}

func TestRemindersLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	now := time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)

	past := model.Reminder{ID: uuid.NewString(), UserID: "u1", Content: "submit the form", RemindAt: now.Add(-time.Hour), Status: model.ReminderActive}
	future := model.Reminder{ID: uuid.NewString(), UserID: "u1", Content: "water plants", RemindAt: now.Add(time.Hour), Status: model.ReminderActive}
	require.NoError(t, db.InsertReminder(ctx, past))
	require.NoError(t, db.InsertReminder(ctx, future))

	all, err := db.ListReminders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "submit the form", all[0].Content, "soonest first")

	due, err := db.DueReminders(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)

	n, err := db.CountDueReminders(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, db.MarkReminderDone(ctx, past.ID))
	due, err = db.DueReminders(ctx, "u1", now)
	require.NoError(t, err)
	assert.Empty(t, due)

	// status flipped, row retained
	all, err = db.ListReminders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.ReminderDone, all[0].Status)

	assert.Error(t, db.MarkReminderDone(ctx, "missing"))
}

func TestSummariesAppendOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	none, err := db.LatestSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, none)

	first := model.MemorySummary{ID: uuid.NewString(), UserID: "u1", Summary: "short", Tags: []string{"a"}, CreatedAt: base}
	second := model.MemorySummary{ID: uuid.NewString(), UserID: "u1", Summary: "a bit longer", Tags: []string{"a", "b"}, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, db.InsertSummary(ctx, first))
	require.NoError(t, db.InsertSummary(ctx, second))

	latest, err := db.LatestSummary(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, []string{"a", "b"}, latest.Tags)

	history, err := db.ListSummaries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "newest first")
}

func TestManualMemoriesCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, content := range []string{"one", "two", "three"} {
		require.NoError(t, db.InsertManualMemory(ctx, model.ManualMemory{
			ID:        uuid.NewString(),
			UserID:    "u1",
			Content:   content,
			Tags:      []string{"note"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	mems, err := db.ListManualMemories(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, mems, 2)
	assert.Equal(t, "three", mems[0].Content, "newest first")

	all, err := db.ListManualMemories(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, db.UpdateManualMemory(ctx, all[0].ID, "updated", []string{"work"}))
	all, err = db.ListManualMemories(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, "updated", all[0].Content)
	assert.Equal(t, []string{"work"}, all[0].Tags)

	require.NoError(t, db.DeleteManualMemory(ctx, all[0].ID))
	all, err = db.ListManualMemories(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Error(t, db.UpdateManualMemory(ctx, "missing", "x", nil))
}
