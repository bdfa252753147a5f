package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// InsertReminder writes a new reminders row.
func (d *Database) InsertReminder(ctx context.Context, r model.Reminder) error {
	if r.Content == "" {
		return fmt.Errorf("reminder content is required")
	}
	if r.Status == "" {
		r.Status = model.ReminderActive
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO reminders(id, user_id, content, remind_at, status)
        VALUES(?, ?, ?, ?, ?);
    `, r.ID, r.UserID, r.Content, r.RemindAt.UTC(), r.Status)
	return err
}

// ListReminders returns a user's reminders soonest-first, regardless of status.
func (d *Database) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	return d.queryReminders(ctx, `
        SELECT id, user_id, content, remind_at, status
        FROM reminders
        WHERE user_id = ?
        ORDER BY remind_at ASC;
    `, userID)
}

// DueReminders returns active reminders whose remind_at has passed.
func (d *Database) DueReminders(ctx context.Context, userID string, now time.Time) ([]model.Reminder, error) {
	return d.queryReminders(ctx, `
        SELECT id, user_id, content, remind_at, status
        FROM reminders
        WHERE user_id = ? AND status = 'active' AND remind_at <= ?
        ORDER BY remind_at ASC;
    `, userID, now.UTC())
}

// MarkReminderDone flips an active reminder to done. Reminders are never
// deleted.
func (d *Database) MarkReminderDone(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `
        UPDATE reminders SET status = 'done' WHERE id = ?;
    `, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reminder %s not found", id)
	}
	return nil
}

// CountDueReminders reports how many active reminders are past due across
// all users. Used for the periodic sweep log.
func (d *Database) CountDueReminders(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := d.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM reminders WHERE status = 'active' AND remind_at <= ?;
    `, now.UTC()).Scan(&n)
	return n, err
}

func (d *Database) queryReminders(ctx context.Context, query string, args ...any) ([]model.Reminder, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Content, &r.RemindAt, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
