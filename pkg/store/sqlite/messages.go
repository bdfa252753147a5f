package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// InsertMessage writes a new messages row.
func (d *Database) InsertMessage(ctx context.Context, m model.Message) error {
	if m.Text == "" {
		return fmt.Errorf("message text is required")
	}
	tags, _ := json.Marshal(m.Tags)
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO messages(id, user_id, sender, text, tags, timestamp)
        VALUES(?, ?, ?, ?, ?, ?);
    `, m.ID, m.UserID, m.Sender, m.Text, string(tags), m.Timestamp.UTC())
	return err
}

// ListMessages returns all messages for a user ordered oldest-first.
func (d *Database) ListMessages(ctx context.Context, userID string) ([]model.Message, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, user_id, sender, text, tags, timestamp
        FROM messages
        WHERE user_id = ?
        ORDER BY timestamp ASC;
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// RecentMessages returns the latest messages for a user, newest-first.
func (d *Database) RecentMessages(ctx context.Context, userID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, user_id, sender, text, tags, timestamp
        FROM messages
        WHERE user_id = ?
        ORDER BY timestamp DESC
        LIMIT ?;
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessage fetches a single message by id.
func (d *Database) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	row := d.db.QueryRowContext(ctx, `
        SELECT id, user_id, sender, text, tags, timestamp
        FROM messages
        WHERE id = ?;
    `, id)

	var m model.Message
	var tags sql.NullString
	if err := row.Scan(&m.ID, &m.UserID, &m.Sender, &m.Text, &tags, &m.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	decodeTags(tags, &m.Tags)
	return &m, nil
}

// UpdateMessageText edits message text in place. Sender, timestamp and id
// are never touched.
func (d *Database) UpdateMessageText(ctx context.Context, id, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}
	res, err := d.db.ExecContext(ctx, `UPDATE messages SET text = ? WHERE id = ?;`, text, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]model.Message, error) {
	var out []model.Message
	for rows.Next() {
		var m model.Message
		var tags sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Sender, &m.Text, &tags, &m.Timestamp); err != nil {
			return nil, err
		}
		decodeTags(tags, &m.Tags)
		out = append(out, m)
	}
	return out, rows.Err()
}

func decodeTags(raw sql.NullString, dst *[]string) {
	if raw.Valid && raw.String != "" && raw.String != "null" {
		_ = json.Unmarshal([]byte(raw.String), dst)
	}
}
