package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// InsertManualMemory writes a user-authored memory entry.
func (d *Database) InsertManualMemory(ctx context.Context, m model.ManualMemory) error {
	if m.Content == "" {
		return fmt.Errorf("memory content is required")
	}
	tags, _ := json.Marshal(m.Tags)
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO manual_memories(id, user_id, content, tags, created_at)
        VALUES(?, ?, ?, ?, ?);
    `, m.ID, m.UserID, m.Content, string(tags), m.CreatedAt.UTC())
	return err
}

// ListManualMemories returns a user's entries newest-first. A non-positive
// limit returns all of them.
func (d *Database) ListManualMemories(ctx context.Context, userID string, limit int) ([]model.ManualMemory, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, user_id, content, tags, created_at
        FROM manual_memories
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?;
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ManualMemory
	for rows.Next() {
		var m model.ManualMemory
		var tags sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &tags, &m.CreatedAt); err != nil {
			return nil, err
		}
		decodeTags(tags, &m.Tags)
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateManualMemory replaces content and tags of an existing entry.
func (d *Database) UpdateManualMemory(ctx context.Context, id, content string, tags []string) error {
	if content == "" {
		return fmt.Errorf("memory content is required")
	}
	raw, _ := json.Marshal(tags)
	res, err := d.db.ExecContext(ctx, `
        UPDATE manual_memories SET content = ?, tags = ? WHERE id = ?;
    `, content, string(raw), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("manual memory %s not found", id)
	}
	return nil
}

// DeleteManualMemory removes an entry permanently.
func (d *Database) DeleteManualMemory(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM manual_memories WHERE id = ?;`, id)
	return err
}
