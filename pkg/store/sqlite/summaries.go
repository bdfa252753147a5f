package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// InsertSummary appends a new memory snapshot. Snapshots are never updated;
// each consolidation run grows the history.
func (d *Database) InsertSummary(ctx context.Context, s model.MemorySummary) error {
	if s.Summary == "" {
		return fmt.Errorf("summary text is required")
	}
	tags, _ := json.Marshal(s.Tags)
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO memory_summaries(id, user_id, summary, tags, created_at)
        VALUES(?, ?, ?, ?, ?);
    `, s.ID, s.UserID, s.Summary, string(tags), s.CreatedAt.UTC())
	return err
}

// LatestSummary returns the most recent snapshot for a user, or nil when the
// user has no snapshots yet.
func (d *Database) LatestSummary(ctx context.Context, userID string) (*model.MemorySummary, error) {
	row := d.db.QueryRowContext(ctx, `
        SELECT id, user_id, summary, tags, created_at
        FROM memory_summaries
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT 1;
    `, userID)

	var s model.MemorySummary
	var tags sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &s.Summary, &tags, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	decodeTags(tags, &s.Tags)
	return &s, nil
}

// ListSummaries returns the full snapshot history newest-first.
func (d *Database) ListSummaries(ctx context.Context, userID string) ([]model.MemorySummary, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, user_id, summary, tags, created_at
        FROM memory_summaries
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC;
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MemorySummary
	for rows.Next() {
		var s model.MemorySummary
		var tags sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.Summary, &tags, &s.CreatedAt); err != nil {
			return nil, err
		}
		decodeTags(tags, &s.Tags)
		out = append(out, s)
	}
	return out, rows.Err()
}
