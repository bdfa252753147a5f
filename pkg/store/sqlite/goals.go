package sqlite

import (
	"context"
	"fmt"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// InsertGoal appends a goal or habit record.
func (d *Database) InsertGoal(ctx context.Context, g model.Goal) error {
	if g.Content == "" {
		return fmt.Errorf("goal content is required")
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO goals(id, user_id, type, content, created_at)
        VALUES(?, ?, ?, ?, ?);
    `, g.ID, g.UserID, g.Type, g.Content, g.CreatedAt.UTC())
	return err
}

// ListGoals returns all goal/habit records for a user in creation order.
func (d *Database) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, user_id, type, content, created_at
        FROM goals
        WHERE user_id = ?
        ORDER BY created_at ASC;
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Goal
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Type, &g.Content, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
