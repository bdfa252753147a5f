// Package recall renders everything stored about a user into one digest.
package recall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// EmptyMessage is returned when nothing at all is saved for the user.
const EmptyMessage = "I don't have anything saved yet."

const manualLimit = 10

// TimeFormat renders reminder times for humans.
const TimeFormat = "Jan 2, 2006 3:04 PM"

// Composer aggregates stored memory on demand. It performs no extraction or
// inference; this is a read-and-format operation only.
type Composer struct {
	store  model.Store
	logger *slog.Logger
}

func NewComposer(store model.Store, logger *slog.Logger) *Composer {
	return &Composer{store: store, logger: logger}
}

// Compose builds the recall digest: goals and habits in creation order,
// reminders soonest-first, the current summary and the latest manual entries.
// A source that fails to read is treated as empty.
func (c *Composer) Compose(ctx context.Context, userID string) string {
	goals, err := c.store.ListGoals(ctx, userID)
	if err != nil {
		c.logger.Warn("recall: list goals failed", "err", err)
	}
	reminders, err := c.store.ListReminders(ctx, userID)
	if err != nil {
		c.logger.Warn("recall: list reminders failed", "err", err)
	}
	manual, err := c.store.ListManualMemories(ctx, userID, manualLimit)
	if err != nil {
		c.logger.Warn("recall: list manual memories failed", "err", err)
	}
	summary, err := c.store.LatestSummary(ctx, userID)
	if err != nil {
		c.logger.Warn("recall: latest summary failed", "err", err)
	}

	if len(goals) == 0 && len(reminders) == 0 && len(manual) == 0 && summary == nil {
		return EmptyMessage
	}

	var b strings.Builder
	b.WriteString("Here's what I remember:")

	if len(goals) > 0 {
		b.WriteString("\n\nYour Goals & Habits:")
		for _, g := range goals {
			label := "Goal"
			if g.Type == model.GoalTypeHabit {
				label = "Habit"
			}
			fmt.Fprintf(&b, "\n%s: %s", label, g.Content)
		}
	}

	if len(reminders) > 0 {
		b.WriteString("\n\nUpcoming Reminders:")
		for _, r := range reminders {
			fmt.Fprintf(&b, "\n- %s at %s", r.Content, formatTime(r.RemindAt))
		}
	}

	if len(manual) > 0 || summary != nil {
		b.WriteString("\n\nOther things you've shared:")
		if summary != nil {
			fmt.Fprintf(&b, "\nSummary: %s", summary.Summary)
		}
		for _, m := range manual {
			fmt.Fprintf(&b, "\n- %s", m.Content)
		}
	}

	return b.String()
}

func formatTime(t time.Time) string {
	return t.Local().Format(TimeFormat)
}
