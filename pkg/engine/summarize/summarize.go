// Package summarize folds recent conversation into durable memory snapshots.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// Window is how many recent messages feed one consolidation run.
const Window = 50

const prompt = `The user shared these thoughts and logs. Create a short memory summary (1-2 sentences) and 3-5 lowercase tags that describe recurring themes or concerns.

Messages:
%s

Return ONLY valid JSON like this (no commentary or markdown):
{
  "summary": "You've been feeling drained but hopeful about upcoming changes.",
  "tags": ["stress", "planning", "hope"]
}`

// Summarizer consolidates a user's recent messages into a snapshot.
type Summarizer struct {
	store     model.Store
	completer model.Completer
	logger    *slog.Logger
	window    int
}

func New(store model.Store, completer model.Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{store: store, completer: completer, logger: logger, window: Window}
}

// Run fetches the newest messages, asks for a summary, and inserts a new
// snapshot row. Snapshots are append-only: running twice with no new messages
// inserts two identical summaries with distinct ids. A nil result means no
// change, whether from an empty window, a failed call, malformed output, or
// a failed snapshot write.
func (s *Summarizer) Run(ctx context.Context, userID string) (*model.MemorySummary, error) {
	msgs, err := s.store.RecentMessages(ctx, userID, s.window)
	if err != nil {
		return nil, fmt.Errorf("fetch recent messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}

	raw, err := s.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(prompt, strings.Join(texts, "\n")),
		Temperature: 0.5,
	})
	if err != nil {
		s.logger.Warn("summary call failed", "err", err)
		return nil, nil
	}

	var parsed struct {
		Summary string   `json:"summary"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn("summary returned malformed JSON", "err", err)
		return nil, nil
	}
	if parsed.Summary == "" {
		return nil, nil
	}
	for i, t := range parsed.Tags {
		parsed.Tags[i] = strings.ToLower(strings.TrimSpace(t))
	}

	snapshot := model.MemorySummary{
		ID:        uuid.NewString(),
		UserID:    userID,
		Summary:   parsed.Summary,
		Tags:      parsed.Tags,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertSummary(ctx, snapshot); err != nil {
		// A snapshot that never landed must not trigger a memory notice.
		s.logger.Error("persist summary snapshot failed", "err", err)
		return nil, nil
	}
	return &snapshot, nil
}
