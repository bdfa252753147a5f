// Package tag labels a message with a handful of lowercase theme tags.
package tag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mindkeep/mindkeep/pkg/model"
)

const prompt = `You are a helpful assistant that classifies the user's message into 3-5 lowercase tags.

User said: %q

Return a JSON array like: ["task", "feeling", "family"]`

// Tagger asks the completion service for 3-5 tags describing a message.
type Tagger struct {
	completer model.Completer
	logger    *slog.Logger
}

func New(completer model.Completer, logger *slog.Logger) *Tagger {
	return &Tagger{completer: completer, logger: logger}
}

// Tags returns lowercase tags for the message, or nil when the call fails or
// the response is not a bare JSON array. Tagging is decoration; failure never
// blocks the turn.
func (t *Tagger) Tags(ctx context.Context, text string) []string {
	raw, err := t.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(prompt, text),
		Temperature: 0.2,
	})
	if err != nil {
		t.logger.Warn("tagging call failed", "err", err)
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		t.logger.Warn("tagging returned malformed JSON", "err", err)
		return nil
	}
	for i, tg := range tags {
		tags[i] = strings.ToLower(strings.TrimSpace(tg))
	}
	return tags
}
