package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// Intent is the coarse category assigned to a user message. It decides which
// extractor, if any, runs for the turn.
type Intent string

const (
	Conversation Intent = "conversation"
	Goal         Intent = "goal"
	Habit        Intent = "habit"
	Reminder     Intent = "reminder"
	Recall       Intent = "recall"
)

var known = map[Intent]bool{
	Conversation: true,
	Goal:         true,
	Habit:        true,
	Reminder:     true,
	Recall:       true,
}

const prompt = `Classify the user's message as one of the following:
- "conversation"
- "goal"
- "habit"
- "reminder"
- "recall"

Respond with just the type (one word only).
Message: %q`

// Classifier labels raw messages with a single completion call.
type Classifier struct {
	completer model.Completer
	logger    *slog.Logger
}

func NewClassifier(completer model.Completer, logger *slog.Logger) *Classifier {
	return &Classifier{completer: completer, logger: logger}
}

// Classify returns exactly one of the five labels. A broken classifier must
// never block basic chat: any failure, including a word outside the label
// set, yields Conversation. Single attempt, no retry.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	raw, err := c.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(prompt, text),
		Temperature: 0.2,
		MaxTokens:   10,
	})
	if err != nil {
		c.logger.Warn("intent classification failed", "err", err)
		return Conversation
	}

	label := Intent(strings.Trim(strings.ToLower(strings.TrimSpace(raw)), `"'.`))
	if !known[label] {
		c.logger.Warn("intent classifier returned unknown label", "label", raw)
		return Conversation
	}
	return label
}
