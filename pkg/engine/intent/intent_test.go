package intent

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindkeep/mindkeep/pkg/model"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ model.CompletionRequest) (string, error) {
	return f.response, f.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     Intent
	}{
		{name: "goal", response: "goal", want: Goal},
		{name: "habit", response: "habit", want: Habit},
		{name: "reminder", response: "reminder", want: Reminder},
		{name: "recall", response: "recall", want: Recall},
		{name: "conversation", response: "conversation", want: Conversation},
		{name: "uppercase with punctuation", response: `"Reminder."`, want: Reminder},
		{name: "surrounding whitespace", response: "  recall\n", want: Recall},
		{name: "unknown label falls back", response: "banana", want: Conversation},
		{name: "empty response falls back", response: "", want: Conversation},
		{name: "transport failure falls back", err: errors.New("boom"), want: Conversation},
		{name: "prose wrapper is not stripped", response: "The intent is: goal", want: Conversation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeCompleter{response: tt.response, err: tt.err}, slog.Default())
			got := c.Classify(context.Background(), "some message")
			assert.Equal(t, tt.want, got)
		})
	}
}
