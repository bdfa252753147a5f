// Package chat sequences one conversation turn end to end: classify, extract,
// reply, summarize, persist.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindkeep/mindkeep/pkg/engine/extract"
	"github.com/mindkeep/mindkeep/pkg/engine/intent"
	"github.com/mindkeep/mindkeep/pkg/engine/recall"
	"github.com/mindkeep/mindkeep/pkg/engine/summarize"
	"github.com/mindkeep/mindkeep/pkg/engine/tag"
	"github.com/mindkeep/mindkeep/pkg/model"
)

const replyPrompt = `You are a casual, kind assistant. Reply in 1-2 short sentences.
Avoid being poetic or overly verbose.
User says: %q
Your reply:`

const warmReplyPrompt = `You are a warm, thoughtful assistant. The user sends short thoughts, emotions, tasks, or memories. Always reply with one kind sentence, never robotic. You can include one soft emoji.

User: %q
Tags: %s

Reply in one warm, human sentence.`

// Options configures the Orchestrator.
type Options struct {
	Store     model.Store
	Completer model.Completer
	Logger    *slog.Logger
	// Rand drives the notice coin flip and template selection. Seed it for
	// deterministic tests; defaults to a time-seeded source.
	Rand *rand.Rand
	// Now stamps messages and records. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs the per-turn state machine. Steps within a turn are
// sequential; no step failure ever aborts the turn, and the raw user message
// is persisted before anything else runs.
type Orchestrator struct {
	store      model.Store
	completer  model.Completer
	classifier *intent.Classifier
	extractor  *extract.Extractor
	summarizer *summarize.Summarizer
	recall     *recall.Composer
	tagger     *tag.Tagger
	rngMu      sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	logger     *slog.Logger
}

// TurnResult reports what a turn produced. Assistant is nil when the turn
// yielded no reply (every completion call failed).
type TurnResult struct {
	Intent    intent.Intent  `json:"intent"`
	User      model.Message  `json:"user"`
	Assistant *model.Message `json:"assistant,omitempty"`
}

// ReminderNudge pairs a due reminder with its rendered nudge line.
type ReminderNudge struct {
	model.Reminder
	Nudge string `json:"nudge"`
}

func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		store:      opts.Store,
		completer:  opts.Completer,
		classifier: intent.NewClassifier(opts.Completer, opts.Logger),
		extractor:  extract.New(opts.Store, opts.Completer, opts.Logger),
		summarizer: summarize.New(opts.Store, opts.Completer, opts.Logger),
		recall:     recall.NewComposer(opts.Store, opts.Logger),
		tagger:     tag.New(opts.Completer, opts.Logger),
		rng:        opts.Rand,
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

// HandleMessage runs one full chat turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return nil, fmt.Errorf("user id and text are required")
	}

	// The raw user message lands first so no input is lost when a
	// downstream step fails.
	userMsg := o.newMessage(userID, model.SenderUser, text, nil)
	if err := o.store.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	label := o.classifier.Classify(ctx, text)
	result := &TurnResult{Intent: label, User: userMsg}

	// Recall terminates the turn early: no generic reply, no summarization.
	if label == intent.Recall {
		digest := o.recall.Compose(ctx, userID)
		result.Assistant = o.persistAssistant(ctx, userID, digest)
		return result, nil
	}

	var goal *extract.GoalResult
	var reminder *extract.ReminderResult
	switch label {
	case intent.Goal, intent.Habit:
		goal = o.extractor.GoalOrHabit(ctx, userID, text)
	case intent.Reminder:
		reminder = o.extractor.Reminder(ctx, userID, text)
	}

	// A purely reminder-setting turn already gets a confirmation line; a
	// generic reply on top would be redundant.
	var reply string
	if !(reminder != nil && goal == nil) {
		reply = o.genericReply(ctx, text)
	}

	notify := o.summarizeAndCheck(ctx, userID)

	var followUps []string
	if notify {
		followUps = append(followUps, MemoryNotice(o.intn(len(templates[MemoryUpdated]))))
	}
	if goal != nil {
		followUps = append(followUps, GoalConfirmation(goal.Type, goal.Content, o.intn(len(templates[GoalSaved]))))
	}
	if reminder != nil {
		followUps = append(followUps, ReminderConfirmation(reminder.Content, reminder.RemindAt, o.intn(len(templates[ReminderSet]))))
	}

	final := reply
	if len(followUps) > 0 {
		final = strings.TrimSpace(reply + "\n\n" + strings.Join(followUps, " "))
	}
	if final != "" {
		result.Assistant = o.persistAssistant(ctx, userID, final)
	}
	return result, nil
}

// HandleQuickLog runs the lightweight logging turn: tag the message, store
// it, and answer with one warm sentence. No classification, no extraction,
// no summarization.
func (o *Orchestrator) HandleQuickLog(ctx context.Context, userID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return nil, fmt.Errorf("user id and text are required")
	}

	tags := o.tagger.Tags(ctx, text)
	userMsg := o.newMessage(userID, model.SenderUser, text, tags)
	if err := o.store.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	result := &TurnResult{Intent: intent.Conversation, User: userMsg}
	encodedTags := "[]"
	if len(tags) > 0 {
		raw, _ := json.Marshal(tags)
		encodedTags = string(raw)
	}
	reply, err := o.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(warmReplyPrompt, text, encodedTags),
		Temperature: 0.6,
	})
	if err != nil {
		o.logger.Warn("quick-log reply failed", "err", err)
		return result, nil
	}
	if reply != "" {
		result.Assistant = o.persistAssistant(ctx, userID, reply)
	}
	return result, nil
}

// EditAssistantMessage corrects an assistant message in place and re-runs
// consolidation so the correction flows into memory. Sender, timestamp and
// id stay untouched; user messages are immutable.
func (o *Orchestrator) EditAssistantMessage(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text is required")
	}
	msg, err := o.store.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("message %s not found", id)
	}
	if msg.Sender != model.SenderAssistant {
		return fmt.Errorf("only assistant messages can be edited")
	}
	if err := o.store.UpdateMessageText(ctx, id, text); err != nil {
		return err
	}
	if _, err := o.summarizer.Run(ctx, msg.UserID); err != nil {
		o.logger.Warn("summarize after edit failed", "err", err)
	}
	return nil
}

// DueReminders returns active reminders past due, each with a nudge line.
func (o *Orchestrator) DueReminders(ctx context.Context, userID string) ([]ReminderNudge, error) {
	due, err := o.store.DueReminders(ctx, userID, o.now())
	if err != nil {
		return nil, err
	}
	out := make([]ReminderNudge, len(due))
	for i, r := range due {
		out[i] = ReminderNudge{
			Reminder: r,
			Nudge:    ReminderNudgeText(r.Content, o.intn(len(templates[ReminderFired]))),
		}
	}
	return out, nil
}

// intn draws from the shared random source. rand.Rand is not safe for
// concurrent use and HTTP requests arrive concurrently.
func (o *Orchestrator) intn(n int) int {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Intn(n)
}

// summarizeAndCheck runs consolidation and applies the notice policy against
// the summary that was current before this run.
func (o *Orchestrator) summarizeAndCheck(ctx context.Context, userID string) bool {
	prevLen := 0
	prev, err := o.store.LatestSummary(ctx, userID)
	if err != nil {
		o.logger.Warn("read previous summary failed", "err", err)
	} else if prev != nil {
		prevLen = len(prev.Summary)
	}

	snapshot, err := o.summarizer.Run(ctx, userID)
	if err != nil {
		o.logger.Warn("summarize failed", "err", err)
		return false
	}
	if snapshot == nil {
		return false
	}
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return ShouldNotifyMemoryUpdate(prevLen, len(snapshot.Summary), o.rng)
}

func (o *Orchestrator) genericReply(ctx context.Context, text string) string {
	reply, err := o.completer.Complete(ctx, model.CompletionRequest{
		Prompt:      fmt.Sprintf(replyPrompt, text),
		Temperature: 0.4,
		MaxTokens:   80,
	})
	if err != nil {
		o.logger.Warn("generic reply failed", "err", err)
		return ""
	}
	return reply
}

func (o *Orchestrator) persistAssistant(ctx context.Context, userID, text string) *model.Message {
	msg := o.newMessage(userID, model.SenderAssistant, text, nil)
	if err := o.store.InsertMessage(ctx, msg); err != nil {
		o.logger.Error("persist assistant message failed", "err", err)
		return nil
	}
	return &msg
}

func (o *Orchestrator) newMessage(userID, sender, text string, tags []string) model.Message {
	return model.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		Tags:      tags,
		Timestamp: o.now(),
	}
}
