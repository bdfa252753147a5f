package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mindkeep/mindkeep/pkg/chat"
	"github.com/mindkeep/mindkeep/pkg/llm"
	"github.com/mindkeep/mindkeep/pkg/model"
	"github.com/mindkeep/mindkeep/pkg/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := loadConfig()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	ctx := context.Background()
	db, err := sqlite.New(ctx, sqlite.Config{Path: cfg.DBPath, Logger: logger})
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer db.Close()

	api := anthropic.NewClient(option.WithAPIKey(apiKey))
	completer := llm.NewClient(&api,
		llm.WithModel(cfg.Model),
		llm.WithTimeout(cfg.CompletionTimeout),
	)

	orch := chat.New(chat.Options{
		Store:     db,
		Completer: completer,
		Logger:    logger,
	})

	go startReminderSweep(ctx, db, cfg.ReminderSweepEvery, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
		var in turnInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := orch.HandleMessage(req.Context(), in.UserID, in.Text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	})

	r.Post("/log", func(w http.ResponseWriter, req *http.Request) {
		var in turnInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := orch.HandleQuickLog(req.Context(), in.UserID, in.Text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	})

	r.Get("/messages", func(w http.ResponseWriter, req *http.Request) {
		msgs, err := db.ListMessages(req.Context(), req.URL.Query().Get("user_id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, msgs)
	})

	r.Put("/messages/{id}", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := orch.EditAssistantMessage(req.Context(), chi.URLParam(req, "id"), in.Text); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/reminders", func(w http.ResponseWriter, req *http.Request) {
		userID := req.URL.Query().Get("user_id")
		if req.URL.Query().Get("due") != "" {
			nudges, err := orch.DueReminders(req.Context(), userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, nudges)
			return
		}
		reminders, err := db.ListReminders(req.Context(), userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, reminders)
	})

	r.Post("/reminders/{id}/done", func(w http.ResponseWriter, req *http.Request) {
		if err := db.MarkReminderDone(req.Context(), chi.URLParam(req, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/memories", func(w http.ResponseWriter, req *http.Request) {
		mems, err := db.ListManualMemories(req.Context(), req.URL.Query().Get("user_id"), 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, mems)
	})

	r.Post("/memories", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			UserID  string   `json:"user_id"`
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mem := model.ManualMemory{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			Content:   strings.TrimSpace(in.Content),
			Tags:      normalizeTags(in.Tags),
			CreatedAt: time.Now(),
		}
		if err := db.InsertManualMemory(req.Context(), mem); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, mem)
	})

	r.Put("/memories/{id}", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := chi.URLParam(req, "id")
		if err := db.UpdateManualMemory(req.Context(), id, strings.TrimSpace(in.Content), normalizeTags(in.Tags)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/memories/{id}", func(w http.ResponseWriter, req *http.Request) {
		if err := db.DeleteManualMemory(req.Context(), chi.URLParam(req, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/memory/history", func(w http.ResponseWriter, req *http.Request) {
		history, err := db.ListSummaries(req.Context(), req.URL.Query().Get("user_id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, history)
	})

	addr := cfg.ListenAddr
	logger.Info("starting mindkeep server", "addr", addr, "db", cfg.DBPath, "model", cfg.Model)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// ------------ config & helpers ------------

type turnInput struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type config struct {
	ListenAddr         string
	DBPath             string
	Model              string
	CompletionTimeout  time.Duration
	ReminderSweepEvery time.Duration
}

func loadConfig() config {
	return config{
		ListenAddr:         getenv("MINDKEEP_LISTEN_ADDR", ":8080"),
		DBPath:             getenv("MINDKEEP_DB_PATH", "mindkeep.db"),
		Model:              getenv("MINDKEEP_MODEL", "claude-3-5-haiku-latest"),
		CompletionTimeout:  getenvDuration("MINDKEEP_COMPLETION_TIMEOUT", llm.DefaultTimeout),
		ReminderSweepEvery: getenvDuration("MINDKEEP_REMINDER_SWEEP_EVERY", time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// startReminderSweep periodically logs how many reminders have come due.
// Delivery itself is the reminder UI's job; this is operator visibility only.
func startReminderSweep(ctx context.Context, db *sqlite.Database, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := db.CountDueReminders(ctx, time.Now())
			if err != nil {
				logger.Error("reminder sweep failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("reminders due", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
