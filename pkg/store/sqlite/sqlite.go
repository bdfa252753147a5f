package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config controls SQLite initialization.
type Config struct {
	Path   string
	Logger *slog.Logger
}

// Database wraps the sql.DB handle and implements model.Store.
type Database struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the database and ensures schema.
func New(ctx context.Context, cfg Config) (*Database, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	wrapper := &Database{db: db, logger: cfg.Logger}
	if err := wrapper.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return wrapper, nil
}

func (d *Database) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            sender TEXT NOT NULL,
            text TEXT NOT NULL,
            tags JSON,
            timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_user_ts ON messages(user_id, timestamp);`,
		`CREATE TABLE IF NOT EXISTS goals (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);`,
		`CREATE TABLE IF NOT EXISTS reminders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            content TEXT NOT NULL,
            remind_at DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'active'
        );`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_user_at ON reminders(user_id, remind_at);`,
		`CREATE TABLE IF NOT EXISTS memory_summaries (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            summary TEXT NOT NULL,
            tags JSON,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_user_created ON memory_summaries(user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS manual_memories (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            content TEXT NOT NULL,
            tags JSON,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_manual_user_created ON manual_memories(user_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DB returns the underlying database handle.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close releases the database.
func (d *Database) Close() error {
	return d.db.Close()
}
