package database

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/lib/pq"
	"race-weekend-api/internal/config"
	"race-weekend-api/pkg/logger"
)

var (
	pool *sql.DB
	once sync.Once
)

// DB returns the global database connection pool (initialized on first use).
func DB(ctx context.Context) *sql.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Error(ctx, "DATABASE_URL is not set")
			return
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err)
			return
		}
		db.SetMaxOpenConns(cfg.DBPoolSize)
		db.SetMaxIdleConns(cfg.DBPoolSize / 2)
		pool = db
		logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	})
	return pool
}

// InitDB initializes the DB pool and returns it (for main and scripts).
func InitDB(ctx context.Context) *sql.DB {
	return DB(ctx)
}

// MigrateOrCreateSchema creates the users/events/tasks tables if absent.
func MigrateOrCreateSchema(ctx context.Context) error {
	db := DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'user'
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			track_name VARCHAR(200) NOT NULL,
			city VARCHAR(100) NOT NULL,
			state VARCHAR(50) NOT NULL,
			event_date DATE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL REFERENCES events(id),
			assignee_id BIGINT REFERENCES users(id),
			title VARCHAR(200) NOT NULL,
			description VARCHAR(1000) NOT NULL DEFAULT '',
			category VARCHAR(50) NOT NULL,
			priority INT NOT NULL DEFAULT 3,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			due_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_event ON tasks(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
