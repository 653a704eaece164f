package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"center-directory-service/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS centers (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		timezone VARCHAR(64) NOT NULL DEFAULT 'America/Chicago',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS center_hours (
		id SERIAL PRIMARY KEY,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		day VARCHAR(10) NOT NULL,
		open_time VARCHAR(10),
		close_time VARCHAR(10),
		is_closed BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(center_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS center_tags (
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY(center_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id SERIAL PRIMARY KEY,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, center_id)
	)`,
	`CREATE TABLE IF NOT EXISTS dislikes (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, center_id)
	)`,
	`CREATE TABLE IF NOT EXISTS filter_interactions (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		click_count INTEGER NOT NULL DEFAULT 1,
		last_used TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS page_interactions (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		visit_count INTEGER NOT NULL DEFAULT 1,
		scroll_depth INTEGER NOT NULL DEFAULT 0,
		map_clicks INTEGER NOT NULL DEFAULT 0,
		review_clicks INTEGER NOT NULL DEFAULT 0,
		similar_clicks INTEGER NOT NULL DEFAULT 0,
		last_visited TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, center_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendation_snapshots (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		center_id INTEGER NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
		score DOUBLE PRECISION NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, center_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendation_rules (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		weight DOUBLE PRECISION NOT NULL CHECK (weight >= 0),
		rule_type VARCHAR(20) NOT NULL CHECK (rule_type IN ('liked', 'disliked', 'filters', 'quality')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_center_id ON reviews(center_id)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_user_id ON likes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dislikes_user_id ON dislikes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_filter_interactions_user ON filter_interactions(user_id, click_count DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_user_id ON recommendation_snapshots(user_id)`,
}

func runMigrations(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed", "statements", len(migrations))
	return nil
}
