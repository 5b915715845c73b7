package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrations are idempotent and run in order on every start.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		pronouns TEXT NOT NULL DEFAULT ''
		)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_coworking BOOLEAN NOT NULL DEFAULT FALSE`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES users(id),
		receiver_id BIGINT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL CHECK (status IN ('pending','accepted','rejected')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (sender_id <> receiver_id)
		)`,
	`CREATE INDEX IF NOT EXISTS friend_requests_receiver_status_idx
		ON friend_requests (receiver_id, status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_pending_pair_idx
		ON friend_requests (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id))
		WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_low_id BIGINT NOT NULL REFERENCES users(id),
		user_high_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT friendships_pkey PRIMARY KEY (user_low_id, user_high_id),
		CHECK (user_low_id < user_high_id)
		)`,
	`CREATE INDEX IF NOT EXISTS friendships_user_high_idx ON friendships (user_high_id)`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, q := range Migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
