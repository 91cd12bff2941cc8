package database

import (
	"context"
	"fmt"
)

// Schema statements are idempotent and applied in order at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL DEFAULT '',
		first_name    TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('admin', 'teacher', 'student')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS teachers (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL UNIQUE,
		subject     TEXT NOT NULL DEFAULT '',
		joined_on   DATE NOT NULL DEFAULT CURRENT_DATE
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id                  BIGSERIAL PRIMARY KEY,
		user_id             BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		roll_number         TEXT NOT NULL UNIQUE,
		grade               TEXT NOT NULL DEFAULT '',
		assigned_teacher_id BIGINT REFERENCES teachers(id) ON DELETE SET NULL
	)`,

	`CREATE TABLE IF NOT EXISTS conversations (
		id         BIGSERIAL PRIMARY KEY,
		teacher_id BIGINT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
		student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (teacher_id, student_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id              BIGSERIAL PRIMARY KEY,
		conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id       BIGINT REFERENCES users(id) ON DELETE SET NULL,
		text            TEXT NOT NULL,
		metadata        JSONB,
		is_read         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
		ON messages (conversation_id, created_at, id)`,

	`CREATE INDEX IF NOT EXISTS idx_conversations_updated
		ON conversations (updated_at DESC)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
