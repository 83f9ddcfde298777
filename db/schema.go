// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable between PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	// Surveys
	`CREATE TABLE IF NOT EXISTS survey (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'closed')),
    slug TEXT UNIQUE,
    single_response BOOLEAN NOT NULL DEFAULT FALSE,
    single_response_scope TEXT NOT NULL DEFAULT 'device' CHECK (single_response_scope IN ('device', 'user')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    published_at TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_owner ON survey(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_status ON survey(status)`,

	// Questions
	`CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    type TEXT NOT NULL CHECK (type IN ('text', 'single', 'multiple', 'likert', 'checkbox')),
    question_text TEXT NOT NULL,
    required BOOLEAN NOT NULL DEFAULT FALSE,
    order_index INTEGER NOT NULL,
    options TEXT NOT NULL DEFAULT '[]',
    UNIQUE (survey_id, order_index)
)`,
	`CREATE INDEX IF NOT EXISTS idx_question_survey_id ON question(survey_id)`,

	// Responses
	`CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_id TEXT,
    respondent_token TEXT,
    respondent_fp TEXT,
    ip_hash TEXT,
    meta TEXT NOT NULL DEFAULT '{}'
)`,
	`CREATE INDEX IF NOT EXISTS idx_response_survey_id ON response(survey_id)`,
	`CREATE INDEX IF NOT EXISTS idx_response_user ON response(survey_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_response_token ON response(survey_id, respondent_token)`,
	`CREATE INDEX IF NOT EXISTS idx_response_fp ON response(survey_id, respondent_fp)`,

	// Response items (one value per answered question)
	`CREATE TABLE IF NOT EXISTS response_item (
    response_id TEXT NOT NULL REFERENCES response(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    value TEXT NOT NULL,
    PRIMARY KEY (response_id, question_id)
)`,

	// Single-response claims. One row per identity key of a response to a
	// single-response survey; the primary key rejects the second claimant.
	`CREATE TABLE IF NOT EXISTS response_claim (
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('user', 'token', 'fp')),
    claim_key TEXT NOT NULL,
    response_id TEXT NOT NULL REFERENCES response(id) ON DELETE CASCADE,
    PRIMARY KEY (survey_id, kind, claim_key)
)`,
	`CREATE INDEX IF NOT EXISTS idx_response_claim_response ON response_claim(response_id)`,
}
