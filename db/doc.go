// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and storage.

# Connections

Open connects to PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite):

	conn, err := db.Open("sqlite", "file:survey.db")

SQLite connections get foreign keys enabled and a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - survey: Survey metadata, lifecycle state and single-response policy
  - question: Typed questions, ordered per survey
  - response: One submission with its respondent identity fields
  - response_item: One answer value per (response, question)
  - response_claim: Identity keys reserved by single-response surveys

# Relationships

	survey 1──* question
	survey 1──* response
	response 1──* response_item
	response 1──* response_claim

All foreign keys use ON DELETE CASCADE.

# Store

Store wraps the connection with context-aware operations:

	store := db.NewStore(conn)
	sv, err := store.SurveyBySlug(ctx, slug)

Constraint failures are classified into ErrDuplicate and ErrMissingField
for both drivers, so callers can branch with errors.Is.
*/
package db
