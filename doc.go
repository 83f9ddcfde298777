// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Survey API server.

Quickly Survey lets authenticated owners build surveys, publish them under
a short slug, collect responses (optionally limited to one per user or per
device) and read back per-question analytics and exports.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first if present:

	DATABASE_URL=file:survey.db JWT_SECRET=... IP_HASH_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ... -ip-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path/DSN or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HS256 secret of the identity provider
  - IP_HASH_SALT (-ip-salt): Secret for client IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PUBLIC_BASE_URL (-base-url): Prefix for share URLs
  - LOG_FILE (-log-file): Rotating JSON log file, in addition to stdout

# Architecture

  - handlers: HTTP request handlers (surveys, questions, public, analytics)
  - router: Route definitions using Go 1.22+ routing
  - admission: Response admission and single-response policy
  - analytics: Report aggregation
  - export: CSV and JSON exports
  - middleware: CORS, logging, identity, JSON helpers
  - models: Request/response and domain types
  - auth: Identity tokens, slugs and IP hashing
  - db: Schema, connection and store
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
