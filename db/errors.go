// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMissingField is returned when a NOT NULL constraint rejects a write.
	ErrMissingField = errors.New("missing required column")
	// ErrItemsInsert is returned when a response item could not be stored.
	ErrItemsInsert = errors.New("failed to insert response items")
)

// classify maps driver constraint errors onto the package sentinels.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
		case "23502":
			return fmt.Errorf("%w: %s", ErrMissingField, pqErr.Message)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrDuplicate, liteErr)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %v", ErrMissingField, liteErr)
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary code only; fall back to the message
			msg := liteErr.Error()
			if strings.Contains(msg, "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %v", ErrDuplicate, liteErr)
			}
			if strings.Contains(msg, "NOT NULL constraint failed") {
				return fmt.Errorf("%w: %v", ErrMissingField, liteErr)
			}
		}
	}

	return err
}
