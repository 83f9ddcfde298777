// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Survey API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SurveyHandler: Survey lifecycle (create, edit, publish, close)
  - QuestionHandler: Question editing and ordering
  - PublicHandler: Public survey view, submissions and my-status
  - AnalyticsHandler: Reports and exports

Handlers are created via constructor functions that accept *sql.DB and Config:

	surveyHandler := handlers.NewSurveyHandler(db, cfg)

Owner handlers read the caller from middleware.UserIDFromContext and only
ever see the caller's own surveys; anything else is a 404.

# Survey Lifecycle

Surveys move between draft, published and closed:

	POST  /surveys             → CreateSurvey (draft, no slug)
	PATCH /surveys/{id}/status → UpdateStatus (publish, close, reopen)

Publishing assigns a slug derived from the title on first publish. Closing
keeps it, so a reopened survey keeps its share link.

# Submissions

PublicHandler delegates to admission.Controller and maps each rejection to
its error tag:

	404 survey_not_found          410 survey_not_available
	401 login_required            400 device_identifier_required
	409 already_answered          400 missing_required_field
	500 items_error               500 database_error

# Validation

Request bodies are validated with go-playground/validator. Invalid JSON is
400 invalid_json; failed rules are 422 validation_error with a fields map
keyed by JSON path.
*/
package handlers
