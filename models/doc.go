// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSurveyRequest / UpdateSurveyRequest: title, description, single-response settings
  - StatusRequest: action (publish, close, reopen)
  - QuestionRequest / UpdateQuestionRequest: type, title, required, options
  - SubmitResponseRequest: answers, respondentToken, respondentFp, meta

# Response Types

Types for JSON responses:

  - CreateSurveyResponse, CreateQuestionResponse: id
  - StatusResponse: status, slug, share_url
  - SubmitResponseResult: success, message, data
  - MyStatusResponse: single-response pre-check
  - PublicSurveyResponse: survey and questions by slug
  - ErrorResponse: error tag, message and optional details

# Domain Types

  - Survey, Question, Option
  - Response, ResponseItem, ResponseMeta
  - Value: tagged answer payload (text, number, list or raw JSON)

# Constants

Status values:

	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"

Single-response scopes:

	ScopeDevice = "device"
	ScopeUser   = "user"

Question types are text, single, multiple, likert and checkbox.
*/
package models
