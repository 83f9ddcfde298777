// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Survey API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Survey authoring (requires Authorization: Bearer):

	POST   /surveys                      - Create draft survey
	GET    /surveys                      - List own surveys
	GET    /surveys/{id}                 - Survey with questions
	PATCH  /surveys/{id}                 - Partial update
	DELETE /surveys/{id}                 - Delete with responses
	PATCH  /surveys/{id}/status          - publish, close or reopen
	POST   /surveys/{id}/publish         - Shorthand for publish
	GET    /surveys/{id}/questions       - List questions
	POST   /surveys/{id}/questions       - Append question
	PATCH  /surveys/{id}/questions/{qid} - Edit question
	DELETE /surveys/{id}/questions/{qid} - Remove question

Analytics (requires Authorization: Bearer):

	GET /surveys/{id}/analytics                    - Full report
	GET /surveys/{id}/analytics/export?format=csv  - Download responses

Response collection (public; a bearer token is optional):

	GET  /s/{slug}           - Published survey and questions
	POST /s/{slug}/responses - Submit a response
	GET  /s/{slug}/my-status - Single-response pre-check

Owner routes answer 401 before reaching the handler when no identity was
resolved.
*/
package router
