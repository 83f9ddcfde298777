// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Identity

WithIdentity resolves an optional Authorization: Bearer token into the
request context; RequireIdentity answers 401 when no user was resolved:

	h := middleware.WithIdentity(secret, middleware.RequireIdentity(handler))
	userID, ok := middleware.UserIDFromContext(r.Context())

Public endpoints use WithIdentity alone, so an invalid token is the same as
no token.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.TaggedError(w, http.StatusConflict, "already_answered", "message")

The error tag is what clients branch on; the message is for people.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for IP hashing on stored responses.
*/
package middleware
