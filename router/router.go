// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/handlers"
	"github.com/danielhkuo/quickly-survey/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(db, cfg)
	questionHandler := handlers.NewQuestionHandler(db, cfg)
	publicHandler := handlers.NewPublicHandler(db, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)

	// public resolves an optional identity; owner requires one
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithIdentity(cfg.JWTSecret, h))
	}
	owner := func(h http.HandlerFunc) http.HandlerFunc {
		return public(middleware.RequireIdentity(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Survey authoring
	mux.HandleFunc("POST /surveys", owner(surveyHandler.CreateSurvey))
	mux.HandleFunc("GET /surveys", owner(surveyHandler.ListSurveys))
	mux.HandleFunc("GET /surveys/{id}", owner(surveyHandler.GetSurvey))
	mux.HandleFunc("PATCH /surveys/{id}", owner(surveyHandler.UpdateSurvey))
	mux.HandleFunc("DELETE /surveys/{id}", owner(surveyHandler.DeleteSurvey))
	mux.HandleFunc("PATCH /surveys/{id}/status", owner(surveyHandler.UpdateStatus))
	mux.HandleFunc("POST /surveys/{id}/publish", owner(surveyHandler.PublishSurvey))

	mux.HandleFunc("GET /surveys/{id}/questions", owner(questionHandler.ListQuestions))
	mux.HandleFunc("POST /surveys/{id}/questions", owner(questionHandler.AddQuestion))
	mux.HandleFunc("PATCH /surveys/{id}/questions/{qid}", owner(questionHandler.UpdateQuestion))
	mux.HandleFunc("DELETE /surveys/{id}/questions/{qid}", owner(questionHandler.DeleteQuestion))

	// Analytics (owner only)
	mux.HandleFunc("GET /surveys/{id}/analytics", owner(analyticsHandler.GetAnalytics))
	mux.HandleFunc("GET /surveys/{id}/analytics/export", owner(analyticsHandler.ExportResponses))

	// Response collection (public, uses slug)
	mux.HandleFunc("GET /s/{slug}", public(publicHandler.GetSurvey))
	mux.HandleFunc("POST /s/{slug}/responses", public(publicHandler.SubmitResponse))
	mux.HandleFunc("GET /s/{slug}/my-status", public(publicHandler.MyStatus))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-survey API v1"))
	})

	return mux
}
