// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
)

type QuestionHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewQuestionHandler(conn *sql.DB, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{store: db.NewStore(conn), cfg: cfg}
}

// ListQuestions handles GET /surveys/{id}/questions
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	survey, ok := loadOwnedSurvey(w, r, h.store)
	if !ok {
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), survey.ID)
	if err != nil {
		slog.Error("failed to list questions", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to list questions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, questions)
}

// AddQuestion handles POST /surveys/{id}/questions
func (h *QuestionHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	survey, ok := loadOwnedSurvey(w, r, h.store)
	if !ok {
		return
	}

	var req models.QuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	text := strings.TrimSpace(req.Title)
	if text == "" {
		middleware.TaggedError(w, http.StatusUnprocessableEntity, "validation_error", "title is required")
		return
	}

	q := &models.Question{
		ID:       uuid.NewString(),
		SurveyID: survey.ID,
		Type:     req.Type,
		Text:     text,
		Required: req.Required,
		Options:  normalizeOptions(req.Type, req.Options),
	}
	if err := h.store.AddQuestion(r.Context(), q); err != nil {
		slog.Error("failed to insert question", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to add question")
		return
	}

	slog.Info("question added", "survey_id", survey.ID, "question_id", q.ID, "order_index", q.OrderIndex)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{ID: q.ID})
}

// UpdateQuestion handles PATCH /surveys/{id}/questions/{qid}
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	survey, ok := loadOwnedSurvey(w, r, h.store)
	if !ok {
		return
	}

	q, ok := h.question(w, r, survey.ID)
	if !ok {
		return
	}

	var req models.UpdateQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.Title != nil {
		text := strings.TrimSpace(*req.Title)
		if text == "" {
			middleware.TaggedError(w, http.StatusUnprocessableEntity, "validation_error", "title cannot be empty")
			return
		}
		q.Text = text
	}
	if req.Required != nil {
		q.Required = *req.Required
	}
	if req.Options != nil {
		for i, opt := range *req.Options {
			if strings.TrimSpace(opt.Label) == "" {
				middleware.JSONResponse(w, http.StatusUnprocessableEntity, models.ErrorResponse{
					Error:   "validation_error",
					Message: "Validation failed",
					Fields:  map[string]string{optionField(i): "required"},
				})
				return
			}
		}
		q.Options = *req.Options
	}
	q.Options = normalizeOptions(q.Type, q.Options)

	err := h.store.UpdateQuestion(r.Context(), q)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "question_not_found", "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to update question", "question_id", q.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to update question")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, q)
}

// DeleteQuestion handles DELETE /surveys/{id}/questions/{qid}
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	survey, ok := loadOwnedSurvey(w, r, h.store)
	if !ok {
		return
	}

	questionID := r.PathValue("qid")
	err := h.store.DeleteQuestion(r.Context(), survey.ID, questionID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "question_not_found", "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete question", "question_id", questionID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to delete question")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) question(w http.ResponseWriter, r *http.Request, surveyID string) (*models.Question, bool) {
	questionID := r.PathValue("qid")
	q, err := h.store.GetQuestion(r.Context(), surveyID, questionID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "question_not_found", "Question not found")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load question", "question_id", questionID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load question")
		return nil, false
	}
	return q, true
}

func optionField(i int) string {
	return "options[" + strconv.Itoa(i) + "].label"
}
