// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-survey/admission"
	"github.com/danielhkuo/quickly-survey/auth"
	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
)

// PublicHandler serves the respondent-facing /s/{slug} endpoints.
type PublicHandler struct {
	store      *db.Store
	controller *admission.Controller
	cfg        cliparse.Config
}

func NewPublicHandler(conn *sql.DB, cfg cliparse.Config) *PublicHandler {
	store := db.NewStore(conn)
	return &PublicHandler{
		store:      store,
		controller: admission.NewController(store),
		cfg:        cfg,
	}
}

// GetSurvey handles GET /s/{slug}
func (h *PublicHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	survey, err := h.store.SurveyBySlug(r.Context(), slug)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to load survey", "slug", slug, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load survey")
		return
	}
	if survey.Status != models.StatusPublished {
		middleware.TaggedError(w, http.StatusGone, "survey_not_available", "This survey is not accepting responses")
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), survey.ID)
	if err != nil {
		slog.Error("failed to list questions", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load questions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PublicSurveyResponse{
		Survey: models.PublicSurvey{
			ID:          survey.ID,
			Title:       survey.Title,
			Description: survey.Description,
			Status:      survey.Status,
			Slug:        survey.Slug,
		},
		Questions: questions,
	})
}

// SubmitResponse handles POST /s/{slug}/responses
func (h *PublicHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.TaggedError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	meta := admission.MetaFromUserAgent(r.UserAgent())
	if req.Meta != nil {
		meta = *req.Meta
	}

	sub := admission.Submission{
		Slug:        r.PathValue("slug"),
		UserID:      userID,
		Token:       strings.TrimSpace(req.RespondentToken),
		Fingerprint: strings.TrimSpace(req.RespondentFp),
		IPHash:      auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
		Meta:        meta,
		Answers:     req.Answers,
	}

	receipt, err := h.controller.Submit(r.Context(), sub)
	if err != nil {
		writeAdmissionError(w, sub.Slug, err)
		return
	}

	resp := receipt.Response
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResult{
		Success: true,
		Message: "Response submitted successfully",
		Data: models.SubmitResponseData{
			ResponseID:   resp.ID,
			SurveyID:     receipt.Survey.ID,
			SurveyTitle:  receipt.Survey.Title,
			SubmittedAt:  resp.SubmittedAt,
			TotalAnswers: len(resp.Items),
			IsAnonymous:  resp.UserID == nil,
		},
	})
}

// MyStatus handles GET /s/{slug}/my-status
func (h *PublicHandler) MyStatus(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	userID, _ := middleware.UserIDFromContext(r.Context())
	query := r.URL.Query()

	status, err := h.controller.Status(r.Context(), slug, userID,
		strings.TrimSpace(query.Get("token")), strings.TrimSpace(query.Get("fp")))
	if err != nil {
		writeAdmissionError(w, slug, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// writeAdmissionError turns a controller rejection into its tagged response
func writeAdmissionError(w http.ResponseWriter, slug string, err error) {
	var answered *admission.AlreadyAnsweredError

	switch {
	case errors.Is(err, admission.ErrSurveyNotFound):
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
	case errors.Is(err, admission.ErrSurveyNotAvailable):
		middleware.TaggedError(w, http.StatusGone, "survey_not_available", "This survey is not accepting responses")
	case errors.Is(err, admission.ErrLoginRequired):
		middleware.JSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{
			Error:         "login_required",
			Message:       "You must sign in to answer this survey",
			RequiresLogin: true,
			Continue:      slug,
		})
	case errors.Is(err, admission.ErrDeviceIdentifierRequired):
		middleware.TaggedError(w, http.StatusBadRequest, "device_identifier_required",
			"A respondent token or fingerprint is required for this survey")
	case errors.As(err, &answered):
		middleware.JSONResponse(w, http.StatusConflict, models.ErrorResponse{
			Error:      "already_answered",
			Message:    "You have already answered this survey",
			ResponseID: answered.ResponseID,
		})
	case errors.Is(err, admission.ErrMissingRequiredField):
		middleware.TaggedError(w, http.StatusBadRequest, "missing_required_field", err.Error())
	case errors.Is(err, admission.ErrItems):
		slog.Error("failed to store answers", "slug", slug, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "items_error",
			Message: "Failed to store answers",
			Details: err.Error(),
		})
	default:
		slog.Error("submission failed", "slug", slug, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to process response",
			Details: err.Error(),
		})
	}
}
