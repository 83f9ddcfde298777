// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-survey/auth"
	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
)

// slugAttempts bounds the collision retries when publishing
const slugAttempts = 5

type SurveyHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewSurveyHandler(conn *sql.DB, cfg cliparse.Config) *SurveyHandler {
	return &SurveyHandler{store: db.NewStore(conn), cfg: cfg}
}

// CreateSurvey handles POST /surveys
func (h *SurveyHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	var req models.CreateSurveyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.TaggedError(w, http.StatusUnprocessableEntity, "validation_error", "title is required")
		return
	}

	survey := &models.Survey{
		ID:                  uuid.NewString(),
		OwnerID:             ownerID,
		Title:               title,
		Description:         strings.TrimSpace(req.Description),
		Status:              models.StatusDraft,
		SingleResponse:      req.SingleResponse,
		SingleResponseScope: req.SingleResponseScope,
	}
	if err := h.store.CreateSurvey(r.Context(), survey); err != nil {
		slog.Error("failed to insert survey", "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to create survey")
		return
	}

	slog.Info("survey created", "survey_id", survey.ID, "owner_id", ownerID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSurveyResponse{ID: survey.ID})
}

// ListSurveys handles GET /surveys
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	surveys, err := h.store.ListSurveys(r.Context(), ownerID)
	if err != nil {
		slog.Error("failed to list surveys", "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to list surveys")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListSurveysResponse{Surveys: surveys})
}

// GetSurvey handles GET /surveys/{id}
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.ownedSurvey(w, r)
	if !ok {
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), survey.ID)
	if err != nil {
		slog.Error("failed to list questions", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load questions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SurveyWithQuestions{
		Survey:    *survey,
		Questions: questions,
	})
}

// UpdateSurvey handles PATCH /surveys/{id}
func (h *SurveyHandler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.ownedSurvey(w, r)
	if !ok {
		return
	}

	var req models.UpdateSurveyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			middleware.TaggedError(w, http.StatusUnprocessableEntity, "validation_error", "title cannot be empty")
			return
		}
		survey.Title = title
	}
	if req.Description != nil {
		survey.Description = strings.TrimSpace(*req.Description)
	}
	if req.SingleResponse != nil {
		survey.SingleResponse = *req.SingleResponse
	}
	if req.SingleResponseScope != nil {
		survey.SingleResponseScope = *req.SingleResponseScope
	}

	if err := h.store.UpdateSurvey(r.Context(), survey); err != nil {
		slog.Error("failed to update survey", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to update survey")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, survey)
}

// DeleteSurvey handles DELETE /surveys/{id}
func (h *SurveyHandler) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	surveyID := r.PathValue("id")

	err := h.store.DeleteSurvey(r.Context(), surveyID, ownerID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete survey", "survey_id", surveyID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to delete survey")
		return
	}

	slog.Info("survey deleted", "survey_id", surveyID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /surveys/{id}/status
func (h *SurveyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.TaggedError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return
	}
	h.applyAction(w, r, strings.ToLower(strings.TrimSpace(req.Action)))
}

// PublishSurvey handles POST /surveys/{id}/publish
func (h *SurveyHandler) PublishSurvey(w http.ResponseWriter, r *http.Request) {
	h.applyAction(w, r, models.ActionPublish)
}

func (h *SurveyHandler) applyAction(w http.ResponseWriter, r *http.Request, action string) {
	if action != models.ActionPublish && action != models.ActionClose && action != models.ActionReopen {
		middleware.TaggedError(w, http.StatusUnprocessableEntity, "invalid_action", "action must be publish, close or reopen")
		return
	}

	survey, ok := h.ownedSurvey(w, r)
	if !ok {
		return
	}

	if action == models.ActionClose {
		err := h.store.SetSurveyStatus(r.Context(), survey.ID, survey.OwnerID, models.StatusClosed, nil, nil)
		if err != nil {
			slog.Error("failed to close survey", "survey_id", survey.ID, "error", err)
			middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to close survey")
			return
		}
		slog.Info("survey closed", "survey_id", survey.ID)
		middleware.JSONResponse(w, http.StatusOK, h.statusResponse(models.StatusClosed, survey.Slug))
		return
	}

	slug, err := h.publish(r, survey)
	if err != nil {
		slog.Error("failed to publish survey", "survey_id", survey.ID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to publish survey")
		return
	}

	slog.Info("survey published", "survey_id", survey.ID, "slug", slug)
	middleware.JSONResponse(w, http.StatusOK, h.statusResponse(models.StatusPublished, &slug))
}

// publish marks the survey published, assigning a slug on first publish.
// An existing slug is reused.
func (h *SurveyHandler) publish(r *http.Request, survey *models.Survey) (string, error) {
	ctx := r.Context()
	publishedAt := time.Now().UTC()

	if survey.Slug != nil {
		err := h.store.SetSurveyStatus(ctx, survey.ID, survey.OwnerID, models.StatusPublished, nil, &publishedAt)
		return *survey.Slug, err
	}

	base := auth.Slugify(survey.Title)
	if base == "" {
		base = "survey"
	}

	candidate := base
	var lastErr error
	for i := 0; i < slugAttempts; i++ {
		if i > 0 {
			suffix, err := auth.SlugSuffix()
			if err != nil {
				return "", err
			}
			candidate = base + "-" + suffix
		}

		taken, err := h.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		err = h.store.SetSurveyStatus(ctx, survey.ID, survey.OwnerID, models.StatusPublished, &candidate, &publishedAt)
		if errors.Is(err, db.ErrDuplicate) {
			// Taken between the check and the update
			lastErr = err
			continue
		}
		return candidate, err
	}

	if lastErr == nil {
		lastErr = errors.New("no free slug for " + base)
	}
	return "", lastErr
}

func (h *SurveyHandler) statusResponse(status string, slug *string) models.StatusResponse {
	resp := models.StatusResponse{Status: status, Slug: slug}
	if slug != nil && h.cfg.BaseURL != "" {
		resp.ShareURL = strings.TrimRight(h.cfg.BaseURL, "/") + "/s/" + *slug
	}
	return resp
}

// ownedSurvey loads the {id} survey for the caller, writing 404 otherwise
func (h *SurveyHandler) ownedSurvey(w http.ResponseWriter, r *http.Request) (*models.Survey, bool) {
	return loadOwnedSurvey(w, r, h.store)
}

func loadOwnedSurvey(w http.ResponseWriter, r *http.Request, store *db.Store) (*models.Survey, bool) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	surveyID := r.PathValue("id")

	survey, err := store.GetSurvey(r.Context(), surveyID, ownerID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load survey", "survey_id", surveyID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load survey")
		return nil, false
	}
	return survey, true
}
