// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-survey/analytics"
	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/export"
	"github.com/danielhkuo/quickly-survey/middleware"
)

type AnalyticsHandler struct {
	engine *analytics.Engine
	cfg    cliparse.Config
}

// AnalyticsResponse wraps a report
type AnalyticsResponse struct {
	Success bool              `json:"success"`
	Data    *analytics.Report `json:"data"`
}

func NewAnalyticsHandler(conn *sql.DB, cfg cliparse.Config) *AnalyticsHandler {
	return &AnalyticsHandler{engine: analytics.NewEngine(db.NewStore(conn)), cfg: cfg}
}

// GetAnalytics handles GET /surveys/{id}/analytics
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	surveyID := r.PathValue("id")

	report, err := h.engine.Report(r.Context(), surveyID, ownerID)
	if errors.Is(err, analytics.ErrSurveyNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to build analytics", "survey_id", surveyID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load analytics")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, AnalyticsResponse{Success: true, Data: report})
}

// ExportResponses handles GET /surveys/{id}/analytics/export?format=csv|json
func (h *AnalyticsHandler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	surveyID := r.PathValue("id")

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatCSV
	}
	contentType, err := export.ContentType(format)
	if err != nil {
		middleware.TaggedError(w, http.StatusBadRequest, "unsupported_format", "format must be csv or json")
		return
	}

	data, err := h.engine.Load(r.Context(), surveyID, ownerID)
	if errors.Is(err, analytics.ErrSurveyNotFound) {
		middleware.TaggedError(w, http.StatusNotFound, "survey_not_found", "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to load export data", "survey_id", surveyID, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "database_error", "Failed to load responses")
		return
	}
	if len(data.Responses) == 0 {
		middleware.TaggedError(w, http.StatusNotFound, "no_responses", "This survey has no responses to export")
		return
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, data, now); err != nil {
		slog.Error("failed to render export", "survey_id", surveyID, "format", format, "error", err)
		middleware.TaggedError(w, http.StatusInternalServerError, "export_error", "Failed to render export")
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(data.Survey.Title, format, now),
	})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "survey_id", surveyID, "error", err)
	}

	slog.Info("responses exported", "survey_id", surveyID, "format", format, "responses", len(data.Responses))
}
