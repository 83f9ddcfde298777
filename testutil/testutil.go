// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-survey/auth"
	"github.com/danielhkuo/quickly-survey/cliparse"
	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/models"
)

// TestOwnerID owns the surveys created by CreateTestSurvey
const TestOwnerID = "owner-test-user"

// SetupTestDB creates a fresh SQLite database with the full schema.
// Each test gets its own file, so tests never share rows.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file:test.db",
		DatabaseType: "sqlite",
		JWTSecret:    "test-jwt-secret",
		IPHashSalt:   "test-ip-salt",
		BaseURL:      "http://localhost:3318",
	}
}

// SurveyOptions customizes CreateTestSurvey
type SurveyOptions struct {
	Status         string
	SingleResponse bool
	Scope          string
}

// CreateTestSurvey creates a survey owned by TestOwnerID and returns its ID
// and slug. Published and closed surveys get a slug.
func CreateTestSurvey(t *testing.T, conn *sql.DB, opts SurveyOptions) (surveyID, slug string) {
	t.Helper()

	if opts.Status == "" {
		opts.Status = models.StatusPublished
	}
	if opts.Scope == "" {
		opts.Scope = models.ScopeDevice
	}

	surveyID = uuid.NewString()
	var slugPtr *string
	var publishedAt *time.Time
	if opts.Status != models.StatusDraft {
		suffix, _ := auth.SlugSuffix()
		slug = "test-survey-" + suffix
		slugPtr = &slug
		now := time.Now().UTC()
		publishedAt = &now
	}

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO survey (id, owner_id, title, description, status, slug,
			single_response, single_response_scope, created_at, updated_at, published_at)
		VALUES ($1, $2, 'Test Survey', 'A test survey', $3, $4, $5, $6, $7, $8, $9)
	`, surveyID, TestOwnerID, opts.Status, slugPtr, opts.SingleResponse, opts.Scope, now, now, publishedAt)
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	return surveyID, slug
}

// AddTestQuestion appends a question to a survey and returns its ID.
// Each option label doubles as its value.
func AddTestQuestion(t *testing.T, conn *sql.DB, surveyID, qType, text string, required bool, options ...string) string {
	t.Helper()

	opts := make([]models.Option, 0, len(options))
	for _, o := range options {
		opts = append(opts, models.Option{Label: o, Value: o})
	}
	q := &models.Question{
		ID:       uuid.NewString(),
		SurveyID: surveyID,
		Type:     qType,
		Text:     text,
		Required: required,
		Options:  opts,
	}
	if err := db.NewStore(conn).AddQuestion(t.Context(), q); err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return q.ID
}

// TestResponse describes a stored response for SubmitTestResponse
type TestResponse struct {
	SubmittedAt time.Time
	UserID      string
	Token       string
	Fingerprint string
	Meta        models.ResponseMeta
	Answers     map[string]models.Value
}

// SubmitTestResponse stores a response directly, bypassing admission
func SubmitTestResponse(t *testing.T, conn *sql.DB, surveyID string, tr TestResponse) string {
	t.Helper()

	if tr.SubmittedAt.IsZero() {
		tr.SubmittedAt = time.Now()
	}
	resp := &models.Response{
		ID:              uuid.NewString(),
		SurveyID:        surveyID,
		SubmittedAt:     tr.SubmittedAt,
		UserID:          optional(tr.UserID),
		RespondentToken: optional(tr.Token),
		RespondentFp:    optional(tr.Fingerprint),
		Meta:            tr.Meta,
	}
	for qid, v := range tr.Answers {
		resp.Items = append(resp.Items, models.ResponseItem{ResponseID: resp.ID, QuestionID: qid, Value: v})
	}

	if err := db.NewStore(conn).CreateResponse(t.Context(), resp, nil); err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}

	return resp.ID
}

// CountTestResponses returns the number of stored responses for a survey
func CountTestResponses(t *testing.T, conn *sql.DB, surveyID string) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM response WHERE survey_id = $1`, surveyID).Scan(&count); err != nil {
		t.Fatalf("Failed to count responses: %v", err)
	}
	return count
}

// AuthHeader returns an Authorization header for userID
func AuthHeader(t *testing.T, cfg cliparse.Config, userID string) map[string]string {
	t.Helper()

	token, err := auth.SignIdentity(userID, cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign identity: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
