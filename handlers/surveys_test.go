// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
	"github.com/danielhkuo/quickly-survey/testutil"
)

// asUser attaches a resolved identity, as WithIdentity would
func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func TestCreateSurvey(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid survey",
			body:           models.CreateSurveyRequest{Title: "Customer Feedback", SingleResponse: true},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           models.CreateSurveyRequest{Description: "no title"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "validation_error",
		},
		{
			name:           "blank title",
			body:           models.CreateSurveyRequest{Title: "   "},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "validation_error",
		},
		{
			name:           "bad scope",
			body:           map[string]any{"title": "Scoped", "single_response_scope": "planet"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "validation_error",
		},
		{
			name:           "invalid json",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(testutil.MakeRequest("POST", "/surveys", tt.body, nil), testutil.TestOwnerID)
			w := httptest.NewRecorder()

			handler.CreateSurvey(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedError != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error != tt.expectedError {
					t.Errorf("Expected error %q, got %q", tt.expectedError, resp.Error)
				}
				return
			}

			var resp models.CreateSurveyResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.ID == "" {
				t.Fatal("Expected non-empty id")
			}

			var status, scope string
			var slug *string
			err := conn.QueryRow(`SELECT status, slug, single_response_scope FROM survey WHERE id = $1`, resp.ID).
				Scan(&status, &slug, &scope)
			if err != nil {
				t.Fatalf("Failed to load created survey: %v", err)
			}
			if status != models.StatusDraft {
				t.Errorf("Expected draft status, got %s", status)
			}
			if slug != nil {
				t.Errorf("Expected no slug for a draft, got %s", *slug)
			}
			if scope != models.ScopeDevice {
				t.Errorf("Expected default scope device, got %s", scope)
			}
		})
	}
}

func TestCreateSurvey_ValidationFields(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())

	req := asUser(testutil.MakeRequest("POST", "/surveys", map[string]any{"description": "x"}, nil), testutil.TestOwnerID)
	w := httptest.NewRecorder()
	handler.CreateSurvey(w, req)

	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Fields["title"] != "required" {
		t.Errorf("Expected fields.title = required, got %v", resp.Fields)
	}
}

func TestListAndGetSurvey(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())

	surveyID, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{})
	testutil.AddTestQuestion(t, conn, surveyID, models.QuestionText, "Anything else?", false)
	testutil.SubmitTestResponse(t, conn, surveyID, testutil.TestResponse{})

	t.Run("list", func(t *testing.T) {
		req := asUser(testutil.MakeRequest("GET", "/surveys", nil, nil), testutil.TestOwnerID)
		w := httptest.NewRecorder()
		handler.ListSurveys(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ListSurveysResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Surveys) != 1 {
			t.Fatalf("Expected 1 survey, got %d", len(resp.Surveys))
		}
		if resp.Surveys[0].ResponseCount != 1 {
			t.Errorf("Expected response_count 1, got %d", resp.Surveys[0].ResponseCount)
		}
	})

	t.Run("list for other user is empty", func(t *testing.T) {
		req := asUser(testutil.MakeRequest("GET", "/surveys", nil, nil), "someone-else")
		w := httptest.NewRecorder()
		handler.ListSurveys(w, req)

		var resp models.ListSurveysResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Surveys) != 0 {
			t.Errorf("Expected no surveys, got %d", len(resp.Surveys))
		}
	})

	t.Run("get with questions", func(t *testing.T) {
		req := asUser(testutil.MakeRequest("GET", "/surveys/"+surveyID, nil, nil), testutil.TestOwnerID)
		req.SetPathValue("id", surveyID)
		w := httptest.NewRecorder()
		handler.GetSurvey(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.SurveyWithQuestions
		testutil.AssertJSON(t, w, &resp)
		if resp.Survey.ID != surveyID {
			t.Errorf("Expected survey %s, got %s", surveyID, resp.Survey.ID)
		}
		if len(resp.Questions) != 1 || resp.Questions[0].OrderIndex != 1 {
			t.Errorf("Expected one question at order 1, got %+v", resp.Questions)
		}
	})

	t.Run("get not owned", func(t *testing.T) {
		req := asUser(testutil.MakeRequest("GET", "/surveys/"+surveyID, nil, nil), "someone-else")
		req.SetPathValue("id", surveyID)
		w := httptest.NewRecorder()
		handler.GetSurvey(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestUpdateSurvey(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())
	surveyID, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{Status: models.StatusDraft})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		check          func(t *testing.T, s models.Survey)
	}{
		{
			name:           "partial update keeps other fields",
			body:           map[string]any{"title": "Renamed"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, s models.Survey) {
				if s.Title != "Renamed" {
					t.Errorf("Expected title Renamed, got %s", s.Title)
				}
				if s.Description != "A test survey" {
					t.Errorf("Expected description kept, got %q", s.Description)
				}
			},
		},
		{
			name:           "single response settings",
			body:           map[string]any{"single_response": true, "single_response_scope": "user"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, s models.Survey) {
				if !s.SingleResponse || s.SingleResponseScope != models.ScopeUser {
					t.Errorf("Expected single user scope, got %v/%s", s.SingleResponse, s.SingleResponseScope)
				}
			},
		},
		{
			name:           "empty title rejected",
			body:           map[string]any{"title": "  "},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(testutil.MakeRequest("PATCH", "/surveys/"+surveyID, tt.body, nil), testutil.TestOwnerID)
			req.SetPathValue("id", surveyID)
			w := httptest.NewRecorder()

			handler.UpdateSurvey(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.check != nil {
				var s models.Survey
				testutil.AssertJSON(t, w, &s)
				tt.check(t, s)
			}
		})
	}
}

func TestDeleteSurvey(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())
	surveyID, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{})
	qid := testutil.AddTestQuestion(t, conn, surveyID, models.QuestionText, "Why?", false)
	testutil.SubmitTestResponse(t, conn, surveyID, testutil.TestResponse{
		Answers: map[string]models.Value{qid: models.TextValue("because")},
	})

	// Another owner cannot delete it
	req := asUser(testutil.MakeRequest("DELETE", "/surveys/"+surveyID, nil, nil), "someone-else")
	req.SetPathValue("id", surveyID)
	w := httptest.NewRecorder()
	handler.DeleteSurvey(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	req = asUser(testutil.MakeRequest("DELETE", "/surveys/"+surveyID, nil, nil), testutil.TestOwnerID)
	req.SetPathValue("id", surveyID)
	w = httptest.NewRecorder()
	handler.DeleteSurvey(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if n := testutil.CountTestResponses(t, conn, surveyID); n != 0 {
		t.Errorf("Expected responses to cascade, %d left", n)
	}
}

func TestUpdateStatus(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewSurveyHandler(conn, cfg)

	surveyID, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{Status: models.StatusDraft})

	patch := func(action string) *httptest.ResponseRecorder {
		req := asUser(testutil.MakeRequest("PATCH", "/surveys/"+surveyID+"/status",
			models.StatusRequest{Action: action}, nil), testutil.TestOwnerID)
		req.SetPathValue("id", surveyID)
		w := httptest.NewRecorder()
		handler.UpdateStatus(w, req)
		return w
	}

	// Publish assigns a slug from the title
	w := patch("publish")
	testutil.AssertStatus(t, w, http.StatusOK)
	var published models.StatusResponse
	testutil.AssertJSON(t, w, &published)
	if published.Status != models.StatusPublished {
		t.Errorf("Expected published, got %s", published.Status)
	}
	if published.Slug == nil || *published.Slug != "test-survey" {
		t.Fatalf("Expected slug test-survey, got %v", published.Slug)
	}
	if published.ShareURL != cfg.BaseURL+"/s/test-survey" {
		t.Errorf("Unexpected share_url %s", published.ShareURL)
	}

	// Close keeps the slug
	w = patch("Close")
	testutil.AssertStatus(t, w, http.StatusOK)
	var closed models.StatusResponse
	testutil.AssertJSON(t, w, &closed)
	if closed.Status != models.StatusClosed || closed.Slug == nil || *closed.Slug != "test-survey" {
		t.Errorf("Expected closed with slug kept, got %+v", closed)
	}

	// Reopen reuses it
	w = patch("reopen")
	testutil.AssertStatus(t, w, http.StatusOK)
	var reopened models.StatusResponse
	testutil.AssertJSON(t, w, &reopened)
	if reopened.Slug == nil || *reopened.Slug != "test-survey" {
		t.Errorf("Expected slug reused, got %v", reopened.Slug)
	}

	w = patch("archive")
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error != "invalid_action" {
		t.Errorf("Expected invalid_action, got %s", resp.Error)
	}
}

func TestPublishSurvey_SlugCollision(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewSurveyHandler(conn, testutil.GetTestConfig())

	publish := func(surveyID string) models.StatusResponse {
		t.Helper()
		req := asUser(testutil.MakeRequest("POST", "/surveys/"+surveyID+"/publish", nil, nil), testutil.TestOwnerID)
		req.SetPathValue("id", surveyID)
		w := httptest.NewRecorder()
		handler.PublishSurvey(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.StatusResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Slug == nil {
			t.Fatal("Expected a slug")
		}
		return resp
	}

	first, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{Status: models.StatusDraft})
	second, _ := testutil.CreateTestSurvey(t, conn, testutil.SurveyOptions{Status: models.StatusDraft})

	a := publish(first)
	b := publish(second)

	if *a.Slug != "test-survey" {
		t.Errorf("Expected first slug test-survey, got %s", *a.Slug)
	}
	if *b.Slug == *a.Slug {
		t.Fatalf("Expected distinct slugs, both %s", *a.Slug)
	}
	if len(*b.Slug) != len("test-survey-")+4 {
		t.Errorf("Expected suffixed slug, got %s", *b.Slug)
	}
}
