// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
	"github.com/danielhkuo/quickly-survey/testutil"
)

func TestUnauthenticatedEndpoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := middleware.CORS(NewRouter(db, cfg))

	testCases := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{"health", "GET", "/health", nil, http.StatusOK, "OK"},
		{"health ignores a broken token", "GET", "/health", map[string]string{"Authorization": "Bearer broken"}, http.StatusOK, "OK"},
		{"banner", "GET", "/", nil, http.StatusOK, "quickly-survey API v1"},
		{"unknown path is not the banner", "GET", "/nope", nil, http.StatusNotFound, ""},
		// Browsers send preflights without credentials
		{"preflight on owner route", "OPTIONS", "/surveys/test-id", map[string]string{"Origin": "https://app.example.com"}, http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest(tc.method, tc.path, nil, tc.headers)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			testutil.AssertStatus(t, w, tc.wantStatus)
			if tc.wantBody != "" && w.Body.String() != tc.wantBody {
				t.Errorf("Expected body %q, got %q", tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestUnknownSlugEnvelope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/s/does-not-exist", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error != "survey_not_found" {
		t.Errorf("Expected survey_not_found, got %q", resp.Error)
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)
	headers := testutil.AuthHeader(t, cfg, testutil.TestOwnerID)

	// Routes respond; 400, 404 and 422 are valid handler outcomes here
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"POST", "/surveys"},
		{"GET", "/surveys"},
		{"GET", "/surveys/test-id"},
		{"PATCH", "/surveys/test-id"},
		{"DELETE", "/surveys/test-id"},
		{"PATCH", "/surveys/test-id/status"},
		{"POST", "/surveys/test-id/publish"},
		{"GET", "/surveys/test-id/questions"},
		{"POST", "/surveys/test-id/questions"},
		{"PATCH", "/surveys/test-id/questions/q-id"},
		{"DELETE", "/surveys/test-id/questions/q-id"},
		{"GET", "/surveys/test-id/analytics"},
		{"GET", "/surveys/test-id/analytics/export"},

		{"GET", "/s/test-slug"},
		{"POST", "/s/test-slug/responses"},
		{"GET", "/s/test-slug/my-status"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := testutil.MakeRequest(tc.method, tc.path, nil, headers)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
			if w.Code == http.StatusUnauthorized {
				t.Errorf("Route %s %s rejected a valid identity", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},                    // Only GET is defined
		{"PUT", "/surveys/test-id"},            // GET, PATCH and DELETE are defined
		{"DELETE", "/s/test-slug/responses"},   // Only POST is defined
		{"POST", "/surveys/test-id/analytics"}, // Only GET is defined
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestOwnerRoutesRequireIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
	}{
		{"no header", "GET", "/surveys", nil},
		{"bad token", "GET", "/surveys", map[string]string{"Authorization": "Bearer nope"}},
		{"analytics", "GET", "/surveys/test-id/analytics", nil},
		{"export", "GET", "/surveys/test-id/analytics/export", nil},
		{"create", "POST", "/surveys", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest(tc.method, tc.path, nil, tc.headers)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	surveyID, slug := testutil.CreateTestSurvey(t, db, testutil.SurveyOptions{})

	mux := NewRouter(db, cfg)

	t.Run("survey ID extraction", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/surveys/"+surveyID, nil, testutil.AuthHeader(t, cfg, testutil.TestOwnerID))
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("slug extraction", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/s/"+slug, nil, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.PublicSurveyResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Survey.ID != surveyID {
			t.Errorf("Expected survey %s, got %s", surveyID, resp.Survey.ID)
		}
	})
}

func TestSubmissionThroughRouter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	surveyID, slug := testutil.CreateTestSurvey(t, db, testutil.SurveyOptions{SingleResponse: true, Scope: models.ScopeUser})
	mux := NewRouter(db, cfg)

	body := models.SubmitResponseRequest{}

	// Anonymous caller is sent to login
	req := testutil.MakeRequest("POST", "/s/"+slug+"/responses", body, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	var loginResp models.ErrorResponse
	testutil.AssertJSON(t, w, &loginResp)
	if loginResp.Error != "login_required" {
		t.Errorf("Expected login_required, got %s", loginResp.Error)
	}

	// An invalid token on the public path counts as anonymous
	req = testutil.MakeRequest("POST", "/s/"+slug+"/responses", body, map[string]string{"Authorization": "Bearer broken"})
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	headers := testutil.AuthHeader(t, cfg, "respondent-1")
	req = testutil.MakeRequest("POST", "/s/"+slug+"/responses", body, headers)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	req = testutil.MakeRequest("POST", "/s/"+slug+"/responses", body, headers)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	req = testutil.MakeRequest("GET", "/s/"+slug+"/my-status", nil, headers)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	var status models.MyStatusResponse
	testutil.AssertJSON(t, w, &status)
	if !status.AlreadyResponded {
		t.Error("Expected alreadyResponded after submitting")
	}

	if n := testutil.CountTestResponses(t, db, surveyID); n != 1 {
		t.Errorf("Expected 1 response, got %d", n)
	}
}
