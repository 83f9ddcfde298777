// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-survey/models"
)

func openTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	conn, err := Open("sqlite", "file:"+filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return NewStore(conn), conn
}

func createSurvey(t *testing.T, store *Store, owner string, single bool, scope string) *models.Survey {
	t.Helper()

	sv := &models.Survey{
		ID:                  uuid.NewString(),
		OwnerID:             owner,
		Title:               "Store Survey",
		SingleResponse:      single,
		SingleResponseScope: scope,
	}
	if err := store.CreateSurvey(context.Background(), sv); err != nil {
		t.Fatalf("CreateSurvey() error = %v", err)
	}
	return sv
}

func addQuestion(t *testing.T, store *Store, surveyID, qType string) *models.Question {
	t.Helper()

	q := &models.Question{
		ID:       uuid.NewString(),
		SurveyID: surveyID,
		Type:     qType,
		Text:     "Question " + qType,
	}
	if qType != models.QuestionText {
		q.Options = []models.Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}
	}
	if err := store.AddQuestion(context.Background(), q); err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}
	return q
}

func TestCreateSchema_Idempotent(t *testing.T) {
	_, conn := openTestStore(t)

	if err := CreateSchema(conn); err != nil {
		t.Errorf("second CreateSchema() error = %v", err)
	}
}

func TestSurveyLifecycle(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sv := createSurvey(t, store, "owner-1", true, models.ScopeUser)

	got, err := store.GetSurvey(ctx, sv.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetSurvey() error = %v", err)
	}
	if got.Status != models.StatusDraft || got.Slug != nil {
		t.Errorf("new survey should be an unslugged draft, got %s %v", got.Status, got.Slug)
	}
	if !got.SingleResponse || got.SingleResponseScope != models.ScopeUser {
		t.Errorf("single-response settings not persisted: %+v", got)
	}

	// Other owners cannot see it
	if _, err := store.GetSurvey(ctx, sv.ID, "owner-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSurvey() foreign owner error = %v, want ErrNotFound", err)
	}

	slug := "store-survey"
	now := time.Now().UTC()
	if err := store.SetSurveyStatus(ctx, sv.ID, "owner-1", models.StatusPublished, &slug, &now); err != nil {
		t.Fatalf("SetSurveyStatus() error = %v", err)
	}

	// Closing keeps the slug
	if err := store.SetSurveyStatus(ctx, sv.ID, "owner-1", models.StatusClosed, nil, nil); err != nil {
		t.Fatalf("SetSurveyStatus(closed) error = %v", err)
	}
	bySlug, err := store.SurveyBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("SurveyBySlug() error = %v", err)
	}
	if bySlug.Status != models.StatusClosed {
		t.Errorf("expected closed, got %s", bySlug.Status)
	}
	if bySlug.PublishedAt == nil {
		t.Error("expected published_at to be retained")
	}

	exists, err := store.SlugExists(ctx, slug)
	if err != nil || !exists {
		t.Errorf("SlugExists() = %v, %v", exists, err)
	}

	// A second survey cannot take the same slug
	other := createSurvey(t, store, "owner-1", false, models.ScopeDevice)
	err = store.SetSurveyStatus(ctx, other.ID, "owner-1", models.StatusPublished, &slug, &now)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate slug error = %v, want ErrDuplicate", err)
	}

	list, err := store.ListSurveys(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListSurveys() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 surveys, got %d", len(list))
	}

	if err := store.DeleteSurvey(ctx, sv.ID, "owner-1"); err != nil {
		t.Fatalf("DeleteSurvey() error = %v", err)
	}
	if err := store.DeleteSurvey(ctx, sv.ID, "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSurvey() error = %v, want ErrNotFound", err)
	}
}

func TestAddQuestion_OrderIndex(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	sv := createSurvey(t, store, "owner-1", false, models.ScopeDevice)

	q1 := addQuestion(t, store, sv.ID, models.QuestionSingle)
	q2 := addQuestion(t, store, sv.ID, models.QuestionText)
	q3 := addQuestion(t, store, sv.ID, models.QuestionLikert)

	if q1.OrderIndex != 1 || q2.OrderIndex != 2 || q3.OrderIndex != 3 {
		t.Errorf("order indexes = %d,%d,%d, want 1,2,3", q1.OrderIndex, q2.OrderIndex, q3.OrderIndex)
	}

	// Deleting does not reuse indexes
	if err := store.DeleteQuestion(ctx, sv.ID, q3.ID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	if err := store.DeleteQuestion(ctx, sv.ID, q1.ID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	q4 := addQuestion(t, store, sv.ID, models.QuestionMultiple)
	if q4.OrderIndex != 3 {
		t.Errorf("expected order index 3 after deletes, got %d", q4.OrderIndex)
	}

	questions, err := store.ListQuestions(ctx, sv.ID)
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(questions) != 2 || questions[0].ID != q2.ID || questions[1].ID != q4.ID {
		t.Errorf("unexpected question order: %+v", questions)
	}
	if len(questions[1].Options) != 2 || questions[1].Options[0].Value != "yes" {
		t.Errorf("options not round-tripped: %+v", questions[1].Options)
	}
}

func TestCreateResponse(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	sv := createSurvey(t, store, "owner-1", true, models.ScopeDevice)
	q1 := addQuestion(t, store, sv.ID, models.QuestionMultiple)
	q2 := addQuestion(t, store, sv.ID, models.QuestionText)

	token := "tok-1"
	resp := &models.Response{
		ID:              uuid.NewString(),
		SurveyID:        sv.ID,
		RespondentToken: &token,
		Meta:            models.ResponseMeta{IsMobile: true, Browser: "Safari 17"},
		Items: []models.ResponseItem{
			{QuestionID: q1.ID, Value: models.ListValue("yes", "no")},
			{QuestionID: q2.ID, Value: models.TextValue("hello, \"world\"")},
		},
	}
	if err := store.CreateResponse(ctx, resp, []Claim{{Kind: ClaimToken, Key: token}}); err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}

	id, err := store.FindResponseByToken(ctx, sv.ID, token)
	if err != nil || id != resp.ID {
		t.Errorf("FindResponseByToken() = %q, %v", id, err)
	}
	if _, err := store.FindResponseByFingerprint(ctx, sv.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindResponseByFingerprint() error = %v, want ErrNotFound", err)
	}

	responses, err := store.ListResponses(ctx, sv.ID)
	if err != nil {
		t.Fatalf("ListResponses() error = %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	got := responses[0]
	if !got.Meta.IsMobile || got.Meta.Browser != "Safari 17" {
		t.Errorf("meta not round-tripped: %+v", got.Meta)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Value.Kind != models.KindList || len(got.Items[0].Value.List) != 2 {
		t.Errorf("list value not round-tripped: %+v", got.Items[0].Value)
	}
	if got.Items[1].Value.Text != "hello, \"world\"" {
		t.Errorf("text value not round-tripped: %+v", got.Items[1].Value)
	}
}

func TestCreateResponse_ClaimCollision(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	sv := createSurvey(t, store, "owner-1", true, models.ScopeDevice)

	first := &models.Response{ID: uuid.NewString(), SurveyID: sv.ID}
	if err := store.CreateResponse(ctx, first, []Claim{{Kind: ClaimFp, Key: "fp-1"}}); err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}

	second := &models.Response{ID: uuid.NewString(), SurveyID: sv.ID}
	err := store.CreateResponse(ctx, second, []Claim{{Kind: ClaimToken, Key: "tok-2"}, {Kind: ClaimFp, Key: "fp-1"}})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("CreateResponse() error = %v, want ErrDuplicate", err)
	}

	count, err := store.CountResponses(ctx, sv.ID)
	if err != nil {
		t.Fatalf("CountResponses() error = %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 response after rollback, got %d", count)
	}
	if _, err := store.FindResponseByToken(ctx, sv.ID, "tok-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rolled back claim still visible: %v", err)
	}
}

func TestCreateResponse_ItemFailureRollsBack(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	sv := createSurvey(t, store, "owner-1", false, models.ScopeDevice)

	resp := &models.Response{
		ID:       uuid.NewString(),
		SurveyID: sv.ID,
		Items: []models.ResponseItem{
			// No such question: the foreign key rejects the item
			{QuestionID: "missing-question", Value: models.TextValue("orphan")},
		},
	}
	err := store.CreateResponse(ctx, resp, nil)
	if !errors.Is(err, ErrItemsInsert) {
		t.Fatalf("CreateResponse() error = %v, want ErrItemsInsert", err)
	}
	if errors.Is(err, ErrDuplicate) {
		t.Error("item failure must not read as a duplicate")
	}

	count, _ := store.CountResponses(ctx, sv.ID)
	if count != 0 {
		t.Errorf("expected no orphaned response, got %d", count)
	}
}

func TestListSubmissionTimes(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	sv := createSurvey(t, store, "owner-1", false, models.ScopeDevice)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, ago := range []time.Duration{0, 24 * time.Hour, 10 * 24 * time.Hour} {
		r := &models.Response{ID: uuid.NewString(), SurveyID: sv.ID, SubmittedAt: now.Add(-ago)}
		if err := store.CreateResponse(ctx, r, nil); err != nil {
			t.Fatalf("CreateResponse() error = %v", err)
		}
	}

	times, err := store.ListSubmissionTimes(ctx, sv.ID, now.AddDate(0, 0, -6).Truncate(24*time.Hour))
	if err != nil {
		t.Fatalf("ListSubmissionTimes() error = %v", err)
	}
	if len(times) != 2 {
		t.Errorf("expected 2 recent submissions, got %d", len(times))
	}
}
