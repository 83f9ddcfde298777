// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/models"
)

// Store is the subset of the data store the controller needs
type Store interface {
	SurveyBySlug(ctx context.Context, slug string) (*models.Survey, error)
	ListQuestions(ctx context.Context, surveyID string) ([]models.Question, error)
	FindResponseByUser(ctx context.Context, surveyID, userID string) (string, error)
	FindResponseByToken(ctx context.Context, surveyID, token string) (string, error)
	FindResponseByFingerprint(ctx context.Context, surveyID, fp string) (string, error)
	CreateResponse(ctx context.Context, r *models.Response, claims []db.Claim) error
}

// Submission is one attempt to answer a survey
type Submission struct {
	Slug        string
	UserID      string
	Token       string
	Fingerprint string
	IPHash      string
	Meta        models.ResponseMeta
	Answers     []models.Answer
}

// Receipt describes a stored response
type Receipt struct {
	Survey   *models.Survey
	Response *models.Response
}

// Controller admits or rejects submissions against a survey's
// publication state and single-response policy.
type Controller struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewController(store Store) *Controller {
	return &Controller{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Submit checks the policy chain and stores the response.
//
// Rejections come back as the package sentinels (or *AlreadyAnsweredError).
// The store's claim constraint closes the race between the existence check
// and the insert; a collision there is reported as already answered too.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	survey, err := c.openSurvey(ctx, sub.Slug)
	if err != nil {
		return nil, err
	}

	claims, err := c.admit(ctx, survey, sub.UserID, sub.Token, sub.Fingerprint)
	if err != nil {
		return nil, err
	}

	questions, err := c.store.ListQuestions(ctx, survey.ID)
	if err != nil {
		return nil, &StorageError{Op: "list questions", Err: err}
	}
	items, err := collectItems(questions, sub.Answers)
	if err != nil {
		return nil, err
	}

	resp := &models.Response{
		ID:          c.newID(),
		SurveyID:    survey.ID,
		SubmittedAt: c.now().UTC(),
		UserID:      optional(sub.UserID),
		// Every identity field is stored when present, whatever the scope
		RespondentToken: optional(sub.Token),
		RespondentFp:    optional(sub.Fingerprint),
		IPHash:          optional(sub.IPHash),
		Meta:            sub.Meta,
		Items:           items,
	}
	for i := range resp.Items {
		resp.Items[i].ResponseID = resp.ID
	}

	err = c.store.CreateResponse(ctx, resp, claims)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrDuplicate):
		slog.Warn("duplicate response rejected by constraint",
			"survey_id", survey.ID,
			"scope", survey.SingleResponseScope,
		)
		return nil, &AlreadyAnsweredError{}
	case errors.Is(err, db.ErrItemsInsert):
		return nil, fmt.Errorf("%w: %v", ErrItems, err)
	default:
		return nil, &StorageError{Op: "insert response", Err: err}
	}

	slog.Info("response submitted",
		"survey_id", survey.ID,
		"response_id", resp.ID,
		"answers", len(resp.Items),
		"anonymous", resp.UserID == nil,
	)

	return &Receipt{Survey: survey, Response: resp}, nil
}

// Status reports what Submit would decide for this respondent without
// writing anything.
func (c *Controller) Status(ctx context.Context, slug, userID, token, fp string) (*models.MyStatusResponse, error) {
	survey, err := c.openSurvey(ctx, slug)
	if err != nil {
		return nil, err
	}

	status := &models.MyStatusResponse{
		SingleResponse: survey.SingleResponse,
		Scope:          survey.SingleResponseScope,
	}
	if !survey.SingleResponse {
		return status, nil
	}

	_, err = c.admit(ctx, survey, userID, token, fp)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyAnswered):
		status.AlreadyResponded = true
	case errors.Is(err, ErrLoginRequired):
		status.RequiresLogin = true
	case errors.Is(err, ErrDeviceIdentifierRequired):
		status.RequiresTokenOrFp = true
		status.Message = "A device token or fingerprint is required to check single responses"
	default:
		return nil, err
	}
	return status, nil
}

func (c *Controller) openSurvey(ctx context.Context, slug string) (*models.Survey, error) {
	survey, err := c.store.SurveyBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "load survey", Err: err}
	}
	if survey.Status != models.StatusPublished {
		return nil, ErrSurveyNotAvailable
	}
	return survey, nil
}

// admit applies the single-response policy and returns the claims the
// insert must reserve. Submit and Status share it so both see the same
// lookup precedence.
func (c *Controller) admit(ctx context.Context, survey *models.Survey, userID, token, fp string) ([]db.Claim, error) {
	if !survey.SingleResponse {
		return nil, nil
	}

	if survey.SingleResponseScope == models.ScopeUser {
		if userID == "" {
			return nil, ErrLoginRequired
		}
		if err := c.lookup(ctx, c.store.FindResponseByUser, survey.ID, userID); err != nil {
			return nil, err
		}
		return []db.Claim{{Kind: db.ClaimUser, Key: userID}}, nil
	}

	if token == "" && fp == "" {
		return nil, ErrDeviceIdentifierRequired
	}

	var claims []db.Claim
	if token != "" {
		if err := c.lookup(ctx, c.store.FindResponseByToken, survey.ID, token); err != nil {
			return nil, err
		}
		claims = append(claims, db.Claim{Kind: db.ClaimToken, Key: token})
	}
	if fp != "" {
		if err := c.lookup(ctx, c.store.FindResponseByFingerprint, survey.ID, fp); err != nil {
			return nil, err
		}
		claims = append(claims, db.Claim{Kind: db.ClaimFp, Key: fp})
	}
	return claims, nil
}

func (c *Controller) lookup(ctx context.Context, find func(context.Context, string, string) (string, error), surveyID, key string) error {
	id, err := find(ctx, surveyID, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &StorageError{Op: "find response", Err: err}
	}
	return &AlreadyAnsweredError{ResponseID: id}
}

// collectItems keeps the first non-empty answer per known question and
// checks that every required question got one.
func collectItems(questions []models.Question, answers []models.Answer) ([]models.ResponseItem, error) {
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	items := make([]models.ResponseItem, 0, len(answers))
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		if !known[a.QuestionID] || answered[a.QuestionID] || a.Value.IsEmpty() {
			continue
		}
		answered[a.QuestionID] = true
		items = append(items, models.ResponseItem{QuestionID: a.QuestionID, Value: a.Value})
	}

	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, q.Text)
		}
	}
	return items, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
