// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-survey/models"
)

// Store is the relational store for surveys, questions and responses.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Claim kinds written to response_claim
const (
	ClaimUser  = "user"
	ClaimToken = "token"
	ClaimFp    = "fp"
)

// Claim reserves one identity key of a single-response survey.
type Claim struct {
	Kind string
	Key  string
}

const surveyColumns = `id, owner_id, title, description, status, slug,
	single_response, single_response_scope, created_at, updated_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var s models.Survey
	var slug sql.NullString
	var publishedAt sql.NullTime
	err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.Status, &slug,
		&s.SingleResponse, &s.SingleResponseScope, &s.CreatedAt, &s.UpdatedAt, &publishedAt)
	if err != nil {
		return nil, err
	}
	if slug.Valid {
		s.Slug = &slug.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		s.PublishedAt = &t
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// Surveys

// CreateSurvey inserts a draft survey. Timestamps default to now.
func (s *Store) CreateSurvey(ctx context.Context, sv *models.Survey) error {
	now := time.Now().UTC()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	if sv.UpdatedAt.IsZero() {
		sv.UpdatedAt = sv.CreatedAt
	}
	if sv.Status == "" {
		sv.Status = models.StatusDraft
	}
	if sv.SingleResponseScope == "" {
		sv.SingleResponseScope = models.ScopeDevice
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO survey (id, owner_id, title, description, status, slug,
			single_response, single_response_scope, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sv.ID, sv.OwnerID, sv.Title, sv.Description, sv.Status, sv.Slug,
		sv.SingleResponse, sv.SingleResponseScope, sv.CreatedAt.UTC(), sv.UpdatedAt.UTC(), sv.PublishedAt)
	if err != nil {
		return fmt.Errorf("insert survey: %w", classify(err))
	}
	return nil
}

// GetSurvey returns the survey if it belongs to ownerID
func (s *Store) GetSurvey(ctx context.Context, id, ownerID string) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	sv, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	return sv, nil
}

// SurveyBySlug returns a survey by its public slug regardless of owner
func (s *Store) SurveyBySlug(ctx context.Context, slug string) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey
		WHERE slug = $1
	`, slug)
	sv, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("survey by slug: %w", err)
	}
	return sv, nil
}

// ListSurveys returns the owner's surveys, newest first, with response counts
func (s *Store) ListSurveys(ctx context.Context, ownerID string) ([]models.SurveySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.owner_id, s.title, s.description, s.status, s.slug,
			s.single_response, s.single_response_scope, s.created_at, s.updated_at, s.published_at,
			(SELECT COUNT(*) FROM response r WHERE r.survey_id = s.id)
		FROM survey s
		WHERE s.owner_id = $1
		ORDER BY s.created_at DESC, s.id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	surveys := []models.SurveySummary{}
	for rows.Next() {
		var sum models.SurveySummary
		var slug sql.NullString
		var publishedAt sql.NullTime
		err := rows.Scan(&sum.ID, &sum.OwnerID, &sum.Title, &sum.Description, &sum.Status, &slug,
			&sum.SingleResponse, &sum.SingleResponseScope, &sum.CreatedAt, &sum.UpdatedAt, &publishedAt,
			&sum.ResponseCount)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		if slug.Valid {
			sum.Slug = &slug.String
		}
		if publishedAt.Valid {
			t := publishedAt.Time.UTC()
			sum.PublishedAt = &t
		}
		surveys = append(surveys, sum)
	}
	return surveys, rows.Err()
}

// UpdateSurvey writes the editable survey fields
func (s *Store) UpdateSurvey(ctx context.Context, sv *models.Survey) error {
	sv.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE survey
		SET title = $1, description = $2, single_response = $3,
			single_response_scope = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`, sv.Title, sv.Description, sv.SingleResponse, sv.SingleResponseScope, sv.UpdatedAt, sv.ID, sv.OwnerID)
	if err != nil {
		return fmt.Errorf("update survey: %w", classify(err))
	}
	return requireRow(res)
}

// DeleteSurvey removes the survey and everything under it
func (s *Store) DeleteSurvey(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM survey WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	return requireRow(res)
}

// SetSurveyStatus moves a survey through its lifecycle. A nil slug keeps the
// current one. A slug collision returns ErrDuplicate.
func (s *Store) SetSurveyStatus(ctx context.Context, id, ownerID, status string, slug *string, publishedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE survey
		SET status = $1,
			slug = COALESCE($2, slug),
			published_at = COALESCE($3, published_at),
			updated_at = $4
		WHERE id = $5 AND owner_id = $6
	`, status, slug, publishedAt, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("set survey status: %w", classify(err))
	}
	return requireRow(res)
}

// SlugExists reports whether any survey already uses slug
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey WHERE slug = $1`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// Questions

// AddQuestion appends a question at the end of the survey
func (s *Store) AddQuestion(ctx context.Context, q *models.Question) error {
	options, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(order_index), 0) + 1 FROM question WHERE survey_id = $1
	`, q.SurveyID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next order index: %w", err)
	}
	q.OrderIndex = next

	_, err = tx.ExecContext(ctx, `
		INSERT INTO question (id, survey_id, type, question_text, required, order_index, options)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, q.ID, q.SurveyID, q.Type, q.Text, q.Required, q.OrderIndex, options)
	if err != nil {
		return fmt.Errorf("insert question: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit question: %w", classify(err))
	}
	return nil
}

// ListQuestions returns the survey's questions in display order
func (s *Store) ListQuestions(ctx context.Context, surveyID string) ([]models.Question, error) {
	return listQuestions(ctx, s.db, surveyID)
}

func listQuestions(ctx context.Context, q querier, surveyID string) ([]models.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, type, question_text, required, order_index, options
		FROM question
		WHERE survey_id = $1
		ORDER BY order_index
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var qu models.Question
		var options string
		if err := rows.Scan(&qu.ID, &qu.SurveyID, &qu.Type, &qu.Text, &qu.Required, &qu.OrderIndex, &options); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if qu.Options, err = decodeOptions(options); err != nil {
			return nil, err
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

// GetQuestion returns a question of the given survey
func (s *Store) GetQuestion(ctx context.Context, surveyID, questionID string) (*models.Question, error) {
	var qu models.Question
	var options string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, type, question_text, required, order_index, options
		FROM question
		WHERE id = $1 AND survey_id = $2
	`, questionID, surveyID).Scan(&qu.ID, &qu.SurveyID, &qu.Type, &qu.Text, &qu.Required, &qu.OrderIndex, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if qu.Options, err = decodeOptions(options); err != nil {
		return nil, err
	}
	return &qu, nil
}

// UpdateQuestion writes type, prompt, required flag and options
func (s *Store) UpdateQuestion(ctx context.Context, q *models.Question) error {
	options, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE question
		SET type = $1, question_text = $2, required = $3, options = $4
		WHERE id = $5 AND survey_id = $6
	`, q.Type, q.Text, q.Required, options, q.ID, q.SurveyID)
	if err != nil {
		return fmt.Errorf("update question: %w", classify(err))
	}
	return requireRow(res)
}

// DeleteQuestion removes a question and its answers
func (s *Store) DeleteQuestion(ctx context.Context, surveyID, questionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1 AND survey_id = $2`, questionID, surveyID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return requireRow(res)
}

func encodeOptions(options []models.Option) (string, error) {
	if options == nil {
		options = []models.Option{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(b), nil
}

func decodeOptions(raw string) ([]models.Option, error) {
	options := []models.Option{}
	if raw == "" {
		return options, nil
	}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return options, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
