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

// CreateResponse stores a response, its single-response claims and its
// items in one transaction. A claim collision returns ErrDuplicate; a failed
// item insert returns ErrItemsInsert. Either way nothing is left behind.
func (s *Store) CreateResponse(ctx context.Context, r *models.Response, claims []Claim) error {
	meta, err := json.Marshal(r.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now()
	}
	r.SubmittedAt = r.SubmittedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (id, survey_id, submitted_at, user_id, respondent_token, respondent_fp, ip_hash, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.SurveyID, r.SubmittedAt, r.UserID, r.RespondentToken, r.RespondentFp, r.IPHash, string(meta))
	if err != nil {
		return fmt.Errorf("insert response: %w", classify(err))
	}

	for _, c := range claims {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO response_claim (survey_id, kind, claim_key, response_id)
			VALUES ($1, $2, $3, $4)
		`, r.SurveyID, c.Kind, c.Key, r.ID)
		if err != nil {
			return fmt.Errorf("claim %s: %w", c.Kind, classify(err))
		}
	}

	for _, item := range r.Items {
		value, err := json.Marshal(item.Value)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", ErrItemsInsert, item.QuestionID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO response_item (response_id, question_id, value)
			VALUES ($1, $2, $3)
		`, r.ID, item.QuestionID, string(value))
		if err != nil {
			return fmt.Errorf("%w: question %s: %v", ErrItemsInsert, item.QuestionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit response: %w", classify(err))
	}
	return nil
}

// FindResponseByUser returns the id of the user's earliest response
func (s *Store) FindResponseByUser(ctx context.Context, surveyID, userID string) (string, error) {
	return s.findResponse(ctx, `user_id`, surveyID, userID)
}

// FindResponseByToken returns the id of the earliest response carrying token
func (s *Store) FindResponseByToken(ctx context.Context, surveyID, token string) (string, error) {
	return s.findResponse(ctx, `respondent_token`, surveyID, token)
}

// FindResponseByFingerprint returns the id of the earliest response carrying fp
func (s *Store) FindResponseByFingerprint(ctx context.Context, surveyID, fp string) (string, error) {
	return s.findResponse(ctx, `respondent_fp`, surveyID, fp)
}

// column is a fixed identifier from the callers above, never user input
func (s *Store) findResponse(ctx context.Context, column, surveyID, key string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM response
		WHERE survey_id = $1 AND `+column+` = $2
		ORDER BY submitted_at, id
		LIMIT 1
	`, surveyID, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find response by %s: %w", column, err)
	}
	return id, nil
}

// CountResponses returns the number of stored responses for a survey
func (s *Store) CountResponses(ctx context.Context, surveyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response WHERE survey_id = $1`, surveyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}

// ListResponses returns every response of the survey with its items, oldest
// first. Items follow question order.
func (s *Store) ListResponses(ctx context.Context, surveyID string) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, submitted_at, user_id, respondent_token, respondent_fp, ip_hash, meta
		FROM response
		WHERE survey_id = $1
		ORDER BY submitted_at, id
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	responses := []models.Response{}
	index := make(map[string]int)
	for rows.Next() {
		var r models.Response
		var userID, token, fp, ipHash sql.NullString
		var meta string
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.SubmittedAt, &userID, &token, &fp, &ipHash, &meta); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.SubmittedAt = r.SubmittedAt.UTC()
		r.UserID = nullableString(userID)
		r.RespondentToken = nullableString(token)
		r.RespondentFp = nullableString(fp)
		r.IPHash = nullableString(ipHash)
		if meta != "" {
			// A malformed blob classifies as desktop with unknown browser
			_ = json.Unmarshal([]byte(meta), &r.Meta)
		}
		r.Items = []models.ResponseItem{}
		index[r.ID] = len(responses)
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list responses: %w", err)
	}
	rows.Close()

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT ri.response_id, ri.question_id, ri.value
		FROM response_item ri
		JOIN response r ON r.id = ri.response_id
		JOIN question q ON q.id = ri.question_id
		WHERE r.survey_id = $1
		ORDER BY q.order_index
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list response items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.ResponseItem
		var value string
		if err := itemRows.Scan(&item.ResponseID, &item.QuestionID, &value); err != nil {
			return nil, fmt.Errorf("scan response item: %w", err)
		}
		if err := json.Unmarshal([]byte(value), &item.Value); err != nil {
			return nil, fmt.Errorf("decode response item: %w", err)
		}
		i, ok := index[item.ResponseID]
		if !ok {
			continue
		}
		responses[i].Items = append(responses[i].Items, item)
	}
	return responses, itemRows.Err()
}

// ListSubmissionTimes returns submission timestamps at or after since
func (s *Store) ListSubmissionTimes(ctx context.Context, surveyID string, since time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT submitted_at FROM response
		WHERE survey_id = $1 AND submitted_at >= $2
		ORDER BY submitted_at
	`, surveyID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list submission times: %w", err)
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan submission time: %w", err)
		}
		times = append(times, t.UTC())
	}
	return times, rows.Err()
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
