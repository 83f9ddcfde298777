// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-survey/db"
	"github.com/danielhkuo/quickly-survey/models"
)

// ErrSurveyNotFound is returned when the survey does not exist or belongs
// to someone else.
var ErrSurveyNotFound = errors.New("survey not found")

// Store is the read side of the data store used for analytics
type Store interface {
	GetSurvey(ctx context.Context, id, ownerID string) (*models.Survey, error)
	ListQuestions(ctx context.Context, surveyID string) ([]models.Question, error)
	ListResponses(ctx context.Context, surveyID string) ([]models.Response, error)
	ListSubmissionTimes(ctx context.Context, surveyID string, since time.Time) ([]time.Time, error)
}

// Dataset is everything stored for one survey
type Dataset struct {
	Survey    *models.Survey
	Questions []models.Question
	Responses []models.Response
}

// Engine computes analytics reports. Nothing is cached; every call reads
// the store again.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Load reads the survey, its questions and all responses
func (e *Engine) Load(ctx context.Context, surveyID, ownerID string) (*Dataset, error) {
	survey, err := e.store.GetSurvey(ctx, surveyID, ownerID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}

	questions, err := e.store.ListQuestions(ctx, survey.ID)
	if err != nil {
		return nil, err
	}
	responses, err := e.store.ListResponses(ctx, survey.ID)
	if err != nil {
		return nil, err
	}

	return &Dataset{Survey: survey, Questions: questions, Responses: responses}, nil
}

// Report builds the analytics report for an owned survey. A failure while
// computing the trend degrades to an all-zero trend.
func (e *Engine) Report(ctx context.Context, surveyID, ownerID string) (*Report, error) {
	data, err := e.Load(ctx, surveyID, ownerID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	submitted, err := e.store.ListSubmissionTimes(ctx, data.Survey.ID, TrendStart(now))
	if err != nil {
		slog.Warn("response trend unavailable",
			"survey_id", data.Survey.ID,
			"error", err,
		)
		submitted = nil
	}

	return BuildReport(data, ResponseTrend(submitted, now)), nil
}

// BuildReport assembles a report from loaded data and a computed trend
func BuildReport(data *Dataset, trend []TrendPoint) *Report {
	total := len(data.Responses)

	report := &Report{
		Survey: SurveyInfo{
			ID:             data.Survey.ID,
			Title:          data.Survey.Title,
			Status:         data.Survey.Status,
			Description:    data.Survey.Description,
			Slug:           data.Survey.Slug,
			CreatedAt:      data.Survey.CreatedAt,
			PublishedAt:    data.Survey.PublishedAt,
			TotalResponses: total,
		},
		Summary: Summary{
			TotalResponses:  total,
			CompletionRate:  CompletionRate(data.Questions, data.Responses),
			AvgResponseTime: AverageResponseTime(data.Responses),
			DeviceStats:     DeviceBreakdown(data.Responses),
			ResponseTrend:   trend,
		},
		Questions:         make([]QuestionReport, 0, len(data.Questions)),
		RawResponsesCount: total,
	}

	answers := answersByQuestion(data.Responses)
	for _, q := range data.Questions {
		values := answers[q.ID]
		options := q.Options
		if options == nil {
			options = []models.Option{}
		}
		report.Questions = append(report.Questions, QuestionReport{
			ID:            q.ID,
			QuestionText:  q.Text,
			Type:          q.Type,
			Required:      q.Required,
			Position:      q.OrderIndex,
			ResponseCount: len(values),
			Analytics:     QuestionAnalytics(q, values),
			Options:       options,
		})
	}
	return report
}

// QuestionAnalytics dispatches to the processor for the question type
func QuestionAnalytics(q models.Question, values []models.Value) any {
	switch q.Type {
	case models.QuestionSingle:
		return SingleChoiceAnalytics(q, values)
	case models.QuestionMultiple, models.QuestionCheckbox:
		return MultipleChoiceAnalytics(q, values)
	case models.QuestionLikert:
		return LikertAnalytics(values)
	case models.QuestionText:
		return TextAnalytics(values)
	}
	return Unsupported{Type: q.Type, Unsupported: true}
}

func answersByQuestion(responses []models.Response) map[string][]models.Value {
	out := make(map[string][]models.Value)
	for _, r := range responses {
		for _, item := range r.Items {
			out[item.QuestionID] = append(out[item.QuestionID], item.Value)
		}
	}
	return out
}
