// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-survey/analytics"
	"github.com/danielhkuo/quickly-survey/models"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const (
	maxHeaderRunes = 50
	maxTitleRunes  = 50
	unknown        = "Unknown"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ContentType returns the MIME type for a format
func ContentType(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatJSON:
		return "application/json; charset=utf-8", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Write renders data in the given format
func Write(w io.Writer, format string, data *analytics.Dataset, exportedAt time.Time) error {
	switch format {
	case FormatCSV:
		return CSV(w, data, exportedAt)
	case FormatJSON:
		return JSON(w, data, exportedAt)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// CSV writes one row per response: fixed identity and device columns,
// then one column per question. The file opens with "#" comment lines
// describing the export.
func CSV(w io.Writer, data *analytics.Dataset, exportedAt time.Time) error {
	description := data.Survey.Description
	if description == "" {
		description = "No description"
	}
	header := []string{
		"# Survey: " + commentSafe(data.Survey.Title),
		"# Description: " + commentSafe(description),
		"# Exported at: " + exportedAt.UTC().Format(time.RFC3339),
		fmt.Sprintf("# Total responses: %d", len(data.Responses)),
		fmt.Sprintf("# Total questions: %d", len(data.Questions)),
		"",
	}
	if _, err := io.WriteString(w, strings.Join(header, "\n")+"\n"); err != nil {
		return fmt.Errorf("write csv metadata: %w", err)
	}

	cw := csv.NewWriter(w)

	columns := []string{"response_id", "submitted_at", "respondent_token", "device_type", "browser", "os"}
	for i, q := range data.Questions {
		columns = append(columns, fmt.Sprintf("P%d_%s", i+1, truncate(q.Text, maxHeaderRunes)))
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range data.Responses {
		answers := make(map[string]models.Value, len(r.Items))
		for _, item := range r.Items {
			answers[item.QuestionID] = item.Value
		}

		token := "N/A"
		if r.RespondentToken != nil && *r.RespondentToken != "" {
			token = *r.RespondentToken
		}

		row := []string{
			r.ID,
			r.SubmittedAt.UTC().Format(time.RFC3339),
			token,
			deviceType(r.Meta),
			orUnknown(r.Meta.Browser),
			orUnknown(r.Meta.OS),
		}
		for _, q := range data.Questions {
			// Missing answers stay empty
			row = append(row, answers[q.ID].String())
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	Survey    jsonSurvey     `json:"survey"`
	Questions []jsonQuestion `json:"questions"`
	Responses []jsonResponse `json:"responses"`
	Metadata  jsonMetadata   `json:"metadata"`
}

type jsonSurvey struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	TotalQuestions int        `json:"total_questions"`
	TotalResponses int        `json:"total_responses"`
}

type jsonQuestion struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Type     string          `json:"type"`
	Position int             `json:"position"`
	Required bool            `json:"required"`
	Options  []models.Option `json:"options"`
}

type jsonResponse struct {
	ID              string              `json:"id"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	RespondentToken *string             `json:"respondent_token"`
	Meta            models.ResponseMeta `json:"meta"`
	Answers         []jsonAnswer        `json:"answers"`
}

type jsonAnswer struct {
	QuestionID string       `json:"question_id"`
	Value      models.Value `json:"value"`
}

type jsonMetadata struct {
	ExportedAt     time.Time `json:"exported_at"`
	TotalResponses int       `json:"total_responses"`
	TotalQuestions int       `json:"total_questions"`
}

// JSON writes the survey, its questions and every response with answers
func JSON(w io.Writer, data *analytics.Dataset, exportedAt time.Time) error {
	out := jsonExport{
		Survey: jsonSurvey{
			ID:             data.Survey.ID,
			Title:          data.Survey.Title,
			Description:    data.Survey.Description,
			Status:         data.Survey.Status,
			CreatedAt:      data.Survey.CreatedAt,
			PublishedAt:    data.Survey.PublishedAt,
			TotalQuestions: len(data.Questions),
			TotalResponses: len(data.Responses),
		},
		Questions: make([]jsonQuestion, 0, len(data.Questions)),
		Responses: make([]jsonResponse, 0, len(data.Responses)),
		Metadata: jsonMetadata{
			ExportedAt:     exportedAt.UTC(),
			TotalResponses: len(data.Responses),
			TotalQuestions: len(data.Questions),
		},
	}

	for _, q := range data.Questions {
		options := q.Options
		if options == nil {
			options = []models.Option{}
		}
		out.Questions = append(out.Questions, jsonQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Position: q.OrderIndex,
			Required: q.Required,
			Options:  options,
		})
	}

	for _, r := range data.Responses {
		answers := make([]jsonAnswer, 0, len(r.Items))
		for _, item := range r.Items {
			answers = append(answers, jsonAnswer{QuestionID: item.QuestionID, Value: item.Value})
		}
		out.Responses = append(out.Responses, jsonResponse{
			ID:              r.ID,
			SubmittedAt:     r.SubmittedAt,
			RespondentToken: r.RespondentToken,
			Meta:            r.Meta,
			Answers:         answers,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json export: %w", err)
	}
	return nil
}

// Filename builds the attachment name, e.g. survey_Customer_Feedback_2025-03-10.csv
func Filename(title, format string, at time.Time) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := truncate(strings.Join(strings.Fields(b.String()), "_"), maxTitleRunes)
	if safe == "" {
		safe = "export"
	}
	return fmt.Sprintf("survey_%s_%s.%s", safe, at.UTC().Format(time.DateOnly), format)
}

func deviceType(meta models.ResponseMeta) string {
	switch {
	case meta.IsMobile:
		return "Mobile"
	case meta.IsTablet:
		return "Tablet"
	}
	return "Desktop"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

// commentSafe keeps metadata on a single comment line
func commentSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
