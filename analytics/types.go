// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"time"

	"github.com/danielhkuo/quickly-survey/models"
)

// Report is the full analytics document for one survey
type Report struct {
	Survey            SurveyInfo       `json:"survey"`
	Summary           Summary          `json:"summary"`
	Questions         []QuestionReport `json:"questions"`
	RawResponsesCount int              `json:"raw_responses_count"`
}

type SurveyInfo struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Description    string     `json:"description"`
	Slug           *string    `json:"slug,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	TotalResponses int        `json:"total_responses"`
}

type Summary struct {
	TotalResponses  int          `json:"total_responses"`
	CompletionRate  float64      `json:"completion_rate"`
	AvgResponseTime string       `json:"avg_response_time"`
	DeviceStats     DeviceStats  `json:"device_stats"`
	ResponseTrend   []TrendPoint `json:"response_trend"`
}

type QuestionReport struct {
	ID            string          `json:"id"`
	QuestionText  string          `json:"question_text"`
	Type          string          `json:"type"`
	Required      bool            `json:"required"`
	Position      int             `json:"position"`
	ResponseCount int             `json:"response_count"`
	Analytics     any             `json:"analytics"`
	Options       []models.Option `json:"options"`
}

// Per-type analytics

type ChoiceCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SingleChoice struct {
	ChartData      []ChoiceCount `json:"chart_data"`
	TotalResponses int           `json:"total_responses"`
	MostSelected   *ChoiceCount  `json:"most_selected"`
}

type SelectionCount struct {
	Option               string  `json:"option"`
	Count                int     `json:"count"`
	SelectionPercentage  float64 `json:"selection_percentage"`
	RespondentPercentage float64 `json:"respondent_percentage"`
}

type MultipleChoice struct {
	ChartData                []SelectionCount `json:"chart_data"`
	TotalResponses           int              `json:"total_responses"`
	TotalSelections          int              `json:"total_selections"`
	AvgSelectionsPerResponse float64          `json:"avg_selections_per_response"`
	MostSelected             *SelectionCount  `json:"most_selected"`
}

type RatingCount struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Likert struct {
	Scale          int           `json:"scale"`
	ChartData      []RatingCount `json:"chart_data"`
	TotalResponses int           `json:"total_responses"`
	AverageRating  float64       `json:"average_rating"`
	MedianRating   float64       `json:"median_rating"`
	Distribution   []RatingCount `json:"distribution"`
}

type TextSample struct {
	Text      string `json:"text"`
	Length    int    `json:"length"`
	WordCount int    `json:"word_count"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type TextAnalysis struct {
	TotalResponses   int          `json:"total_responses"`
	SampleResponses  []TextSample `json:"sample_responses"`
	WordFrequencies  []WordCount  `json:"word_frequencies"`
	AverageLength    int          `json:"average_length"`
	AverageWordCount int          `json:"average_word_count"`
	ShortestResponse *TextSample  `json:"shortest_response"`
	LongestResponse  *TextSample  `json:"longest_response"`
}

// Unsupported marks a question type with no processor
type Unsupported struct {
	Type        string `json:"type"`
	Unsupported bool   `json:"unsupported"`
}

// Summary blocks

type DeviceStats struct {
	Mobile            int            `json:"mobile"`
	Desktop           int            `json:"desktop"`
	Tablet            int            `json:"tablet"`
	Total             int            `json:"total"`
	MobilePercentage  float64        `json:"mobile_percentage"`
	DesktopPercentage float64        `json:"desktop_percentage"`
	TabletPercentage  float64        `json:"tablet_percentage"`
	TopBrowser        string         `json:"top_browser"`
	TopOS             string         `json:"top_os"`
	Browsers          map[string]int `json:"browsers"`
	OperatingSystems  map[string]int `json:"operating_systems"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
