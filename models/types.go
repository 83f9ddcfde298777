package models

import "time"

// Survey status constants
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

// Single-response scopes
const (
	ScopeDevice = "device"
	ScopeUser   = "user"
)

// Question types
const (
	QuestionText     = "text"
	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
	QuestionLikert   = "likert"
	QuestionCheckbox = "checkbox"
)

// Status actions accepted by PATCH /surveys/{id}/status
const (
	ActionPublish = "publish"
	ActionClose   = "close"
	ActionReopen  = "reopen"
)

// Request types

type CreateSurveyRequest struct {
	Title               string `json:"title" validate:"required,max=200"`
	Description         string `json:"description" validate:"max=2000"`
	SingleResponse      bool   `json:"single_response"`
	SingleResponseScope string `json:"single_response_scope" validate:"omitempty,oneof=device user"`
}

type UpdateSurveyRequest struct {
	Title               *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description         *string `json:"description" validate:"omitempty,max=2000"`
	SingleResponse      *bool   `json:"single_response"`
	SingleResponseScope *string `json:"single_response_scope" validate:"omitempty,oneof=device user"`
}

type StatusRequest struct {
	Action string `json:"action"`
}

type QuestionRequest struct {
	Type     string   `json:"type" validate:"required,oneof=text single multiple likert checkbox"`
	Title    string   `json:"title" validate:"required,max=500"`
	Required bool     `json:"required"`
	Options  []Option `json:"options" validate:"dive"`
}

type UpdateQuestionRequest struct {
	Type     *string   `json:"type" validate:"omitempty,oneof=text single multiple likert checkbox"`
	Title    *string   `json:"title" validate:"omitempty,min=1,max=500"`
	Required *bool     `json:"required"`
	Options  *[]Option `json:"options"`
}

type Answer struct {
	QuestionID string `json:"questionId"`
	Value      Value  `json:"value"`
}

type SubmitResponseRequest struct {
	Answers         []Answer      `json:"answers"`
	RespondentToken string        `json:"respondentToken"`
	RespondentFp    string        `json:"respondentFp"`
	Meta            *ResponseMeta `json:"meta,omitempty"`
}

// Response types

type CreateSurveyResponse struct {
	ID string `json:"id"`
}

type CreateQuestionResponse struct {
	ID string `json:"id"`
}

type StatusResponse struct {
	Status   string  `json:"status"`
	Slug     *string `json:"slug"`
	ShareURL string  `json:"share_url,omitempty"`
}

type SubmitResponseData struct {
	ResponseID   string    `json:"responseId"`
	SurveyID     string    `json:"surveyId"`
	SurveyTitle  string    `json:"surveyTitle"`
	SubmittedAt  time.Time `json:"submittedAt"`
	TotalAnswers int       `json:"totalAnswers"`
	IsAnonymous  bool      `json:"isAnonymous"`
}

type SubmitResponseResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    SubmitResponseData `json:"data"`
}

type MyStatusResponse struct {
	SingleResponse    bool   `json:"singleResponse"`
	Scope             string `json:"scope"`
	AlreadyResponded  bool   `json:"alreadyResponded"`
	RequiresLogin     bool   `json:"requiresLogin"`
	RequiresTokenOrFp bool   `json:"requiresTokenOrFp"`
	Message           string `json:"message,omitempty"`
}

type PublicSurveyResponse struct {
	Survey    PublicSurvey `json:"survey"`
	Questions []Question   `json:"questions"`
}

type PublicSurvey struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Slug        *string `json:"slug"`
}

type SurveyWithQuestions struct {
	Survey    Survey     `json:"survey"`
	Questions []Question `json:"questions"`
}

type SurveySummary struct {
	Survey
	ResponseCount int `json:"response_count"`
}

type ListSurveysResponse struct {
	Surveys []SurveySummary `json:"surveys"`
}

// Domain types

type Survey struct {
	ID                  string     `json:"id"`
	OwnerID             string     `json:"owner_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Status              string     `json:"status"`
	Slug                *string    `json:"slug,omitempty"`
	SingleResponse      bool       `json:"single_response"`
	SingleResponseScope string     `json:"single_response_scope"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
}

type Option struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value"`
}

type Question struct {
	ID         string   `json:"id"`
	SurveyID   string   `json:"survey_id"`
	Type       string   `json:"type"`
	Text       string   `json:"question_text"`
	Required   bool     `json:"required"`
	OrderIndex int      `json:"order_index"`
	Options    []Option `json:"options"`
}

// ResponseMeta is the device/browser classification stored with a response.
type ResponseMeta struct {
	IsMobile  bool   `json:"is_mobile"`
	IsTablet  bool   `json:"is_tablet"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type Response struct {
	ID              string         `json:"id"`
	SurveyID        string         `json:"survey_id"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	UserID          *string        `json:"user_id,omitempty"`
	RespondentToken *string        `json:"respondent_token,omitempty"`
	RespondentFp    *string        `json:"-"` // Never expose in JSON
	IPHash          *string        `json:"-"` // Never expose in JSON
	Meta            ResponseMeta   `json:"meta"`
	Items           []ResponseItem `json:"items"`
}

type ResponseItem struct {
	ResponseID string `json:"response_id"`
	QuestionID string `json:"question_id"`
	Value      Value  `json:"value"`
}

// Error response

type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message,omitempty"`
	ResponseID    string            `json:"responseId,omitempty"`
	Details       string            `json:"details,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	RequiresLogin bool              `json:"requiresLogin,omitempty"`
	Continue      string            `json:"continue,omitempty"`
}
