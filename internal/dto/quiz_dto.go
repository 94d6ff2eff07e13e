package dto

import (
	"time"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// QuizCreateRequest creates a quiz, optionally with its initial questions.
type QuizCreateRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=255"`
	Description string                  `json:"description" validate:"omitempty,max=5000"`
	MaterialURL string                  `json:"material_url" validate:"omitempty,url"`
	TimeLimit   *int                    `json:"time_limit" validate:"omitempty,gte=1"`
	MaxAttempts *int                    `json:"max_attempts" validate:"omitempty,gte=1"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// QuizUpdateRequest lists the only quiz fields that may change after creation.
// A zero TimeLimit or MaxAttempts removes the limit.
type QuizUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	MaterialURL *string `json:"material_url" validate:"omitempty,url"`
	TimeLimit   *int    `json:"time_limit" validate:"omitempty,gte=0"`
	MaxAttempts *int    `json:"max_attempts" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// Empty reports whether the update carries no changes.
func (r QuizUpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.MaterialURL == nil &&
		r.TimeLimit == nil && r.MaxAttempts == nil && r.IsActive == nil
}

// QuizListRequest filters the management listing.
type QuizListRequest struct {
	CreatedBy *uint
}

// QuizCounts summarises rows attached to a quiz.
type QuizCounts struct {
	Questions   int64 `json:"questions"`
	Attempts    int64 `json:"attempts"`
	Enrollments int64 `json:"enrollments"`
}

// QuizResponse is the management view of a quiz.
type QuizResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Code        string             `json:"code"`
	MaterialURL string             `json:"material_url"`
	TimeLimit   *int               `json:"time_limit"`
	MaxAttempts *int               `json:"max_attempts"`
	IsActive    bool               `json:"is_active"`
	CreatedByID uint               `json:"created_by_id"`
	Counts      QuizCounts         `json:"counts"`
	Questions   []QuestionResponse `json:"questions,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewQuizResponse converts a quiz model, including any loaded questions.
func NewQuizResponse(model models.Quiz, counts QuizCounts) QuizResponse {
	response := QuizResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Code:        model.Code,
		MaterialURL: model.MaterialURL,
		TimeLimit:   model.TimeLimit,
		MaxAttempts: model.MaxAttempts,
		IsActive:    model.IsActive,
		CreatedByID: model.CreatedByID,
		Counts:      counts,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if len(model.Questions) > 0 {
		response.Questions = NewQuestionResponseSlice(model.Questions)
	}

	return response
}

// AvailableQuizResponse is a student's view of an active quiz.
type AvailableQuizResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	MaterialURL   string    `json:"material_url"`
	TimeLimit     *int      `json:"time_limit"`
	MaxAttempts   *int      `json:"max_attempts"`
	QuestionCount int64     `json:"question_count"`
	IsEnrolled    bool      `json:"is_enrolled"`
	AttemptCount  int64     `json:"attempt_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// TakeQuizResponse is the quiz as presented during an attempt; answers are withheld.
type TakeQuizResponse struct {
	ID           uint                   `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	TimeLimit    *int                   `json:"time_limit"`
	MaxAttempts  *int                   `json:"max_attempts"`
	AttemptsUsed int64                  `json:"attempts_used"`
	InProgressID *uint                  `json:"in_progress_attempt_id"`
	Questions    []TakeQuestionResponse `json:"questions"`
}

// TakeQuestionResponse omits the correct answer and explanation.
type TakeQuestionResponse struct {
	ID      uint     `json:"id"`
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
	Points  int      `json:"points"`
}

// NewTakeQuizResponse strips grading data from the quiz questions.
func NewTakeQuizResponse(model models.Quiz, attemptsUsed int64) TakeQuizResponse {
	questions := make([]TakeQuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, TakeQuestionResponse{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Type:    string(question.Type),
			Options: question.OptionList(),
			Points:  question.Points,
		})
	}

	return TakeQuizResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		TimeLimit:    model.TimeLimit,
		MaxAttempts:  model.MaxAttempts,
		AttemptsUsed: attemptsUsed,
		Questions:    questions,
	}
}
