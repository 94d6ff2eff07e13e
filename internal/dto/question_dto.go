package dto

import (
	"time"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// QuestionCreateRequest describes a single question. Points defaults to 1 when omitted.
type QuestionCreateRequest struct {
	Prompt        string   `json:"prompt" validate:"required,min=1"`
	Type          string   `json:"type" validate:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER"`
	Options       []string `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points" validate:"omitempty,gte=1"`
}

// QuestionImportRequest adds many questions in one all-or-nothing batch.
type QuestionImportRequest struct {
	Questions []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuestionResponse is the management view of a question, including its answer key.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	QuizID        uint      `json:"quiz_id"`
	Prompt        string    `json:"prompt"`
	Type          string    `json:"type"`
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewQuestionResponse converts a question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:            model.ID,
		QuizID:        model.QuizID,
		Prompt:        model.Prompt,
		Type:          string(model.Type),
		Options:       model.OptionList(),
		CorrectAnswer: model.CorrectAnswer,
		Explanation:   model.Explanation,
		Points:        model.Points,
		CreatedAt:     model.CreatedAt,
	}
}

// NewQuestionResponseSlice converts question models into DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}
	return responses
}
