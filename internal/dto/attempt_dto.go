package dto

import (
	"time"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// AttemptStartRequest begins a new attempt.
type AttemptStartRequest struct {
	QuizID uint `json:"quiz_id" validate:"required,gt=0"`
}

// AttemptStartResponse identifies the started attempt.
type AttemptStartResponse struct {
	AttemptID uint      `json:"attempt_id"`
	QuizID    uint      `json:"quiz_id"`
	Sequence  int       `json:"sequence"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit *int      `json:"time_limit"`
}

// SubmittedAnswer is one response in a submission.
type SubmittedAnswer struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}

// AttemptSubmitRequest completes an attempt.
type AttemptSubmitRequest struct {
	AttemptID uint              `json:"attempt_id" validate:"required,gt=0"`
	QuizID    uint              `json:"quiz_id" validate:"required,gt=0"`
	Answers   []SubmittedAnswer `json:"answers" validate:"omitempty,dive"`
}

// QuestionResult is the graded outcome for one question.
type QuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
	PointsAwarded int    `json:"points_awarded"`
	Points        int    `json:"points"`
	Prompt        string `json:"prompt,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// AttemptResultResponse is the scored result, identical whether returned by submit or read later.
type AttemptResultResponse struct {
	AttemptID     uint             `json:"attempt_id"`
	QuizID        uint             `json:"quiz_id"`
	QuizTitle     string           `json:"quiz_title"`
	Score         int              `json:"score"`
	TotalPoints   int              `json:"total_points"`
	Percentage    float64          `json:"percentage"`
	TimeSpent     int              `json:"time_spent"`
	OverTimeLimit bool             `json:"over_time_limit"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   time.Time        `json:"completed_at"`
	PerQuestion   []QuestionResult `json:"per_question"`
}

// NewAttemptResultResponse builds the scored view from a completed attempt with
// its answers and quiz preloaded. Question details come from the copies stored
// on each answer, never from the live question rows.
func NewAttemptResultResponse(attempt models.Attempt) AttemptResultResponse {
	response := AttemptResultResponse{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		QuizTitle:   attempt.Quiz.Title,
		Percentage:  attempt.Percentage(),
		StartedAt:   attempt.StartedAt,
		PerQuestion: make([]QuestionResult, 0, len(attempt.Answers)),
	}
	if attempt.Score != nil {
		response.Score = *attempt.Score
	}
	if attempt.TotalPoints != nil {
		response.TotalPoints = *attempt.TotalPoints
	}
	if attempt.TimeSpent != nil {
		response.TimeSpent = *attempt.TimeSpent
	}
	if attempt.CompletedAt != nil {
		response.CompletedAt = *attempt.CompletedAt
	}
	if attempt.Quiz.TimeLimit != nil && *attempt.Quiz.TimeLimit > 0 {
		response.OverTimeLimit = response.TimeSpent > *attempt.Quiz.TimeLimit*60
	}

	for _, answer := range attempt.Answers {
		response.PerQuestion = append(response.PerQuestion, QuestionResult{
			QuestionID:    answer.QuestionID,
			Answer:        answer.Text,
			IsCorrect:     answer.IsCorrect,
			PointsAwarded: answer.Points,
			Points:        answer.QuestionPoints,
			Prompt:        answer.Prompt,
			CorrectAnswer: answer.CorrectAnswer,
			Explanation:   answer.Explanation,
		})
	}

	return response
}

// AttemptSummaryResponse lists an attempt in the student's history.
type AttemptSummaryResponse struct {
	AttemptID   uint       `json:"attempt_id"`
	QuizID      uint       `json:"quiz_id"`
	QuizTitle   string     `json:"quiz_title"`
	Sequence    int        `json:"sequence"`
	Status      string     `json:"status"`
	Score       *int       `json:"score"`
	TotalPoints *int       `json:"total_points"`
	Percentage  *float64   `json:"percentage"`
	TimeSpent   *int       `json:"time_spent"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// NewAttemptSummaryResponse converts an attempt (with quiz preloaded) into a history row.
func NewAttemptSummaryResponse(attempt models.Attempt) AttemptSummaryResponse {
	response := AttemptSummaryResponse{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		QuizTitle:   attempt.Quiz.Title,
		Sequence:    attempt.Sequence,
		Status:      string(attempt.Status()),
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		TimeSpent:   attempt.TimeSpent,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.CompletedAt,
	}
	if attempt.IsCompleted() {
		percentage := attempt.Percentage()
		response.Percentage = &percentage
	}
	return response
}
