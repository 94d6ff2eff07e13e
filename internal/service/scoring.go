package service

import (
	"strings"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
)

// ScoredQuestion is the grading outcome for one question.
type ScoredQuestion struct {
	Question      models.Question
	Answer        string
	IsCorrect     bool
	PointsAwarded int
}

// Score is the graded outcome of a whole submission.
type Score struct {
	Questions   []ScoredQuestion
	Score       int
	TotalPoints int
	Percentage  float64
}

// ScoreAttempt grades every question of the quiz against the submitted answers.
// Matching is exact after trimming and lower-casing, for every question type.
// Unanswered questions score zero but still count toward the total. When a
// question is answered more than once the first answer wins; answers for
// questions outside the quiz are ignored.
func ScoreAttempt(questions []models.Question, answers []dto.SubmittedAnswer) Score {
	submitted := make(map[uint]string, len(answers))
	for _, answer := range answers {
		if _, seen := submitted[answer.QuestionID]; !seen {
			submitted[answer.QuestionID] = answer.Answer
		}
	}

	result := Score{Questions: make([]ScoredQuestion, 0, len(questions))}
	for _, question := range questions {
		text, answered := submitted[question.ID]
		correct := answered && normalizeAnswer(text) == normalizeAnswer(question.CorrectAnswer)

		awarded := 0
		if correct {
			awarded = question.Points
		}

		result.TotalPoints += question.Points
		result.Score += awarded
		result.Questions = append(result.Questions, ScoredQuestion{
			Question:      question,
			Answer:        text,
			IsCorrect:     correct,
			PointsAwarded: awarded,
		})
	}

	if result.TotalPoints > 0 {
		result.Percentage = float64(result.Score) / float64(result.TotalPoints) * 100
	}

	return result
}

// Answers converts the graded questions into answer rows for persistence,
// each carrying a copy of the question it was graded against.
func (s Score) Answers() []models.Answer {
	answers := make([]models.Answer, 0, len(s.Questions))
	for _, scored := range s.Questions {
		answers = append(answers, models.Answer{
			QuestionID:     scored.Question.ID,
			Text:           scored.Answer,
			IsCorrect:      scored.IsCorrect,
			Points:         scored.PointsAwarded,
			QuestionPoints: scored.Question.Points,
			Prompt:         scored.Question.Prompt,
			CorrectAnswer:  scored.Question.CorrectAnswer,
			Explanation:    scored.Question.Explanation,
		})
	}
	return answers
}

func normalizeAnswer(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
