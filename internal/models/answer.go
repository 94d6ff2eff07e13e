package models

import "time"

// Answer is the graded response to one question within a completed attempt.
// The question's prompt, key and weight are copied at grading time so the
// stored result survives later edits or removal of the question.
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AttemptID      uint      `gorm:"not null;index" json:"attempt_id"`
	QuestionID     uint      `gorm:"not null;index" json:"question_id"`
	Text           string    `gorm:"column:answer;type:text" json:"answer"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	Points         int       `gorm:"not null" json:"points"`
	QuestionPoints int       `gorm:"not null;default:0" json:"question_points"`
	Prompt         string    `gorm:"type:text" json:"prompt"`
	CorrectAnswer  string    `gorm:"type:text" json:"correct_answer"`
	Explanation    string    `gorm:"type:text" json:"explanation"`
	CreatedAt      time.Time `json:"created_at"`
}
