package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// QuestionType enumerates supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

// Question belongs to exactly one quiz.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	QuizID        uint           `gorm:"not null;index" json:"quiz_id"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Type          QuestionType   `gorm:"size:32;not null" json:"type"`
	Options       datatypes.JSON `gorm:"type:json" json:"-"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"-"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Points        int            `gorm:"not null" json:"points"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SetOptions stores the ordered option list; nil clears it.
func (q *Question) SetOptions(options []string) {
	if len(options) == 0 {
		q.Options = nil
		return
	}
	data, err := json.Marshal(options)
	if err != nil {
		q.Options = nil
		return
	}
	q.Options = datatypes.JSON(data)
}

// OptionList returns the stored options in order.
func (q Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}

	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}

	return options
}
