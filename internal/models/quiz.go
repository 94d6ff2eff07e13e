package models

import "time"

// Quiz is an educator-owned set of questions that students join by code.
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Code        string     `gorm:"size:16;uniqueIndex;not null" json:"code"`
	MaterialURL string     `gorm:"size:512" json:"material_url"`
	TimeLimit   *int       `json:"time_limit"`
	MaxAttempts *int       `json:"max_attempts"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	CreatedByID uint       `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   User       `gorm:"foreignKey:CreatedByID" json:"-"`
	Questions   []Question `gorm:"foreignKey:QuizID" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OwnedBy reports whether the quiz was created by the given user.
func (q Quiz) OwnedBy(userID uint) bool {
	return q.CreatedByID == userID
}

// TotalPoints sums the points of the loaded questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}
