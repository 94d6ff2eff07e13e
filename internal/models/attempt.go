package models

import "time"

// AttemptStatus is derived from CompletedAt.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// Attempt is one student's run through a quiz. Sequence numbers attempts per
// (user, quiz) starting at 1; the unique index on the triple is what keeps
// concurrent starts from exceeding the quiz's attempt cap.
type Attempt struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index;uniqueIndex:idx_attempts_user_quiz_seq" json:"user_id"`
	QuizID      uint       `gorm:"not null;index;uniqueIndex:idx_attempts_user_quiz_seq" json:"quiz_id"`
	Sequence    int        `gorm:"not null;uniqueIndex:idx_attempts_user_quiz_seq" json:"sequence"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	TimeSpent   *int       `json:"time_spent"`
	Score       *int       `json:"score"`
	TotalPoints *int       `json:"total_points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Quiz        Quiz       `gorm:"foreignKey:QuizID" json:"-"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	Answers     []Answer   `gorm:"foreignKey:AttemptID" json:"-"`
}

// IsCompleted reports whether the attempt was submitted.
func (a Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Status returns the lifecycle state of the attempt.
func (a Attempt) Status() AttemptStatus {
	if a.IsCompleted() {
		return AttemptStatusCompleted
	}
	return AttemptStatusInProgress
}

// Percentage returns score/totalPoints*100, or 0 when unscored or worth nothing.
func (a Attempt) Percentage() float64 {
	if a.Score == nil || a.TotalPoints == nil || *a.TotalPoints <= 0 {
		return 0
	}
	return float64(*a.Score) / float64(*a.TotalPoints) * 100
}
