package models

import "time"

// Enrollment grants a student the right to attempt a quiz. At most one row exists per (user, quiz).
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_quiz" json:"user_id"`
	QuizID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_quiz;index" json:"quiz_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Quiz      Quiz      `gorm:"foreignKey:QuizID" json:"-"`
}
