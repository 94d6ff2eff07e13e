package dto

import "time"

// EnrollRequest redeems a quiz enrollment code.
type EnrollRequest struct {
	Code string `json:"code" validate:"required,min=1,max=16"`
}

// EnrollmentResponse confirms a new enrollment.
type EnrollmentResponse struct {
	EnrollmentID uint      `json:"enrollment_id"`
	QuizID       uint      `json:"quiz_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}
