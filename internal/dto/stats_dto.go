package dto

import "time"

// StudentStatsResponse summarises a student's activity.
type StudentStatsResponse struct {
	TotalEnrollments  int64     `json:"total_enrollments"`
	CompletedAttempts int64     `json:"completed_attempts"`
	AverageScore      float64   `json:"average_score"`
	TotalTimeSpent    int64     `json:"total_time_spent"`
	GeneratedAt       time.Time `json:"generated_at"`
	CacheHit          bool      `json:"cache_hit"`
}

// EducatorStatsResponse summarises activity across an educator's quizzes.
type EducatorStatsResponse struct {
	TotalQuizzes  int64     `json:"total_quizzes"`
	TotalStudents int64     `json:"total_students"`
	TotalAttempts int64     `json:"total_attempts"`
	AverageScore  float64   `json:"average_score"`
	GeneratedAt   time.Time `json:"generated_at"`
	CacheHit      bool      `json:"cache_hit"`
}
