package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// percentageExpr averages completed attempts, counting zero-point quizzes as 0%.
const percentageExpr = "COALESCE(AVG(CASE WHEN attempts.total_points > 0 THEN attempts.score * 100.0 / attempts.total_points ELSE 0 END), 0)"

// StudentStats aggregates a student's activity.
type StudentStats struct {
	Enrollments       int64
	CompletedAttempts int64
	AverageScore      float64
	TotalTimeSpent    int64
}

// EducatorStats aggregates activity over an educator's quizzes.
type EducatorStats struct {
	Quizzes      int64
	Students     int64
	Attempts     int64
	AverageScore float64
}

// StatsRepository computes dashboard aggregates.
type StatsRepository interface {
	StudentStats(ctx context.Context, userID uint) (StudentStats, error)
	EducatorStats(ctx context.Context, userID uint) (EducatorStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository constructs the stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

type attemptAggregate struct {
	Total     int64
	Average   float64
	TimeSpent int64
}

func (r *statsRepository) StudentStats(ctx context.Context, userID uint) (StudentStats, error) {
	var stats StudentStats

	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Count(&stats.Enrollments).Error; err != nil {
		return StudentStats{}, err
	}

	var aggregate attemptAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) AS total, "+percentageExpr+" AS average, COALESCE(SUM(attempts.time_spent), 0) AS time_spent").
		Where("attempts.user_id = ? AND attempts.completed_at IS NOT NULL", userID).
		Scan(&aggregate).Error; err != nil {
		return StudentStats{}, err
	}

	stats.CompletedAttempts = aggregate.Total
	stats.AverageScore = aggregate.Average
	stats.TotalTimeSpent = aggregate.TimeSpent
	return stats, nil
}

func (r *statsRepository) EducatorStats(ctx context.Context, userID uint) (EducatorStats, error) {
	var stats EducatorStats

	if err := r.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("created_by_id = ?", userID).
		Count(&stats.Quizzes).Error; err != nil {
		return EducatorStats{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN quizzes ON quizzes.id = enrollments.quiz_id").
		Where("quizzes.created_by_id = ?", userID).
		Distinct("enrollments.user_id").
		Count(&stats.Students).Error; err != nil {
		return EducatorStats{}, err
	}

	var aggregate attemptAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) AS total, "+percentageExpr+" AS average").
		Joins("JOIN quizzes ON quizzes.id = attempts.quiz_id").
		Where("quizzes.created_by_id = ? AND attempts.completed_at IS NOT NULL", userID).
		Scan(&aggregate).Error; err != nil {
		return EducatorStats{}, err
	}

	stats.Attempts = aggregate.Total
	stats.AverageScore = aggregate.Average
	return stats, nil
}
