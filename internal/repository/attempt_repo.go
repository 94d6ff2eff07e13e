package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// AttemptCompletion is the scored outcome written when an attempt is submitted.
type AttemptCompletion struct {
	CompletedAt time.Time
	TimeSpent   int
	Score       int
	TotalPoints int
	Answers     []models.Answer
}

// AttemptRepository persists quiz attempts and their answers.
type AttemptRepository interface {
	Start(ctx context.Context, attempt *models.Attempt, maxAttempts *int) error
	Complete(ctx context.Context, attemptID uint, completion AttemptCompletion) error
	GetByID(ctx context.Context, id uint) (models.Attempt, error)
	FindInProgress(ctx context.Context, userID, quizID uint) (models.Attempt, error)
	CountByUserAndQuiz(ctx context.Context, userID, quizID uint) (int64, error)
	CountByUserForQuizzes(ctx context.Context, userID uint, quizIDs []uint) (map[uint]int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository constructs the attempt repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// Start counts the existing attempts and inserts the next one in the same
// transaction. The new row takes sequence count+1; when a concurrent start
// claimed that sequence first the insert fails with gorm.ErrDuplicatedKey and
// the caller may retry with a fresh count.
func (r *attemptRepository) Start(ctx context.Context, attempt *models.Attempt, maxAttempts *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Attempt{}).
			Where("user_id = ? AND quiz_id = ?", attempt.UserID, attempt.QuizID).
			Count(&count).Error; err != nil {
			return err
		}

		if maxAttempts != nil && count >= int64(*maxAttempts) {
			return ErrAttemptLimitReached
		}

		attempt.Sequence = int(count) + 1
		return tx.Omit(clause.Associations).Create(attempt).Error
	})
}

// Complete marks the attempt finished and stores its answers atomically. Only
// an attempt with no completion timestamp can be completed.
func (r *attemptRepository) Complete(ctx context.Context, attemptID uint, completion AttemptCompletion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Attempt{}).
			Where("id = ? AND completed_at IS NULL", attemptID).
			Updates(map[string]interface{}{
				"completed_at": completion.CompletedAt,
				"time_spent":   completion.TimeSpent,
				"score":        completion.Score,
				"total_points": completion.TotalPoints,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAttemptAlreadyCompleted
		}

		if len(completion.Answers) == 0 {
			return nil
		}

		answers := make([]models.Answer, len(completion.Answers))
		copy(answers, completion.Answers)
		for i := range answers {
			answers[i].AttemptID = attemptID
		}

		return tx.Omit(clause.Associations).Create(&answers).Error
	})
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Preload("Quiz").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&attempt, id).Error; err != nil {
		return models.Attempt{}, err
	}
	return attempt, nil
}

// FindInProgress returns the most recent unfinished attempt for the pair.
func (r *attemptRepository) FindInProgress(ctx context.Context, userID, quizID uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		Order("sequence DESC").
		First(&attempt).Error; err != nil {
		return models.Attempt{}, err
	}
	return attempt, nil
}

func (r *attemptRepository) CountByUserAndQuiz(ctx context.Context, userID, quizID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) CountByUserForQuizzes(ctx context.Context, userID uint, quizIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	var rows []quizCountRow
	if err := r.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("user_id = ? AND quiz_id IN ?", userID, quizIDs).
		Group("quiz_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.QuizID] = row.Total
	}
	return counts, nil
}

// ListByUser returns the user's attempts, newest first, with their quiz loaded.
func (r *attemptRepository) ListByUser(ctx context.Context, userID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Order("id DESC").
		Find(&attempts).Error
	return attempts, err
}
