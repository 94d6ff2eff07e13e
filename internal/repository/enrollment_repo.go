package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// EnrollmentRepository persists student enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Exists(ctx context.Context, userID, quizID uint) (bool, error)
	ListQuizIDsByUser(ctx context.Context, userID uint) ([]uint, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create inserts the enrollment. A second row for the same pair fails with
// gorm.ErrDuplicatedKey from the unique index.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("User", "Quiz").Create(enrollment).Error
}

func (r *enrollmentRepository) Exists(ctx context.Context, userID, quizID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) ListQuizIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var quizIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("quiz_id", &quizIDs).Error
	return quizIDs, err
}
