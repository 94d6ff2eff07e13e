package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Search         string
	Role           models.Role
	EducatorStatus models.EducatorStatus
	Page           int
	PageSize       int
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.EducatorStatus != "" {
		query = query.Where("educator_status = ?", filter.EducatorStatus)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the user together with every row that only exists through them:
// their own attempts and enrollments, and the quizzes they authored with all of
// those quizzes' questions, enrollments, attempts and answers.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&models.Quiz{}).Where("created_by_id = ?", id).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}

		attempts := tx.Model(&models.Attempt{}).Where("user_id = ?", id)
		if len(quizIDs) > 0 {
			attempts = tx.Model(&models.Attempt{}).Where("user_id = ? OR quiz_id IN ?", id, quizIDs)
		}
		var attemptIDs []uint
		if err := attempts.Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}

		if err := deleteAttempts(tx, attemptIDs); err != nil {
			return err
		}

		enrollments := tx.Where("user_id = ?", id)
		if len(quizIDs) > 0 {
			enrollments = tx.Where("user_id = ? OR quiz_id IN ?", id, quizIDs)
		}
		if err := enrollments.Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		if len(quizIDs) > 0 {
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

// deleteAttempts removes the answers of the given attempts and then the attempts.
func deleteAttempts(tx *gorm.DB, attemptIDs []uint) error {
	if len(attemptIDs) == 0 {
		return nil
	}
	if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&models.Answer{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", attemptIDs).Delete(&models.Attempt{}).Error
}
