package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	CreatedByID *uint
	ActiveOnly  bool
}

// QuizCounts aggregates related rows per quiz.
type QuizCounts struct {
	Questions   int64
	Attempts    int64
	Enrollments int64
}

// QuizRepository persists quizzes.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error)
	GetByCode(ctx context.Context, code string) (models.Quiz, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter QuizFilter) ([]models.Quiz, error)
	Counts(ctx context.Context, quizIDs []uint) (map[uint]QuizCounts, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Quiz, error)
	Delete(ctx context.Context, id uint) error
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository constructs the quiz repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

// Create inserts the quiz and any attached questions in one transaction.
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := quiz.Questions
		quiz.Questions = nil

		if err := tx.Omit(clause.Associations).Create(quiz).Error; err != nil {
			quiz.Questions = questions
			return err
		}

		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				quiz.Questions = questions
				return err
			}
		}

		quiz.Questions = questions
		return nil
	})
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (r *quizRepository) GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (r *quizRepository) GetByCode(ctx context.Context, code string) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&quiz).Error; err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (r *quizRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *quizRepository) List(ctx context.Context, filter QuizFilter) ([]models.Quiz, error) {
	query := r.db.WithContext(ctx).Model(&models.Quiz{})

	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at DESC").Order("id DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

type quizCountRow struct {
	QuizID uint
	Total  int64
}

// Counts returns question, attempt and enrollment totals keyed by quiz id.
func (r *quizRepository) Counts(ctx context.Context, quizIDs []uint) (map[uint]QuizCounts, error) {
	counts := make(map[uint]QuizCounts, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	groups := []struct {
		model interface{}
		apply func(c *QuizCounts, total int64)
	}{
		{&models.Question{}, func(c *QuizCounts, total int64) { c.Questions = total }},
		{&models.Attempt{}, func(c *QuizCounts, total int64) { c.Attempts = total }},
		{&models.Enrollment{}, func(c *QuizCounts, total int64) { c.Enrollments = total }},
	}

	for _, group := range groups {
		var rows []quizCountRow
		if err := r.db.WithContext(ctx).Model(group.model).
			Select("quiz_id, COUNT(*) AS total").
			Where("quiz_id IN ?", quizIDs).
			Group("quiz_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			entry := counts[row.QuizID]
			group.apply(&entry, row.Total)
			counts[row.QuizID] = entry
		}
	}

	return counts, nil
}

func (r *quizRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Quiz, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Quiz{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.Quiz{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Quiz{}, gorm.ErrRecordNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// Delete removes answers, attempts, enrollments and questions before the quiz itself.
func (r *quizRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attemptIDs []uint
		if err := tx.Model(&models.Attempt{}).Where("quiz_id = ?", id).Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}

		if err := deleteAttempts(tx, attemptIDs); err != nil {
			return err
		}

		if err := tx.Where("quiz_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Quiz{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
