package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// QuestionRepository persists quiz questions.
type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []models.Question) error
	GetByID(ctx context.Context, id uint) (models.Question, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]models.Question, error)
	Save(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs the question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// CreateBatch inserts every question or none of them.
func (r *questionRepository) CreateBatch(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}

// ListByQuiz returns the quiz's questions in authoring order.
func (r *questionRepository) ListByQuiz(ctx context.Context, quizID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Save(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

// Delete removes the question. Answers recorded by completed attempts are
// left in place; they hold their own copy of the question.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
