package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// quizAccess centralises the educator approval and quiz ownership gates.
type quizAccess struct {
	quizzes repository.QuizRepository
	users   repository.UserRepository
}

// requireEducator admits admins and approved educators. Educator status is
// read from the store so a revoked approval takes effect immediately.
func (a quizAccess) requireEducator(ctx context.Context, identity Identity) error {
	switch identity.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleEducator:
		user, err := a.users.GetByID(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		if !user.IsApprovedEducator() {
			return ErrNotApproved
		}
		return nil
	default:
		return ErrForbidden
	}
}

// loadQuiz fetches the quiz, translating a missing row.
func (a quizAccess) loadQuiz(ctx context.Context, quizID uint) (models.Quiz, error) {
	quiz, err := a.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}
	return quiz, nil
}

// authorizeQuiz loads the quiz and checks that the caller owns it or is an admin.
func (a quizAccess) authorizeQuiz(ctx context.Context, identity Identity, quizID uint) (models.Quiz, error) {
	if err := a.requireEducator(ctx, identity); err != nil {
		return models.Quiz{}, err
	}

	quiz, err := a.loadQuiz(ctx, quizID)
	if err != nil {
		return models.Quiz{}, err
	}

	if !identity.IsAdmin() && !quiz.OwnedBy(identity.UserID) {
		return models.Quiz{}, ErrForbidden
	}

	return quiz, nil
}
