package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
)

func TestCreateQuizAssignsCodeAndQuestions(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)

	quiz := env.capitalsQuiz(t, educator, intPtr(2))
	require.Len(t, quiz.Code, DefaultCodeLength)
	require.Equal(t, strings.ToUpper(quiz.Code), quiz.Code)
	require.True(t, quiz.IsActive)
	require.Equal(t, educator.UserID, quiz.CreatedByID)
	require.Equal(t, int64(2), quiz.Counts.Questions)
	require.Equal(t, 2, *quiz.MaxAttempts)
	require.Equal(t, "Paris", quiz.Questions[0].CorrectAnswer)
}

func TestCreateQuizRoleGates(t *testing.T) {
	env := newTestEnv(t)
	student := env.user(t, models.RoleStudent)
	pending := env.user(t, models.RoleEducator, models.EducatorStatusPending)
	rejected := env.user(t, models.RoleEducator, models.EducatorStatusRejected)
	admin := env.user(t, models.RoleAdmin)
	svc := env.quizService()
	req := dto.QuizCreateRequest{Title: "Gated"}

	_, err := svc.Create(context.Background(), student, req)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), pending, req)
	require.ErrorIs(t, err, ErrNotApproved)

	_, err = svc.Create(context.Background(), rejected, req)
	require.ErrorIs(t, err, ErrNotApproved)

	quiz, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	require.Empty(t, quiz.Questions)
}

func TestCreateQuizRejectsInvalidQuestionsAtomically(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)

	_, err := env.quizService().Create(context.Background(), educator, dto.QuizCreateRequest{
		Title: "Broken",
		Questions: []dto.QuestionCreateRequest{
			{Prompt: "Fine", Type: "SHORT_ANSWER", CorrectAnswer: "yes"},
			{Prompt: "Pick", Type: "MULTIPLE_CHOICE", Options: []string{"a", "b"}, CorrectAnswer: "c"},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	var quizzes int64
	require.NoError(t, env.db.Model(&models.Quiz{}).Count(&quizzes).Error)
	require.Zero(t, quizzes)
}

func TestCreateQuizRegeneratesTakenCode(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	existing := env.capitalsQuiz(t, educator, nil)

	svc := env.quizService().(*quizService)
	codes := []string{existing.Code, "K7Q2XM"}
	svc.newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	quiz, err := svc.Create(context.Background(), educator, dto.QuizCreateRequest{Title: "Second"})
	require.NoError(t, err)
	require.Equal(t, "K7Q2XM", quiz.Code)
	require.Empty(t, codes)
}

func TestQuizOwnershipGates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.RoleEducator)
	other := env.user(t, models.RoleEducator)
	admin := env.user(t, models.RoleAdmin)
	quiz := env.capitalsQuiz(t, owner, nil)
	svc := env.quizService()

	_, err := svc.Get(context.Background(), other, quiz.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), other, quiz.ID, dto.QuizUpdateRequest{Title: stringPtr("Stolen")})
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, svc.Delete(context.Background(), other, quiz.ID), ErrForbidden)

	loaded, err := svc.Get(context.Background(), admin, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, "Capitals", loaded.Title)

	_, err = svc.Get(context.Background(), owner, quiz.ID+99)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestListQuizzesScopesEducatorsToOwnQuizzes(t *testing.T) {
	env := newTestEnv(t)
	first := env.user(t, models.RoleEducator)
	second := env.user(t, models.RoleEducator)
	admin := env.user(t, models.RoleAdmin)
	env.capitalsQuiz(t, first, nil)
	env.capitalsQuiz(t, second, nil)
	svc := env.quizService()

	own, err := svc.List(context.Background(), first, dto.QuizListRequest{CreatedBy: uintPtr(second.UserID)})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, first.UserID, own[0].CreatedByID)

	all, err := svc.List(context.Background(), admin, dto.QuizListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := svc.List(context.Background(), admin, dto.QuizListRequest{CreatedBy: uintPtr(second.UserID)})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
}

func TestUpdateQuizAppliesAllowListAndClearsLimits(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	quiz := env.capitalsQuiz(t, educator, intPtr(3))
	svc := env.quizService()

	updated, err := svc.Update(context.Background(), educator, quiz.ID, dto.QuizUpdateRequest{
		Title:       stringPtr("  <b>World</b> Capitals "),
		TimeLimit:   intPtr(0),
		MaxAttempts: intPtr(0),
	})
	require.NoError(t, err)
	require.Equal(t, "World Capitals", updated.Title)
	require.Nil(t, updated.TimeLimit)
	require.Nil(t, updated.MaxAttempts)
	require.Equal(t, quiz.Code, updated.Code)
	require.True(t, updated.IsActive)

	_, err = svc.Update(context.Background(), educator, quiz.ID, dto.QuizUpdateRequest{Title: stringPtr("   ")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteQuizCascadesAndRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	student := env.user(t, models.RoleStudent)
	quiz := env.capitalsQuiz(t, educator, nil)
	env.enroll(t, student, quiz)

	attempts := env.attemptService()
	started, err := attempts.Start(context.Background(), student, dto.AttemptStartRequest{QuizID: quiz.ID})
	require.NoError(t, err)
	_, err = attempts.Submit(context.Background(), student, submitRequest(started, quiz, "Paris", "False"))
	require.NoError(t, err)

	activity := &memoryActivityRepo{}
	svc := NewQuizService(env.quizzes, env.users, testValidator(), QuizServiceOptions{
		Activity: NewActivityService(activity, testLogger()),
	}, testLogger())

	require.NoError(t, svc.Delete(context.Background(), educator, quiz.ID))

	for _, model := range []interface{}{&models.Quiz{}, &models.Question{}, &models.Enrollment{}, &models.Attempt{}, &models.Answer{}} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		require.Zero(t, count, "%T rows left behind", model)
	}

	require.Len(t, activity.entries, 1)
	require.Equal(t, models.ActivityQuizDeleted, activity.entries[0].Action)

	require.ErrorIs(t, svc.Delete(context.Background(), educator, quiz.ID), ErrQuizNotFound)
}

func stringPtr(v string) *string {
	return &v
}
