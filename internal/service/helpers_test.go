package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/database"
	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type testEnv struct {
	db          *gorm.DB
	users       repository.UserRepository
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	enrollments repository.EnrollmentRepository
	attempts    repository.AttemptRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		quizzes:     repository.NewQuizRepository(db),
		questions:   repository.NewQuestionRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		attempts:    repository.NewAttemptRepository(db),
	}
}

func (e testEnv) user(t *testing.T, role models.Role, status ...models.EducatorStatus) Identity {
	t.Helper()
	user := models.User{
		Name:         "Test " + string(role),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	if role == models.RoleEducator {
		educatorStatus := models.EducatorStatusApproved
		if len(status) > 0 {
			educatorStatus = status[0]
		}
		user.EducatorStatus = &educatorStatus
	}
	require.NoError(t, e.users.Create(context.Background(), &user))
	return Identity{UserID: user.ID, Role: role}
}

func (e testEnv) quizService() QuizService {
	return NewQuizService(e.quizzes, e.users, testValidator(), QuizServiceOptions{}, testLogger())
}

func (e testEnv) enrollmentService() EnrollmentService {
	return NewEnrollmentService(e.quizzes, e.enrollments, e.attempts, testValidator(), nil, nil, testLogger())
}

func (e testEnv) attemptService() *attemptService {
	return NewAttemptService(AttemptServiceDeps{
		Quizzes:     e.quizzes,
		Questions:   e.questions,
		Enrollments: e.enrollments,
		Attempts:    e.attempts,
	}, testValidator(), nil, nil, testLogger()).(*attemptService)
}

// capitalsQuiz creates the two-question quiz used across lifecycle tests.
func (e testEnv) capitalsQuiz(t *testing.T, owner Identity, maxAttempts *int) dto.QuizResponse {
	t.Helper()
	quiz, err := e.quizService().Create(context.Background(), owner, dto.QuizCreateRequest{
		Title:       "Capitals",
		MaxAttempts: maxAttempts,
		TimeLimit:   intPtr(10),
		Questions: []dto.QuestionCreateRequest{
			{Prompt: "Capital of France?", Type: "SHORT_ANSWER", CorrectAnswer: "Paris", Points: 1},
			{Prompt: "Berlin is in Spain.", Type: "TRUE_FALSE", CorrectAnswer: "False", Points: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 2)
	return quiz
}

func (e testEnv) enroll(t *testing.T, student Identity, quiz dto.QuizResponse) {
	t.Helper()
	_, err := e.enrollmentService().Enroll(context.Background(), student, dto.EnrollRequest{Code: quiz.Code})
	require.NoError(t, err)
}

func intPtr(v int) *int {
	return &v
}
