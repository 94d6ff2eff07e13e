package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
)

func TestEnrollSucceedsOnceThenAlreadyEnrolled(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	student := env.user(t, models.RoleStudent)
	quiz := env.capitalsQuiz(t, educator, nil)
	svc := env.enrollmentService()

	enrollment, err := svc.Enroll(context.Background(), student, dto.EnrollRequest{Code: "  " + strings.ToLower(quiz.Code) + " "})
	require.NoError(t, err)
	require.Equal(t, quiz.ID, enrollment.QuizID)
	require.Equal(t, "Capitals", enrollment.Title)

	_, err = svc.Enroll(context.Background(), student, dto.EnrollRequest{Code: quiz.Code})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	var count int64
	require.NoError(t, env.db.Model(&models.Enrollment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestEnrollRejectsUnknownAndInactiveQuizzes(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	student := env.user(t, models.RoleStudent)
	quiz := env.capitalsQuiz(t, educator, nil)
	svc := env.enrollmentService()

	_, err := svc.Enroll(context.Background(), student, dto.EnrollRequest{Code: "NOPE00"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.quizService().Update(context.Background(), educator, quiz.ID, dto.QuizUpdateRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), student, dto.EnrollRequest{Code: quiz.Code})
	require.ErrorIs(t, err, ErrQuizInactive)

	_, err = svc.Enroll(context.Background(), educator, dto.EnrollRequest{Code: quiz.Code})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestEnrollConcurrentCallsCreateOneRow(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	student := env.user(t, models.RoleStudent)
	quiz := env.capitalsQuiz(t, educator, nil)
	svc := env.enrollmentService()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), student, dto.EnrollRequest{Code: quiz.Code})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.Is(err, ErrAlreadyEnrolled), "unexpected error: %v", err)
	}
	require.Equal(t, 1, successes)
}

func TestListAvailableReportsEnrollmentAndUsage(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	student := env.user(t, models.RoleStudent)
	joined := env.capitalsQuiz(t, educator, nil)
	other := env.capitalsQuiz(t, educator, nil)
	env.enroll(t, student, joined)

	_, err := env.attemptService().Start(context.Background(), student, dto.AttemptStartRequest{QuizID: joined.ID})
	require.NoError(t, err)

	available, err := env.enrollmentService().ListAvailable(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, available, 2)

	byID := map[uint]dto.AvailableQuizResponse{}
	for _, quiz := range available {
		byID[quiz.ID] = quiz
	}
	require.True(t, byID[joined.ID].IsEnrolled)
	require.Equal(t, int64(1), byID[joined.ID].AttemptCount)
	require.Equal(t, int64(2), byID[joined.ID].QuestionCount)
	require.False(t, byID[other.ID].IsEnrolled)
}

func boolPtr(v bool) *bool {
	return &v
}
