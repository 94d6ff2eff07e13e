package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/database"
	"github.com/noah-isme/quizhub-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Name:         string(role) + " user",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	if role == models.RoleEducator {
		status := models.EducatorStatusApproved
		user.EducatorStatus = &status
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedQuiz(t *testing.T, db *gorm.DB, owner models.User, points ...int) models.Quiz {
	t.Helper()
	quiz := models.Quiz{
		Title:       "Capitals",
		Code:        uuid.NewString()[:8],
		IsActive:    true,
		CreatedByID: owner.ID,
	}
	for i, p := range points {
		quiz.Questions = append(quiz.Questions, models.Question{
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Type:          models.QuestionTypeShortAnswer,
			CorrectAnswer: "answer",
			Points:        p,
		})
	}
	require.NoError(t, NewQuizRepository(db).Create(context.Background(), &quiz))
	return quiz
}

func seedCompletedAttempt(t *testing.T, db *gorm.DB, user models.User, quiz models.Quiz, correct bool) models.Attempt {
	t.Helper()
	repo := NewAttemptRepository(db)
	attempt := models.Attempt{UserID: user.ID, QuizID: quiz.ID, StartedAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Start(context.Background(), &attempt, nil))

	score, total := 0, 0
	answers := make([]models.Answer, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		total += question.Points
		awarded := 0
		if correct {
			awarded = question.Points
		}
		score += awarded
		answers = append(answers, models.Answer{
			QuestionID:     question.ID,
			Text:           "answer",
			IsCorrect:      correct,
			Points:         awarded,
			QuestionPoints: question.Points,
			Prompt:         question.Prompt,
			CorrectAnswer:  question.CorrectAnswer,
		})
	}

	require.NoError(t, repo.Complete(context.Background(), attempt.ID, AttemptCompletion{
		CompletedAt: time.Now(),
		TimeSpent:   60,
		Score:       score,
		TotalPoints: total,
		Answers:     answers,
	}))
	return attempt
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func TestQuizRepositoryCreateStoresQuestionsInOrder(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	quiz := seedQuiz(t, db, educator, 1, 2, 3)

	loaded, err := NewQuizRepository(db).GetWithQuestions(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 3)
	require.Equal(t, "Question 1", loaded.Questions[0].Prompt)
	require.Equal(t, "Question 3", loaded.Questions[2].Prompt)
	require.Equal(t, 6, loaded.TotalPoints())
}

func TestQuizRepositoryGetByCodeIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	quiz := models.Quiz{Title: "Rivers", Code: "ABC123", IsActive: true, CreatedByID: educator.ID}
	repo := NewQuizRepository(db)
	require.NoError(t, repo.Create(context.Background(), &quiz))

	found, err := repo.GetByCode(context.Background(), "  abc123 ")
	require.NoError(t, err)
	require.Equal(t, quiz.ID, found.ID)

	exists, err := repo.CodeExists(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, exists)

	duplicate := models.Quiz{Title: "Copy", Code: "ABC123", CreatedByID: educator.ID}
	require.ErrorIs(t, repo.Create(context.Background(), &duplicate), gorm.ErrDuplicatedKey)
}

func TestQuizRepositoryCounts(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1, 1)
	empty := seedQuiz(t, db, educator)

	require.NoError(t, NewEnrollmentRepository(db).Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID}))
	seedCompletedAttempt(t, db, student, quiz, true)

	counts, err := NewQuizRepository(db).Counts(context.Background(), []uint{quiz.ID, empty.ID})
	require.NoError(t, err)
	require.Equal(t, QuizCounts{Questions: 2, Attempts: 1, Enrollments: 1}, counts[quiz.ID])
	require.Equal(t, QuizCounts{}, counts[empty.ID])
}

func TestQuizRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1, 2)
	other := seedQuiz(t, db, educator, 5)

	enrollments := NewEnrollmentRepository(db)
	require.NoError(t, enrollments.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID}))
	require.NoError(t, enrollments.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: other.ID}))
	attempt := seedCompletedAttempt(t, db, student, quiz, true)
	seedCompletedAttempt(t, db, student, other, false)

	repo := NewQuizRepository(db)
	require.NoError(t, repo.Delete(context.Background(), quiz.ID))

	_, err := repo.GetByID(context.Background(), quiz.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = NewAttemptRepository(db).GetByID(context.Background(), attempt.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Zero(t, countRows(t, db, &models.Question{}, "quiz_id = ?", quiz.ID))
	require.Zero(t, countRows(t, db, &models.Enrollment{}, "quiz_id = ?", quiz.ID))
	require.Zero(t, countRows(t, db, &models.Answer{}, "attempt_id = ?", attempt.ID))

	require.Equal(t, int64(1), countRows(t, db, &models.Question{}, "quiz_id = ?", other.ID))
	require.Equal(t, int64(1), countRows(t, db, &models.Enrollment{}, "quiz_id = ?", other.ID))
	require.Equal(t, int64(1), countRows(t, db, &models.Answer{}, "1 = 1"))

	require.ErrorIs(t, repo.Delete(context.Background(), quiz.ID), gorm.ErrRecordNotFound)
}

func TestQuizRepositoryDeleteIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1, 2)
	require.NoError(t, NewEnrollmentRepository(db).Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID}))
	seedCompletedAttempt(t, db, student, quiz, true)

	failure := errors.New("simulated store failure")
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_questions", func(tx *gorm.DB) {
		if tx.Statement.Table == "questions" {
			_ = tx.AddError(failure)
		}
	}))

	err := NewQuizRepository(db).Delete(context.Background(), quiz.ID)
	require.ErrorIs(t, err, failure)

	require.Equal(t, int64(1), countRows(t, db, &models.Quiz{}, "id = ?", quiz.ID))
	require.Equal(t, int64(2), countRows(t, db, &models.Question{}, "quiz_id = ?", quiz.ID))
	require.Equal(t, int64(1), countRows(t, db, &models.Enrollment{}, "quiz_id = ?", quiz.ID))
	require.Equal(t, int64(1), countRows(t, db, &models.Attempt{}, "quiz_id = ?", quiz.ID))
	require.Equal(t, int64(2), countRows(t, db, &models.Answer{}, "1 = 1"))
}

func TestUserRepositoryDeleteCascadesOwnedQuizzes(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	otherEducator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	owned := seedQuiz(t, db, educator, 1)
	foreign := seedQuiz(t, db, otherEducator, 1)

	enrollments := NewEnrollmentRepository(db)
	require.NoError(t, enrollments.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: owned.ID}))
	require.NoError(t, enrollments.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: foreign.ID}))
	seedCompletedAttempt(t, db, student, owned, true)
	seedCompletedAttempt(t, db, student, foreign, true)

	users := NewUserRepository(db)
	require.NoError(t, users.Delete(context.Background(), educator.ID))

	_, err := users.GetByID(context.Background(), educator.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Zero(t, countRows(t, db, &models.Quiz{}, "created_by_id = ?", educator.ID))
	require.Zero(t, countRows(t, db, &models.Attempt{}, "quiz_id = ?", owned.ID))
	require.Equal(t, int64(1), countRows(t, db, &models.Attempt{}, "quiz_id = ?", foreign.ID))

	require.NoError(t, users.Delete(context.Background(), student.ID))
	require.Zero(t, countRows(t, db, &models.Attempt{}, "1 = 1"))
	require.Zero(t, countRows(t, db, &models.Answer{}, "1 = 1"))
	require.Zero(t, countRows(t, db, &models.Enrollment{}, "1 = 1"))
	require.Equal(t, int64(1), countRows(t, db, &models.Quiz{}, "id = ?", foreign.ID))
}

func TestUserRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, models.RoleStudent)
	seedUser(t, db, models.RoleStudent)
	pending := models.EducatorStatusPending
	require.NoError(t, db.Create(&models.User{Name: "Pending Teacher", Email: "pending@example.com", PasswordHash: "x", Role: models.RoleEducator, EducatorStatus: &pending}).Error)

	repo := NewUserRepository(db)
	users, total, err := repo.List(context.Background(), UserFilter{Role: models.RoleStudent, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 1)

	users, total, err = repo.List(context.Background(), UserFilter{Role: models.RoleEducator, EducatorStatus: models.EducatorStatusPending})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "pending@example.com", users[0].Email)

	found, err := repo.GetByEmail(context.Background(), "PENDING@example.com")
	require.NoError(t, err)
	require.Equal(t, users[0].ID, found.ID)
}

func TestEnrollmentRepositoryRejectsDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1)

	repo := NewEnrollmentRepository(db)
	require.NoError(t, repo.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID}))
	err := repo.Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := repo.Exists(context.Background(), student.ID, quiz.ID)
	require.NoError(t, err)
	require.True(t, exists)

	ids, err := repo.ListQuizIDsByUser(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{quiz.ID}, ids)
}

func TestAttemptRepositoryStartEnforcesCap(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1)
	limit := 2

	repo := NewAttemptRepository(db)
	for i := 1; i <= limit; i++ {
		attempt := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
		require.NoError(t, repo.Start(context.Background(), &attempt, &limit))
		require.Equal(t, i, attempt.Sequence)
	}

	extra := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
	require.ErrorIs(t, repo.Start(context.Background(), &extra, &limit), ErrAttemptLimitReached)

	count, err := repo.CountByUserAndQuiz(context.Background(), student.ID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, int64(limit), count)
}

func TestAttemptSequenceIsUnique(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1)

	first := models.Attempt{UserID: student.ID, QuizID: quiz.ID, Sequence: 1, StartedAt: time.Now()}
	require.NoError(t, db.Omit("Quiz", "User", "Answers").Create(&first).Error)

	clash := models.Attempt{UserID: student.ID, QuizID: quiz.ID, Sequence: 1, StartedAt: time.Now()}
	require.ErrorIs(t, db.Omit("Quiz", "User", "Answers").Create(&clash).Error, gorm.ErrDuplicatedKey)
}

func TestAttemptRepositoryCompleteOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1, 2)
	attempt := seedCompletedAttempt(t, db, student, quiz, true)

	repo := NewAttemptRepository(db)
	err := repo.Complete(context.Background(), attempt.ID, AttemptCompletion{
		CompletedAt: time.Now(),
		Score:       0,
		TotalPoints: 3,
		Answers:     []models.Answer{{QuestionID: quiz.Questions[0].ID}},
	})
	require.ErrorIs(t, err, ErrAttemptAlreadyCompleted)

	loaded, err := repo.GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	require.True(t, loaded.IsCompleted())
	require.Equal(t, 3, *loaded.Score)
	require.Equal(t, 3, *loaded.TotalPoints)
	require.Len(t, loaded.Answers, 2)
	require.Equal(t, quiz.Questions[0].ID, loaded.Answers[0].QuestionID)
	require.Equal(t, "Question 1", loaded.Answers[0].Prompt)
	require.Equal(t, 1, loaded.Answers[0].QuestionPoints)
	require.Equal(t, "Capitals", loaded.Quiz.Title)
}

func TestAttemptRepositoryListAndCountByUser(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	first := seedQuiz(t, db, educator, 1)
	second := seedQuiz(t, db, educator, 1)
	seedCompletedAttempt(t, db, student, first, true)
	seedCompletedAttempt(t, db, student, first, false)
	seedCompletedAttempt(t, db, student, second, true)

	repo := NewAttemptRepository(db)
	attempts, err := repo.ListByUser(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	require.Equal(t, second.ID, attempts[0].QuizID)

	counts, err := repo.CountByUserForQuizzes(context.Background(), student.ID, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[first.ID])
	require.Equal(t, int64(1), counts[second.ID])
}

func TestStatsRepositoryAggregates(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 2)
	require.NoError(t, NewEnrollmentRepository(db).Create(context.Background(), &models.Enrollment{UserID: student.ID, QuizID: quiz.ID}))
	seedCompletedAttempt(t, db, student, quiz, true)
	seedCompletedAttempt(t, db, student, quiz, false)

	repo := NewStatsRepository(db)
	studentStats, err := repo.StudentStats(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), studentStats.Enrollments)
	require.Equal(t, int64(2), studentStats.CompletedAttempts)
	require.InDelta(t, 50.0, studentStats.AverageScore, 0.001)
	require.Equal(t, int64(120), studentStats.TotalTimeSpent)

	educatorStats, err := repo.EducatorStats(context.Background(), educator.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), educatorStats.Quizzes)
	require.Equal(t, int64(1), educatorStats.Students)
	require.Equal(t, int64(2), educatorStats.Attempts)
	require.InDelta(t, 50.0, educatorStats.AverageScore, 0.001)
}

func TestActivityLogRepositoryFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	userID, quizID, otherQuizID := uint(7), uint(3), uint(4)

	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: models.ActivityUserRoleChanged, EntityType: models.ActivityEntityUser, EntityID: &userID}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 2, ActorRole: "educator", Action: models.ActivityQuizDeleted, EntityType: models.ActivityEntityQuiz, EntityID: &quizID}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 2, ActorRole: "educator", Action: models.ActivityQuizDeleted, EntityType: models.ActivityEntityQuiz, EntityID: &otherQuizID}))

	entries, total, err := repo.List(ctx, ActivityLogFilter{EntityType: models.ActivityEntityUser, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, models.ActivityUserRoleChanged, entries[0].Action)

	entries, total, err = repo.List(ctx, ActivityLogFilter{EntityType: models.ActivityEntityQuiz, EntityID: &quizID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, quizID, *entries[0].EntityID)

	entries, total, err = repo.List(ctx, ActivityLogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, otherQuizID, *entries[0].EntityID)

	entries, total, err = repo.List(ctx, ActivityLogFilter{EntityType: models.ActivityEntityQuiz, Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, entries, 1)
	require.Equal(t, quizID, *entries[0].EntityID)
}

func TestActivityLogRepositoryListForEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	educatorID, otherID := uint(9), uint(10)

	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: models.ActivityEducatorApproved, EntityType: models.ActivityEntityEducatorApproval, EntityID: &educatorID}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: models.ActivityUserRoleChanged, EntityType: models.ActivityEntityUser, EntityID: &educatorID}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: models.ActivityUserDeleted, EntityType: models.ActivityEntityUser, EntityID: &otherID}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: models.ActivityQuizDeleted, EntityType: models.ActivityEntityQuiz, EntityID: &educatorID}))

	entries, total, err := repo.ListForEntity(ctx, models.ActivityEntityUser, educatorID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, models.ActivityUserRoleChanged, entries[0].Action)
	require.Equal(t, models.ActivityEducatorApproved, entries[1].Action)

	entries, total, err = repo.ListForEntity(ctx, models.ActivityEntityQuiz, educatorID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, models.ActivityQuizDeleted, entries[0].Action)

	entries, total, err = repo.ListForEntity(ctx, models.ActivityEntityQuiz, 404, 1, 20)
	require.NoError(t, err)
	require.Zero(t, total)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestAttemptRepositoryFindInProgress(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1)
	seedCompletedAttempt(t, db, student, quiz, true)

	repo := NewAttemptRepository(db)
	_, err := repo.FindInProgress(context.Background(), student.ID, quiz.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	open := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
	require.NoError(t, repo.Start(context.Background(), &open, nil))

	found, err := repo.FindInProgress(context.Background(), student.ID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, open.ID, found.ID)
	require.Equal(t, 2, found.Sequence)
}

func TestQuestionDeleteKeepsRecordedAnswers(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1, 2)
	attempt := seedCompletedAttempt(t, db, student, quiz, true)

	questions := NewQuestionRepository(db)
	require.NoError(t, questions.Delete(context.Background(), quiz.Questions[1].ID))
	require.ErrorIs(t, questions.Delete(context.Background(), quiz.Questions[1].ID), gorm.ErrRecordNotFound)

	loaded, err := NewAttemptRepository(db).GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Answers, 2)
	require.Equal(t, quiz.Questions[1].ID, loaded.Answers[1].QuestionID)
	require.Equal(t, "Question 2", loaded.Answers[1].Prompt)
	require.Equal(t, 2, loaded.Answers[1].QuestionPoints)
	require.Equal(t, 2, loaded.Answers[1].Points)
}

// staleAttemptCount makes the next attempt count read one row short, the way a
// transaction that counted before a concurrent start committed would see it.
func staleAttemptCount(t *testing.T, db *gorm.DB) {
	t.Helper()
	armed := true
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:stale_attempt_count", func(tx *gorm.DB) {
		if !armed || tx.Statement.Table != "attempts" {
			return
		}
		if count, ok := tx.Statement.Dest.(*int64); ok && *count > 0 {
			armed = false
			*count--
		}
	}))
}

func TestAttemptRepositoryStartSurfacesLostSequenceRace(t *testing.T) {
	db := setupTestDB(t)
	educator := seedUser(t, db, models.RoleEducator)
	student := seedUser(t, db, models.RoleStudent)
	quiz := seedQuiz(t, db, educator, 1)
	limit := 3

	repo := NewAttemptRepository(db)
	first := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
	require.NoError(t, repo.Start(context.Background(), &first, &limit))

	committed := models.Attempt{UserID: student.ID, QuizID: quiz.ID, Sequence: 2, StartedAt: time.Now()}
	require.NoError(t, db.Omit("Quiz", "User", "Answers").Create(&committed).Error)

	staleAttemptCount(t, db)
	loser := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
	err := repo.Start(context.Background(), &loser, &limit)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.CountByUserAndQuiz(context.Background(), student.ID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	retry := models.Attempt{UserID: student.ID, QuizID: quiz.ID, StartedAt: time.Now()}
	require.NoError(t, repo.Start(context.Background(), &retry, &limit))
	require.Equal(t, 3, retry.Sequence)
}
