package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/events"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/observability"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// maxStartRetries bounds how often a start is retried after losing a sequence race.
const maxStartRetries = 5

// ErrAttemptContention indicates concurrent starts kept claiming the same sequence.
var ErrAttemptContention = errors.New("attempt start contended, try again")

// AttemptService drives the attempt lifecycle from start to scored result.
type AttemptService interface {
	Take(ctx context.Context, identity Identity, quizID uint) (dto.TakeQuizResponse, error)
	Start(ctx context.Context, identity Identity, req dto.AttemptStartRequest) (dto.AttemptStartResponse, error)
	Submit(ctx context.Context, identity Identity, req dto.AttemptSubmitRequest) (dto.AttemptResultResponse, error)
	Result(ctx context.Context, identity Identity, attemptID uint) (dto.AttemptResultResponse, error)
	History(ctx context.Context, identity Identity) ([]dto.AttemptSummaryResponse, error)
}

// AttemptServiceDeps groups the repositories used by the attempt lifecycle.
type AttemptServiceDeps struct {
	Quizzes     repository.QuizRepository
	Questions   repository.QuestionRepository
	Enrollments repository.EnrollmentRepository
	Attempts    repository.AttemptRepository
}

type attemptService struct {
	quizzes     repository.QuizRepository
	questions   repository.QuestionRepository
	enrollments repository.EnrollmentRepository
	attempts    repository.AttemptRepository
	validator   *validator.Validate
	events      events.Publisher
	stats       StatsInvalidator
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAttemptService constructs the attempt lifecycle service.
func NewAttemptService(deps AttemptServiceDeps, validate *validator.Validate, publisher events.Publisher, stats StatsInvalidator, logger zerolog.Logger) AttemptService {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &attemptService{
		quizzes:     deps.Quizzes,
		questions:   deps.Questions,
		enrollments: deps.Enrollments,
		attempts:    deps.Attempts,
		validator:   validate,
		events:      publisher,
		stats:       stats,
		logger:      logger.With().Str("component", "attempt_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/quizhub-api/internal/service/attempt"),
		now:         time.Now,
	}
}

// checkEligibility applies the start preconditions in order: the quiz must
// exist, the student must be enrolled and the quiz must be active.
func (s *attemptService) checkEligibility(ctx context.Context, identity Identity, quizID uint) (models.Quiz, error) {
	if !identity.IsStudent() {
		return models.Quiz{}, ErrForbidden
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}

	enrolled, err := s.enrollments.Exists(ctx, identity.UserID, quizID)
	if err != nil {
		return models.Quiz{}, err
	}
	if !enrolled {
		return models.Quiz{}, ErrNotEnrolled
	}

	if !quiz.IsActive {
		return models.Quiz{}, ErrQuizInactive
	}

	return quiz, nil
}

// Take returns the quiz for answering, without correct answers or explanations.
// A student who used up every attempt may still load the quiz while one of
// those attempts is in progress.
func (s *attemptService) Take(ctx context.Context, identity Identity, quizID uint) (dto.TakeQuizResponse, error) {
	quiz, err := s.checkEligibility(ctx, identity, quizID)
	if err != nil {
		return dto.TakeQuizResponse{}, err
	}

	used, err := s.attempts.CountByUserAndQuiz(ctx, identity.UserID, quizID)
	if err != nil {
		return dto.TakeQuizResponse{}, err
	}

	var inProgressID *uint
	open, err := s.attempts.FindInProgress(ctx, identity.UserID, quizID)
	switch {
	case err == nil:
		inProgressID = uintPtr(open.ID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.TakeQuizResponse{}, err
	}

	if inProgressID == nil && quiz.MaxAttempts != nil && used >= int64(*quiz.MaxAttempts) {
		return dto.TakeQuizResponse{}, ErrMaxAttemptsReached
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return dto.TakeQuizResponse{}, err
	}
	quiz.Questions = questions

	response := dto.NewTakeQuizResponse(quiz, used)
	response.InProgressID = inProgressID
	return response, nil
}

func (s *attemptService) Start(ctx context.Context, identity Identity, req dto.AttemptStartRequest) (dto.AttemptStartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.start")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(identity.UserID)), attribute.Int("quiz.id", int(req.QuizID)))

	response, err := s.start(ctx, identity, req)
	result := outcomeLabel(err)
	observability.AttemptsStarted().WithLabelValues(result).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return dto.AttemptStartResponse{}, err
	}

	span.SetAttributes(attribute.Int("attempt.id", int(response.AttemptID)), attribute.Int("attempt.sequence", response.Sequence))
	span.SetStatus(codes.Ok, "started")
	return response, nil
}

// start inserts the attempt under the attempt cap. The repository counts and
// inserts in one transaction and the (user, quiz, sequence) unique index
// rejects a concurrent start that claimed the same slot, so the loop recounts
// and either takes the next slot or reports the cap.
func (s *attemptService) start(ctx context.Context, identity Identity, req dto.AttemptStartRequest) (dto.AttemptStartResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttemptStartResponse{}, err
	}

	quiz, err := s.checkEligibility(ctx, identity, req.QuizID)
	if err != nil {
		return dto.AttemptStartResponse{}, err
	}

	for try := 0; ; try++ {
		attempt := models.Attempt{
			UserID:    identity.UserID,
			QuizID:    quiz.ID,
			StartedAt: s.now(),
		}

		err := s.attempts.Start(ctx, &attempt, quiz.MaxAttempts)
		switch {
		case err == nil:
			s.logger.Info().
				Uint("attempt_id", attempt.ID).
				Uint("user_id", identity.UserID).
				Uint("quiz_id", quiz.ID).
				Int("sequence", attempt.Sequence).
				Msg("attempt started")
			if err := s.events.Publish(ctx, events.AttemptStarted, map[string]interface{}{
				"attempt_id": attempt.ID,
				"user_id":    identity.UserID,
				"quiz_id":    quiz.ID,
				"sequence":   attempt.Sequence,
			}); err != nil {
				s.logger.Warn().Err(err).Msg("attempt start event not published")
			}

			return dto.AttemptStartResponse{
				AttemptID: attempt.ID,
				QuizID:    quiz.ID,
				Sequence:  attempt.Sequence,
				StartedAt: attempt.StartedAt,
				TimeLimit: quiz.TimeLimit,
			}, nil
		case errors.Is(err, repository.ErrAttemptLimitReached):
			return dto.AttemptStartResponse{}, ErrMaxAttemptsReached
		case errors.Is(err, gorm.ErrDuplicatedKey):
			if try >= maxStartRetries {
				return dto.AttemptStartResponse{}, ErrAttemptContention
			}
			s.logger.Debug().Int("try", try+1).Uint("quiz_id", quiz.ID).Msg("attempt sequence taken, recounting")
		default:
			s.logger.Error().Err(err).Uint("quiz_id", quiz.ID).Msg("failed to start attempt")
			return dto.AttemptStartResponse{}, err
		}
	}
}

func (s *attemptService) Submit(ctx context.Context, identity Identity, req dto.AttemptSubmitRequest) (dto.AttemptResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.submit")
	defer span.End()
	span.SetAttributes(attribute.Int("attempt.id", int(req.AttemptID)), attribute.Int("quiz.id", int(req.QuizID)))

	response, err := s.submit(ctx, identity, req)
	result := outcomeLabel(err)
	observability.AttemptsSubmitted().WithLabelValues(result).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return dto.AttemptResultResponse{}, err
	}

	observability.AttemptPercentage().Observe(response.Percentage)
	span.SetAttributes(attribute.Int("attempt.score", response.Score), attribute.Int("attempt.total_points", response.TotalPoints))
	span.SetStatus(codes.Ok, "scored")
	return response, nil
}

// submit scores every question of the quiz and completes the attempt and its
// answers in one transaction. Only the first of concurrent submissions wins.
func (s *attemptService) submit(ctx context.Context, identity Identity, req dto.AttemptSubmitRequest) (dto.AttemptResultResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttemptResultResponse{}, err
	}

	attempt, err := s.loadAttempt(ctx, req.AttemptID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	if attempt.UserID != identity.UserID || attempt.QuizID != req.QuizID {
		return dto.AttemptResultResponse{}, ErrForbidden
	}

	if attempt.IsCompleted() {
		return dto.AttemptResultResponse{}, ErrAlreadySubmitted
	}

	questions, err := s.questions.ListByQuiz(ctx, attempt.QuizID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	score := ScoreAttempt(questions, req.Answers)
	completedAt := s.now()
	timeSpent := int(completedAt.Sub(attempt.StartedAt) / time.Second)
	if timeSpent < 0 {
		timeSpent = 0
	}

	if err := s.attempts.Complete(ctx, attempt.ID, repository.AttemptCompletion{
		CompletedAt: completedAt,
		TimeSpent:   timeSpent,
		Score:       score.Score,
		TotalPoints: score.TotalPoints,
		Answers:     score.Answers(),
	}); err != nil {
		if errors.Is(err, repository.ErrAttemptAlreadyCompleted) {
			return dto.AttemptResultResponse{}, ErrAlreadySubmitted
		}
		s.logger.Error().Err(err).Uint("attempt_id", attempt.ID).Msg("failed to complete attempt")
		return dto.AttemptResultResponse{}, err
	}

	completed, err := s.loadAttempt(ctx, attempt.ID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}
	response := dto.NewAttemptResultResponse(completed)

	logEvent := s.logger.Info()
	if response.OverTimeLimit {
		logEvent = s.logger.Warn()
	}
	logEvent.
		Uint("attempt_id", attempt.ID).
		Uint("user_id", identity.UserID).
		Int("score", response.Score).
		Int("total_points", response.TotalPoints).
		Int("time_spent", response.TimeSpent).
		Bool("over_time_limit", response.OverTimeLimit).
		Msg("attempt submitted")

	if s.stats != nil {
		s.stats.Invalidate(ctx, identity.UserID, completed.Quiz.CreatedByID)
	}
	if err := s.events.Publish(ctx, events.AttemptCompleted, map[string]interface{}{
		"attempt_id":   attempt.ID,
		"user_id":      identity.UserID,
		"quiz_id":      attempt.QuizID,
		"score":        response.Score,
		"total_points": response.TotalPoints,
		"percentage":   response.Percentage,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("attempt completion event not published")
	}

	return response, nil
}

// Result returns the stored scored result. The attempt's student, the quiz's
// educator and admins may read it.
func (s *attemptService) Result(ctx context.Context, identity Identity, attemptID uint) (dto.AttemptResultResponse, error) {
	attempt, err := s.loadAttempt(ctx, attemptID)
	if err != nil {
		return dto.AttemptResultResponse{}, err
	}

	allowed := identity.IsAdmin() ||
		attempt.UserID == identity.UserID ||
		(identity.IsEducator() && attempt.Quiz.OwnedBy(identity.UserID))
	if !allowed {
		return dto.AttemptResultResponse{}, ErrForbidden
	}

	if !attempt.IsCompleted() {
		return dto.AttemptResultResponse{}, ErrNotCompleted
	}

	return dto.NewAttemptResultResponse(attempt), nil
}

// History lists the caller's attempts, newest first.
func (s *attemptService) History(ctx context.Context, identity Identity) ([]dto.AttemptSummaryResponse, error) {
	if !identity.IsStudent() {
		return nil, ErrForbidden
	}

	attempts, err := s.attempts.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AttemptSummaryResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, dto.NewAttemptSummaryResponse(attempt))
	}
	return responses, nil
}

func (s *attemptService) loadAttempt(ctx context.Context, id uint) (models.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Attempt{}, ErrAttemptNotFound
		}
		return models.Attempt{}, err
	}
	return attempt, nil
}
