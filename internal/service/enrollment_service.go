package service

import (
	"context"
	"errors"
	"strings"

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

// EnrollmentService redeems enrollment codes and lists quizzes open to students.
type EnrollmentService interface {
	Enroll(ctx context.Context, identity Identity, req dto.EnrollRequest) (dto.EnrollmentResponse, error)
	ListAvailable(ctx context.Context, identity Identity) ([]dto.AvailableQuizResponse, error)
}

type enrollmentService struct {
	quizzes     repository.QuizRepository
	enrollments repository.EnrollmentRepository
	attempts    repository.AttemptRepository
	validator   *validator.Validate
	events      events.Publisher
	stats       StatsInvalidator
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(quizzes repository.QuizRepository, enrollments repository.EnrollmentRepository, attempts repository.AttemptRepository, validate *validator.Validate, publisher events.Publisher, stats StatsInvalidator, logger zerolog.Logger) EnrollmentService {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &enrollmentService{
		quizzes:     quizzes,
		enrollments: enrollments,
		attempts:    attempts,
		validator:   validate,
		events:      publisher,
		stats:       stats,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/quizhub-api/internal/service/enrollment"),
	}
}

// Enroll looks the quiz up by its upper-cased code and inserts a single
// enrollment row. The unique (user, quiz) index decides concurrent races.
func (s *enrollmentService) Enroll(ctx context.Context, identity Identity, req dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.enroll")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(identity.UserID)))

	response, err := s.enroll(ctx, identity, req)
	result := outcomeLabel(err)
	observability.Enrollments().WithLabelValues(result).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return dto.EnrollmentResponse{}, err
	}

	span.SetAttributes(attribute.Int("quiz.id", int(response.QuizID)))
	span.SetStatus(codes.Ok, "enrolled")
	return response, nil
}

func (s *enrollmentService) enroll(ctx context.Context, identity Identity, req dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	if !identity.IsStudent() {
		return dto.EnrollmentResponse{}, ErrForbidden
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	quiz, err := s.quizzes.GetByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrQuizNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if !quiz.IsActive {
		return dto.EnrollmentResponse{}, ErrQuizInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, identity.UserID, quiz.ID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if enrolled {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{UserID: identity.UserID, QuizID: quiz.ID}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		s.logger.Error().Err(err).Uint("quiz_id", quiz.ID).Msg("failed to create enrollment")
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("user_id", identity.UserID).Uint("quiz_id", quiz.ID).Msg("student enrolled")
	if s.stats != nil {
		s.stats.Invalidate(ctx, identity.UserID, quiz.CreatedByID)
	}
	if err := s.events.Publish(ctx, events.EnrollmentCreated, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"user_id":       identity.UserID,
		"quiz_id":       quiz.ID,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("enrollment event not published")
	}

	return dto.EnrollmentResponse{
		EnrollmentID: enrollment.ID,
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		EnrolledAt:   enrollment.CreatedAt,
	}, nil
}

// ListAvailable returns active quizzes together with the caller's enrollment and attempt usage.
func (s *enrollmentService) ListAvailable(ctx context.Context, identity Identity) ([]dto.AvailableQuizResponse, error) {
	if !identity.IsStudent() {
		return nil, ErrForbidden
	}

	quizzes, err := s.quizzes.List(ctx, repository.QuizFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		ids = append(ids, quiz.ID)
	}

	counts, err := s.quizzes.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	enrolledIDs, err := s.enrollments.ListQuizIDsByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[uint]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = true
	}

	attemptCounts, err := s.attempts.CountByUserForQuizzes(ctx, identity.UserID, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AvailableQuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, dto.AvailableQuizResponse{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Description:   quiz.Description,
			MaterialURL:   quiz.MaterialURL,
			TimeLimit:     quiz.TimeLimit,
			MaxAttempts:   quiz.MaxAttempts,
			QuestionCount: counts[quiz.ID].Questions,
			IsEnrolled:    enrolled[quiz.ID],
			AttemptCount:  attemptCounts[quiz.ID],
			CreatedAt:     quiz.CreatedAt,
		})
	}

	return responses, nil
}

// outcomeLabel maps an operation error onto a low-cardinality metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrQuizInactive):
		return "inactive"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, ErrNotEnrolled):
		return "not_enrolled"
	case errors.Is(err, ErrMaxAttemptsReached):
		return "max_attempts"
	case errors.Is(err, ErrAlreadySubmitted):
		return "already_submitted"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) || errors.Is(err, ErrValidation) {
			return "invalid"
		}
		return "error"
	}
}
