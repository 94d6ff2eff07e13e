package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/events"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// QuizService manages quizzes on behalf of educators and admins.
type QuizService interface {
	List(ctx context.Context, identity Identity, req dto.QuizListRequest) ([]dto.QuizResponse, error)
	Get(ctx context.Context, identity Identity, id uint) (dto.QuizResponse, error)
	Create(ctx context.Context, identity Identity, req dto.QuizCreateRequest) (dto.QuizResponse, error)
	Update(ctx context.Context, identity Identity, id uint, req dto.QuizUpdateRequest) (dto.QuizResponse, error)
	Delete(ctx context.Context, identity Identity, id uint) error
}

// QuizServiceOptions carries the optional collaborators of the quiz service.
type QuizServiceOptions struct {
	CodeLength int
	Activity   ActivityRecorder
	Events     events.Publisher
	Stats      StatsInvalidator
}

type quizService struct {
	access    quizAccess
	quizzes   repository.QuizRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	events    events.Publisher
	stats     StatsInvalidator
	logger    zerolog.Logger
	newCode   func() (string, error)
}

// NewQuizService constructs the quiz service.
func NewQuizService(quizzes repository.QuizRepository, users repository.UserRepository, validate *validator.Validate, opts QuizServiceOptions, logger zerolog.Logger) QuizService {
	length := opts.CodeLength
	if length <= 0 {
		length = DefaultCodeLength
	}
	publisher := opts.Events
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &quizService{
		access:    quizAccess{quizzes: quizzes, users: users},
		quizzes:   quizzes,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  opts.Activity,
		events:    publisher,
		stats:     opts.Stats,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		newCode:   func() (string, error) { return randomCode(length) },
	}
}

func (s *quizService) List(ctx context.Context, identity Identity, req dto.QuizListRequest) ([]dto.QuizResponse, error) {
	if err := s.access.requireEducator(ctx, identity); err != nil {
		return nil, err
	}

	filter := repository.QuizFilter{CreatedByID: req.CreatedBy}
	if !identity.IsAdmin() {
		filter.CreatedByID = uintPtr(identity.UserID)
	}

	quizzes, err := s.quizzes.List(ctx, filter)
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

	responses := make([]dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, dto.NewQuizResponse(quiz, toQuizCounts(counts[quiz.ID])))
	}
	return responses, nil
}

func (s *quizService) Get(ctx context.Context, identity Identity, id uint) (dto.QuizResponse, error) {
	if _, err := s.access.authorizeQuiz(ctx, identity, id); err != nil {
		return dto.QuizResponse{}, err
	}

	return s.load(ctx, id)
}

// Create assigns a fresh enrollment code and stores the quiz with its questions.
func (s *quizService) Create(ctx context.Context, identity Identity, req dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.access.requireEducator(ctx, identity); err != nil {
		return dto.QuizResponse{}, err
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(req.Title))
	if title == "" {
		return dto.QuizResponse{}, validationError("title is required")
	}

	questions, err := buildQuestions(s.sanitizer, req.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		Title:       title,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		MaterialURL: strings.TrimSpace(req.MaterialURL),
		TimeLimit:   positiveOrNil(req.TimeLimit),
		MaxAttempts: positiveOrNil(req.MaxAttempts),
		IsActive:    true,
		CreatedByID: identity.UserID,
	}

	for {
		code, err := generateUniqueCode(ctx, s.quizzes.CodeExists, s.newCode)
		if err != nil {
			return dto.QuizResponse{}, err
		}

		quiz.ID = 0
		quiz.Code = code
		quiz.Questions = append([]models.Question(nil), questions...)

		err = s.quizzes.Create(ctx, &quiz)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error().Err(err).Uint("user_id", identity.UserID).Msg("failed to create quiz")
			return dto.QuizResponse{}, err
		}
		s.logger.Debug().Str("code", code).Msg("enrollment code taken concurrently, regenerating")
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Str("code", quiz.Code).Int("questions", len(quiz.Questions)).Msg("quiz created")
	s.invalidateStats(ctx, identity.UserID)

	return dto.NewQuizResponse(quiz, dto.QuizCounts{Questions: int64(len(quiz.Questions))}), nil
}

// Update applies only the allow-listed fields. A zero time limit or attempt
// cap removes the limit.
func (s *quizService) Update(ctx context.Context, identity Identity, id uint, req dto.QuizUpdateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	if _, err := s.access.authorizeQuiz(ctx, identity, id); err != nil {
		return dto.QuizResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(s.sanitizer.Sanitize(*req.Title))
		if title == "" {
			return dto.QuizResponse{}, validationError("title must not be empty")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Description))
	}
	if req.MaterialURL != nil {
		updates["material_url"] = strings.TrimSpace(*req.MaterialURL)
	}
	if req.TimeLimit != nil {
		updates["time_limit"] = positiveOrNil(req.TimeLimit)
	}
	if req.MaxAttempts != nil {
		updates["max_attempts"] = positiveOrNil(req.MaxAttempts)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if _, err := s.quizzes.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	return s.load(ctx, id)
}

// Delete removes the quiz and everything attached to it in one transaction.
func (s *quizService) Delete(ctx context.Context, identity Identity, id uint) error {
	quiz, err := s.access.authorizeQuiz(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		s.logger.Error().Err(err).Uint("quiz_id", id).Msg("failed to delete quiz")
		return err
	}

	s.logger.Info().Uint("quiz_id", id).Uint("actor_id", identity.UserID).Msg("quiz deleted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      identity,
		Action:     models.ActivityQuizDeleted,
		EntityType: models.ActivityEntityQuiz,
		EntityID:   uintPtr(id),
		Metadata:   map[string]interface{}{"title": quiz.Title, "code": quiz.Code},
	})
	if err := s.events.Publish(ctx, events.QuizDeleted, map[string]interface{}{"quiz_id": id}); err != nil {
		s.logger.Warn().Err(err).Uint("quiz_id", id).Msg("quiz deletion event not published")
	}
	s.invalidateStats(ctx, quiz.CreatedByID)

	return nil
}

func (s *quizService) load(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	counts, err := s.quizzes.Counts(ctx, []uint{id})
	if err != nil {
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz, toQuizCounts(counts[id])), nil
}

func (s *quizService) invalidateStats(ctx context.Context, userIDs ...uint) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, userIDs...)
	}
}

func toQuizCounts(counts repository.QuizCounts) dto.QuizCounts {
	return dto.QuizCounts{
		Questions:   counts.Questions,
		Attempts:    counts.Attempts,
		Enrollments: counts.Enrollments,
	}
}

func positiveOrNil(value *int) *int {
	if value == nil || *value <= 0 {
		return nil
	}
	v := *value
	return &v
}
