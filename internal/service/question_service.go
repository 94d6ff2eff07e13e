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
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// QuestionService manages the questions of a quiz.
type QuestionService interface {
	List(ctx context.Context, identity Identity, quizID uint) ([]dto.QuestionResponse, error)
	Create(ctx context.Context, identity Identity, quizID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Import(ctx context.Context, identity Identity, quizID uint, req dto.QuestionImportRequest) ([]dto.QuestionResponse, error)
	Update(ctx context.Context, identity Identity, quizID, questionID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, identity Identity, quizID, questionID uint) error
}

type questionService struct {
	access    quizAccess
	questions repository.QuestionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs the question service.
func NewQuestionService(quizzes repository.QuizRepository, questions repository.QuestionRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		access:    quizAccess{quizzes: quizzes, users: users},
		questions: questions,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context, identity Identity, quizID uint) ([]dto.QuestionResponse, error) {
	if _, err := s.access.authorizeQuiz(ctx, identity, quizID); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Create(ctx context.Context, identity Identity, quizID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	created, err := s.Import(ctx, identity, quizID, dto.QuestionImportRequest{Questions: []dto.QuestionCreateRequest{req}})
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	return created[0], nil
}

// Import validates every question before inserting any of them.
func (s *questionService) Import(ctx context.Context, identity Identity, quizID uint, req dto.QuestionImportRequest) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.access.authorizeQuiz(ctx, identity, quizID); err != nil {
		return nil, err
	}

	questions, err := buildQuestions(s.sanitizer, req.Questions)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].QuizID = quizID
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		s.logger.Error().Err(err).Uint("quiz_id", quizID).Msg("failed to store questions")
		return nil, err
	}

	s.logger.Info().Uint("quiz_id", quizID).Int("count", len(questions)).Msg("questions added")
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Update(ctx context.Context, identity Identity, quizID, questionID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.access.authorizeQuiz(ctx, identity, quizID); err != nil {
		return dto.QuestionResponse{}, err
	}

	existing, err := s.loadQuestion(ctx, quizID, questionID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	updated, err := buildQuestion(s.sanitizer, req)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	updated.ID = existing.ID
	updated.QuizID = existing.QuizID
	updated.CreatedAt = existing.CreatedAt

	if err := s.questions.Save(ctx, &updated); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(updated), nil
}

func (s *questionService) Delete(ctx context.Context, identity Identity, quizID, questionID uint) error {
	if _, err := s.access.authorizeQuiz(ctx, identity, quizID); err != nil {
		return err
	}

	if _, err := s.loadQuestion(ctx, quizID, questionID); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info().Uint("quiz_id", quizID).Uint("question_id", questionID).Msg("question deleted")
	return nil
}

func (s *questionService) loadQuestion(ctx context.Context, quizID, questionID uint) (models.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, err
	}
	if question.QuizID != quizID {
		return models.Question{}, ErrQuestionNotFound
	}
	return question, nil
}

func buildQuestions(sanitizer *bluemonday.Policy, requests []dto.QuestionCreateRequest) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(requests))
	for i, req := range requests {
		question, err := buildQuestion(sanitizer, req)
		if err != nil {
			if len(requests) > 1 {
				return nil, validationError("question %d: %s", i+1, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
			}
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// buildQuestion applies the per-type rules: multiple choice needs at least two
// options containing the correct answer, true/false answers must be true or
// false, and only multiple choice keeps options.
func buildQuestion(sanitizer *bluemonday.Policy, req dto.QuestionCreateRequest) (models.Question, error) {
	question := models.Question{
		Prompt:        strings.TrimSpace(sanitizer.Sanitize(req.Prompt)),
		Type:          models.QuestionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		CorrectAnswer: strings.TrimSpace(req.CorrectAnswer),
		Explanation:   strings.TrimSpace(sanitizer.Sanitize(req.Explanation)),
		Points:        req.Points,
	}

	if question.Prompt == "" {
		return models.Question{}, validationError("prompt is required")
	}
	if question.CorrectAnswer == "" {
		return models.Question{}, validationError("correct answer is required")
	}
	if question.Points == 0 {
		question.Points = 1
	}
	if question.Points < 0 {
		return models.Question{}, validationError("points must be positive")
	}

	switch question.Type {
	case models.QuestionTypeMultipleChoice:
		options := make([]string, 0, len(req.Options))
		found := false
		for _, option := range req.Options {
			option = strings.TrimSpace(option)
			if option == "" {
				continue
			}
			if normalizeAnswer(option) == normalizeAnswer(question.CorrectAnswer) {
				found = true
			}
			options = append(options, option)
		}
		if len(options) < 2 {
			return models.Question{}, validationError("multiple choice questions need at least two options")
		}
		if !found {
			return models.Question{}, validationError("correct answer must be one of the options")
		}
		question.SetOptions(options)
	case models.QuestionTypeTrueFalse:
		switch normalizeAnswer(question.CorrectAnswer) {
		case "true":
			question.CorrectAnswer = "True"
		case "false":
			question.CorrectAnswer = "False"
		default:
			return models.Question{}, validationError("true/false answer must be true or false")
		}
	case models.QuestionTypeShortAnswer:
	default:
		return models.Question{}, validationError("unsupported question type %q", req.Type)
	}

	return question, nil
}
