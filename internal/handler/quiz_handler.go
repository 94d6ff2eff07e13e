package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// QuizHandler exposes quiz, question and material management for educators and admins.
type QuizHandler struct {
	quizzes   service.QuizService
	questions service.QuestionService
	materials service.MaterialService
	logger    zerolog.Logger
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(quizzes service.QuizService, questions service.QuestionService, materials service.MaterialService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes:   quizzes,
		questions: questions,
		materials: materials,
		logger:    logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches quiz routes to the router group.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/material", h.attachMaterial)

	router.Get("/:id/questions", h.listQuestions)
	router.Post("/:id/questions", h.createQuestion)
	router.Post("/:id/questions/import", h.importQuestions)
	router.Patch("/:id/questions/:questionId", h.updateQuestion)
	router.Delete("/:id/questions/:questionId", h.deleteQuestion)
}

func (h *QuizHandler) list(c *fiber.Ctx) error {
	var req dto.QuizListRequest
	createdBy, err := parseQueryInt(c, "created_by")
	if err != nil || createdBy < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid created_by", nil)
	}
	if createdBy > 0 {
		id := uint(createdBy)
		req.CreatedBy = &id
	}

	quizzes, err := h.quizzes.List(c.UserContext(), identityFromContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err, "list quizzes")
	}

	return utils.SendSuccess(c, "quizzes", quizzes)
}

func (h *QuizHandler) create(c *fiber.Ctx) error {
	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	quiz, err := h.quizzes.Create(c.UserContext(), identityFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "create quiz")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	quiz, err := h.quizzes.Get(c.UserContext(), identityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "get quiz")
	}

	return utils.SendSuccess(c, "quiz", quiz)
}

func (h *QuizHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	var payload dto.QuizUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}
	if payload.Empty() {
		return utils.Fail(c, fiber.StatusBadRequest, "no updatable fields supplied", nil)
	}

	quiz, err := h.quizzes.Update(c.UserContext(), identityFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update quiz")
	}

	return utils.SendSuccess(c, "quiz updated", quiz)
}

func (h *QuizHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	if err := h.quizzes.Delete(c.UserContext(), identityFromContext(c), id); err != nil {
		return handleError(c, h.logger, err, "delete quiz")
	}

	return utils.SendSuccess(c, "quiz deleted", nil)
}

func (h *QuizHandler) attachMaterial(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "file is required", nil)
	}

	quiz, err := h.materials.Attach(c.UserContext(), identityFromContext(c), id, file)
	if err != nil {
		return handleError(c, h.logger, err, "attach material")
	}

	return utils.SendSuccess(c, "material attached", quiz)
}

func (h *QuizHandler) listQuestions(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	questions, err := h.questions.List(c.UserContext(), identityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "list questions")
	}

	return utils.SendSuccess(c, "questions", questions)
}

func (h *QuizHandler) createQuestion(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	question, err := h.questions.Create(c.UserContext(), identityFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "create question")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *QuizHandler) importQuestions(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	var payload dto.QuestionImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	questions, err := h.questions.Import(c.UserContext(), identityFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "import questions")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "questions imported", questions)
}

func (h *QuizHandler) updateQuestion(c *fiber.Ctx) error {
	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}
	questionID, err := parseIDParam(c, "questionId")
	if err != nil {
		return invalidID(c, "question")
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	question, err := h.questions.Update(c.UserContext(), identityFromContext(c), quizID, questionID, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update question")
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *QuizHandler) deleteQuestion(c *fiber.Ctx) error {
	quizID, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}
	questionID, err := parseIDParam(c, "questionId")
	if err != nil {
		return invalidID(c, "question")
	}

	if err := h.questions.Delete(c.UserContext(), identityFromContext(c), quizID, questionID); err != nil {
		return handleError(c, h.logger, err, "delete question")
	}

	return utils.SendSuccess(c, "question deleted", nil)
}
