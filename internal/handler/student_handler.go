package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// StudentHandler serves the student dashboard: enrollment, quiz discovery and history.
type StudentHandler struct {
	enrollments service.EnrollmentService
	attempts    service.AttemptService
	logger      zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(enrollments service.EnrollmentService, attempts service.AttemptService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		enrollments: enrollments,
		attempts:    attempts,
		logger:      logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes. The enroll limiter is applied to the enroll route only.
func (h *StudentHandler) Register(router fiber.Router, enrollLimiter fiber.Handler) {
	if enrollLimiter != nil {
		router.Post("/enroll", enrollLimiter, h.enroll)
	} else {
		router.Post("/enroll", h.enroll)
	}
	router.Get("/quizzes", h.available)
	router.Get("/quizzes/:id/take", h.take)
	router.Get("/results", h.results)
}

func (h *StudentHandler) enroll(c *fiber.Ctx) error {
	var payload dto.EnrollRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), identityFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "enroll")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *StudentHandler) available(c *fiber.Ctx) error {
	quizzes, err := h.enrollments.ListAvailable(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "list available quizzes")
	}

	return utils.SendSuccess(c, "available quizzes", quizzes)
}

func (h *StudentHandler) take(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "quiz")
	}

	quiz, err := h.attempts.Take(c.UserContext(), identityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "take quiz")
	}

	return utils.SendSuccess(c, "quiz ready", quiz)
}

func (h *StudentHandler) results(c *fiber.Ctx) error {
	history, err := h.attempts.History(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "list results")
	}

	return utils.SendSuccess(c, "results", history)
}
