package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// AttemptHandler exposes the attempt lifecycle: start, submit and result.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt routes to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Post("/start", h.start)
	router.Post("/submit", h.submit)
	router.Get("/:id/result", h.result)
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	var payload dto.AttemptStartRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	attempt, err := h.service.Start(c.UserContext(), identityFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "start attempt")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	var payload dto.AttemptSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.Submit(c.UserContext(), identityFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "submit attempt")
	}

	return utils.SendSuccess(c, "attempt submitted", result)
}

func (h *AttemptHandler) result(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "attempt")
	}

	result, err := h.service.Result(c.UserContext(), identityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "attempt result")
	}

	return utils.SendSuccess(c, "attempt result", result)
}
