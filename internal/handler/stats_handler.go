package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// StatsHandler serves the cached dashboard aggregates.
type StatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With().Str("component", "stats_handler").Logger(),
	}
}

// RegisterStudent attaches the student stats route.
func (h *StatsHandler) RegisterStudent(router fiber.Router) {
	router.Get("/stats", h.student)
}

// RegisterEducator attaches the educator stats route.
func (h *StatsHandler) RegisterEducator(router fiber.Router) {
	router.Get("/stats", h.educator)
}

func (h *StatsHandler) student(c *fiber.Ctx) error {
	stats, err := h.service.Student(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "student stats")
	}

	return utils.SendSuccess(c, "student stats", stats)
}

func (h *StatsHandler) educator(c *fiber.Ctx) error {
	stats, err := h.service.Educator(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "educator stats")
	}

	return utils.SendSuccess(c, "educator stats", stats)
}
