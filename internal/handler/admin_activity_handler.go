package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// AdminActivityHandler exposes the audit log.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/quizzes/:id", h.entityHistory(models.ActivityEntityQuiz))
	router.Get("/users/:id", h.entityHistory(models.ActivityEntityUser))
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid actor id", nil)
	}

	entityID, err := parseQueryInt(c, "entity_id")
	if err != nil || entityID < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid entity id", nil)
	}

	req := dto.AdminActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    uint(actorID),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   uint(entityID),
	}

	response, err := h.service.List(c.UserContext(), identityFromContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err, "list activity")
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}

func (h *AdminActivityHandler) entityHistory(kind models.ActivityEntity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return invalidID(c, string(kind))
		}
		page, pageSize, err := pagination(c)
		if err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
		}

		response, err := h.service.EntityHistory(c.UserContext(), identityFromContext(c), kind, id, page, pageSize)
		if err != nil {
			return handleError(c, h.logger, err, "list "+string(kind)+" activity")
		}
		return utils.OK(c, response.Items, string(kind)+" activity", response.Pagination)
	}
}
