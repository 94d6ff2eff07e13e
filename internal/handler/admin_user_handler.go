package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// AdminUserHandler exposes account management and educator approval.
type AdminUserHandler struct {
	service service.AdminUserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(service service.AdminUserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// RegisterUsers attaches the user management routes.
func (h *AdminUserHandler) RegisterUsers(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id", h.updateRole)
	router.Delete("/:id", h.delete)
}

// RegisterEducators attaches the educator approval routes.
func (h *AdminUserHandler) RegisterEducators(router fiber.Router) {
	router.Get("/pending", h.pending)
	router.Patch("/:id/approval", h.approval)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	response, err := h.service.List(c.UserContext(), identityFromContext(c), dto.AdminUserListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
	})
	if err != nil {
		return handleError(c, h.logger, err, "list users")
	}

	return utils.OK(c, response.Items, "users", response.Pagination)
}

func (h *AdminUserHandler) updateRole(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}

	var payload dto.AdminRoleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.UpdateRole(c.UserContext(), identityFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update role")
	}

	return utils.SendSuccess(c, "role updated", user)
}

func (h *AdminUserHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}

	if err := h.service.Delete(c.UserContext(), identityFromContext(c), id); err != nil {
		return handleError(c, h.logger, err, "delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *AdminUserHandler) pending(c *fiber.Ctx) error {
	users, err := h.service.ListPendingEducators(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "list pending educators")
	}

	return utils.SendSuccess(c, "pending educators", users)
}

func (h *AdminUserHandler) approval(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}

	var payload dto.EducatorApprovalRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.SetEducatorApproval(c.UserContext(), identityFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "educator approval")
	}

	return utils.SendSuccess(c, "educator approval updated", user)
}

func pagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, errors.New("invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, errors.New("invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	return page, pageSize, nil
}
