package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

// AuthHandler exposes registration, login and the current-user endpoint.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the auth routes. Only /me runs behind the token middleware.
func (h *AuthHandler) Register(router fiber.Router, jwtMiddleware fiber.Handler) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Get("/me", jwtMiddleware, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "register")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "login")
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), identityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "me")
	}

	return utils.SendSuccess(c, "current user", user)
}
