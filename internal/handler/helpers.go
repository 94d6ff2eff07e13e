package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/middleware"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/service"
	"github.com/noah-isme/quizhub-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return strings.ToUpper(role)
	}
	return ""
}

// identityFromContext builds the service identity from the JWT locals.
func identityFromContext(c *fiber.Ctx) service.Identity {
	return service.Identity{
		UserID: userIDFromContext(c),
		Role:   models.Role(userRoleFromContext(c)),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if requestID := middleware.GetCorrelationID(c); requestID != "" {
			logger = base.With().Str("request_id", requestID).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func validationDetails(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, FieldError{
			Field: fieldErr.Namespace(),
			Rule:  fieldErr.Tag(),
			Param: fieldErr.Param(),
		})
	}
	return details
}

// handleError maps service errors onto the HTTP error envelope. Anything not
// recognised is logged and reported as an opaque internal error.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrValidation):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrNotApproved):
		return utils.SendErrorCode(c, fiber.StatusForbidden, "NOT_APPROVED", err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendErrorCode(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendErrorCode(c, fiber.StatusForbidden, "NOT_ENROLLED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrQuizInactive):
		return utils.SendErrorCode(c, fiber.StatusConflict, "QUIZ_INACTIVE", err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return utils.SendErrorCode(c, fiber.StatusConflict, "ALREADY_ENROLLED", err.Error())
	case errors.Is(err, service.ErrMaxAttemptsReached):
		return utils.SendErrorCode(c, fiber.StatusConflict, "MAX_ATTEMPTS_REACHED", err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendErrorCode(c, fiber.StatusConflict, "ALREADY_SUBMITTED", err.Error())
	case errors.Is(err, service.ErrNotCompleted):
		return utils.SendErrorCode(c, fiber.StatusConflict, "NOT_COMPLETED", err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAttemptContention):
		return utils.SendErrorCode(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendErrorCode(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendErrorCode(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error())
	case errors.Is(err, service.ErrUploadUnavailable):
		return utils.SendErrorCode(c, fiber.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Str("action", action).Msg("request failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
}

func invalidID(c *fiber.Ctx, what string) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid "+what+" id", nil)
}
