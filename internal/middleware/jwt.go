package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/quizhub-api/internal/utils"
)

// JWTProtected returns a middleware that validates HS256 bearer tokens and
// exposes the subject and role as the user_id and user_role locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return unauthorized(c, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return unauthorized(c, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return unauthorized(c, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "invalid token claims")
		}

		userID, err := normalizeUserID(claims["sub"])
		if err != nil || userID == 0 {
			return unauthorized(c, "invalid token subject")
		}

		role := normalizeRole(claims["role"])
		if role == "" {
			return unauthorized(c, "invalid token role")
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return utils.SendErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func normalizeRole(value interface{}) string {
	if v, ok := value.(string); ok {
		return strings.ToUpper(strings.TrimSpace(v))
	}
	return ""
}
