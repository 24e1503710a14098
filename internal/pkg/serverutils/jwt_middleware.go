package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localUserId = "user_id"
	localRole   = "role"
)

// JwtMiddleware verifies HS256 bearer tokens issued by the auth service and
// stores the user_id and role claims in locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}

		rawId, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(rawId)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Token missing user_id"))
		}
		role, _ := claims["role"].(string)

		ctx.Locals(localUserId, userId)
		ctx.Locals(localRole, role)
		return ctx.Next()
	}
}

// RequireRole must run after JwtMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if r, _ := ctx.Locals(localRole).(string); r != role {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Access denied"))
		}
		return ctx.Next()
	}
}

// UserId returns the authenticated user set by JwtMiddleware.
func UserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(localUserId).(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}
