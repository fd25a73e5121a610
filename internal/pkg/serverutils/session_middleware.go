package serverutils

import (
	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const SessionLocalKey = "session"

// SessionMiddleware parses the bearer session token, loads the session
// from the repository and stores it in ctx.Locals for handlers.
func SessionMiddleware(secret string, sessions contract.SessionRepository) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing session token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid session token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}
		sid, _ := claims["sid"].(string)
		if sid == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}

		session, err := sessions.Find(ctx.Context(), sid)
		if err != nil || session == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, dto.ErrSessionNotFound.Error()))
		}

		ctx.Locals(SessionLocalKey, session)
		return ctx.Next()
	}
}
