package serverutils

import (
	"errors"

	"visionvoice-be/internal/dto"
	"visionvoice-be/pkg/ocr"
	"visionvoice-be/pkg/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func SuccessResponse(message string, data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"code":    200,
		"message": message,
		"data":    data,
	}
}

func ErrorResponse(code int, message string) fiber.Map {
	return fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	}
}

// ErrorHandlerMiddleware maps domain errors bubbling out of handlers to
// HTTP status codes so controllers can simply return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := statusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func statusFor(err error) int {
	var (
		quotaErr     *dto.QuotaExceededError
		unknownTier  *dto.UnknownTierError
		configErr    *dto.ConfigurationError
		stateErr     *dto.StateMismatchError
		exchangeErr  *dto.TokenExchangeError
		identityErr  *dto.IdentityLookupError
		extractErr   *ocr.ExtractionError
		storageErr   *storage.StorageError
		validateErrs validator.ValidationErrors
		fiberErr     *fiber.Error
	)

	switch {
	case errors.As(err, &quotaErr):
		return fiber.StatusTooManyRequests
	case errors.As(err, &stateErr), errors.As(err, &exchangeErr), errors.As(err, &identityErr):
		return fiber.StatusUnauthorized
	case errors.Is(err, dto.ErrSessionNotFound):
		return fiber.StatusUnauthorized
	case errors.Is(err, dto.ErrTierNotSelected), errors.Is(err, dto.ErrUploadInFlight):
		return fiber.StatusConflict
	case errors.Is(err, dto.ErrDevModeDisabled):
		return fiber.StatusForbidden
	case errors.As(err, &validateErrs):
		return fiber.StatusBadRequest
	case errors.As(err, &extractErr), errors.As(err, &storageErr):
		return fiber.StatusBadGateway
	case errors.As(err, &unknownTier), errors.As(err, &configErr):
		return fiber.StatusInternalServerError
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}
