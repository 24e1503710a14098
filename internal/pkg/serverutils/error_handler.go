package serverutils

import (
	"errors"

	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	r, ok := apperror.AsRejection(err)
	if !ok {
		if apperror.IsConflict(err) {
			return fiber.StatusConflict
		}
		return fiber.StatusInternalServerError
	}

	switch r.Kind {
	case apperror.KindValidation:
		switch r.Reason {
		case apperror.ReasonSubscriptionRequired, apperror.ReasonSubscriptionExpired, apperror.ReasonSubscriptionLimitReached:
			return fiber.StatusForbidden
		}
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindExternalPayment:
		return fiber.StatusPaymentRequired
	case apperror.KindConcurrencyConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as a BaseResponse.
// Internal errors are logged and never leak their text.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := StatusFor(err)

		if r, ok := apperror.AsRejection(err); ok && code < fiber.StatusInternalServerError {
			return ctx.Status(code).JSON(RejectionResponse(code, string(r.Reason), r.Message))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(code).JSON(ErrorResponse(code, fe.Message))
		}
		if code == fiber.StatusConflict {
			return ctx.Status(code).JSON(RejectionResponse(code, string(apperror.ReasonConcurrencyConflict), "the resource is busy, please retry"))
		}

		log.Error("HTTP", "Request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(code).JSON(ErrorResponse(code, "internal server error"))
	}
}

// ErrorHandlerMiddleware applies ErrorHandler inside the middleware chain so
// errors are rendered before outer middleware sees the response.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
