package serverutils

import (
	"errors"
	"net/http"

	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. AppErrors keep their status, code and params; anything else
// becomes a 500 without leaking details.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperrors.IsAppError(err); ok {
			details := map[string]interface{}{
				"code":   appErr.Code,
				"path":   ctx.Path(),
				"method": ctx.Method(),
			}
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				details["error"] = err.Error()
				log.Error("HTTP", appErr.Message, details)
			} else {
				log.Warn("HTTP", appErr.Message, details)
			}

			res := ErrorResponse(appErr.HTTPStatus, appErr.Message)
			res.Error = &ErrorBody{Code: appErr.Code, Params: appErr.Params}
			return ctx.Status(appErr.HTTPStatus).JSON(res)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err.Error(),
		})
		res := ErrorResponse(http.StatusInternalServerError, "An internal error occurred")
		res.Error = &ErrorBody{Code: apperrors.CodeInternal}
		return ctx.Status(http.StatusInternalServerError).JSON(res)
	}
}
