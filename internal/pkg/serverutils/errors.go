package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError is an expected operational failure carrying an HTTP status code.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, message)
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, message)
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON error envelope. Unknown errors become 500s without leaking internals.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Code, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
