package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/campus-api/internal/service"
)

// statusFromError maps domain sentinels to HTTP statuses. Anything
// unrecognized is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the standard error body. Internal errors are not leaked.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "server error"
	}
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
