package utils

import (
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorResponse creates a standardized error response. Server-side
// failures are forwarded to Sentry.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
		if status >= fiber.StatusInternalServerError {
			sentry.CaptureException(err)
		}
	}
	return c.Status(status).JSON(response)
}

// ValidationErrorResponse rejects bad input while echoing the submitted
// values back, so clients can re-populate the originating form instead of
// silently resetting it.
func ValidationErrorResponse(c *fiber.Ctx, message string, values interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"values":  values,
	})
}

// ForbiddenResponse denies access without leaking entity data.
func ForbiddenResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   "Forbidden",
	})
}

// NotFoundResponse surfaces a generic not-found outcome.
func NotFoundResponse(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"error":   what + " not found",
	})
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// IsDuplicateKey reports a storage-level unique constraint violation.
// The unique indexes are the sole enforcement for duplicate fields; there
// is no pre-check query to race against.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
