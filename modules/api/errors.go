package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	taskdomain "github.com/FahimSaki/Momentum/domain/task"
	"github.com/FahimSaki/Momentum/modules/cleanup"
)

// ErrorResponse is the JSON body for every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorHandler handles Fiber errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// statusFor maps a service error onto an HTTP status. Errors cross the
// service boundary as strings, so matching is by sentinel message rather
// than errors.Is.
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, taskdomain.ErrNotFound.Error()),
		strings.Contains(msg, "record not found"):
		return fiber.StatusNotFound
	case strings.Contains(msg, taskdomain.ErrForbidden.Error()),
		strings.Contains(msg, taskdomain.ErrNotAssignee.Error()):
		return fiber.StatusForbidden
	case strings.Contains(msg, taskdomain.ErrNameRequired.Error()),
		strings.Contains(msg, taskdomain.ErrInvalidAssignment.Error()),
		strings.Contains(msg, "invalid priority"),
		strings.Contains(msg, "unknown assignee"):
		return fiber.StatusBadRequest
	case strings.Contains(msg, taskdomain.ErrVersionConflict.Error()),
		strings.Contains(msg, cleanup.ErrPipelineRunning.Error()):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes a service error as a JSON error reply.
func fail(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	kind := "server_error"
	switch code {
	case fiber.StatusNotFound:
		kind = "not_found"
	case fiber.StatusForbidden:
		kind = "forbidden"
	case fiber.StatusBadRequest:
		kind = "bad_request"
	case fiber.StatusConflict:
		kind = "conflict"
	}
	return c.Status(code).JSON(ErrorResponse{Error: kind, Message: err.Error()})
}
