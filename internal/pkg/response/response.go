package response

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Body is the standard API envelope for every response.
type Body struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Success sends 200 OK with the standard envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusOK, Body{Success: true, Message: message, Data: data})
}

// SuccessCreated sends 201 Created with the standard envelope.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusCreated, Body{Success: true, Message: message, Data: data})
}

// Fail sends an error response with the standard envelope.
func Fail(c *fiber.Ctx, statusCode int, message string, errs ...string) error {
	return send(c, statusCode, Body{Success: false, Message: message, Errors: errs})
}

// NotFound sends 404 with the standard envelope.
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message)
}

// BadRequest sends 400 with the standard envelope.
func BadRequest(c *fiber.Ctx, message string, errs ...string) error {
	return Fail(c, fiber.StatusBadRequest, message, errs...)
}

func send(c *fiber.Ctx, status int, body Body) error {
	body.Timestamp = time.Now().UTC()
	return c.Status(status).JSON(body)
}
