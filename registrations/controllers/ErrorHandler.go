package controllers

import (
	"errors"

	"registration-backend/config"
	"registration-backend/registrations/services"

	"github.com/gofiber/fiber/v2"
)

// FiberConfig sizes the request body for the largest accepted upload plus
// room for the multipart envelope.
func FiberConfig(settings config.ImportSettings) fiber.Config {
	return fiber.Config{
		BodyLimit:    int(settings.MaxFileSize) + 1024*1024,
		ErrorHandler: ErrorHandler,
	}
}

// ErrorHandler answers errors raised outside the handlers, including bodies
// rejected by the server before routing, with the usual JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	if code == fiber.StatusRequestEntityTooLarge {
		message = services.UploadErrorMessage(services.ErrFileTooLarge)
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
