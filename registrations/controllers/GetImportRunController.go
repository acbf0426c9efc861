package controllers

import (
	"errors"

	"registration-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetImportRun returns the audit record of a past import with its skipped rows.
func (ic *ImportController) GetImportRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid import id",
		})
	}

	run, skipped, err := ic.Runs.GetImportRun(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Import run not found",
		})
	}
	if err != nil {
		config.Logger.Error("Failed to load import run", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load import run",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Import run retrieved",
		"data": fiber.Map{
			"run":         run,
			"skippedRows": skipped,
		},
	})
}
