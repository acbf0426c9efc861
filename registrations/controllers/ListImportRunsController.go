package controllers

import (
	"encoding/json"

	"registration-backend/config"
	"registration-backend/utils"
	"registration-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ListImportRuns pages through past imports, optionally filtered by created_by.
func (ic *ImportController) ListImportRuns(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c, "created_by")
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	cacheKey := utils.GenerateQueryKey(importRunsResource, params.Filters, params.Page, params.PageSize)
	if ic.RunsCache != nil {
		var cached json.RawMessage
		hit, err := ic.RunsCache.Get(c.UserContext(), cacheKey, &cached)
		if err != nil {
			config.Logger.Warn("Import runs cache read failed", zap.Error(err))
		}
		if hit {
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Import runs retrieved",
				"data":    cached,
			})
		}
	}

	runs, total, err := ic.Runs.ListImportRuns(c.UserContext(), params)
	if err != nil {
		config.Logger.Error("Failed to list import runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to list import runs",
		})
	}

	page := pagination.NewPaginatedResponse(c, runs, total, params)
	if ic.RunsCache != nil {
		if err := ic.RunsCache.Set(c.UserContext(), cacheKey, page); err != nil {
			config.Logger.Warn("Import runs cache write failed", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Import runs retrieved",
		"data":    page,
	})
}
