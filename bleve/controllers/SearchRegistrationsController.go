package controllers

import (
	"strings"

	"registration-backend/bleve/models"
	"registration-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (c *SearchController) SearchRegistrationsController(ctx *fiber.Ctx) error {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Search query is required",
		})
	}

	results, err := c.repo.SearchRegistrations(query, ctx.QueryInt("size", 20))
	if err != nil {
		config.Logger.Error("Registration search failed", zap.String("query", query), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Search failed",
		})
	}

	response := models.SearchResponse{Hits: make([]models.SearchHit, 0, len(results.Hits)), Total: results.Total}
	for _, hit := range results.Hits {
		response.Hits = append(response.Hits, models.SearchHit{ID: hit.ID, Score: hit.Score, Fields: hit.Fields})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}
