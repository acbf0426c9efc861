package controllers

import "github.com/gofiber/fiber/v2"

func (ic *ImportController) GetImportFields(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Import fields retrieved",
		"data":    ic.Catalog.Fields(),
	})
}
