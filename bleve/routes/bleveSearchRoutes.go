package routes

import (
	"registration-backend/bleve/controllers"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(app *fiber.App, controller *controllers.SearchController, protected fiber.Handler) {
	api := app.Group("/api/v1/registrations")

	api.Get("/search", protected, controller.SearchRegistrationsController)
}
