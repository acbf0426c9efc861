package routes

import (
	"time"

	"registration-backend/registrations/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func RegistrationRouterInit(
	app *fiber.App,
	importController *controllers.ImportController,
	protected fiber.Handler,
) {
	importRoutes := app.Group("/api/v1/registrations/import", protected)

	// Uploads are parsed in-request; cap them per client.
	uploadLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})

	importRoutes.Get("/fields", importController.GetImportFields)
	importRoutes.Post("/preview", uploadLimiter, importController.PreviewImport)
	importRoutes.Post("/", importController.ImportRegistrations)
	importRoutes.Get("/runs", importController.ListImportRuns)
	importRoutes.Get("/runs/:id", importController.GetImportRun)
}
