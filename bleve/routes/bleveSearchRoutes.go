package routes

import (
	"github.com/microaistudio/hptourism-r1-sub000/bleve/controllers"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(app *fiber.App, controller *controllers.SearchController, appContext *middleware.AppContext) {
	api := app.Group("/api/v1/bleve_search", middleware.ProtectedRoute(appContext))

	api.Get("/applications", controller.SearchApplicationsController)
}
