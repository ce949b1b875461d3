package routes

import (
	controllers "github.com/microaistudio/hptourism-r1-sub000/applications/controllers"
	repositories "github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	app_services "github.com/microaistudio/hptourism-r1-sub000/applications/services"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	"github.com/gofiber/fiber/v2"
)

func ApplicationRouterInit(
	app *fiber.App,
	registry *app_services.Registry,
	applicationRepository repositories.ApplicationRepository,
	userRepo user_repositories.UserRepository,
	appContext *middleware.AppContext,
) {
	applicationController := &controllers.ApplicationController{
		Registry:        registry,
		ApplicationRepo: applicationRepository,
		UserRepo:        userRepo,
	}

	applicationRoutes := app.Group("/api/v1", middleware.ProtectedRoute(appContext))

	// Owner lifecycle
	applicationRoutes.Post("/applications/draft", applicationController.UpsertDraftController)
	applicationRoutes.Post("/applications/:id/submit", applicationController.SubmitApplicationController)
	applicationRoutes.Get("/my-application", applicationController.MyApplicationController)

	// Dashboards
	applicationRoutes.Get("/filtered-applications", applicationController.GetFilteredApplicationsController)
	applicationRoutes.Get("/applications/export", applicationController.ExportApplicationsController)
	applicationRoutes.Get("/application/:id", applicationController.GetApplicationByIdController)

	// Workflow actions
	applicationRoutes.Post("/applications/:id/actions", applicationController.PerformActionController)
	applicationRoutes.Post("/applications/:id/confirm-payment",
		middleware.RequireRoles(models.AdminRole), applicationController.ConfirmPaymentController)
}
