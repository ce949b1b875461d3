package routes

import (
	app_services "github.com/microaistudio/hptourism-r1-sub000/applications/services"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	controllers "github.com/microaistudio/hptourism-r1-sub000/inspections/controllers"
	repositories "github.com/microaistudio/hptourism-r1-sub000/inspections/repositories"
	services "github.com/microaistudio/hptourism-r1-sub000/inspections/services"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	"github.com/gofiber/fiber/v2"
)

func InspectionRouterInit(
	app *fiber.App,
	inspectionService *services.InspectionService,
	inspectionRepository repositories.InspectionRepository,
	registry *app_services.Registry,
	userRepo user_repositories.UserRepository,
	appContext *middleware.AppContext,
) {
	inspectionController := &controllers.InspectionController{
		InspectionService: inspectionService,
		InspectionRepo:    inspectionRepository,
		Registry:          registry,
		UserRepo:          userRepo,
	}

	inspectionRoutes := app.Group("/api/v1", middleware.ProtectedRoute(appContext))

	inspectionRoutes.Post("/applications/:id/inspection/schedule",
		middleware.RequireRoles(models.DistrictOfficerRole),
		inspectionController.ScheduleInspectionController)
	inspectionRoutes.Post("/inspection-orders/:id/report",
		middleware.RequireRoles(models.DistrictOfficerRole),
		inspectionController.SubmitReportController)
	inspectionRoutes.Get("/inspection-orders/assigned",
		middleware.RequireRoles(models.DistrictOfficerRole),
		inspectionController.AssignedOrdersController)
	inspectionRoutes.Post("/applications/:id/inspection-decision",
		middleware.RequireRoles(models.StateApproverRole),
		inspectionController.ConcludeReviewController)
}
