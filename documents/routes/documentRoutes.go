package router

import (
	app_repositories "github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	document_controllers "github.com/microaistudio/hptourism-r1-sub000/documents/controllers"
	document_repositories "github.com/microaistudio/hptourism-r1-sub000/documents/repositories"
	document_services "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	"github.com/gofiber/fiber/v2"
)

func DocumentRouterInit(
	app *fiber.App,
	documentService *document_services.DocumentService,
	documentRepository document_repositories.DocumentRepository,
	applicationRepository app_repositories.ApplicationRepository,
	userRepo user_repositories.UserRepository,
	appContext *middleware.AppContext,
) {
	documentController := &document_controllers.DocumentController{
		DocumentService: documentService,
		DocumentRepo:    documentRepository,
		ApplicationRepo: applicationRepository,
		UserRepo:        userRepo,
	}

	documentRoutes := app.Group("/api/v1", middleware.ProtectedRoute(appContext))

	documentRoutes.Get("/applications/:id/documents", documentController.GetApplicationDocumentsController)
	documentRoutes.Patch("/documents/:id/verify", documentController.VerifyDocumentController)
	documentRoutes.Get("/documents/:id/view", documentController.ViewDocumentController)
}
