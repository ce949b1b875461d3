package controllers

import (
	"github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	app_services "github.com/microaistudio/hptourism-r1-sub000/applications/services"
	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	docservices "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"
	user_services "github.com/microaistudio/hptourism-r1-sub000/users/services"
	"github.com/microaistudio/hptourism-r1-sub000/utils"
	"github.com/microaistudio/hptourism-r1-sub000/utils/pagination"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationController struct {
	Registry        *app_services.Registry
	ApplicationRepo repositories.ApplicationRepository
	UserRepo        user_repositories.UserRepository
}

func (ac *ApplicationController) currentUser(c *fiber.Ctx) (*models.User, error) {
	return user_services.CurrentUser(c, ac.UserRepo)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
		"data":    nil,
		"error":   "Authentication required",
	})
}

func parseApplicationID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// UpsertDraftController creates or updates the caller's draft application.
func (ac *ApplicationController) UpsertDraftController(c *fiber.Ctx) error {
	owner, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var input app_services.DraftInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	application, err := ac.Registry.UpsertDraft(owner, input)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Draft saved",
		"data":    fiber.Map{"application": application},
		"error":   nil,
	})
}

// SubmitApplicationController finalizes the application with its document
// manifest.
func (ac *ApplicationController) SubmitApplicationController(c *fiber.Ctx) error {
	owner, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	applicationID, err := parseApplicationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	var body struct {
		Documents []docservices.ManifestEntry `json:"documents"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	application, err := ac.Registry.Submit(owner, applicationID, body.Documents)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Application submitted",
		"data":    fiber.Map{"application": application},
		"error":   nil,
	})
}

// MyApplicationController returns the caller's live application, if any.
func (ac *ApplicationController) MyApplicationController(c *fiber.Ctx) error {
	owner, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	application, err := ac.Registry.ActiveForOwner(owner)
	if err != nil {
		return respondWorkflowError(c, err)
	}
	if application == nil {
		return c.JSON(fiber.Map{
			"message": "No active application",
			"data":    nil,
			"error":   nil,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Application retrieved",
		"data": fiber.Map{
			"application":     application,
			"allowed_actions": workflow.AllowedActions(application.Status),
		},
		"error": nil,
	})
}

// GetApplicationByIdController returns one application with its documents
// and the actions its status currently allows.
func (ac *ApplicationController) GetApplicationByIdController(c *fiber.Ctx) error {
	actor, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	applicationID, err := parseApplicationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	application, documents, err := ac.Registry.Get(actor, applicationID)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Application retrieved",
		"data": fiber.Map{
			"application":     application,
			"documents":       documents,
			"allowed_actions": workflow.AllowedActions(application.Status),
		},
		"error": nil,
	})
}

// GetFilteredApplicationsController pages through applications for officer
// dashboards.
func (ac *ApplicationController) GetFilteredApplicationsController(c *fiber.Ctx) error {
	actor, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	applications, total, err := ac.Registry.List(actor, params.Filters, params.Page, params.PageSize)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Applications retrieved",
		"data":    pagination.NewPaginatedResponse(c, applications, total, params),
		"error":   nil,
	})
}

// PerformActionController executes one workflow action on behalf of the
// authenticated officer or owner.
func (ac *ApplicationController) PerformActionController(c *fiber.Ctx) error {
	actor, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	applicationID, err := parseApplicationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	var body struct {
		Action workflow.Action `json:"action"`
		Reason string          `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	application, err := ac.Registry.PerformAction(actor, applicationID, body.Action, body.Reason)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Action performed",
		"data": fiber.Map{
			"application":     application,
			"allowed_actions": workflow.AllowedActions(application.Status),
		},
		"error": nil,
	})
}

// ConfirmPaymentController is the gateway callback endpoint.
func (ac *ApplicationController) ConfirmPaymentController(c *fiber.Ctx) error {
	actor, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	applicationID, err := parseApplicationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	var body struct {
		GatewayReference string `json:"gateway_reference"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	application, err := ac.Registry.ConfirmPayment(actor, applicationID, body.GatewayReference)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Payment confirmed, registration approved",
		"data":    fiber.Map{"application": application},
		"error":   nil,
	})
}

// ExportApplicationsController writes the current filter set to an Excel
// workbook and serves the file.
func (ac *ApplicationController) ExportApplicationsController(c *fiber.Ctx) error {
	actor, err := ac.currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	filters := map[string]string{
		"district": c.Query("district"),
		"status":   c.Query("status"),
		"stage":    c.Query("stage"),
		"category": c.Query("category"),
	}

	applications, _, err := ac.Registry.List(actor, filters, 1, 10000)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	filePath, err := utils.GenerateApplicationsExcel(applications)
	if err != nil {
		config.Logger.Error("Failed to generate applications export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not generate the export file.",
		})
	}

	return c.Download(filePath)
}
