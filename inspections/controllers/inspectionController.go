package controllers

import (
	"errors"
	"time"

	app_services "github.com/microaistudio/hptourism-r1-sub000/applications/services"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/inspections/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/inspections/services"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"
	user_services "github.com/microaistudio/hptourism-r1-sub000/users/services"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InspectionController struct {
	InspectionService *services.InspectionService
	InspectionRepo    repositories.InspectionRepository
	Registry          *app_services.Registry
	UserRepo          user_repositories.UserRepository
}

func (ic *InspectionController) currentUser(c *fiber.Ctx) (*models.User, error) {
	return user_services.CurrentUser(c, ic.UserRepo)
}

func (ic *InspectionController) respondError(c *fiber.Ctx, err error) error {
	var validationErr *workflow.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"data":    validationErr.Fields,
			"error":   validationErr.Error(),
		})
	}

	var invalidTransitionErr *workflow.InvalidTransitionError
	if errors.As(err, &invalidTransitionErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Action not available",
			"data":    fiber.Map{"current_status": invalidTransitionErr.Status},
			"error":   invalidTransitionErr.Error(),
		})
	}

	switch {
	case errors.Is(err, workflow.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
			"data":    nil,
			"error":   "You are not permitted to perform this action.",
		})
	case errors.Is(err, workflow.ErrAlreadySubmitted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Already submitted",
			"data":    nil,
			"error":   err.Error(),
		})
	case errors.Is(err, workflow.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Conflict",
			"data":    nil,
			"error":   "The application was modified concurrently. Reload and retry.",
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The requested record does not exist.",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong",
		"data":    nil,
		"error":   "An internal server error occurred.",
	})
}

// ScheduleInspectionController creates a site-visit order for a
// review-accepted application.
func (ic *InspectionController) ScheduleInspectionController(c *fiber.Ctx) error {
	officer, err := ic.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	applicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	var body struct {
		AssigneeID    string    `json:"assignee_id"`
		ScheduledDate time.Time `json:"scheduled_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	assigneeID, err := uuid.Parse(body.AssigneeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid assignee id.",
		})
	}

	order, err := ic.InspectionService.ScheduleOrder(officer, applicationID, assigneeID, body.ScheduledDate)
	if err != nil {
		return ic.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inspection scheduled",
		"data":    fiber.Map{"order": order},
		"error":   nil,
	})
}

// SubmitReportController records the findings of a completed site visit.
func (ic *InspectionController) SubmitReportController(c *fiber.Ctx) error {
	inspector, err := ic.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid order id.",
		})
	}

	var body struct {
		Recommendation models.InspectionRecommendation `json:"recommendation"`
		Checklist      []models.ChecklistItem          `json:"checklist"`
		Findings       string                          `json:"findings"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	report, err := ic.InspectionService.SubmitReport(inspector, orderID, body.Recommendation, body.Checklist, body.Findings)
	if err != nil {
		return ic.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inspection report submitted",
		"data":    fiber.Map{"report": report},
		"error":   nil,
	})
}

// AssignedOrdersController lists the inspector's outstanding site visits.
func (ic *InspectionController) AssignedOrdersController(c *fiber.Ctx) error {
	inspector, err := ic.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	orders, err := ic.InspectionService.AssignedOrders(inspector.ID)
	if err != nil {
		return ic.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Orders retrieved",
		"data":    fiber.Map{"orders": orders},
		"error":   nil,
	})
}

// ConcludeReviewController resolves the state review of a completed
// inspection: the report's recommendation determines the workflow action,
// the reviewer supplies the reason where one is required.
func (ic *InspectionController) ConcludeReviewController(c *fiber.Ctx) error {
	reviewer, err := ic.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	applicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid application id.",
		})
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	order, err := ic.InspectionRepo.GetLatestOrderByApplication(applicationID)
	if err != nil {
		return ic.respondError(c, err)
	}
	if order == nil || order.Report == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "No inspection report",
			"data":    nil,
			"error":   "The application has no completed inspection to review.",
		})
	}

	action, err := services.OutcomeAction(order.Report.Recommendation)
	if err != nil {
		return ic.respondError(c, err)
	}

	application, err := ic.Registry.PerformAction(reviewer, applicationID, action, body.Reason)
	if err != nil {
		return ic.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Inspection review concluded",
		"data": fiber.Map{
			"application":    application,
			"recommendation": order.Report.Recommendation,
			"action":         action,
		},
		"error": nil,
	})
}
