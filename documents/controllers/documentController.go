package controllers

import (
	"errors"

	app_repositories "github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/documents/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/documents/services"
	user_repositories "github.com/microaistudio/hptourism-r1-sub000/users/repositories"
	user_services "github.com/microaistudio/hptourism-r1-sub000/users/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentController struct {
	DocumentService *services.DocumentService
	DocumentRepo    repositories.DocumentRepository
	ApplicationRepo app_repositories.ApplicationRepository
	UserRepo        user_repositories.UserRepository
}

// GetApplicationDocumentsController lists every version of every document
// on an application. Owners see only their own applications.
func (dc *DocumentController) GetApplicationDocumentsController(c *fiber.Ctx) error {
	actor, err := user_services.CurrentUser(c, dc.UserRepo)
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

	application, err := dc.ApplicationRepo.GetByID(applicationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The requested record does not exist.",
		})
	}
	if actor.Role == models.OwnerRole && application.OwnerID != actor.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
			"data":    nil,
			"error":   "You are not permitted to view these documents.",
		})
	}

	documents, err := dc.DocumentRepo.GetByApplicationID(applicationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not list documents.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Documents retrieved",
		"data": fiber.Map{
			"documents": documents,
			"missing":   services.MissingRequirements(documents),
		},
		"error": nil,
	})
}

// VerifyDocumentController records a scrutiny verification outcome on one
// document.
func (dc *DocumentController) VerifyDocumentController(c *fiber.Ctx) error {
	verifier, err := user_services.CurrentUser(c, dc.UserRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid document id.",
		})
	}

	var body struct {
		Outcome models.VerificationStatus `json:"outcome"`
		Notes   string                    `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	document, err := dc.DocumentRepo.GetByID(documentID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The requested record does not exist.",
		})
	}

	application, err := dc.ApplicationRepo.GetByID(document.ApplicationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The requested record does not exist.",
		})
	}

	verified, err := dc.DocumentService.Verify(documentID, verifier, application, body.Outcome, body.Notes)
	if err != nil {
		if errors.Is(err, services.ErrVerificationNotPermitted) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden",
				"data":    nil,
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Verification failed",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Document verification recorded",
		"data":    fiber.Map{"document": verified},
		"error":   nil,
	})
}

// ViewDocumentController streams a stored document file.
func (dc *DocumentController) ViewDocumentController(c *fiber.Ctx) error {
	actor, err := user_services.CurrentUser(c, dc.UserRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid document id.",
		})
	}

	document, err := dc.DocumentRepo.GetByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Not found",
				"data":    nil,
				"error":   "The requested record does not exist.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not load the document.",
		})
	}

	application, err := dc.ApplicationRepo.GetByID(document.ApplicationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The requested record does not exist.",
		})
	}
	if actor.Role == models.OwnerRole && application.OwnerID != actor.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
			"data":    nil,
			"error":   "You are not permitted to view this document.",
		})
	}

	path, err := dc.DocumentService.ViewPath(document)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"data":    nil,
			"error":   "The stored file is missing.",
		})
	}

	return c.SendFile(path)
}
