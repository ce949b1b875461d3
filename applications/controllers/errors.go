package controllers

import (
	"errors"

	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondWorkflowError translates domain errors into the API's response
// shape. Anything unrecognized is a 500 with a generic message.
func respondWorkflowError(c *fiber.Ctx, err error) error {
	var validationErr *workflow.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"data":    validationErr.Fields,
			"error":   validationErr.Error(),
		})
	}

	var missingDocsErr *workflow.MissingDocumentsError
	if errors.As(err, &missingDocsErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Required documents missing",
			"data":    fiber.Map{"missing": missingDocsErr.Missing},
			"error":   missingDocsErr.Error(),
		})
	}

	var incompleteFeeErr *workflow.IncompleteFeeError
	if errors.As(err, &incompleteFeeErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Fee calculation incomplete",
			"data":    fiber.Map{"missing": incompleteFeeErr.Missing},
			"error":   incompleteFeeErr.Error(),
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
	case errors.Is(err, workflow.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Conflict",
			"data":    nil,
			"error":   "The application was modified concurrently. Reload and retry.",
		})
	case errors.Is(err, workflow.ErrAlreadySubmitted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Already submitted",
			"data":    nil,
			"error":   err.Error(),
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
