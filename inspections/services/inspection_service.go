package services

import (
	"encoding/json"
	"fmt"
	"time"

	apprepositories "github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/inspections/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recommendationActions is the fixed map from an inspector's recommendation
// to the workflow action the state reviewer's decision resolves into.
var recommendationActions = map[models.InspectionRecommendation]workflow.Action{
	models.RecommendApprove:               workflow.ActionVerifyForPayment,
	models.RecommendApproveWithConditions: workflow.ActionVerifyForPayment,
	models.RecommendRaiseObjections:       workflow.ActionRaiseObjection,
	models.RecommendReject:                workflow.ActionReject,
}

// OutcomeAction resolves a recommendation to its workflow action.
func OutcomeAction(recommendation models.InspectionRecommendation) (workflow.Action, error) {
	action, ok := recommendationActions[recommendation]
	if !ok {
		return "", fmt.Errorf("unknown inspection recommendation: %s", recommendation)
	}
	return action, nil
}

type InspectionService struct {
	applicationRepo apprepositories.ApplicationRepository
	inspectionRepo  repositories.InspectionRepository
}

func NewInspectionService(applicationRepo apprepositories.ApplicationRepository, inspectionRepo repositories.InspectionRepository) *InspectionService {
	return &InspectionService{
		applicationRepo: applicationRepo,
		inspectionRepo:  inspectionRepo,
	}
}

func actorFor(user *models.User) workflow.Actor {
	actor := workflow.Actor{ID: user.ID, Role: user.Role}
	if user.District != nil {
		actor.District = *user.District
	}
	return actor
}

// ScheduleOrder moves the application into INSPECTION_SCHEDULED and creates
// the site-visit order in the same transaction.
func (s *InspectionService) ScheduleOrder(officer *models.User, applicationID, assigneeID uuid.UUID, scheduledDate time.Time) (*models.InspectionOrder, error) {
	application, documents, err := s.applicationRepo.GetWithDocuments(applicationID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.inspectionRepo.GetActiveOrderByApplication(applicationID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, workflow.NewValidationError("application_id",
			"an inspection is already scheduled for this application")
	}
	if scheduledDate.Before(time.Now()) {
		return nil, workflow.NewValidationError("scheduled_date", "inspection date must be in the future")
	}

	result, err := workflow.Transition(application, documents, workflow.Request{
		Action: workflow.ActionScheduleInspection,
		Actor:  actorFor(officer),
	})
	if err != nil {
		return nil, err
	}

	order := &models.InspectionOrder{
		ApplicationID:   applicationID,
		ScheduledBy:     officer.ID,
		AssigneeID:      assigneeID,
		ScheduledDate:   scheduledDate,
		AddressSnapshot: application.Address,
		Status:          models.InspectionOrderScheduled,
	}

	err = s.applicationRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.inspectionRepo.CreateOrderTx(tx, order); err != nil {
			return err
		}
		return s.applicationRepo.UpdateGuardedTx(tx, &result.Application, application.RowVersion)
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("inspection scheduled",
		zap.String("application_number", application.ApplicationNumber),
		zap.String("assignee_id", assigneeID.String()),
		zap.Time("scheduled_date", scheduledDate))

	return order, nil
}

// SubmitReport records the site-visit findings exactly once per order. It
// persists the report, marks the order completed and advances the
// application in a single transaction.
func (s *InspectionService) SubmitReport(submitter *models.User, orderID uuid.UUID, recommendation models.InspectionRecommendation, checklist []models.ChecklistItem, findings string) (*models.InspectionReport, error) {
	order, err := s.inspectionRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.AssigneeID != submitter.ID {
		return nil, workflow.ErrForbidden
	}
	if order.Status != models.InspectionOrderScheduled {
		return nil, workflow.ErrAlreadySubmitted
	}
	if existing, err := s.inspectionRepo.GetReportByOrderID(orderID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, workflow.ErrAlreadySubmitted
	}

	if _, err := OutcomeAction(recommendation); err != nil {
		return nil, workflow.NewValidationError("recommendation", err.Error())
	}
	if (recommendation == models.RecommendRaiseObjections || recommendation == models.RecommendReject) && findings == "" {
		return nil, workflow.NewValidationError("findings",
			"findings are required for an adverse recommendation")
	}

	application, documents, err := s.applicationRepo.GetWithDocuments(order.ApplicationID)
	if err != nil {
		return nil, err
	}

	result, err := workflow.Transition(application, documents, workflow.Request{
		Action: workflow.ActionCompleteInspection,
		Actor:  actorFor(submitter),
		Reason: findings,
	})
	if err != nil {
		return nil, err
	}

	checklistJSON, err := json.Marshal(checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checklist: %w", err)
	}

	report := &models.InspectionReport{
		OrderID:        orderID,
		SubmittedBy:    submitter.ID,
		Recommendation: recommendation,
		Checklist:      checklistJSON,
		Findings:       findings,
	}

	err = s.applicationRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.inspectionRepo.CreateReportTx(tx, report); err != nil {
			return err
		}
		order.Status = models.InspectionOrderCompleted
		if err := s.inspectionRepo.UpdateOrderTx(tx, order); err != nil {
			return err
		}
		return s.applicationRepo.UpdateGuardedTx(tx, &result.Application, application.RowVersion)
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("inspection report submitted",
		zap.String("application_number", application.ApplicationNumber),
		zap.String("order_id", orderID.String()),
		zap.String("recommendation", string(recommendation)))

	return report, nil
}

// AssignedOrders lists an inspector's outstanding orders for the field
// dashboard.
func (s *InspectionService) AssignedOrders(assigneeID uuid.UUID) ([]models.InspectionOrder, error) {
	return s.inspectionRepo.ListOrdersByAssignee(assigneeID, models.InspectionOrderScheduled)
}
