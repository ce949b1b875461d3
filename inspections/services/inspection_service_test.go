package services

import (
	"errors"
	"testing"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	config.Logger = zap.NewNop()
}

type fakeApplicationRepo struct {
	application *models.Application
	documents   []models.Document
	saved       *models.Application
}

func (f *fakeApplicationRepo) GetByID(id uuid.UUID) (*models.Application, error) {
	return f.application, nil
}

func (f *fakeApplicationRepo) GetWithDocuments(id uuid.UUID) (*models.Application, []models.Document, error) {
	return f.application, f.documents, nil
}

func (f *fakeApplicationRepo) GetActiveByOwner(ownerID uuid.UUID) (*models.Application, error) {
	return nil, nil
}

func (f *fakeApplicationRepo) Create(application *models.Application) error {
	f.application = application
	return nil
}

func (f *fakeApplicationRepo) UpdateGuardedTx(tx *gorm.DB, application *models.Application, expectedVersion int) error {
	if f.application.RowVersion != expectedVersion {
		return workflow.ErrConflict
	}
	application.RowVersion = expectedVersion + 1
	copied := *application
	f.saved = &copied
	f.application = &copied
	return nil
}

func (f *fakeApplicationRepo) NextApplicationSequence() (int, error)              { return 1, nil }
func (f *fakeApplicationRepo) NextCertificateSequenceTx(tx *gorm.DB) (int, error) { return 1, nil }

func (f *fakeApplicationRepo) ListFiltered(filters map[string]string, page, pageSize int) ([]models.Application, int64, error) {
	return nil, 0, nil
}

func (f *fakeApplicationRepo) CreatePaymentTx(tx *gorm.DB, payment *models.Payment) error { return nil }

func (f *fakeApplicationRepo) ExpireCertificatesBefore(cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeApplicationRepo) Transaction(fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeInspectionRepo struct {
	orders  map[uuid.UUID]*models.InspectionOrder
	reports map[uuid.UUID]*models.InspectionReport
}

func newFakeInspectionRepo() *fakeInspectionRepo {
	return &fakeInspectionRepo{
		orders:  map[uuid.UUID]*models.InspectionOrder{},
		reports: map[uuid.UUID]*models.InspectionReport{},
	}
}

func (f *fakeInspectionRepo) GetOrderByID(id uuid.UUID) (*models.InspectionOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeInspectionRepo) GetActiveOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error) {
	for _, order := range f.orders {
		if order.ApplicationID == applicationID && order.Status == models.InspectionOrderScheduled {
			return order, nil
		}
	}
	return nil, nil
}

func (f *fakeInspectionRepo) CreateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeInspectionRepo) UpdateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeInspectionRepo) GetLatestOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error) {
	var latest *models.InspectionOrder
	for _, order := range f.orders {
		if order.ApplicationID != applicationID {
			continue
		}
		if latest == nil || order.CreatedAt.After(latest.CreatedAt) {
			latest = order
		}
	}
	return latest, nil
}

func (f *fakeInspectionRepo) GetReportByOrderID(orderID uuid.UUID) (*models.InspectionReport, error) {
	return f.reports[orderID], nil
}

func (f *fakeInspectionRepo) CreateReportTx(tx *gorm.DB, report *models.InspectionReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	f.reports[report.OrderID] = report
	return nil
}

func (f *fakeInspectionRepo) ListOrdersByAssignee(assigneeID uuid.UUID, status models.InspectionOrderStatus) ([]models.InspectionOrder, error) {
	var out []models.InspectionOrder
	for _, order := range f.orders {
		if order.AssigneeID == assigneeID && (status == "" || order.Status == status) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func shimlaOfficer() *models.User {
	district := "Shimla"
	return &models.User{
		ID:       uuid.New(),
		Role:     models.DistrictOfficerRole,
		District: &district,
	}
}

func applicationAt(status models.ApplicationStatus) *models.Application {
	return &models.Application{
		ID:                uuid.New(),
		ApplicationNumber: "HP-HS-2026-00042",
		OwnerID:           uuid.New(),
		District:          "Shimla",
		Address:           "Village Mashobra, Shimla",
		Status:            status,
		CurrentStage:      status.Stage(),
		RowVersion:        3,
	}
}

func scheduledFixture(t *testing.T) (*InspectionService, *fakeApplicationRepo, *fakeInspectionRepo, *models.InspectionOrder, *models.User) {
	t.Helper()

	appRepo := &fakeApplicationRepo{application: applicationAt(models.InspectionScheduled)}
	inspectionRepo := newFakeInspectionRepo()
	service := NewInspectionService(appRepo, inspectionRepo)

	inspector := shimlaOfficer()
	order := &models.InspectionOrder{
		ID:            uuid.New(),
		ApplicationID: appRepo.application.ID,
		ScheduledBy:   uuid.New(),
		AssigneeID:    inspector.ID,
		ScheduledDate: time.Now().Add(24 * time.Hour),
		Status:        models.InspectionOrderScheduled,
	}
	inspectionRepo.orders[order.ID] = order

	return service, appRepo, inspectionRepo, order, inspector
}

func TestScheduleOrderTransitionsApplication(t *testing.T) {
	appRepo := &fakeApplicationRepo{application: applicationAt(models.ReviewAccepted)}
	inspectionRepo := newFakeInspectionRepo()
	service := NewInspectionService(appRepo, inspectionRepo)

	officer := shimlaOfficer()
	assignee := uuid.New()
	visit := time.Now().Add(72 * time.Hour)

	order, err := service.ScheduleOrder(officer, appRepo.application.ID, assignee, visit)
	require.NoError(t, err)

	assert.Equal(t, models.InspectionOrderScheduled, order.Status)
	assert.Equal(t, assignee, order.AssigneeID)
	assert.Equal(t, "Village Mashobra, Shimla", order.AddressSnapshot,
		"order keeps the address as it was at scheduling time")

	require.NotNil(t, appRepo.saved)
	assert.Equal(t, models.InspectionScheduled, appRepo.saved.Status)
	assert.Equal(t, 4, appRepo.saved.RowVersion)
}

func TestScheduleOrderRejectsDuplicateAndPastDate(t *testing.T) {
	service, appRepo, _, _, _ := scheduledFixture(t)

	// An order is already outstanding for this application.
	_, err := service.ScheduleOrder(shimlaOfficer(), appRepo.application.ID, uuid.New(), time.Now().Add(time.Hour))
	var validationErr *workflow.ValidationError
	require.ErrorAs(t, err, &validationErr)

	appRepo2 := &fakeApplicationRepo{application: applicationAt(models.ReviewAccepted)}
	service2 := NewInspectionService(appRepo2, newFakeInspectionRepo())
	_, err = service2.ScheduleOrder(shimlaOfficer(), appRepo2.application.ID, uuid.New(), time.Now().Add(-time.Hour))
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "scheduled_date")
}

func TestSubmitReportAdvancesApplication(t *testing.T) {
	service, appRepo, inspectionRepo, order, inspector := scheduledFixture(t)

	checklist := []models.ChecklistItem{
		{Name: "Fire extinguisher on premises", Mandatory: true, Satisfied: true},
		{Name: "Room count matches declaration", Mandatory: true, Satisfied: true},
	}

	report, err := service.SubmitReport(inspector, order.ID, models.RecommendApprove, checklist, "Premises in good order")
	require.NoError(t, err)

	assert.Equal(t, models.RecommendApprove, report.Recommendation)
	assert.Equal(t, inspector.ID, report.SubmittedBy)
	assert.Equal(t, models.InspectionOrderCompleted, inspectionRepo.orders[order.ID].Status)

	require.NotNil(t, appRepo.saved)
	assert.Equal(t, models.InspectionCompleted, appRepo.saved.Status)
	assert.Equal(t, &inspector.ID, appRepo.saved.InspectionBy)
}

func TestSubmitReportTwiceReturnsAlreadySubmitted(t *testing.T) {
	service, _, inspectionRepo, order, inspector := scheduledFixture(t)

	_, err := service.SubmitReport(inspector, order.ID, models.RecommendApprove, nil, "All clear")
	require.NoError(t, err)

	_, err = service.SubmitReport(inspector, order.ID, models.RecommendApprove, nil, "All clear")
	assert.True(t, errors.Is(err, workflow.ErrAlreadySubmitted))

	assert.Len(t, inspectionRepo.reports, 1, "exactly one report exists for the order")
}

func TestSubmitReportRequiresAssignee(t *testing.T) {
	service, _, _, order, _ := scheduledFixture(t)

	someoneElse := shimlaOfficer()
	_, err := service.SubmitReport(someoneElse, order.ID, models.RecommendApprove, nil, "not my visit")
	assert.True(t, errors.Is(err, workflow.ErrForbidden))
}

func TestSubmitReportAdverseRecommendationNeedsFindings(t *testing.T) {
	service, _, _, order, inspector := scheduledFixture(t)

	_, err := service.SubmitReport(inspector, order.ID, models.RecommendRaiseObjections, nil, "")
	var validationErr *workflow.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "findings")
}

func TestOutcomeActionMap(t *testing.T) {
	cases := map[models.InspectionRecommendation]workflow.Action{
		models.RecommendApprove:               workflow.ActionVerifyForPayment,
		models.RecommendApproveWithConditions: workflow.ActionVerifyForPayment,
		models.RecommendRaiseObjections:       workflow.ActionRaiseObjection,
		models.RecommendReject:                workflow.ActionReject,
	}

	for recommendation, want := range cases {
		action, err := OutcomeAction(recommendation)
		require.NoError(t, err)
		assert.Equal(t, want, action)
	}

	_, err := OutcomeAction("MAYBE")
	assert.Error(t, err)
}
