package repositories

import (
	"errors"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InspectionRepository interface {
	GetOrderByID(id uuid.UUID) (*models.InspectionOrder, error)
	GetActiveOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error)
	CreateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error
	UpdateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error
	GetLatestOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error)
	GetReportByOrderID(orderID uuid.UUID) (*models.InspectionReport, error)
	CreateReportTx(tx *gorm.DB, report *models.InspectionReport) error
	ListOrdersByAssignee(assigneeID uuid.UUID, status models.InspectionOrderStatus) ([]models.InspectionOrder, error)
}

type inspectionRepository struct {
	DB *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) InspectionRepository {
	return &inspectionRepository{DB: db}
}

func (r *inspectionRepository) GetOrderByID(id uuid.UUID) (*models.InspectionOrder, error) {
	var order models.InspectionOrder
	if err := r.DB.Preload("Report").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetActiveOrderByApplication returns the application's scheduled order, or
// nil when none is outstanding.
func (r *inspectionRepository) GetActiveOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error) {
	var order models.InspectionOrder
	err := r.DB.
		Where("application_id = ? AND status = ?", applicationID, models.InspectionOrderScheduled).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *inspectionRepository) CreateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error {
	db := tx
	if db == nil {
		db = r.DB
	}
	return db.Create(order).Error
}

func (r *inspectionRepository) UpdateOrderTx(tx *gorm.DB, order *models.InspectionOrder) error {
	db := tx
	if db == nil {
		db = r.DB
	}
	return db.Save(order).Error
}

// GetLatestOrderByApplication returns the application's most recent order
// with its report preloaded, or nil when none exists.
func (r *inspectionRepository) GetLatestOrderByApplication(applicationID uuid.UUID) (*models.InspectionOrder, error) {
	var order models.InspectionOrder
	err := r.DB.Preload("Report").
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetReportByOrderID returns the order's report, or nil when none has been
// submitted yet.
func (r *inspectionRepository) GetReportByOrderID(orderID uuid.UUID) (*models.InspectionReport, error) {
	var report models.InspectionReport
	err := r.DB.Where("order_id = ?", orderID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateReportTx inserts the report; the unique index on order_id backs the
// one-report-per-order rule under concurrent submissions.
func (r *inspectionRepository) CreateReportTx(tx *gorm.DB, report *models.InspectionReport) error {
	db := tx
	if db == nil {
		db = r.DB
	}
	return db.Create(report).Error
}

func (r *inspectionRepository) ListOrdersByAssignee(assigneeID uuid.UUID, status models.InspectionOrderStatus) ([]models.InspectionOrder, error) {
	query := r.DB.Preload("Application").Where("assignee_id = ?", assigneeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.InspectionOrder
	if err := query.Order("scheduled_date").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
