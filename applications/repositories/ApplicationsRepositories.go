package repositories

import (
	"errors"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// terminalStatuses mirrors models.ApplicationStatus.IsTerminal for SQL use.
var terminalStatuses = []models.ApplicationStatus{
	models.ApprovedApplication,
	models.RejectedApplication,
	models.ExpiredApplication,
}

type ApplicationRepository interface {
	GetByID(id uuid.UUID) (*models.Application, error)
	GetWithDocuments(id uuid.UUID) (*models.Application, []models.Document, error)
	GetActiveByOwner(ownerID uuid.UUID) (*models.Application, error)
	Create(application *models.Application) error
	UpdateGuardedTx(tx *gorm.DB, application *models.Application, expectedVersion int) error
	NextApplicationSequence() (int, error)
	NextCertificateSequenceTx(tx *gorm.DB) (int, error)
	ListFiltered(filters map[string]string, page, pageSize int) ([]models.Application, int64, error)
	CreatePaymentTx(tx *gorm.DB, payment *models.Payment) error
	ExpireCertificatesBefore(cutoff time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

type applicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{DB: db}
}

func (r *applicationRepository) GetByID(id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.DB.Preload("Owner").First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) GetWithDocuments(id uuid.UUID) (*models.Application, []models.Document, error) {
	application, err := r.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	var documents []models.Document
	if err := r.DB.Where("application_id = ?", id).Find(&documents).Error; err != nil {
		return nil, nil, err
	}
	return application, documents, nil
}

// GetActiveByOwner returns the owner's single non-terminal application, or
// nil when none exists.
func (r *applicationRepository) GetActiveByOwner(ownerID uuid.UUID) (*models.Application, error) {
	var application models.Application
	err := r.DB.
		Where("owner_id = ? AND status NOT IN ?", ownerID, terminalStatuses).
		First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) Create(application *models.Application) error {
	return r.DB.Create(application).Error
}

// UpdateGuardedTx persists the full record only when the stored row still
// carries the version the caller read. A lost race surfaces as Conflict so
// the caller re-reads and retries.
func (r *applicationRepository) UpdateGuardedTx(tx *gorm.DB, application *models.Application, expectedVersion int) error {
	db := tx
	if db == nil {
		db = r.DB
	}

	application.RowVersion = expectedVersion + 1
	result := db.Model(&models.Application{}).
		Where("id = ? AND row_version = ?", application.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at", "created_by").
		Updates(application)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return workflow.ErrConflict
	}
	return nil
}

// NextApplicationSequence yields the next number in the current year's
// application series.
func (r *applicationRepository) NextApplicationSequence() (int, error) {
	var count int64
	yearStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Local)
	if err := r.DB.Model(&models.Application{}).
		Unscoped().
		Where("created_at >= ?", yearStart).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// NextCertificateSequenceTx yields the next number in the current year's
// certificate series. Must run inside the issuing transaction so two
// concurrent approvals cannot mint the same number; the unique index on
// certificate_number rejects any writer that still slips through.
func (r *applicationRepository) NextCertificateSequenceTx(tx *gorm.DB) (int, error) {
	db := tx
	if db == nil {
		db = r.DB
	}
	var count int64
	yearStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Local)
	if err := db.Model(&models.Application{}).
		Unscoped().
		Where("certificate_number IS NOT NULL AND certificate_issued_at >= ?", yearStart).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

func (r *applicationRepository) ListFiltered(filters map[string]string, page, pageSize int) ([]models.Application, int64, error) {
	query := r.DB.Model(&models.Application{}).Preload("Owner")

	if district := filters["district"]; district != "" {
		query = query.Where("district = ?", district)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if stage := filters["stage"]; stage != "" {
		query = query.Where("current_stage = ?", stage)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []models.Application
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&applications).Error; err != nil {
		return nil, 0, err
	}
	return applications, total, nil
}

func (r *applicationRepository) CreatePaymentTx(tx *gorm.DB, payment *models.Payment) error {
	db := tx
	if db == nil {
		db = r.DB
	}
	return db.Create(payment).Error
}

// ExpireCertificatesBefore marks approved applications whose certificate
// has lapsed as EXPIRED. Run nightly by the cron sweep.
func (r *applicationRepository) ExpireCertificatesBefore(cutoff time.Time) (int64, error) {
	result := r.DB.Model(&models.Application{}).
		Where("status = ? AND certificate_expires_at < ?", models.ApprovedApplication, cutoff).
		Updates(map[string]interface{}{
			"status":        models.ExpiredApplication,
			"current_stage": models.ApplicationStageClosed,
		})
	return result.RowsAffected, result.Error
}

func (r *applicationRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.DB.Transaction(fn)
}
