package repositories

import (
	"errors"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	GetByID(id uuid.UUID) (*models.Document, error)
	GetByApplicationID(applicationID uuid.UUID) ([]models.Document, error)
	GetLatestVersion(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) (*models.Document, error)
	CreateTx(tx *gorm.DB, document *models.Document) error
	SupersedeLatestTx(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) error
	Update(document *models.Document) error
}

type documentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{DB: db}
}

func (r *documentRepository) GetByID(id uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := r.DB.First(&document, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) GetByApplicationID(applicationID uuid.UUID) ([]models.Document, error) {
	var documents []models.Document
	if err := r.DB.
		Where("application_id = ?", applicationID).
		Order("document_type, version").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// GetLatestVersion returns the current version of a document type for an
// application, or nil when no upload of that type exists yet.
func (r *documentRepository) GetLatestVersion(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) (*models.Document, error) {
	db := tx
	if db == nil {
		db = r.DB
	}

	var document models.Document
	err := db.
		Where("application_id = ? AND document_type = ? AND is_latest_version = ?",
			applicationID, documentType, true).
		First(&document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) CreateTx(tx *gorm.DB, document *models.Document) error {
	return tx.Create(document).Error
}

// SupersedeLatestTx clears the latest flag on the current version of a
// document type. Prior versions stay on the record for audit history.
func (r *documentRepository) SupersedeLatestTx(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) error {
	return tx.Model(&models.Document{}).
		Where("application_id = ? AND document_type = ? AND is_latest_version = ?",
			applicationID, documentType, true).
		Update("is_latest_version", false).Error
}

func (r *documentRepository) Update(document *models.Document) error {
	return r.DB.Save(document).Error
}
