package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType is the closed set of paper types an application can carry.
type DocumentType string

const (
	RevenuePapersDocument        DocumentType = "REVENUE_PAPERS"
	AffidavitDocument            DocumentType = "AFFIDAVIT"
	UndertakingDocument          DocumentType = "UNDERTAKING"
	VerificationRegisterDocument DocumentType = "VERIFICATION_REGISTER"
	BillBookDocument             DocumentType = "BILL_BOOK"
	PropertyPhotoDocument        DocumentType = "PROPERTY_PHOTO"
)

// VerificationStatus tracks scrutiny verification of a document.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Document represents an uploaded file attached to an application. Uploads
// are additive: a new upload of an existing type creates a new version and
// never overwrites the previous one.
type Document struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	ApplicationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"application_id"`
	DocumentType  DocumentType `gorm:"type:varchar(30);not null;index" json:"document_type"`

	FileName     string `gorm:"not null" json:"file_name"`
	FilePath     string `gorm:"not null" json:"file_path"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeCategory string `gorm:"type:varchar(30)" json:"mime_category"`

	// Scrutiny verification
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);default:'PENDING'" json:"verification_status"`
	VerifiedBy         *uuid.UUID         `gorm:"type:uuid" json:"verified_by"`
	VerifierNotes      *string            `gorm:"type:text" json:"verifier_notes"`
	VerifiedAt         *time.Time         `json:"verified_at"`

	// Version control
	Version         int  `gorm:"default:1" json:"version"`
	IsLatestVersion bool `gorm:"default:true;index" json:"is_latest_version"`

	// Relationships
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
