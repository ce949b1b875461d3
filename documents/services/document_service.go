package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/documents/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrVerificationNotPermitted = errors.New("verifier role is not authorized for scrutiny")

// ManifestEntry is one client-declared upload in a submission manifest.
type ManifestEntry struct {
	DocumentType models.DocumentType `json:"document_type"`
	FileName     string              `json:"file_name"`
	FilePath     string              `json:"file_path"`
	FileSize     int64               `json:"file_size"`
	MimeCategory string              `json:"mime_category"`
}

type DocumentService struct {
	documentRepo repositories.DocumentRepository
	fileStorage  utils.FileStorage
}

func NewDocumentService(documentRepo repositories.DocumentRepository, fileStorage utils.FileStorage) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		fileStorage:  fileStorage,
	}
}

// NextVersion returns the version the next upload of this type gets, given
// the superseded document (nil for a first upload).
func NextVersion(latest *models.Document) int {
	if latest == nil {
		return 1
	}
	return latest.Version + 1
}

// AttachManifestTx creates versioned document rows for a submission
// manifest inside the caller's transaction. Uploads are additive: an
// existing type gets a new version and the prior one is kept, flagged as
// superseded.
func (s *DocumentService) AttachManifestTx(tx *gorm.DB, application *models.Application, entries []ManifestEntry, createdBy string) ([]models.Document, error) {
	created := make([]models.Document, 0, len(entries))

	for _, entry := range entries {
		if entry.FileName == "" || entry.FilePath == "" {
			return nil, fmt.Errorf("manifest entry for %s is missing the file reference", entry.DocumentType)
		}

		latest, err := s.documentRepo.GetLatestVersion(tx, application.ID, entry.DocumentType)
		if err != nil {
			return nil, fmt.Errorf("failed to look up current %s version: %w", entry.DocumentType, err)
		}

		// Photos accumulate rather than supersede: each photo upload is
		// its own latest entry so the minimum-count rule can be met.
		if latest != nil && entry.DocumentType != models.PropertyPhotoDocument {
			if err := s.documentRepo.SupersedeLatestTx(tx, application.ID, entry.DocumentType); err != nil {
				return nil, fmt.Errorf("failed to supersede %s: %w", entry.DocumentType, err)
			}
		}

		document := models.Document{
			ApplicationID:      application.ID,
			DocumentType:       entry.DocumentType,
			FileName:           entry.FileName,
			FilePath:           entry.FilePath,
			FileSize:           entry.FileSize,
			MimeCategory:       entry.MimeCategory,
			VerificationStatus: models.VerificationPending,
			Version:            NextVersion(latest),
			IsLatestVersion:    true,
			CreatedBy:          createdBy,
		}
		if entry.DocumentType == models.PropertyPhotoDocument {
			document.Version = 1
		}

		if err := s.documentRepo.CreateTx(tx, &document); err != nil {
			return nil, fmt.Errorf("failed to create document row: %w", err)
		}
		created = append(created, document)
	}

	return created, nil
}

// canVerify lists the roles authorized to perform scrutiny verification.
// District-scoped verifiers must match the application's district.
func canVerify(verifier *models.User, application *models.Application) bool {
	switch verifier.Role {
	case models.ScrutinyClerkRole:
		return verifier.District != nil && *verifier.District == application.District
	case models.AdminRole, models.SuperAdminRole:
		return true
	default:
		return false
	}
}

// Verify transitions a document's verification status and stamps the
// verifier identity, notes and time.
func (s *DocumentService) Verify(documentID uuid.UUID, verifier *models.User, application *models.Application, outcome models.VerificationStatus, notes string) (*models.Document, error) {
	if outcome != models.VerificationVerified && outcome != models.VerificationRejected {
		return nil, fmt.Errorf("invalid verification outcome: %s", outcome)
	}
	if !canVerify(verifier, application) {
		return nil, ErrVerificationNotPermitted
	}

	document, err := s.documentRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if document.ApplicationID != application.ID {
		return nil, fmt.Errorf("document %s does not belong to application %s", documentID, application.ID)
	}

	now := time.Now()
	document.VerificationStatus = outcome
	document.VerifiedBy = &verifier.ID
	document.VerifiedAt = &now
	if notes != "" {
		document.VerifierNotes = &notes
	}

	if err := s.documentRepo.Update(document); err != nil {
		return nil, err
	}
	return document, nil
}

// ViewPath resolves a stored document to a readable handle via the file
// storage backend.
func (s *DocumentService) ViewPath(document *models.Document) (string, error) {
	exists, err := s.fileStorage.FileExists(document.FilePath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("stored file missing for document %s", document.ID)
	}
	return document.FilePath, nil
}
