package services

import (
	"testing"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func doc(t models.DocumentType, latest bool) models.Document {
	return models.Document{
		ID:              uuid.New(),
		DocumentType:    t,
		FileName:        "file.pdf",
		IsLatestVersion: latest,
	}
}

func completeSet() []models.Document {
	return []models.Document{
		doc(models.RevenuePapersDocument, true),
		doc(models.AffidavitDocument, true),
		doc(models.UndertakingDocument, true),
		doc(models.VerificationRegisterDocument, true),
		doc(models.BillBookDocument, true),
		doc(models.PropertyPhotoDocument, true),
		doc(models.PropertyPhotoDocument, true),
	}
}

func TestMissingRequirementsCompleteSet(t *testing.T) {
	assert.Empty(t, MissingRequirements(completeSet()))
	assert.True(t, IsComplete(completeSet()))
}

func TestMissingRequirementsEmptySet(t *testing.T) {
	missing := MissingRequirements(nil)
	// One entry per required type.
	assert.Len(t, missing, len(RequiredDocumentTypes))
}

func TestMissingRequirementsSinglePhoto(t *testing.T) {
	docs := completeSet()
	// Drop one of the two photos.
	docs = docs[:len(docs)-1]

	missing := MissingRequirements(docs)
	assert.Len(t, missing, 1)
	assert.Contains(t, missing[0], string(models.PropertyPhotoDocument))
	assert.Contains(t, missing[0], "minimum 2")
}

func TestMissingRequirementsIgnoresSupersededVersions(t *testing.T) {
	docs := completeSet()
	// An old affidavit version must not satisfy the requirement by itself.
	for i := range docs {
		if docs[i].DocumentType == models.AffidavitDocument {
			docs[i].IsLatestVersion = false
		}
	}

	missing := MissingRequirements(docs)
	assert.Contains(t, missing, string(models.AffidavitDocument))
}
