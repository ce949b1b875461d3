package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	docrepositories "github.com/microaistudio/hptourism-r1-sub000/documents/repositories"
	docservices "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	config.Logger = zap.NewNop()
}

type fakeApplicationRepo struct {
	applications map[uuid.UUID]*models.Application
	documents    map[uuid.UUID][]models.Document
	payments     []models.Payment
	created      int

	inTransaction         bool
	certSequenceReadInTx  bool
	certSequenceReadCount int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{
		applications: map[uuid.UUID]*models.Application{},
		documents:    map[uuid.UUID][]models.Document{},
	}
}

func (f *fakeApplicationRepo) GetByID(id uuid.UUID) (*models.Application, error) {
	application, ok := f.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *application
	return &copied, nil
}

func (f *fakeApplicationRepo) GetWithDocuments(id uuid.UUID) (*models.Application, []models.Document, error) {
	application, err := f.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return application, f.documents[id], nil
}

func (f *fakeApplicationRepo) GetActiveByOwner(ownerID uuid.UUID) (*models.Application, error) {
	for _, application := range f.applications {
		if application.OwnerID == ownerID && !application.Status.IsTerminal() {
			copied := *application
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeApplicationRepo) Create(application *models.Application) error {
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	copied := *application
	f.applications[application.ID] = &copied
	f.created++
	return nil
}

func (f *fakeApplicationRepo) UpdateGuardedTx(tx *gorm.DB, application *models.Application, expectedVersion int) error {
	stored, ok := f.applications[application.ID]
	if !ok || stored.RowVersion != expectedVersion {
		return workflow.ErrConflict
	}
	application.RowVersion = expectedVersion + 1
	copied := *application
	f.applications[application.ID] = &copied
	return nil
}

func (f *fakeApplicationRepo) NextApplicationSequence() (int, error) {
	return len(f.applications) + 1, nil
}

func (f *fakeApplicationRepo) NextCertificateSequenceTx(tx *gorm.DB) (int, error) {
	f.certSequenceReadInTx = f.inTransaction
	f.certSequenceReadCount++

	yearStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Local)
	count := 0
	for _, application := range f.applications {
		if application.CertificateNumber != nil &&
			application.CertificateIssuedAt != nil &&
			!application.CertificateIssuedAt.Before(yearStart) {
			count++
		}
	}
	return count + 1, nil
}

func (f *fakeApplicationRepo) ListFiltered(filters map[string]string, page, pageSize int) ([]models.Application, int64, error) {
	var out []models.Application
	for _, application := range f.applications {
		if district := filters["district"]; district != "" && application.District != district {
			continue
		}
		out = append(out, *application)
	}
	return out, int64(len(out)), nil
}

func (f *fakeApplicationRepo) CreatePaymentTx(tx *gorm.DB, payment *models.Payment) error {
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeApplicationRepo) ExpireCertificatesBefore(cutoff time.Time) (int64, error) {
	var expired int64
	for _, application := range f.applications {
		if application.Status == models.ApprovedApplication &&
			application.CertificateExpiresAt != nil &&
			application.CertificateExpiresAt.Before(cutoff) {
			application.Status = models.ExpiredApplication
			application.CurrentStage = models.ApplicationStageClosed
			expired++
		}
	}
	return expired, nil
}

func (f *fakeApplicationRepo) Transaction(fn func(tx *gorm.DB) error) error {
	f.inTransaction = true
	defer func() { f.inTransaction = false }()
	return fn(nil)
}

// fakeDocumentRepo backs the document service with the same in-memory
// store the application fake uses.
type fakeDocumentRepo struct {
	apps *fakeApplicationRepo
}

var _ docrepositories.DocumentRepository = (*fakeDocumentRepo)(nil)

func (f *fakeDocumentRepo) GetByID(id uuid.UUID) (*models.Document, error) {
	for _, docs := range f.apps.documents {
		for i := range docs {
			if docs[i].ID == id {
				return &docs[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocumentRepo) GetByApplicationID(applicationID uuid.UUID) ([]models.Document, error) {
	return f.apps.documents[applicationID], nil
}

func (f *fakeDocumentRepo) GetLatestVersion(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) (*models.Document, error) {
	docs := f.apps.documents[applicationID]
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].DocumentType == documentType && docs[i].IsLatestVersion {
			copied := docs[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDocumentRepo) CreateTx(tx *gorm.DB, document *models.Document) error {
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	f.apps.documents[document.ApplicationID] = append(f.apps.documents[document.ApplicationID], *document)
	return nil
}

func (f *fakeDocumentRepo) SupersedeLatestTx(tx *gorm.DB, applicationID uuid.UUID, documentType models.DocumentType) error {
	docs := f.apps.documents[applicationID]
	for i := range docs {
		if docs[i].DocumentType == documentType {
			docs[i].IsLatestVersion = false
		}
	}
	return nil
}

func (f *fakeDocumentRepo) Update(document *models.Document) error { return nil }

func newTestRegistry() (*Registry, *fakeApplicationRepo) {
	appRepo := newFakeApplicationRepo()
	documentService := docservices.NewDocumentService(&fakeDocumentRepo{apps: appRepo}, nil)
	return NewRegistry(appRepo, documentService, nil, nil), appRepo
}

func femaleOwner() *models.User {
	return &models.User{
		ID:        uuid.New(),
		FirstName: "Sunita",
		LastName:  "Thakur",
		Email:     "sunita@example.com",
		Gender:    models.FemaleGender,
		Role:      models.OwnerRole,
	}
}

func rate(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func completeDraftInput() DraftInput {
	return DraftInput{
		Category:          models.GoldCategory,
		LocationType:      models.GramPanchayatLocation,
		SingleBedRooms:    2,
		DoubleBedRooms:    1,
		SingleBedRoomRate: rate(1200),
		DoubleBedRoomRate: rate(1800),
		District:          "Kullu",
		Tehsil:            "Manali",
		Address:           "Old Manali Road",
		ValidityYears:     1,
	}
}

func fullManifest() []docservices.ManifestEntry {
	entries := []docservices.ManifestEntry{}
	for _, documentType := range docservices.RequiredDocumentTypes {
		entries = append(entries, docservices.ManifestEntry{
			DocumentType: documentType,
			FileName:     fmt.Sprintf("%s.pdf", documentType),
			FilePath:     fmt.Sprintf("/uploads/%s.pdf", documentType),
			FileSize:     1024,
			MimeCategory: "application/pdf",
		})
	}
	for i := 0; i < docservices.MinPropertyPhotos; i++ {
		entries = append(entries, docservices.ManifestEntry{
			DocumentType: models.PropertyPhotoDocument,
			FileName:     fmt.Sprintf("photo_%d.jpg", i+1),
			FilePath:     fmt.Sprintf("/uploads/photo_%d.jpg", i+1),
			FileSize:     2048,
			MimeCategory: "image/jpeg",
		})
	}
	return entries
}

func TestUpsertDraftCreatesNumberedApplication(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("HP-HS-%d-00001", year), application.ApplicationNumber)
	assert.Equal(t, models.DraftApplication, application.Status)
	assert.Equal(t, 3, application.TotalRooms, "total rooms derived from per-class counts")
	assert.Equal(t, 1, appRepo.created)

	// Gold / gram panchayat: 6000 + 18% GST, less the women-owner
	// concession on the pre-discount total.
	require.NotNil(t, application.TotalFee)
	assert.True(t, application.TotalFee.Equal(decimal.NewFromInt(6726)),
		"total fee was %s", application.TotalFee)
	require.NotNil(t, application.WomenOwnerDiscount)
	assert.True(t, application.WomenOwnerDiscount.Equal(decimal.NewFromInt(354)),
		"women owner discount was %s", application.WomenOwnerDiscount)
}

func TestUpsertDraftMergesIntoActive(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	first, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	input := completeDraftInput()
	input.FamilySuites = 1
	input.FamilySuiteRate = rate(2500)

	second, err := registry.UpsertDraft(owner, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "owner keeps a single live application")
	assert.Equal(t, 4, second.TotalRooms)
	assert.Equal(t, 1, appRepo.created, "merge must not create a second record")
}

func TestUpsertDraftRejectedWhileUnderReview(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	appRepo.applications[application.ID].Status = models.UnderScrutinyApplication

	_, err = registry.UpsertDraft(owner, completeDraftInput())
	var validationErr *workflow.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "application")
}

func TestSubmitAttachesManifestAndTransitions(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	submitted, err := registry.Submit(owner, application.ID, fullManifest())
	require.NoError(t, err)

	assert.Equal(t, models.SubmittedApplication, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
	assert.Len(t, appRepo.documents[application.ID], len(docservices.RequiredDocumentTypes)+docservices.MinPropertyPhotos)
}

func TestSubmitWithoutPhotosFails(t *testing.T) {
	registry, _ := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	manifest := fullManifest()[:len(docservices.RequiredDocumentTypes)]

	_, err = registry.Submit(owner, application.ID, manifest)
	var missingErr *workflow.MissingDocumentsError
	require.ErrorAs(t, err, &missingErr)
}

func TestSubmitByAnotherOwnerForbidden(t *testing.T) {
	registry, _ := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	intruder := femaleOwner()
	_, err = registry.Submit(intruder, application.ID, fullManifest())
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestConcurrentModificationSurfacesConflict(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	// Another request bumps the stored version between read and write.
	appRepo.applications[application.ID].RowVersion++

	input := completeDraftInput()
	input.Address = "New address"
	// UpsertDraft re-reads, so race it by writing a stale version directly.
	stale := *application
	err = appRepo.UpdateGuardedTx(nil, &stale, application.RowVersion)
	assert.ErrorIs(t, err, workflow.ErrConflict)
}

func TestConfirmPaymentIssuesCertificate(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	stored := appRepo.applications[application.ID]
	stored.Status = models.PaymentPendingApplication
	stored.CurrentStage = models.ApplicationStagePayment
	stored.ValidityYears = 2

	admin := &models.User{ID: uuid.New(), Role: models.AdminRole}
	approved, err := registry.ConfirmPayment(admin, application.ID, "GW-REF-991")
	require.NoError(t, err)

	assert.Equal(t, models.ApprovedApplication, approved.Status)
	require.NotNil(t, approved.CertificateNumber)
	assert.Equal(t, fmt.Sprintf("HPTSM-HS-%d-00001", time.Now().Year()), *approved.CertificateNumber)

	require.NotNil(t, approved.CertificateIssuedAt)
	require.NotNil(t, approved.CertificateExpiresAt)
	assert.Equal(t,
		approved.CertificateIssuedAt.AddDate(2, 0, 0),
		*approved.CertificateExpiresAt,
		"certificate validity follows the purchased period")

	require.Len(t, appRepo.payments, 1)
	assert.Equal(t, "GW-REF-991", appRepo.payments[0].GatewayReference)
	assert.Equal(t, models.PaidPayment, appRepo.payments[0].Status)
}

func TestConfirmPaymentReadsCertificateSequenceInTransaction(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	stored := appRepo.applications[application.ID]
	stored.Status = models.PaymentPendingApplication
	stored.CurrentStage = models.ApplicationStagePayment

	admin := &models.User{ID: uuid.New(), Role: models.AdminRole}
	_, err = registry.ConfirmPayment(admin, application.ID, "GW-REF-440")
	require.NoError(t, err)

	assert.Equal(t, 1, appRepo.certSequenceReadCount)
	assert.True(t, appRepo.certSequenceReadInTx,
		"certificate sequence must be read inside the issuing transaction so concurrent approvals cannot mint the same number")
}

func TestCertificateSequenceRestartsEachYear(t *testing.T) {
	registry, appRepo := newTestRegistry()

	// A certificate issued in a prior year must not advance this year's
	// series: the number embeds the year, so the count is year-scoped.
	lastYear := time.Now().AddDate(-1, 0, 0)
	oldCertificate := fmt.Sprintf("HPTSM-HS-%d-00007", lastYear.Year())
	previous := femaleOwner()
	previousID := uuid.New()
	appRepo.applications[previousID] = &models.Application{
		ID:                  previousID,
		OwnerID:             previous.ID,
		Status:              models.ApprovedApplication,
		CertificateNumber:   &oldCertificate,
		CertificateIssuedAt: &lastYear,
	}

	owner := femaleOwner()
	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	stored := appRepo.applications[application.ID]
	stored.Status = models.PaymentPendingApplication
	stored.CurrentStage = models.ApplicationStagePayment

	admin := &models.User{ID: uuid.New(), Role: models.AdminRole}
	approved, err := registry.ConfirmPayment(admin, application.ID, "GW-REF-441")
	require.NoError(t, err)

	require.NotNil(t, approved.CertificateNumber)
	assert.Equal(t, fmt.Sprintf("HPTSM-HS-%d-00001", time.Now().Year()), *approved.CertificateNumber)
}

func TestCertificateExpirySweep(t *testing.T) {
	registry, appRepo := newTestRegistry()
	owner := femaleOwner()

	application, err := registry.UpsertDraft(owner, completeDraftInput())
	require.NoError(t, err)

	lapsed := time.Now().AddDate(-1, 0, 0)
	stored := appRepo.applications[application.ID]
	stored.Status = models.ApprovedApplication
	stored.CertificateExpiresAt = &lapsed

	sweeper := NewCertificateExpirySweeper(appRepo)
	sweeper.Sweep()

	assert.Equal(t, models.ExpiredApplication, appRepo.applications[application.ID].Status)
}
