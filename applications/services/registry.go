package services

import (
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	docservices "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	"github.com/microaistudio/hptourism-r1-sub000/fees"
	"github.com/microaistudio/hptourism-r1-sub000/internal/tasks"
	"github.com/microaistudio/hptourism-r1-sub000/utils"
	"github.com/microaistudio/hptourism-r1-sub000/workflow"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SearchIndexer receives every persisted application state for full-text
// search. Indexing is best-effort and never blocks a workflow write.
type SearchIndexer interface {
	IndexApplication(application *models.Application) error
}

// Registry owns the application lifecycle: drafting, final submission,
// officer actions and the payment-to-certificate hand-off. Every store
// write goes through the optimistic-concurrency guard.
type Registry struct {
	applicationRepo repositories.ApplicationRepository
	documentService *docservices.DocumentService
	taskClient      *asynq.Client
	indexer         SearchIndexer
}

func NewRegistry(applicationRepo repositories.ApplicationRepository, documentService *docservices.DocumentService, taskClient *asynq.Client, indexer SearchIndexer) *Registry {
	return &Registry{
		applicationRepo: applicationRepo,
		documentService: documentService,
		taskClient:      taskClient,
		indexer:         indexer,
	}
}

// DraftInput is the owner-editable portion of an application.
type DraftInput struct {
	Category     models.HomestayCategory `json:"category"`
	LocationType models.LocationType     `json:"location_type"`
	ProjectType  *string                 `json:"project_type"`

	SingleBedRooms int `json:"single_bed_rooms"`
	DoubleBedRooms int `json:"double_bed_rooms"`
	FamilySuites   int `json:"family_suites"`

	SingleBedRoomRate *decimal.Decimal `json:"single_bed_room_rate"`
	DoubleBedRoomRate *decimal.Decimal `json:"double_bed_room_rate"`
	FamilySuiteRate   *decimal.Decimal `json:"family_suite_rate"`

	District      string           `json:"district"`
	Tehsil        string           `json:"tehsil"`
	Block         *string          `json:"block"`
	GramPanchayat *string          `json:"gram_panchayat"`
	UrbanBody     *string          `json:"urban_body"`
	Address       string           `json:"address"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`

	ValidityYears int  `json:"validity_years"`
	IsTribalArea  bool `json:"is_tribal_area"`
}

// ownerEditable lists the statuses in which the owner may still change the
// record's content.
func ownerEditable(status models.ApplicationStatus) bool {
	switch status {
	case models.DraftApplication, models.SentBackForCorrections,
		models.RevertedToApplicant, models.ObjectionRaised:
		return true
	default:
		return false
	}
}

// UpsertDraft creates the owner's draft or merges changes into the one
// active application they already have. An owner never holds two live
// applications at once.
func (r *Registry) UpsertDraft(owner *models.User, input DraftInput) (*models.Application, error) {
	if input.District == "" {
		return nil, workflow.NewValidationError("district", "district is required")
	}

	breakdown, err := fees.Compute(fees.Input{
		Category:      input.Category,
		LocationType:  input.LocationType,
		ValidityYears: input.ValidityYears,
		OwnerGender:   owner.Gender,
		IsTribalArea:  input.IsTribalArea,
	})
	if err != nil {
		return nil, workflow.NewValidationError("fee_inputs", err.Error())
	}

	active, err := r.applicationRepo.GetActiveByOwner(owner.ID)
	if err != nil {
		return nil, err
	}

	if active != nil {
		if !ownerEditable(active.Status) {
			return nil, workflow.NewValidationError("application",
				"an application is already under process; wait for it to conclude or be returned")
		}

		expected := active.RowVersion
		applyDraftInput(active, input)
		fees.Apply(active, breakdown)
		updatedBy := owner.ID.String()
		active.UpdatedBy = &updatedBy

		if err := r.applicationRepo.UpdateGuardedTx(nil, active, expected); err != nil {
			return nil, err
		}
		r.reindex(active)
		return active, nil
	}

	sequence, err := r.applicationRepo.NextApplicationSequence()
	if err != nil {
		return nil, err
	}

	application := &models.Application{
		ApplicationNumber: utils.FormatApplicationNumber(sequence),
		OwnerID:           owner.ID,
		Status:            models.DraftApplication,
		CurrentStage:      models.ApplicationStageOwner,
		PaymentStatus:     models.PendingPayment,
		RowVersion:        1,
		CreatedBy:         owner.ID.String(),
	}
	applyDraftInput(application, input)
	fees.Apply(application, breakdown)

	if err := r.applicationRepo.Create(application); err != nil {
		return nil, err
	}

	config.Logger.Info("application draft created",
		zap.String("application_number", application.ApplicationNumber),
		zap.String("owner_id", owner.ID.String()))

	r.reindex(application)
	return application, nil
}

func applyDraftInput(application *models.Application, input DraftInput) {
	application.Category = input.Category
	application.LocationType = input.LocationType
	application.ProjectType = input.ProjectType

	application.SingleBedRooms = input.SingleBedRooms
	application.DoubleBedRooms = input.DoubleBedRooms
	application.FamilySuites = input.FamilySuites
	application.TotalRooms = input.SingleBedRooms + input.DoubleBedRooms + input.FamilySuites

	application.SingleBedRoomRate = input.SingleBedRoomRate
	application.DoubleBedRoomRate = input.DoubleBedRoomRate
	application.FamilySuiteRate = input.FamilySuiteRate

	application.District = input.District
	application.Tehsil = input.Tehsil
	application.Block = input.Block
	application.GramPanchayat = input.GramPanchayat
	application.UrbanBody = input.UrbanBody
	application.Address = input.Address
	application.Latitude = input.Latitude
	application.Longitude = input.Longitude

	application.ValidityYears = input.ValidityYears
	application.IsTribalArea = input.IsTribalArea
}

// Submit finalizes the owner's application: the upload manifest is attached
// as versioned documents and the record moves into SUBMITTED, all in one
// transaction. From a corrections status the same call resubmits.
func (r *Registry) Submit(owner *models.User, applicationID uuid.UUID, manifest []docservices.ManifestEntry) (*models.Application, error) {
	application, documents, err := r.applicationRepo.GetWithDocuments(applicationID)
	if err != nil {
		return nil, err
	}
	if application.OwnerID != owner.ID {
		return nil, workflow.ErrForbidden
	}

	action := workflow.ActionResubmit
	if application.Status == models.DraftApplication {
		action = workflow.ActionSubmit
	}

	var updated *models.Application
	err = r.applicationRepo.Transaction(func(tx *gorm.DB) error {
		created, err := r.documentService.AttachManifestTx(tx, application, manifest, owner.ID.String())
		if err != nil {
			return err
		}

		result, err := workflow.Transition(application, effectiveDocumentSet(documents, created), workflow.Request{
			Action: action,
			Actor:  workflow.Actor{ID: owner.ID, Role: owner.Role},
		})
		if err != nil {
			return err
		}

		if err := r.applicationRepo.UpdateGuardedTx(tx, &result.Application, application.RowVersion); err != nil {
			return err
		}
		updated = &result.Application
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("application submitted",
		zap.String("application_number", updated.ApplicationNumber),
		zap.String("action", string(action)))

	r.reindex(updated)
	r.notifyStatus(updated, owner, "")
	return updated, nil
}

// effectiveDocumentSet folds freshly attached manifest rows into the
// in-memory document list, flagging the versions they superseded, so the
// submission guard sees the post-attach state.
func effectiveDocumentSet(existing []models.Document, created []models.Document) []models.Document {
	superseded := map[models.DocumentType]bool{}
	for _, doc := range created {
		if doc.DocumentType != models.PropertyPhotoDocument {
			superseded[doc.DocumentType] = true
		}
	}

	combined := make([]models.Document, 0, len(existing)+len(created))
	for _, doc := range existing {
		if doc.IsLatestVersion && superseded[doc.DocumentType] {
			doc.IsLatestVersion = false
		}
		combined = append(combined, doc)
	}
	return append(combined, created...)
}

// PerformAction executes one officer workflow action and persists the
// outcome under the concurrency guard.
func (r *Registry) PerformAction(actor *models.User, applicationID uuid.UUID, action workflow.Action, reason string) (*models.Application, error) {
	application, documents, err := r.applicationRepo.GetWithDocuments(applicationID)
	if err != nil {
		return nil, err
	}

	workflowActor := workflow.Actor{ID: actor.ID, Role: actor.Role}
	if actor.District != nil {
		workflowActor.District = *actor.District
	}

	result, err := workflow.Transition(application, documents, workflow.Request{
		Action: action,
		Actor:  workflowActor,
		Reason: reason,
	})
	if err != nil {
		return nil, err
	}

	if err := r.applicationRepo.UpdateGuardedTx(nil, &result.Application, application.RowVersion); err != nil {
		return nil, err
	}

	config.Logger.Info("workflow action performed",
		zap.String("application_number", result.Application.ApplicationNumber),
		zap.String("action", string(action)),
		zap.String("new_status", string(result.Application.Status)))

	r.reindex(&result.Application)
	r.notifyStatus(&result.Application, &application.Owner, reason)
	return &result.Application, nil
}

// ConfirmPayment is the gateway callback: it records the payment, approves
// the application and issues the registration certificate atomically.
func (r *Registry) ConfirmPayment(actor *models.User, applicationID uuid.UUID, gatewayReference string) (*models.Application, error) {
	if gatewayReference == "" {
		return nil, workflow.NewValidationError("gateway_reference", "gateway reference is required")
	}

	application, documents, err := r.applicationRepo.GetWithDocuments(applicationID)
	if err != nil {
		return nil, err
	}

	result, err := workflow.Transition(application, documents, workflow.Request{
		Action: workflow.ActionConfirmPayment,
		Actor:  workflow.Actor{ID: actor.ID, Role: actor.Role},
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated := result.Application
	updated.PaymentReference = &gatewayReference

	payment := &models.Payment{
		ApplicationID:    applicationID,
		GatewayReference: gatewayReference,
		Status:           models.PaidPayment,
		PaidAt:           &now,
	}
	if updated.TotalFee != nil {
		payment.Amount = *updated.TotalFee
	}

	// The certificate sequence is read inside the same transaction that
	// persists it, so concurrent approvals cannot mint the same number.
	err = r.applicationRepo.Transaction(func(tx *gorm.DB) error {
		if result.CertificateDue {
			sequence, err := r.applicationRepo.NextCertificateSequenceTx(tx)
			if err != nil {
				return err
			}
			certificate := utils.FormatCertificateNumber(sequence)
			expiry := now.AddDate(updated.ValidityYears, 0, 0)
			updated.CertificateNumber = &certificate
			updated.CertificateIssuedAt = &now
			updated.CertificateExpiresAt = &expiry
		}
		if err := r.applicationRepo.CreatePaymentTx(tx, payment); err != nil {
			return err
		}
		return r.applicationRepo.UpdateGuardedTx(tx, &updated, application.RowVersion)
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("payment confirmed, certificate issued",
		zap.String("application_number", updated.ApplicationNumber),
		zap.Stringp("certificate_number", updated.CertificateNumber))

	r.reindex(&updated)
	r.notifyCertificate(&updated, &application.Owner)
	return &updated, nil
}

// Get returns an application with its documents, enforcing owner scoping
// for applicant accounts.
func (r *Registry) Get(actor *models.User, applicationID uuid.UUID) (*models.Application, []models.Document, error) {
	application, documents, err := r.applicationRepo.GetWithDocuments(applicationID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role == models.OwnerRole && application.OwnerID != actor.ID {
		return nil, nil, workflow.ErrForbidden
	}
	return application, documents, nil
}

// List pages through applications for officer dashboards. District-scoped
// officers are pinned to their own district regardless of the filter.
func (r *Registry) List(actor *models.User, filters map[string]string, page, pageSize int) ([]models.Application, int64, error) {
	if actor.Role.DistrictScoped() {
		if actor.District == nil {
			return nil, 0, workflow.ErrForbidden
		}
		filters["district"] = *actor.District
	}
	return r.applicationRepo.ListFiltered(filters, page, pageSize)
}

// ActiveForOwner returns the owner's current application, if any.
func (r *Registry) ActiveForOwner(owner *models.User) (*models.Application, error) {
	return r.applicationRepo.GetActiveByOwner(owner.ID)
}

func (r *Registry) reindex(application *models.Application) {
	if r.indexer == nil {
		return
	}
	if err := r.indexer.IndexApplication(application); err != nil {
		config.Logger.Warn("failed to index application",
			zap.String("application_number", application.ApplicationNumber),
			zap.Error(err))
	}
}

func (r *Registry) notifyStatus(application *models.Application, owner *models.User, feedback string) {
	if r.taskClient == nil || owner == nil || owner.Email == "" {
		return
	}

	task, err := tasks.NewStatusNotificationTask(tasks.StatusNotificationPayload{
		ApplicationID:     application.ID.String(),
		ApplicationNumber: application.ApplicationNumber,
		OwnerName:         owner.FirstName + " " + owner.LastName,
		OwnerEmail:        owner.Email,
		NewStatus:         string(application.Status),
		Feedback:          feedback,
	})
	if err != nil {
		config.Logger.Error("failed to build status notification task", zap.Error(err))
		return
	}
	if _, err := r.taskClient.Enqueue(task); err != nil {
		config.Logger.Error("failed to enqueue status notification", zap.Error(err))
	}
}

func (r *Registry) notifyCertificate(application *models.Application, owner *models.User) {
	if r.taskClient == nil || owner == nil || owner.Email == "" || application.CertificateNumber == nil {
		return
	}

	expires := ""
	if application.CertificateExpiresAt != nil {
		expires = application.CertificateExpiresAt.Format("2006-01-02")
	}

	task, err := tasks.NewCertificateIssuedTask(tasks.CertificateIssuedPayload{
		ApplicationNumber: application.ApplicationNumber,
		CertificateNumber: *application.CertificateNumber,
		OwnerName:         owner.FirstName + " " + owner.LastName,
		OwnerEmail:        owner.Email,
		ExpiresAt:         expires,
	})
	if err != nil {
		config.Logger.Error("failed to build certificate task", zap.Error(err))
		return
	}
	if _, err := r.taskClient.Enqueue(task); err != nil {
		config.Logger.Error("failed to enqueue certificate notification", zap.Error(err))
	}
}
