package workflow

import (
	"testing"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	docservices "github.com/microaistudio/hptourism-r1-sub000/documents/services"
	"github.com/microaistudio/hptourism-r1-sub000/fees"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitReadyApplication(t *testing.T, owner uuid.UUID) *models.Application {
	t.Helper()

	rate := decimal.NewFromInt(1500)
	app := &models.Application{
		ID:                uuid.New(),
		ApplicationNumber: "HP-HS-2026-00042",
		OwnerID:           owner,
		Category:          models.DiamondCategory,
		LocationType:      models.MunicipalLocation,
		SingleBedRooms:    2,
		DoubleBedRooms:    1,
		TotalRooms:        3,
		SingleBedRoomRate: &rate,
		DoubleBedRoomRate: &rate,
		District:          "Shimla",
		Address:           "Village Mashobra, Shimla",
		ValidityYears:     1,
		Status:            models.DraftApplication,
		CurrentStage:      models.ApplicationStageOwner,
	}

	breakdown, err := fees.Compute(fees.Input{
		Category:      app.Category,
		LocationType:  app.LocationType,
		ValidityYears: app.ValidityYears,
		OwnerGender:   models.MaleGender,
	})
	require.NoError(t, err)
	fees.Apply(app, breakdown)

	return app
}

func fullDocumentSet(appID uuid.UUID) []models.Document {
	var docs []models.Document
	for _, dt := range docservices.RequiredDocumentTypes {
		n := 1
		if dt == models.PropertyPhotoDocument {
			n = docservices.MinPropertyPhotos
		}
		for i := 0; i < n; i++ {
			docs = append(docs, models.Document{
				ID:              uuid.New(),
				ApplicationID:   appID,
				DocumentType:    dt,
				FileName:        "file.pdf",
				IsLatestVersion: true,
			})
		}
	}
	return docs
}

func TestTransitionSubmitHappyPath(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)
	docs := fullDocumentSet(app.ID)
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	result, err := Transition(app, docs, Request{
		Action: ActionSubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
		Now:    now,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubmittedApplication, result.Application.Status)
	assert.Equal(t, models.ApplicationStageScrutiny, result.Application.CurrentStage)
	require.NotNil(t, result.Application.SubmittedAt)
	assert.Equal(t, now, *result.Application.SubmittedAt)
	assert.True(t, result.FeedbackCleared)

	// The input record is untouched; the caller persists the copy.
	assert.Equal(t, models.DraftApplication, app.Status)
}

func TestTransitionSubmitMissingRoomRate(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)
	app.SingleBedRoomRate = nil
	docs := fullDocumentSet(app.ID)

	_, err := Transition(app, docs, Request{
		Action: ActionSubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "single_bed_room_rate")
	assert.Equal(t, models.DraftApplication, app.Status)
}

func TestTransitionSubmitRoomCountMismatch(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)
	app.TotalRooms = 7

	_, err := Transition(app, fullDocumentSet(app.ID), Request{
		Action: ActionSubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "total_rooms")
}

func TestTransitionSubmitTooFewPhotos(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)

	var docs []models.Document
	photos := 0
	for _, d := range fullDocumentSet(app.ID) {
		if d.DocumentType == models.PropertyPhotoDocument {
			photos++
			if photos > 1 {
				continue // keep only one photo
			}
		}
		docs = append(docs, d)
	}

	_, err := Transition(app, docs, Request{
		Action: ActionSubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
	})

	var merr *MissingDocumentsError
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Missing, 1)
	assert.Contains(t, merr.Missing[0], string(models.PropertyPhotoDocument))
}

func TestTransitionSubmitIncompleteFee(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)
	app.TotalFee = nil

	_, err := Transition(app, fullDocumentSet(app.ID), Request{
		Action: ActionSubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
	})

	var ferr *IncompleteFeeError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Missing, "total_fee")
}

func TestTransitionSendBackRequiresReason(t *testing.T) {
	clerk := Actor{ID: uuid.New(), Role: models.ScrutinyClerkRole, District: "Shimla"}
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.UnderScrutinyApplication

	_, err := Transition(app, nil, Request{Action: ActionSendBack, Actor: clerk, Reason: "too short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "reason")

	result, err := Transition(app, nil, Request{
		Action: ActionSendBack,
		Actor:  clerk,
		Reason: "revenue papers do not match the declared address",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SentBackForCorrections, result.Application.Status)
	require.NotNil(t, result.Application.ScrutinyFeedback)
	assert.Equal(t, "revenue papers do not match the declared address", *result.Application.ScrutinyFeedback)
	assert.Equal(t, clerk.ID, *result.Application.ScrutinyBy)
	require.NotNil(t, result.Application.ScrutinyAt)
}

func TestTransitionReasonLengthCountsRunes(t *testing.T) {
	clerk := Actor{ID: uuid.New(), Role: models.ScrutinyClerkRole, District: "Shimla"}
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.UnderScrutinyApplication

	// Four Devanagari characters span 12 bytes but are still too short.
	_, err := Transition(app, nil, Request{Action: ActionSendBack, Actor: clerk, Reason: "अपूर्ण"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "reason")

	result, err := Transition(app, nil, Request{
		Action: ActionSendBack,
		Actor:  clerk,
		Reason: "राजस्व अभिलेख अपूर्ण हैं",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SentBackForCorrections, result.Application.Status)
}

func TestTransitionResubmitClearsAllFeedback(t *testing.T) {
	owner := uuid.New()
	app := submitReadyApplication(t, owner)
	app.Status = models.SentBackForCorrections

	scrutinyNote := "fix the revenue papers"
	districtNote := "boundary map unclear"
	stateNote := "pending clarification"
	app.ScrutinyFeedback = &scrutinyNote
	app.DistrictFeedback = &districtNote
	app.StateFeedback = &stateNote

	result, err := Transition(app, fullDocumentSet(app.ID), Request{
		Action: ActionResubmit,
		Actor:  Actor{ID: owner, Role: models.OwnerRole},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubmittedApplication, result.Application.Status)
	assert.Nil(t, result.Application.ScrutinyFeedback)
	assert.Nil(t, result.Application.DistrictFeedback)
	assert.Nil(t, result.Application.StateFeedback)
	assert.True(t, result.FeedbackCleared)
}

func TestTransitionCrossDistrictSendBackForbidden(t *testing.T) {
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.UnderScrutinyApplication
	app.District = "Kangra"
	before := *app

	outsider := Actor{ID: uuid.New(), Role: models.ScrutinyClerkRole, District: "Shimla"}
	_, err := Transition(app, nil, Request{
		Action: ActionSendBack,
		Actor:  outsider,
		Reason: "documents incomplete, please resubmit",
	})

	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, before, *app)
}

func TestTransitionConfirmPaymentApproves(t *testing.T) {
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.PaymentPendingApplication
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	result, err := Transition(app, nil, Request{
		Action: ActionConfirmPayment,
		Actor:  Actor{ID: uuid.New(), Role: models.AdminRole},
		Now:    now,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApprovedApplication, result.Application.Status)
	assert.Equal(t, models.PaidPayment, result.Application.PaymentStatus)
	require.NotNil(t, result.Application.ApprovedAt)
	assert.Equal(t, now, *result.Application.ApprovedAt)
	assert.True(t, result.CertificateDue, "registry must populate certificate fields before persisting")
}

func TestTransitionCompleteInspectionStampsInspectionSlot(t *testing.T) {
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.InspectionScheduled
	officer := Actor{ID: uuid.New(), Role: models.DistrictOfficerRole, District: "Shimla"}

	result, err := Transition(app, nil, Request{
		Action: ActionCompleteInspection,
		Actor:  officer,
		Reason: "",
	})
	require.NoError(t, err)

	assert.Equal(t, models.InspectionCompleted, result.Application.Status)
	assert.Equal(t, officer.ID, *result.Application.InspectionBy)
	require.NotNil(t, result.Application.InspectionAt)
	assert.Nil(t, result.Application.DistrictReviewBy,
		"inspection completion must not consume the district review slot")
}

func TestTransitionRaiseObjectionSetsStateFeedback(t *testing.T) {
	app := submitReadyApplication(t, uuid.New())
	app.Status = models.InspectionUnderReview
	approver := Actor{ID: uuid.New(), Role: models.StateApproverRole}

	result, err := Transition(app, nil, Request{
		Action: ActionRaiseObjection,
		Actor:  approver,
		Reason: "fire safety certificate absent from inspection findings",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ObjectionRaised, result.Application.Status)
	require.NotNil(t, result.Application.StateFeedback)
	assert.Equal(t, approver.ID, *result.Application.StateReviewBy)
}
