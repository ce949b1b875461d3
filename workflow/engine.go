package workflow

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	docservices "github.com/microaistudio/hptourism-r1-sub000/documents/services"
)

// Request is one workflow action against an application.
type Request struct {
	Action Action
	Actor  Actor

	// Reason accompanies send-back / revert / objection / reject actions.
	Reason string

	Now time.Time
}

// Result declares the writes a successful transition requires. The engine
// never touches the store itself: the caller persists Result.Application
// (and any side records it prepared) as one atomic write.
type Result struct {
	// Application is an updated copy of the input record. The input is
	// left untouched so a failed guard observably changes nothing.
	Application models.Application

	// FeedbackCleared is set when the transition landed in SUBMITTED and
	// wiped all outstanding stage clarifications.
	FeedbackCleared bool

	// CertificateDue is set on the terminal APPROVED transition; the
	// registry must populate the certificate fields before persisting.
	CertificateDue bool
}

// Transition looks up the (status, action) pair, checks the authorization
// policy and the action-specific guards, and returns the updated record
// with its side effects declared. docs is the application's current
// document set, needed by the final-submission guard.
func Transition(app *models.Application, docs []models.Document, req Request) (*Result, error) {
	rule, ok := LookupTransition(app.Status, req.Action)
	if !ok {
		return nil, &InvalidTransitionError{Status: app.Status, Action: req.Action}
	}

	if !IsAllowed(req.Actor, app, req.Action) {
		return nil, ErrForbidden
	}

	reason := strings.TrimSpace(req.Reason)
	if rule.RequiresReason && utf8.RuneCountInString(reason) < MinReasonLength {
		return nil, NewValidationError("reason",
			"a reason of at least 10 characters is required for this action")
	}

	if rule.Next == models.SubmittedApplication {
		if err := checkSubmissionGuards(app, docs); err != nil {
			return nil, err
		}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	updated := *app
	updated.Status = rule.Next
	updated.CurrentStage = rule.Next.Stage()

	actorID := req.Actor.ID.String()
	updated.UpdatedBy = &actorID

	stampStage(&updated, req, reason, now)

	result := &Result{}

	switch rule.Next {
	case models.SubmittedApplication:
		updated.ClearFeedback()
		updated.SubmittedAt = &now
		result.FeedbackCleared = true
	case models.ApprovedApplication:
		updated.PaymentStatus = models.PaidPayment
		updated.PaymentDate = &now
		updated.ApprovedAt = &now
		result.CertificateDue = true
	}

	switch req.Action {
	case ActionSendBack:
		updated.ScrutinyFeedback = &reason
	case ActionRevertToApplicant:
		updated.DistrictFeedback = &reason
	case ActionRaiseObjection:
		updated.StateFeedback = &reason
	}

	result.Application = updated
	return result, nil
}

// stampStage records reviewer identity, time and notes on the audit-trail
// slot belonging to the stage that produced the transition.
func stampStage(app *models.Application, req Request, reason string, now time.Time) {
	var remarks *string
	if reason != "" {
		remarks = &reason
	}

	if req.Action == ActionCompleteInspection {
		app.InspectionBy = &req.Actor.ID
		app.InspectionAt = &now
		app.InspectionRemarks = remarks
		return
	}

	switch req.Actor.Role {
	case models.ScrutinyClerkRole:
		app.ScrutinyBy = &req.Actor.ID
		app.ScrutinyAt = &now
		app.ScrutinyRemarks = remarks
	case models.DistrictOfficerRole:
		app.DistrictReviewBy = &req.Actor.ID
		app.DistrictReviewAt = &now
		app.DistrictReviewRemarks = remarks
	case models.StateApproverRole:
		app.StateReviewBy = &req.Actor.ID
		app.StateReviewAt = &now
		app.StateReviewRemarks = remarks
	}
}

// checkSubmissionGuards enforces completeness before any transition into
// SUBMITTED: room counts consistent, a rate for every occupied room class,
// the derived fee breakdown present, and the document checklist satisfied.
func checkSubmissionGuards(app *models.Application, docs []models.Document) error {
	fields := map[string]string{}

	if app.TotalRooms != app.RoomCountTotal() {
		fields["total_rooms"] = "must equal the sum of per-class room counts"
	}
	if app.RoomCountTotal() == 0 {
		fields["total_rooms"] = "at least one room is required"
	}
	if app.SingleBedRooms > 0 && (app.SingleBedRoomRate == nil || app.SingleBedRoomRate.IsZero()) {
		fields["single_bed_room_rate"] = "rate required for single bed rooms"
	}
	if app.DoubleBedRooms > 0 && (app.DoubleBedRoomRate == nil || app.DoubleBedRoomRate.IsZero()) {
		fields["double_bed_room_rate"] = "rate required for double bed rooms"
	}
	if app.FamilySuites > 0 && (app.FamilySuiteRate == nil || app.FamilySuiteRate.IsZero()) {
		fields["family_suite_rate"] = "rate required for family suites"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if missing := feeFieldsMissing(app); len(missing) > 0 {
		return &IncompleteFeeError{Missing: missing}
	}

	if missing := docservices.MissingRequirements(docs); len(missing) > 0 {
		return &MissingDocumentsError{Missing: missing}
	}

	return nil
}

func feeFieldsMissing(app *models.Application) []string {
	var missing []string
	if app.BaseFee == nil {
		missing = append(missing, "base_fee")
	}
	if app.GSTAmount == nil {
		missing = append(missing, "gst_amount")
	}
	if app.TotalBeforeDiscounts == nil {
		missing = append(missing, "total_before_discounts")
	}
	if app.TotalDiscount == nil {
		missing = append(missing, "total_discount")
	}
	if app.TotalFee == nil {
		missing = append(missing, "total_fee")
	}
	if len(missing) > 0 {
		return missing
	}
	if app.TotalFee.IsNegative() || app.TotalDiscount.IsNegative() {
		missing = append(missing, "total_fee must not be negative")
	}
	if !app.TotalFee.Equal(app.TotalBeforeDiscounts.Sub(*app.TotalDiscount)) {
		missing = append(missing, "total_fee must equal total_before_discounts minus total_discount")
	}
	return missing
}
