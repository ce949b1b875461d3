package workflow

import (
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
)

// Rule describes one edge of the workflow graph.
type Rule struct {
	Next models.ApplicationStatus

	// RequiresReason forces a written reason of at least MinReasonLength
	// characters on actions that push the application backwards.
	RequiresReason bool
}

// MinReasonLength is the minimum length of a send-back / revert / reject /
// objection reason.
const MinReasonLength = 10

// transitionTable is the complete workflow graph: (current status, action)
// to the resulting status. A pair absent from this table is an invalid
// transition, full stop. APPROVED, REJECTED and EXPIRED are terminal and
// deliberately have no entries.
var transitionTable = map[models.ApplicationStatus]map[Action]Rule{
	models.DraftApplication: {
		ActionSubmit: {Next: models.SubmittedApplication},
	},
	models.SubmittedApplication: {
		ActionStartScrutiny: {Next: models.UnderScrutinyApplication},
	},
	models.UnderScrutinyApplication: {
		ActionSendBack:          {Next: models.SentBackForCorrections, RequiresReason: true},
		ActionForwardToDistrict: {Next: models.ForwardedToReview},
	},
	models.SentBackForCorrections: {
		ActionResubmit: {Next: models.SubmittedApplication},
	},
	models.ForwardedToReview: {
		ActionAcceptReview:      {Next: models.ReviewAccepted},
		ActionRevertToApplicant: {Next: models.RevertedToApplicant, RequiresReason: true},
		ActionRevertToScrutiny:  {Next: models.RevertedByReview, RequiresReason: true},
		ActionReject:            {Next: models.RejectedApplication, RequiresReason: true},
	},
	models.RevertedByReview: {
		ActionForwardToDistrict: {Next: models.ForwardedToReview},
	},
	models.RevertedToApplicant: {
		ActionResubmit: {Next: models.SubmittedApplication},
	},
	models.ReviewAccepted: {
		ActionScheduleInspection: {Next: models.InspectionScheduled},
	},
	models.InspectionScheduled: {
		ActionCompleteInspection: {Next: models.InspectionCompleted},
	},
	models.InspectionCompleted: {
		ActionStartInspectionReview: {Next: models.InspectionUnderReview},
	},
	models.InspectionUnderReview: {
		ActionVerifyForPayment: {Next: models.VerifiedForPayment},
		ActionRaiseObjection:   {Next: models.ObjectionRaised, RequiresReason: true},
		ActionReject:           {Next: models.RejectedApplication, RequiresReason: true},
	},
	models.ObjectionRaised: {
		ActionResubmit: {Next: models.SubmittedApplication},
	},
	models.VerifiedForPayment: {
		ActionInitiatePayment: {Next: models.PaymentPendingApplication},
	},
	models.PaymentPendingApplication: {
		ActionConfirmPayment: {Next: models.ApprovedApplication},
	},
}

// LookupTransition returns the rule for a (status, action) pair, if defined.
func LookupTransition(status models.ApplicationStatus, action Action) (Rule, bool) {
	byAction, ok := transitionTable[status]
	if !ok {
		return Rule{}, false
	}
	rule, ok := byAction[action]
	return rule, ok
}

// AllowedActions lists the actions defined for a status, for dashboards.
func AllowedActions(status models.ApplicationStatus) []Action {
	byAction := transitionTable[status]
	actions := make([]Action, 0, len(byAction))
	for _, a := range AllActions() {
		if _, ok := byAction[a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// AllStatuses lists every status that can appear on an application,
// including the terminal ones with no outgoing edges.
func AllStatuses() []models.ApplicationStatus {
	return []models.ApplicationStatus{
		models.DraftApplication,
		models.SubmittedApplication,
		models.UnderScrutinyApplication,
		models.SentBackForCorrections,
		models.ForwardedToReview,
		models.RevertedByReview,
		models.RevertedToApplicant,
		models.ReviewAccepted,
		models.InspectionScheduled,
		models.InspectionCompleted,
		models.InspectionUnderReview,
		models.ObjectionRaised,
		models.VerifiedForPayment,
		models.PaymentPendingApplication,
		models.ApprovedApplication,
		models.RejectedApplication,
		models.ExpiredApplication,
	}
}
