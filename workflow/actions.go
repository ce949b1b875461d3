package workflow

// Action is a request to move an application along the review workflow.
// The set is closed: every permitted (status, action) pair appears in the
// transition table and every action has a static role mapping in the policy.
type Action string

const (
	// Owner actions
	ActionSubmit          Action = "SUBMIT"
	ActionResubmit        Action = "RESUBMIT"
	ActionInitiatePayment Action = "INITIATE_PAYMENT"

	// Scrutiny clerk actions
	ActionStartScrutiny     Action = "START_SCRUTINY"
	ActionSendBack          Action = "SEND_BACK"
	ActionForwardToDistrict Action = "FORWARD_TO_DISTRICT"

	// District officer actions
	ActionAcceptReview       Action = "ACCEPT_REVIEW"
	ActionRevertToApplicant  Action = "REVERT_TO_APPLICANT"
	ActionRevertToScrutiny   Action = "REVERT_TO_SCRUTINY"
	ActionScheduleInspection Action = "SCHEDULE_INSPECTION"
	ActionCompleteInspection Action = "COMPLETE_INSPECTION"

	// State approver actions
	ActionStartInspectionReview Action = "START_INSPECTION_REVIEW"
	ActionVerifyForPayment      Action = "VERIFY_FOR_PAYMENT"
	ActionRaiseObjection        Action = "RAISE_OBJECTION"
	ActionReject                Action = "REJECT"

	// Gateway callback, performed by an administrator account
	ActionConfirmPayment Action = "CONFIRM_PAYMENT"
)

// AllActions lists every defined action, used by closure tests and by the
// dashboard to enumerate what a role could ever do.
func AllActions() []Action {
	return []Action{
		ActionSubmit, ActionResubmit, ActionInitiatePayment,
		ActionStartScrutiny, ActionSendBack, ActionForwardToDistrict,
		ActionAcceptReview, ActionRevertToApplicant, ActionRevertToScrutiny,
		ActionScheduleInspection, ActionCompleteInspection,
		ActionStartInspectionReview, ActionVerifyForPayment,
		ActionRaiseObjection, ActionReject,
		ActionConfirmPayment,
	}
}
