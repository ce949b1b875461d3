package workflow

import (
	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
)

// Actor is the authenticated principal attempting a workflow action,
// resolved from the actor directory by the caller.
type Actor struct {
	ID       uuid.UUID
	Role     models.Role
	District string
}

// actionRoles statically maps every action to the minimal role set allowed
// to invoke it. An action absent from this map is denied for everyone.
var actionRoles = map[Action][]models.Role{
	ActionSubmit:          {models.OwnerRole},
	ActionResubmit:        {models.OwnerRole},
	ActionInitiatePayment: {models.OwnerRole},

	ActionStartScrutiny:     {models.ScrutinyClerkRole},
	ActionSendBack:          {models.ScrutinyClerkRole},
	ActionForwardToDistrict: {models.ScrutinyClerkRole},

	ActionAcceptReview:       {models.DistrictOfficerRole},
	ActionRevertToApplicant:  {models.DistrictOfficerRole},
	ActionRevertToScrutiny:   {models.DistrictOfficerRole},
	ActionScheduleInspection: {models.DistrictOfficerRole},
	ActionCompleteInspection: {models.DistrictOfficerRole},

	ActionStartInspectionReview: {models.StateApproverRole},
	ActionVerifyForPayment:      {models.StateApproverRole},
	ActionRaiseObjection:        {models.StateApproverRole},
	ActionReject:                {models.DistrictOfficerRole, models.StateApproverRole},

	ActionConfirmPayment: {models.AdminRole},
}

// IsAllowed decides whether the actor may perform the action on this
// application. Unknown actor/action combinations deny by default.
func IsAllowed(actor Actor, app *models.Application, action Action) bool {
	roles, ok := actionRoles[action]
	if !ok {
		return false
	}

	permitted := false
	for _, role := range roles {
		if roleSatisfies(actor.Role, role) {
			permitted = true
			break
		}
	}
	if !permitted {
		return false
	}

	// Owners act only on their own application.
	if actor.Role == models.OwnerRole {
		return app.OwnerID == actor.ID
	}

	// District-scoped roles act only inside their assigned district. An
	// unassigned district is a configuration error that denies everything.
	if actor.Role.DistrictScoped() {
		if actor.District == "" {
			return false
		}
		return actor.District == app.District
	}

	return true
}

// roleSatisfies reports whether held grants the permissions of required.
// Super administrator implicitly holds administrator's permissions; this is
// a one-level inheritance, not a general hierarchy.
func roleSatisfies(held, required models.Role) bool {
	if held == required {
		return true
	}
	return held == models.SuperAdminRole && required == models.AdminRole
}
