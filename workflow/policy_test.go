package workflow

import (
	"testing"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testApplication(district string) *models.Application {
	return &models.Application{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		District: district,
		Status:   models.SubmittedApplication,
	}
}

func TestIsAllowedOwnerScope(t *testing.T) {
	app := testApplication("Shimla")

	owner := Actor{ID: app.OwnerID, Role: models.OwnerRole}
	stranger := Actor{ID: uuid.New(), Role: models.OwnerRole}

	assert.True(t, IsAllowed(owner, app, ActionSubmit))
	assert.False(t, IsAllowed(stranger, app, ActionSubmit),
		"an owner must not act on someone else's application")
	assert.False(t, IsAllowed(owner, app, ActionStartScrutiny),
		"owners may only invoke owner-scoped actions")
}

func TestIsAllowedDistrictScoping(t *testing.T) {
	app := testApplication("Kangra")

	sameDistrict := Actor{ID: uuid.New(), Role: models.DistrictOfficerRole, District: "Kangra"}
	otherDistrict := Actor{ID: uuid.New(), Role: models.DistrictOfficerRole, District: "Shimla"}
	noDistrict := Actor{ID: uuid.New(), Role: models.ScrutinyClerkRole}

	assert.True(t, IsAllowed(sameDistrict, app, ActionAcceptReview))
	assert.False(t, IsAllowed(otherDistrict, app, ActionAcceptReview))
	assert.False(t, IsAllowed(noDistrict, app, ActionStartScrutiny),
		"a district role without an assigned district is a config error and denies everything")
}

func TestIsAllowedStateRolesNotDistrictScoped(t *testing.T) {
	app := testApplication("Kullu")
	app.Status = models.InspectionUnderReview

	approver := Actor{ID: uuid.New(), Role: models.StateApproverRole, District: ""}
	assert.True(t, IsAllowed(approver, app, ActionVerifyForPayment))
	assert.True(t, IsAllowed(approver, app, ActionReject))
}

func TestIsAllowedSuperAdminInheritsAdmin(t *testing.T) {
	app := testApplication("Mandi")

	admin := Actor{ID: uuid.New(), Role: models.AdminRole}
	superAdmin := Actor{ID: uuid.New(), Role: models.SuperAdminRole}

	assert.True(t, IsAllowed(admin, app, ActionConfirmPayment))
	assert.True(t, IsAllowed(superAdmin, app, ActionConfirmPayment),
		"super admin implicitly holds admin permissions")
	assert.False(t, IsAllowed(admin, app, ActionVerifyForPayment),
		"the inheritance is one level, not a general hierarchy")
}

func TestIsAllowedFailsClosed(t *testing.T) {
	app := testApplication("Solan")

	for _, role := range []models.Role{
		models.OwnerRole, models.ScrutinyClerkRole, models.DistrictOfficerRole,
		models.StateApproverRole, models.AdminRole, models.SuperAdminRole,
	} {
		actor := Actor{ID: uuid.New(), Role: role, District: "Solan"}
		assert.False(t, IsAllowed(actor, app, Action("MAKE_TEA")),
			"unknown actions must deny for role %s", role)
	}
}
