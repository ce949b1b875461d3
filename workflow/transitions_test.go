package workflow

import (
	"testing"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for _, status := range []models.ApplicationStatus{
		models.ApprovedApplication,
		models.RejectedApplication,
		models.ExpiredApplication,
	} {
		assert.Empty(t, AllowedActions(status), "terminal status %s must define no transitions", status)
	}
}

// Every (status, action) pair absent from the table returns
// InvalidTransition and leaves the record unchanged.
func TestTransitionClosure(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: models.SuperAdminRole}

	for _, status := range AllStatuses() {
		for _, action := range AllActions() {
			if _, defined := LookupTransition(status, action); defined {
				continue
			}

			app := &models.Application{
				ID:       uuid.New(),
				OwnerID:  uuid.New(),
				District: "Shimla",
				Status:   status,
			}
			before := *app

			_, err := Transition(app, nil, Request{Action: action, Actor: actor})
			require.Error(t, err, "(%s, %s) must be rejected", status, action)

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, status, invalid.Status)
			assert.Equal(t, action, invalid.Action)
			assert.Equal(t, before, *app, "record must be unchanged after a refused transition")
		}
	}
}

func TestEveryDefinedEdgeLandsOnKnownStatus(t *testing.T) {
	known := make(map[models.ApplicationStatus]bool)
	for _, s := range AllStatuses() {
		known[s] = true
	}

	for _, status := range AllStatuses() {
		for _, action := range AllowedActions(status) {
			rule, ok := LookupTransition(status, action)
			require.True(t, ok)
			assert.True(t, known[rule.Next], "(%s, %s) lands on unknown status %s", status, action, rule.Next)
		}
	}
}
