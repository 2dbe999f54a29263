package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
)

func TestNextState(t *testing.T) {
	cases := []struct {
		name     string
		status   ride.Status
		approval ride.ApprovalStatus
		action   Action
		want     stateOutcome
		legal    bool
	}{
		{"dept head approve", ride.StatusPending, ride.ApprovalPending, ActionDeptHeadApprove, stateOutcome{ride.StatusApproved, ride.ApprovalApproved}, true},
		{"dept head escalate", ride.StatusPending, ride.ApprovalPending, ActionDeptHeadEscalate, stateOutcome{ride.StatusPending, ride.ApprovalApproved}, true},
		{"dept head reject", ride.StatusPending, ride.ApprovalPending, ActionDeptHeadReject, stateOutcome{ride.StatusCancelled, ride.ApprovalRejected}, true},
		{"pm approve", ride.StatusPending, ride.ApprovalApproved, ActionPMApprove, stateOutcome{ride.StatusApproved, ride.ApprovalApproved}, true},
		{"pm reject", ride.StatusPending, ride.ApprovalApproved, ActionPMReject, stateOutcome{ride.StatusCancelled, ride.ApprovalRejected}, true},
		{"assign", ride.StatusApproved, ride.ApprovalApproved, ActionAssign, stateOutcome{ride.StatusAssigned, ride.ApprovalApproved}, true},
		{"start", ride.StatusAssigned, ride.ApprovalApproved, ActionStart, stateOutcome{ride.StatusOngoing, ride.ApprovalApproved}, true},
		{"complete", ride.StatusOngoing, ride.ApprovalApproved, ActionComplete, stateOutcome{ride.StatusCompleted, ride.ApprovalApproved}, true},

		{"approve twice", ride.StatusApproved, ride.ApprovalApproved, ActionDeptHeadApprove, stateOutcome{}, false},
		{"pm approve before escalation", ride.StatusPending, ride.ApprovalPending, ActionPMApprove, stateOutcome{}, false},
		{"assign pending", ride.StatusPending, ride.ApprovalPending, ActionAssign, stateOutcome{}, false},
		{"start unassigned", ride.StatusApproved, ride.ApprovalApproved, ActionStart, stateOutcome{}, false},
		{"complete assigned", ride.StatusAssigned, ride.ApprovalApproved, ActionComplete, stateOutcome{}, false},
		{"complete completed", ride.StatusCompleted, ride.ApprovalApproved, ActionComplete, stateOutcome{}, false},
		{"approve cancelled", ride.StatusCancelled, ride.ApprovalRejected, ActionDeptHeadApprove, stateOutcome{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rd := &ride.Ride{Status: tc.status, ApprovalStatus: tc.approval}
			got, ok := nextState(rd, tc.action)
			assert.Equal(t, tc.legal, ok)
			if tc.legal {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	actions := []Action{
		ActionDeptHeadApprove, ActionDeptHeadEscalate, ActionDeptHeadReject,
		ActionPMApprove, ActionPMReject, ActionAssign, ActionStart, ActionComplete,
	}
	for _, status := range []ride.Status{ride.StatusCompleted, ride.StatusCancelled} {
		for _, action := range actions {
			rd := &ride.Ride{Status: status, ApprovalStatus: ride.ApprovalApproved}
			_, ok := nextState(rd, action)
			assert.False(t, ok, "%s should be terminal for %s", status, action)
		}
	}
}
