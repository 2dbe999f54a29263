package lifecycle

import "github.com/gocomet/fleet-rides/internal/domain/ride"

// Action is a lifecycle operation applied to a ride.
type Action string

const (
	ActionDeptHeadApprove  Action = "dept_head_approve"
	ActionDeptHeadEscalate Action = "dept_head_escalate"
	ActionDeptHeadReject   Action = "dept_head_reject"
	ActionPMApprove        Action = "pm_approve"
	ActionPMReject         Action = "pm_reject"
	ActionAssign           Action = "assign"
	ActionStart            Action = "start"
	ActionComplete         Action = "complete"
)

type stateKey struct {
	status   ride.Status
	approval ride.ApprovalStatus
	action   Action
}

type stateOutcome struct {
	status   ride.Status
	approval ride.ApprovalStatus
}

// transitions is the full lifecycle as data. Any (state, action) pair absent
// from this table is illegal and surfaces as a conflict; cancellation is the
// one transition handled outside it, since it applies from every non-terminal
// state.
var transitions = map[stateKey]stateOutcome{
	{ride.StatusPending, ride.ApprovalPending, ActionDeptHeadApprove}:  {ride.StatusApproved, ride.ApprovalApproved},
	{ride.StatusPending, ride.ApprovalPending, ActionDeptHeadEscalate}: {ride.StatusPending, ride.ApprovalApproved},
	{ride.StatusPending, ride.ApprovalPending, ActionDeptHeadReject}:   {ride.StatusCancelled, ride.ApprovalRejected},
	{ride.StatusPending, ride.ApprovalApproved, ActionPMApprove}:       {ride.StatusApproved, ride.ApprovalApproved},
	{ride.StatusPending, ride.ApprovalApproved, ActionPMReject}:        {ride.StatusCancelled, ride.ApprovalRejected},
	{ride.StatusApproved, ride.ApprovalApproved, ActionAssign}:         {ride.StatusAssigned, ride.ApprovalApproved},
	{ride.StatusAssigned, ride.ApprovalApproved, ActionStart}:          {ride.StatusOngoing, ride.ApprovalApproved},
	{ride.StatusOngoing, ride.ApprovalApproved, ActionComplete}:        {ride.StatusCompleted, ride.ApprovalApproved},
}

// nextState looks up the outcome of applying action to a ride in its current
// state. The second return is false when the transition is illegal.
func nextState(rd *ride.Ride, action Action) (stateOutcome, bool) {
	out, ok := transitions[stateKey{rd.Status, rd.ApprovalStatus, action}]
	return out, ok
}
