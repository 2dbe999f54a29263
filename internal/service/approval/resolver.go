// Package approval resolves who must sign off on a ride and validates that a
// decision is being made by that exact approver, not merely someone holding
// the right role.
package approval

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

// Resolver determines and validates the approval chain for rides.
type Resolver struct {
	users user.Repository
}

// NewResolver creates a resolver backed by the user directory.
func NewResolver(users user.Repository) *Resolver {
	return &Resolver{users: users}
}

// Chain is the outcome of resolving a new ride's approvers.
type Chain struct {
	// DepartmentHeadID is nil when the requester's department has no head on
	// file; such rides are only approvable by an admin.
	DepartmentHeadID *uuid.UUID
	// RequesterIsDeptHead marks the escalation path: the department head's own
	// approval never finalizes, a project manager signs off instead.
	RequesterIsDeptHead bool
}

// Resolve determines the approval chain for a ride created by the requester.
func (r *Resolver) Resolve(ctx context.Context, requester *user.User) (Chain, error) {
	chain := Chain{RequesterIsDeptHead: requester.Role == user.RoleDepartmentHead}
	if requester.Department == "" {
		return chain, nil
	}
	head, err := r.users.FindByRoleAndDepartment(ctx, user.RoleDepartmentHead, requester.Department)
	if errors.Is(err, user.ErrUserNotFound) {
		return chain, nil
	}
	if err != nil {
		return Chain{}, err
	}
	chain.DepartmentHeadID = &head.ID
	return chain, nil
}

// ResolveProjectManager picks the project manager for an escalated ride. The
// user repository is a parameter so callers inside an open transaction can
// pass the transaction's own view of the directory.
func (r *Resolver) ResolveProjectManager(ctx context.Context, users user.Repository, requesterID uuid.UUID) (*user.User, error) {
	pm, err := users.FindByRole(ctx, user.RoleProjectManager)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, apperrors.PreconditionFailed("No project manager available to approve this ride", err)
	}
	if err != nil {
		return nil, err
	}
	if pm.ID == requesterID {
		return nil, apperrors.PreconditionFailed("No project manager other than the requester is available", nil)
	}
	return pm, nil
}

// ValidateDeptHeadDecision checks that the caller may decide the department
// head stage of this specific ride. When no department head is on file the
// decision falls to an admin.
func (r *Resolver) ValidateDeptHeadDecision(rd *ride.Ride, actor user.Principal) error {
	if rd.DepartmentHeadID == nil {
		if actor.IsAdmin() {
			return nil
		}
		return apperrors.Authorization("Only an admin can approve a ride without a department head", nil)
	}
	if actor.ID != *rd.DepartmentHeadID {
		return apperrors.Authorization("Only this ride's department head can decide it", nil)
	}
	return nil
}

// ValidatePMDecision checks that the caller is exactly the project manager
// assigned to this ride, and never the requester themselves.
func (r *Resolver) ValidatePMDecision(rd *ride.Ride, actor user.Principal) error {
	if rd.ProjectManagerID == nil || actor.ID != *rd.ProjectManagerID {
		return apperrors.Authorization("Only this ride's project manager can decide it", nil)
	}
	if actor.ID == rd.RequesterID {
		return apperrors.Authorization("A requester cannot give final approval to their own ride", nil)
	}
	return nil
}
