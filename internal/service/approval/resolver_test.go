package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/fleet-rides/internal/domain/ride"
	"github.com/gocomet/fleet-rides/internal/domain/user"
	"github.com/gocomet/fleet-rides/internal/service/approval"
	"github.com/gocomet/fleet-rides/internal/storage"
	"github.com/gocomet/fleet-rides/internal/storage/memory"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

func seedUser(t *testing.T, store *memory.Store, role user.Role, dept string) *user.User {
	t.Helper()
	u := &user.User{
		ID:         uuid.New(),
		Name:       string(role),
		Role:       role,
		Department: dept,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestResolveFindsDepartmentHead(t *testing.T) {
	store := memory.New()
	head := seedUser(t, store, user.RoleDepartmentHead, "engineering")
	requester := seedUser(t, store, user.RoleUser, "engineering")

	r := approval.NewResolver(store.Users())
	chain, err := r.Resolve(context.Background(), requester)
	require.NoError(t, err)
	require.NotNil(t, chain.DepartmentHeadID)
	assert.Equal(t, head.ID, *chain.DepartmentHeadID)
	assert.False(t, chain.RequesterIsDeptHead)
}

func TestResolveNoDepartmentHead(t *testing.T) {
	store := memory.New()
	requester := seedUser(t, store, user.RoleUser, "legal")

	r := approval.NewResolver(store.Users())
	chain, err := r.Resolve(context.Background(), requester)
	require.NoError(t, err)
	assert.Nil(t, chain.DepartmentHeadID)
}

func TestResolveDeptHeadRequesterEscalates(t *testing.T) {
	store := memory.New()
	head := seedUser(t, store, user.RoleDepartmentHead, "engineering")

	r := approval.NewResolver(store.Users())
	chain, err := r.Resolve(context.Background(), head)
	require.NoError(t, err)
	require.NotNil(t, chain.DepartmentHeadID)
	assert.Equal(t, head.ID, *chain.DepartmentHeadID)
	assert.True(t, chain.RequesterIsDeptHead)
}

func TestResolveProjectManager(t *testing.T) {
	store := memory.New()
	r := approval.NewResolver(store.Users())

	// No PM on file.
	_, err := r.ResolveProjectManager(context.Background(), store.Users(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))

	pm := seedUser(t, store, user.RoleProjectManager, "")
	got, err := r.ResolveProjectManager(context.Background(), store.Users(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, pm.ID, got.ID)

	// The only PM being the requester is not an acceptable final approver.
	_, err = r.ResolveProjectManager(context.Background(), store.Users(), pm.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))
}

// PM resolution happens inside an open approval transaction, so it must go
// through the transaction's own user repository rather than reacquiring the
// store.
func TestResolveProjectManagerInsideTransaction(t *testing.T) {
	store := memory.New()
	pm := seedUser(t, store, user.RoleProjectManager, "")
	r := approval.NewResolver(store.Users())

	done := make(chan error, 1)
	go func() {
		done <- store.WithinTx(context.Background(), func(tx storage.Store) error {
			got, err := r.ResolveProjectManager(context.Background(), tx.Users(), uuid.New())
			if err != nil {
				return err
			}
			assert.Equal(t, pm.ID, got.ID)
			return nil
		})
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("project manager resolution blocked inside the transaction")
	}
}

func TestValidateDeptHeadDecision(t *testing.T) {
	r := approval.NewResolver(memory.New().Users())
	headID := uuid.New()
	rd := &ride.Ride{DepartmentHeadID: &headID}

	err := r.ValidateDeptHeadDecision(rd, user.Principal{ID: headID, Role: user.RoleDepartmentHead})
	assert.NoError(t, err)

	// Right role, wrong person.
	err = r.ValidateDeptHeadDecision(rd, user.Principal{ID: uuid.New(), Role: user.RoleDepartmentHead})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// Admins do not bypass a chain that has its approver.
	err = r.ValidateDeptHeadDecision(rd, user.Principal{ID: uuid.New(), Role: user.RoleAdmin})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// Without a department head only admins decide.
	orphan := &ride.Ride{}
	err = r.ValidateDeptHeadDecision(orphan, user.Principal{ID: uuid.New(), Role: user.RoleAdmin})
	assert.NoError(t, err)
	err = r.ValidateDeptHeadDecision(orphan, user.Principal{ID: headID, Role: user.RoleDepartmentHead})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))
}

func TestValidatePMDecision(t *testing.T) {
	r := approval.NewResolver(memory.New().Users())
	pmID := uuid.New()
	rd := &ride.Ride{RequesterID: uuid.New(), ProjectManagerID: &pmID}

	assert.NoError(t, r.ValidatePMDecision(rd, user.Principal{ID: pmID, Role: user.RoleProjectManager}))

	err := r.ValidatePMDecision(rd, user.Principal{ID: uuid.New(), Role: user.RoleProjectManager})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// No PM attached at all.
	err = r.ValidatePMDecision(&ride.Ride{}, user.Principal{ID: pmID, Role: user.RoleProjectManager})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	// A PM never finalizes their own request.
	own := &ride.Ride{RequesterID: pmID, ProjectManagerID: &pmID}
	err = r.ValidatePMDecision(own, user.Principal{ID: pmID, Role: user.RoleProjectManager})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))
}
